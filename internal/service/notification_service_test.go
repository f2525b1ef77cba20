package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/events"
)

type capturePublisher struct {
	published []events.Event
	err       error
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return p.err
}

func (p *capturePublisher) Close() {}

func TestNotificationService_ForwardsTicketEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &capturePublisher{}
	NewNotificationService(dispatcher, publisher, zap.NewNop()).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "1", Type: events.EventTicketCreated}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "2", Type: events.EventTicketNoted}))

	require.Len(t, publisher.published, 2)
	assert.Equal(t, "1", publisher.published[0].ID)
	assert.Equal(t, "2", publisher.published[1].ID)
}

func TestNotificationService_PublishErrorsSurfaceThroughDispatcher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, &capturePublisher{err: errors.New("broker down")}, zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{ID: "1", Type: events.EventTicketCreated})
	assert.ErrorContains(t, err, "broker down")
}

func TestNotificationService_WithoutPublisherOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, zap.NewNop()).RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "1", Type: events.EventTicketNoted}))
}
