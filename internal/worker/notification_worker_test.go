package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/events"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
	closed    bool
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	p.published = append(p.published, event.ID)
	return p.err
}

func (p *recordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func TestNotificationWorker_DrainsOnClose(t *testing.T) {
	pub := &recordingPublisher{}
	w := NewNotificationWorker(pub, zap.NewNop(), 8)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, w.Publish(context.Background(), events.Event{ID: id, Type: events.EventTicketCreated}))
	}
	w.Start()
	w.Close()

	assert.Equal(t, []string{"a", "b", "c"}, pub.published)
	assert.True(t, pub.closed)
}

func TestNotificationWorker_QueueFull(t *testing.T) {
	pub := &recordingPublisher{}
	w := NewNotificationWorker(pub, zap.NewNop(), 1)

	require.NoError(t, w.Publish(context.Background(), events.Event{ID: "kept"}))
	err := w.Publish(context.Background(), events.Event{ID: "dropped"})
	assert.ErrorIs(t, err, ErrQueueFull)

	w.Start()
	w.Close()
	assert.Equal(t, []string{"kept"}, pub.published)
}

func TestNotificationWorker_PublishFailureDoesNotStopLoop(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	w := NewNotificationWorker(pub, nil, 0)

	w.Start()
	require.NoError(t, w.Publish(context.Background(), events.Event{ID: "1"}))
	require.NoError(t, w.Publish(context.Background(), events.Event{ID: "2"}))
	w.Close()
	w.Close()

	assert.Equal(t, []string{"1", "2"}, pub.published)
	assert.True(t, pub.closed)
}
