package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_RoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var created, noted []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		created = append(created, e.ID)
		return nil
	})
	d.Subscribe(EventTicketNoted, func(_ context.Context, e Event) error {
		noted = append(noted, e.ID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "1", Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{ID: "2", Type: EventTicketNoted}))
	require.NoError(t, d.Publish(context.Background(), Event{ID: "3", Type: "unrelated"}))

	assert.Equal(t, []string{"1"}, created)
	assert.Equal(t, []string{"2"}, noted)
}

func TestInMemoryDispatcher_JoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	first := errors.New("first")
	second := errors.New("second")
	calls := 0
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { calls++; return first })
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { calls++; return second })

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
