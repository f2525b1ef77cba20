package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/events"
)

// ErrQueueFull is returned when the worker cannot accept another event.
var ErrQueueFull = errors.New("notification queue full")

const publishTimeout = 5 * time.Second

// NotificationWorker publishes events on a background goroutine so request
// handlers never wait on the broker. It satisfies events.Publisher.
type NotificationWorker struct {
	publisher events.Publisher
	logger    *zap.Logger
	queue     chan events.Event

	once sync.Once
	wg   sync.WaitGroup
}

// NewNotificationWorker wraps publisher with a queue of the given size.
func NewNotificationWorker(publisher events.Publisher, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 128
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan events.Event, buffer),
	}
}

// Start launches the publishing loop.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.publish(event)
		}
	}()
}

// Publish enqueues the event without blocking.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping event, queue full",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return ErrQueueFull
	}
}

// Close drains the queue, then closes the underlying publisher. Publish must not be
// called after Close.
func (w *NotificationWorker) Close() {
	w.once.Do(func() {
		close(w.queue)
		w.wg.Wait()
		if w.publisher != nil {
			w.publisher.Close()
		}
	})
}

func (w *NotificationWorker) publish(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Warn("publish event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
