package channel

import (
	"context"
	"log/slog"
)

const defaultQueueSize = 64

// Queue buffers inbound messages between the platform callbacks and one
// dispatch loop. Adapters push from their own goroutines; exactly one
// consumer drains the queue, so handlers never run concurrently and shared
// state needs no locking.
type Queue struct {
	events chan InboundMessage
	logger *slog.Logger
}

// NewQueue creates a Queue with the given buffer size (0 uses the default).
func NewQueue(size int, log *slog.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		events: make(chan InboundMessage, size),
		logger: log.With(slog.String("component", "inbound_queue")),
	}
}

// Push enqueues a message for dispatch. When the queue is full the message
// is dropped and logged rather than blocking the platform callback.
func (q *Queue) Push(ctx context.Context, msg InboundMessage) {
	select {
	case q.events <- msg:
	case <-ctx.Done():
	default:
		q.logger.Warn("inbound queue full, dropping message",
			slog.String("message_id", msg.ID),
			slog.String("sender_id", msg.Sender.SubjectID),
		)
	}
}

// Run consumes the queue until ctx is canceled, invoking handler for each
// message in arrival order. Handler errors are logged, never fatal.
func (q *Queue) Run(ctx context.Context, handler InboundHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q.events:
			if err := handler(ctx, msg); err != nil {
				q.logger.Error("handle inbound failed",
					slog.String("message_id", msg.ID),
					slog.Any("error", err),
				)
			}
		}
	}
}
