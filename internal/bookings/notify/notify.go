// Package notify fans booking changes out to interested listeners after a
// successful mutation. Subscriptions are explicit; there is no ambient
// broadcast channel, so the scheduling core carries no UI dependency.
package notify

import (
	"context"
	"sync"

	"villacal/pkg/kafka"
	"villacal/pkg/logger"
	"villacal/pkg/model"
)

type Op string

const (
	OpCreated Op = "booking.created"
	OpUpdated Op = "booking.updated"
	OpDeleted Op = "booking.deleted"
)

// Change describes one committed mutation. For deletions Booking holds the
// record as it was before removal.
type Change struct {
	Op      Op             `json:"op"`
	Booking *model.Booking `json:"booking"`
}

type Listener func(Change)

// Notifier delivers changes to in-process subscribers and, when a producer
// is configured, publishes them to Kafka keyed by booking id. Publication
// is best-effort: the mutation has already committed, so a delivery
// failure is logged and swallowed.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
	producer  *kafka.Producer
	source    string
	log       *logger.Logger
}

func New(log *logger.Logger, producer *kafka.Producer, source string) *Notifier {
	return &Notifier{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *Notifier) Publish(ctx context.Context, op Op, booking *model.Booking) {
	change := Change{Op: op, Booking: booking}

	n.mu.RLock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	for _, l := range listeners {
		l(change)
	}

	if n.producer == nil {
		return
	}

	msg, err := kafka.NewMessage(booking.ID, string(op), n.source, change)
	if err != nil {
		n.log.Error("Failed to encode change event", "op", op, "booking_id", booking.ID, "error", err)
		return
	}
	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Warn("Failed to publish change event", "op", op, "booking_id", booking.ID, "error", err)
	}
}

func (n *Notifier) Close() {
	if n.producer != nil {
		if err := n.producer.Close(); err != nil {
			n.log.Warn("Failed to close change producer", "error", err)
		}
	}
}
