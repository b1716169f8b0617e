package podsync

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/skillcoder/podstream/internal/infra/metrics"
)

// Subscription is one live subscriber. Events is closed when the
// subscription ends; Err then tells why.
type Subscription struct {
	id     string
	events chan Event
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	err    error
}

func newSubscription(bufferSize int) *Subscription {
	return &Subscription{
		id:     uuid.NewString(),
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the subscription id used for Unsubscribe.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the ordered live event channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the termination reason: nil after Unsubscribe,
// ErrSubscriberOverflow or ErrBroadcasterClosed otherwise.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// close must be called with the broadcaster lock held.
func (s *Subscription) close(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		close(s.done)
		close(s.events)
	})
}

// Broadcaster fans events out to every registered subscription without
// blocking the publisher.
type Broadcaster struct {
	logger     *slog.Logger
	bufferSize int
	mu         sync.Mutex
	subs       map[string]*Subscription
	closed     bool
}

// NewBroadcaster creates a broadcaster whose subscribers each get a queue
// of bufferSize events.
func NewBroadcaster(logger *slog.Logger, bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultSubscriberBuffer
	}

	return &Broadcaster{
		logger:     logger.With("component", "broadcaster"),
		bufferSize: bufferSize,
		subs:       make(map[string]*Subscription),
	}
}

// Subscribe registers a new subscription.
func (b *Broadcaster) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBroadcasterClosed
	}

	sub := newSubscription(b.bufferSize)
	b.subs[sub.id] = sub

	metrics.SetSubscribers(len(b.subs))
	b.logger.Debug("subscriber registered", "subscriber", sub.id, "subscribers", len(b.subs))

	return sub, nil
}

// Publish delivers events in order to every subscription. A subscription
// whose queue is full is disconnected with ErrSubscriberOverflow.
func (b *Broadcaster) Publish(events ...Event) {
	if len(events) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range events {
		for id, sub := range b.subs {
			select {
			case sub.events <- events[i]:
			default:
				delete(b.subs, id)
				sub.close(ErrSubscriberOverflow)

				metrics.RecordSubscriberOverflow()
				b.logger.Warn("subscriber queue overflow, disconnecting",
					"subscriber", id,
					"bufferSize", b.bufferSize,
				)
			}
		}
	}

	metrics.SetSubscribers(len(b.subs))
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}

	delete(b.subs, id)
	sub.close(nil)

	metrics.SetSubscribers(len(b.subs))
	b.logger.Debug("subscriber removed", "subscriber", id, "subscribers", len(b.subs))
}

// Close disconnects every subscription with ErrBroadcasterClosed and
// rejects further subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.close(ErrBroadcasterClosed)
	}

	metrics.SetSubscribers(0)
	b.logger.Info("broadcaster closed")
}

// Len returns the number of registered subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
