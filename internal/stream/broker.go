package stream

import (
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// Subscription is one subscriber's view of a run's event stream.
// Events arrives in emission order; it is closed when the run's
// terminal event has been delivered, the subscriber unsubscribes, or
// the subscriber falls too far behind.
type Subscription struct {
	Events <-chan pipeline.Event

	ch     chan pipeline.Event
	once   sync.Once
	// dropped is set when the broker disconnected this subscriber for
	// falling behind.
	dropped bool
	mu      sync.Mutex
}

// Dropped reports whether the broker disconnected this subscriber
// because its buffer overflowed.
func (s *Subscription) Dropped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Subscription) close(dropped bool) {
	s.once.Do(func() {
		s.mu.Lock()
		s.dropped = dropped
		s.mu.Unlock()
		close(s.ch)
	})
}

// Broker fans a run's events out to its subscribers. The run does not
// own (or wait for) any subscriber: publishing never blocks, and a
// subscriber whose bounded buffer fills up is disconnected outright
// rather than having frames reordered or skipped.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]*Subscription
	bufferSize  int
}

// NewBroker creates a broker with the given per-subscriber buffer size.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Broker{
		subscribers: make(map[string][]*Subscription),
		bufferSize:  bufferSize,
	}
}

// Subscribe attaches a new subscriber to a run's stream. The returned
// cancel function detaches it; calling cancel more than once is safe.
func (b *Broker) Subscribe(runID string) (*Subscription, func()) {
	sub := &Subscription{ch: make(chan pipeline.Event, b.bufferSize)}
	sub.Events = sub.ch

	b.mu.Lock()
	b.subscribers[runID] = append(b.subscribers[runID], sub)
	b.mu.Unlock()

	cancel := func() {
		b.removeAndClose(runID, sub, false)
	}
	return sub, cancel
}

// removeAndClose detaches sub and closes its channel under the write
// lock. Publish sends under the read lock, so a send can never race
// the close.
func (b *Broker) removeAndClose(runID string, sub *Subscription, dropped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[runID]
	for i, s := range subs {
		if s == sub {
			b.subscribers[runID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[runID]) == 0 {
		delete(b.subscribers, runID)
	}
	sub.close(dropped)
}

// Publish delivers ev to every subscriber of its run. A full subscriber
// buffer disconnects that subscriber; other subscribers and the run
// itself are unaffected. Terminal events close all subscriptions after
// delivery.
func (b *Broker) Publish(ev pipeline.Event) {
	var overflowed, finished []*Subscription

	b.mu.RLock()
	for _, sub := range b.subscribers[ev.RunID] {
		select {
		case sub.ch <- ev:
			if ev.Terminal() {
				finished = append(finished, sub)
			}
		default:
			overflowed = append(overflowed, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range overflowed {
		slog.Warn("subscriber too slow, dropping connection", "run_id", ev.RunID)
		b.removeAndClose(ev.RunID, sub, true)
	}
	for _, sub := range finished {
		b.removeAndClose(ev.RunID, sub, false)
	}
}

// SubscriberCount returns the number of active subscribers for a run.
func (b *Broker) SubscriberCount(runID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[runID])
}
