// Package auth carries sign-in state changes from the session endpoint to
// background consumers. It replaces a callback-registration model with an
// explicit event stream so consumers own their lifecycle.
package auth

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind discriminates auth-state transitions.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event describes one auth-state change. DeviceID is the guest device the
// user was browsing on before signing in; it is empty when unknown.
type Event struct {
	Kind     EventKind
	UserID   uuid.UUID
	Email    string
	DeviceID string
}

const subscriptionBuffer = 16

// Stream is an in-process fan-out broker. Publish never blocks: a
// subscriber that falls behind loses events rather than stalling the
// publisher.
type Stream struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewStream returns an empty broker.
func NewStream() *Stream {
	return &Stream{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new consumer. The caller must Unsubscribe when done.
func (s *Stream) Subscribe() *Subscription {
	sub := &Subscription{
		stream: s,
		events: make(chan Event, subscriptionBuffer),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(sub.events)
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every live subscriber.
func (s *Stream) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for sub := range s.subs {
		select {
		case sub.events <- ev:
		default:
		}
	}
}

// Close tears down the stream and all subscriptions.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		close(sub.events)
		delete(s.subs, sub)
	}
}

func (s *Stream) remove(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.events)
	}
}

// Subscription is one consumer's handle on the stream.
type Subscription struct {
	stream *Stream
	events chan Event
	once   sync.Once
}

// C returns the event channel. It is closed on Unsubscribe or stream close.
func (s *Subscription) C() <-chan Event {
	return s.events
}

// Unsubscribe detaches from the stream. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.stream.remove(s)
	})
}
