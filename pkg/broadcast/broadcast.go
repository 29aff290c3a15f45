package broadcast

import (
	"context"
	"sync"
)

// Subscriber receives values published by a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed once the
	// subscriber or its broadcaster is closed.
	Receive() <-chan T

	// Close stops delivery. It is idempotent.
	Close() error
}

// Broadcaster fans values out to every live subscriber without blocking the
// publisher.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx is cancelled or
	// Close is called on either side.
	Subscribe(ctx context.Context) Subscriber[T]

	// Publish delivers v to every subscriber with buffer space. A full
	// subscriber misses v but stays subscribed.
	Publish(v T) error

	Close() error
}

type subscriber[T any] struct {
	mu     sync.RWMutex
	ch     chan T
	quit   chan struct{}
	closed bool
	detach func()
}

func newSubscriber[T any](size int) *subscriber[T] {
	return &subscriber[T]{
		ch:   make(chan T, size),
		quit: make(chan struct{}),
	}
}

func (s *subscriber[T]) Receive() <-chan T {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.close()
	if s.detach != nil {
		s.detach()
	}
	return nil
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
		close(s.quit)
	}
}

func (s *subscriber[T]) done() <-chan struct{} {
	return s.quit
}

// send reports false if v was dropped.
func (s *subscriber[T]) send(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}
