// Package pubsub provides a latest-value topic that subscribers observe through channels.
package pubsub

import (
	"context"
	"sync"
)

// Topic holds the current value of T and fans every new value out to subscribers.
// A subscriber that falls behind only ever sees the most recent value.
type Topic[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[chan T]struct{}
}

// NewTopic creates a topic whose current value is initial.
func NewTopic[T any](initial T) *Topic[T] {
	return &Topic[T]{
		current: initial,
		subs:    make(map[chan T]struct{}),
	}
}

// Current returns the latest published value.
func (t *Topic[T]) Current() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Publish replaces the current value and notifies subscribers without blocking.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = v
	for ch := range t.subs {
		select {
		case ch <- v:
		default:
			// Drop the stale pending value and replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Subscribe returns a channel that first yields the current value and then every
// published value. The channel is closed once ctx is done.
func (t *Topic[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	t.mu.Lock()
	ch <- t.current
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		delete(t.subs, ch)
		close(ch)
		t.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of active subscriptions.
func (t *Topic[T]) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
