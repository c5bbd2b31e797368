// Package events provides a typed, synchronous publish/subscribe bus.
package events

import (
	"sort"
	"sync"
)

type Bus[T any] struct {
	mu       sync.Mutex
	handlers map[uint64]func(T)
	nextID   uint64
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[uint64]func(T)),
	}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber on the caller's goroutine, in subscription
// order. Handlers may subscribe or unsubscribe while being called.
func (b *Bus[T]) Publish(evt T) {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]func(T), len(ids))
	for i, id := range ids {
		handlers[i] = b.handlers[id]
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// Len reports the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
