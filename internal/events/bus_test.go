package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signal struct{ status int }

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	bus := NewBus[signal]()

	var got []string
	bus.Subscribe(func(s signal) { got = append(got, "first") })
	bus.Subscribe(func(s signal) { got = append(got, "second") })

	bus.Publish(signal{status: 401})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus[signal]()
	assert.NotPanics(t, func() { bus.Publish(signal{}) })
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus[signal]()

	calls := 0
	unsubscribe := bus.Subscribe(func(signal) { calls++ })
	bus.Publish(signal{})
	unsubscribe()
	unsubscribe()
	bus.Publish(signal{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}

func TestEachPublishIsDelivered(t *testing.T) {
	bus := NewBus[signal]()

	var statuses []int
	bus.Subscribe(func(s signal) { statuses = append(statuses, s.status) })

	bus.Publish(signal{status: 401})
	bus.Publish(signal{status: 403})

	assert.Equal(t, []int{401, 403}, statuses)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewBus[signal]()

	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(signal) {
		calls++
		unsubscribe()
	})

	bus.Publish(signal{})
	bus.Publish(signal{})

	assert.Equal(t, 1, calls)
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus[signal]()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(func(signal) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(signal{status: 403})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, calls)
}
