package router

import "sync"

// Navigator tracks the single current state of the panel.
type Navigator struct {
	mu        sync.RWMutex
	table     *Table
	current   Match
	listeners []func(from, to Match)

	// pending transitions not yet delivered; one goroutine drains them at a
	// time, in the order the state changed.
	pending    []transition
	delivering bool
}

type transition struct {
	from, to Match
}

// NewNavigator starts at the table's otherwise path.
func NewNavigator(table *Table) *Navigator {
	current, _ := table.Resolve(table.Otherwise())
	return &Navigator{
		table:   table,
		current: current,
	}
}

func (n *Navigator) Table() *Table {
	return n.table
}

func (n *Navigator) Current() Match {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// OnTransition registers fn to run after every state change. Listeners see
// transitions in the order they happened. A transition made while another is
// being delivered (including from inside a listener) is queued and delivered
// by the goroutine already delivering.
func (n *Navigator) OnTransition(fn func(from, to Match)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// Navigate moves to the state matching raw, or to the otherwise path. The
// returned match is the new current state.
func (n *Navigator) Navigate(raw string) (Match, bool) {
	to := n.table.ResolveOrDefault(raw)
	return to, n.move(to)
}

// TransitionTo moves to the named state. Moving to the current state with the
// same params is a no-op and reports false.
func (n *Navigator) TransitionTo(name string, params Params) (bool, error) {
	to, err := n.table.Target(name, params)
	if err != nil {
		return false, err
	}
	return n.move(to), nil
}

func (n *Navigator) move(to Match) bool {
	n.mu.Lock()
	from := n.current
	if from.same(to) {
		n.mu.Unlock()
		return false
	}
	n.current = to
	n.pending = append(n.pending, transition{from: from, to: to})
	if n.delivering {
		n.mu.Unlock()
		return true
	}
	n.delivering = true
	n.mu.Unlock()

	n.deliver()
	return true
}

func (n *Navigator) deliver() {
	for {
		n.mu.Lock()
		if len(n.pending) == 0 {
			n.delivering = false
			n.mu.Unlock()
			return
		}
		next := n.pending[0]
		n.pending = n.pending[1:]
		listeners := append([]func(from, to Match){}, n.listeners...)
		n.mu.Unlock()

		for _, fn := range listeners {
			fn(next.from, next.to)
		}
	}
}
