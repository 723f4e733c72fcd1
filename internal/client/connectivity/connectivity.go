// Package connectivity provides the online/offline signal the sync engine reacts to.
package connectivity

import (
	"sync"
)

// Source reports connectivity. Subscribers are notified on transitions only.
type Source interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// broadcaster keeps the current state and fans transitions out to subscribers
type broadcaster struct {
	subs   map[int]func(bool)
	mu     sync.Mutex
	nextID int
	online bool
}

func (b *broadcaster) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

func (b *broadcaster) Subscribe(fn func(online bool)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(bool))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// set updates the state and notifies subscribers outside the lock.
// It reports whether this was a transition.
func (b *broadcaster) set(online bool) bool {
	b.mu.Lock()
	if b.online == online {
		b.mu.Unlock()
		return false
	}
	b.online = online
	subs := make([]func(bool), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
	return true
}

// Manual is a Source whose state is set by the caller.
type Manual struct {
	broadcaster
}

var _ Source = (*Manual)(nil)

// NewManual creates a manual source in the given state
func NewManual(online bool) *Manual {
	m := &Manual{}
	m.online = online
	return m
}

// Set changes the state, notifying subscribers if it differs from the current one
func (m *Manual) Set(online bool) {
	m.set(online)
}
