// Package events is the in-process signal bus between live views: the
// session prompt, the unread badge and the notification list.
//
// The set of events is closed. Handlers run synchronously on the
// publishing goroutine and may publish or subscribe themselves.
package events

import (
	"sync"
	"time"
)

// Event is implemented only by the types in this package.
type Event interface {
	event()
}

// LoginChanged is published after the session credential was written or
// purged.
type LoginChanged struct{}

// NotificationsUpdated is published after a successful notification fetch.
type NotificationsUpdated struct {
	Count int
}

// NotificationsRead is published when the notification view sets the
// read-marker.
type NotificationsRead struct {
	At time.Time
}

// NotificationsRefreshRequested asks the notification view to re-fetch.
type NotificationsRefreshRequested struct{}

// StorageChanged is published when another connection committed to the
// local store.
type StorageChanged struct {
	Version int64
}

func (LoginChanged) event()                  {}
func (NotificationsUpdated) event()          {}
func (NotificationsRead) event()             {}
func (NotificationsRefreshRequested) event() {}
func (StorageChanged) event()                {}

type subscriber struct {
	id uint64
	fn func(Event)
}

type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Publish delivers e to every subscriber registered at the time of the
// call, in subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn(e)
	}
}

func (b *Bus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Subscribe registers fn for events of type E and returns the function
// that removes it.
//
//	unsub := events.Subscribe(bus, func(e events.NotificationsUpdated) {
//	    badge.Set(e.Count)
//	})
//	defer unsub()
func Subscribe[E Event](b *Bus, fn func(E)) func() {
	return b.subscribe(func(e Event) {
		if v, ok := e.(E); ok {
			fn(v)
		}
	})
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
