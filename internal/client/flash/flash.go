// Package flash holds the transient messages of the client: success toasts
// after a mutation and the error banner shown when a list falls back to
// local data. A message replaces the previous one and dismisses itself
// after its time to live.
package flash

import (
	"sync"
	"time"
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

type Message struct {
	Kind      Kind
	Text      string
	ShownAt   time.Time
	ExpiresAt time.Time
}

type Flash struct {
	mu      sync.Mutex
	current *Message
	timer   *time.Timer
	now     func() time.Time
}

func New() *Flash {
	return &Flash{now: time.Now}
}

// Show replaces the current message. A non-positive ttl keeps the message
// until Dismiss or the next Show.
func (f *Flash) Show(kind Kind, text string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	now := f.now()
	msg := &Message{Kind: kind, Text: text, ShownAt: now}
	f.current = msg

	if ttl > 0 {
		msg.ExpiresAt = now.Add(ttl)
		f.timer = time.AfterFunc(ttl, func() { f.expire(msg) })
	}
}

func (f *Flash) Success(text string, ttl time.Duration) { f.Show(KindSuccess, text, ttl) }

func (f *Flash) Error(text string, ttl time.Duration) { f.Show(KindError, text, ttl) }

func (f *Flash) expire(msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == msg {
		f.current = nil
		f.timer = nil
	}
}

// Current returns the message on display, if any.
func (f *Flash) Current() (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Message{}, false
	}
	return *f.current, true
}

// Take returns the message on display and dismisses it.
func (f *Flash) Take() (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Message{}, false
	}
	msg := *f.current
	f.dismissLocked()
	return msg, true
}

func (f *Flash) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissLocked()
}

func (f *Flash) dismissLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.current = nil
}
