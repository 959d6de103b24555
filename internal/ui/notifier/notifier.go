// Package notifier fans out selection updates to SSE subscribers.
package notifier

import (
	"sync"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// Kind says what a Message carries.
type Kind string

// Message kinds.
const (
	// KindEvents carries incremental renderer events
	KindEvents Kind = "events"
	// KindReload means the dataset was reloaded; clients re-fetch everything
	KindReload Kind = "reload"
	// KindResync means the listener missed messages; clients re-fetch the selection
	KindResync Kind = "resync"
)

// Message is one update delivered to a listener.
type Message struct {
	Kind   Kind         `json:"kind"`
	Events []core.Event `json:"events,omitempty"`
}

// bufferSize is the number of messages a slow listener may fall behind.
const bufferSize = 32

// Notifier broadcasts messages to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Message]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Message]struct{}),
	}
}

// Subscribe returns a channel that receives messages.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Message {
	ch := make(chan Message, bufferSize)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Message) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Count returns the number of listeners.
func (n *Notifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Emit broadcasts renderer events. It implements core.EventSink.
func (n *Notifier) Emit(events []core.Event) {
	if len(events) == 0 {
		return
	}
	n.Broadcast(Message{Kind: KindEvents, Events: events})
}

// Broadcast sends msg to all listeners without blocking.
// A listener whose buffer is full is drained and sent a single resync message.
func (n *Notifier) Broadcast(msg Message) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case ch <- msg:
		default:
			drain(ch)
			ch <- Message{Kind: KindResync}
		}
	}
}

func drain(ch chan Message) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
