package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Count())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Count())

	// channel is closed
	_, ok := <-ch
	assert.False(t, ok)

	// second unsubscribe is a no-op
	n.Unsubscribe(ch)
}

func receive(t *testing.T, ch chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestNotifier_Emit(t *testing.T) {
	n := New()
	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	events := []core.Event{{Type: core.EventAddNode, Node: "A"}}
	n.Emit(events)

	for _, ch := range []chan Message{ch1, ch2} {
		msg := receive(t, ch)
		assert.Equal(t, KindEvents, msg.Kind)
		assert.Equal(t, events, msg.Events)
	}
}

func TestNotifier_EmitEmptyIsSilent(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Emit(nil)
	assert.Empty(t, ch)
}

func TestNotifier_SlowListenerGetsResync(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	for i := 0; i < bufferSize+5; i++ {
		n.Emit([]core.Event{{Type: core.EventAddNode, Node: "A"}})
	}

	// everything buffered before the overflow was dropped
	msg := receive(t, ch)
	assert.Equal(t, KindResync, msg.Kind)
	assert.LessOrEqual(t, len(ch), 4)
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Broadcast(Message{Kind: KindReload})
			n.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Count())
}
