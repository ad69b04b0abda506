package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func TestRelay_Value(t *testing.T) {
	r := New(42)
	assert.Equal(t, 42, r.Value())

	r.Publish(7)
	assert.Equal(t, 7, r.Value())
}

func TestRelay_SubscribeReplaysCurrentValue(t *testing.T) {
	r := New("initial")
	ch, cancel := r.Subscribe()
	defer cancel()

	assert.Equal(t, "initial", recv(t, ch))
}

func TestRelay_DeliversInOrder(t *testing.T) {
	r := New(0)
	ch, cancel := r.Subscribe()
	defer cancel()

	require.Equal(t, 0, recv(t, ch))

	for i := 1; i <= 100; i++ {
		r.Publish(i)
	}
	for i := 1; i <= 100; i++ {
		assert.Equal(t, i, recv(t, ch))
	}
}

func TestRelay_PublishNeverBlocks(t *testing.T) {
	r := New(0)
	_, cancel := r.Subscribe()
	defer cancel()

	// The subscriber channel is never drained; publishes must still return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			r.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestRelay_CancelClosesChannel(t *testing.T) {
	r := New(1)
	ch, cancel := r.Subscribe()
	cancel()

	// Drain until closed.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestRelay_CancelledSubscriberMissesUpdates(t *testing.T) {
	r := New(1)
	ch, cancel := r.Subscribe()
	require.Equal(t, 1, recv(t, ch))
	cancel()

	r.Publish(2)
	assert.Equal(t, 2, r.Value())
}

func TestRelay_MultipleSubscribers(t *testing.T) {
	r := New(0)
	a, cancelA := r.Subscribe()
	defer cancelA()
	b, cancelB := r.Subscribe()
	defer cancelB()

	require.Equal(t, 0, recv(t, a))
	require.Equal(t, 0, recv(t, b))

	r.Publish(5)
	assert.Equal(t, 5, recv(t, a))
	assert.Equal(t, 5, recv(t, b))
}

func TestEvents_NoReplay(t *testing.T) {
	e := NewEvents[string]()
	e.Publish("before")

	ch, cancel := e.Subscribe()
	defer cancel()

	e.Publish("after")
	assert.Equal(t, "after", recv(t, ch))
}
