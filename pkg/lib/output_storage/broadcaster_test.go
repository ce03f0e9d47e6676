package output_storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recvTimeout = 500 * time.Millisecond

func recv[T any](t *testing.T, ch <-chan T) (T, bool) {
	t.Helper()
	select {
	case v, ok := <-ch:
		return v, ok
	case <-time.After(recvTimeout):
		var zero T
		return zero, false
	}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	subs := make([]chan int, 3)
	for i := range subs {
		var err error
		subs[i], err = b.Subscribe()
		require.NoError(t, err)
	}

	b.Publish(7)
	for i, ch := range subs {
		v, ok := recv(t, ch)
		require.True(t, ok, "subscriber %d got nothing", i)
		assert.Equal(t, 7, v)
	}
}

func TestBroadcaster_StaleValueReplaced(t *testing.T) {
	b := NewBroadcaster[string]()
	defer b.Close()

	lagging, err := b.Subscribe()
	require.NoError(t, err)
	lagging <- "stale"

	b.Publish("fresh")
	require.Eventually(t, func() bool {
		select {
		case v := <-lagging:
			return v == "fresh"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcaster_UnsubscribeKeepsChannelOpen(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	gone, err := b.Subscribe()
	require.NoError(t, err)
	kept, err := b.Subscribe()
	require.NoError(t, err)

	b.Unsubscribe(gone)
	for i := 0; i < 3; i++ {
		b.Publish(i)
		v, ok := recv(t, kept)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	select {
	case v, ok := <-gone:
		t.Fatalf("unsubscribed channel received v=%d ok=%v", v, ok)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_CloseDeliversPendingThenCloses(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, err := b.Subscribe()
	require.NoError(t, err)

	b.Publish(1)
	b.Close()

	v, ok := recv(t, ch)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = recv(t, ch)
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		_, err := b.Subscribe()
		return err == errBroadcasterClosed
	}, time.Second, 5*time.Millisecond)
}
