package output_storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunks(s *Storage) []string {
	var out []string
	s.ForEach(func(b []byte) bool {
		out = append(out, string(b))
		return true
	})
	return out
}

func TestStorage_Empty(t *testing.T) {
	s := New()
	defer s.Close()

	assert.Empty(t, chunks(s))
	assert.Empty(t, s.Bytes())
	assert.Equal(t, "", s.String())
}

func TestStorage_AppendKeepsChunkBoundaries(t *testing.T) {
	s := New()
	defer s.Close()
	s.Append([]byte("a"))
	s.Append(nil)
	s.Append([]byte("bc"))
	s.Append([]byte("d"))

	assert.Equal(t, []string{"a", "bc", "d"}, chunks(s))
	assert.Equal(t, "abcd", string(s.Bytes()))

	var seen []string
	s.ForEach(func(b []byte) bool {
		seen = append(seen, string(b))
		return len(seen) < 2
	})
	assert.Equal(t, []string{"a", "bc"}, seen)
}

func TestStorage_NilReceiver(t *testing.T) {
	var s *Storage
	assert.NotPanics(t, func() {
		s.ForEach(nil)
		s.ForEach(func([]byte) bool {
			t.Error("iterated a nil storage")
			return true
		})
		s.Append([]byte("x"))
		s.Close()
	})
	assert.Empty(t, s.Bytes())
}

func TestStorage_AppendTakesOwnership(t *testing.T) {
	s := New()
	defer s.Close()
	data := []byte("abc")
	s.Append(data)
	data[0] = 'z'
	assert.Equal(t, "zbc", s.String())
}

func TestStorage_WriteCopies(t *testing.T) {
	s := New()
	defer s.Close()
	buf := []byte("abc")
	n, err := s.Write(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	buf[0] = 'z'
	assert.Equal(t, "abc", s.String())
}

func TestStorage_AppendAfterCloseDropped(t *testing.T) {
	s := New()
	s.Append([]byte("a"))
	s.Close()
	s.Close()
	s.Append([]byte("b"))
	assert.Equal(t, "a", s.String())
}

func TestSubscribe_BacklogThenLive(t *testing.T) {
	s := New()
	defer s.Close()
	s.Append([]byte("a"))
	s.Append([]byte("b"))

	ch := s.Subscribe(context.Background(), 4)
	for _, want := range []string{"a", "b"} {
		v, ok := recv(t, ch)
		require.True(t, ok)
		assert.Equal(t, want, string(v))
	}

	select {
	case v := <-ch:
		t.Fatalf("unexpected chunk %q before any append", v)
	case <-time.After(50 * time.Millisecond):
	}

	s.Append([]byte("c"))
	v, ok := recv(t, ch)
	require.True(t, ok)
	assert.Equal(t, "c", string(v))
}

func TestSubscribe_ClosesWithStorage(t *testing.T) {
	s := New()
	s.Append([]byte("x"))
	ch := s.Subscribe(context.Background(), 1)

	v, ok := recv(t, ch)
	require.True(t, ok)
	assert.Equal(t, "x", string(v))

	s.Close()
	_, ok = recv(t, ch)
	assert.False(t, ok)
}

func TestSubscribe_ContextCancel(t *testing.T) {
	s := New()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx, 0)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "chunk delivered after cancel")
	case <-time.After(recvTimeout):
		t.Fatal("subscription still open after cancel")
	}
}

func TestSubscribe_DrainsAppendsRacingClose(t *testing.T) {
	s := New()
	ch := s.Subscribe(context.Background(), 0)
	for i := 0; i < 100; i++ {
		s.Append([]byte{'x'})
	}
	s.Close()

	assert.Len(t, collect(ch), 100)
}

func TestSubscribe_AfterCloseReplays(t *testing.T) {
	s := New()
	s.Append([]byte("done"))
	s.Close()

	assert.Equal(t, "done", string(collect(s.Subscribe(context.Background(), 1))))
}
