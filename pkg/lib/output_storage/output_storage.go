// Package output_storage keeps everything a child wrote to one of its
// output pipes and lets any number of readers replay and follow it.
package output_storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

type node struct {
	data []byte
	next atomic.Pointer[node]
}

// Storage is an append-only linked list of chunks. Readers walk it without
// locks; appends are serialized.
type Storage struct {
	head *node // sentinel

	mu     sync.Mutex
	tail   *node
	closed bool

	notify *Broadcaster[struct{}]
}

// New returns an empty storage, open for appends until Close.
func New() *Storage {
	sentinel := &node{}
	return &Storage{
		head:   sentinel,
		tail:   sentinel,
		notify: NewBroadcaster[struct{}](),
	}
}

// Append stores data as is. The caller hands over ownership of the slice.
// Appends after Close are dropped.
func (s *Storage) Append(data []byte) {
	if s == nil || len(data) == 0 {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		lib.Logger().Warn("output dropped after close", "bytes", len(data))
		return
	}
	n := &node{data: data}
	s.tail.next.Store(n)
	s.tail = n
	s.notify.Publish(struct{}{})
	s.mu.Unlock()
}

// Write implements io.Writer. Unlike Append it copies p.
func (s *Storage) Write(p []byte) (int, error) {
	s.Append(append([]byte(nil), p...))
	return len(p), nil
}

// Close marks the end of the output. Followers drain what is stored and
// then see their channel closed. Close is idempotent.
func (s *Storage) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.notify.Close()
}

// Subscribe replays the stored chunks into the returned channel and keeps
// following new ones until the storage is closed or ctx ends, then closes
// the channel.
func (s *Storage) Subscribe(ctx context.Context, capacity int) <-chan []byte {
	ch := make(chan []byte, capacity)
	wake, err := s.notify.Subscribe()
	if err != nil {
		wake = nil
	}
	go s.follow(ctx, wake, ch)
	return ch
}

func (s *Storage) follow(ctx context.Context, wake chan struct{}, ch chan<- []byte) {
	defer close(ch)
	if wake != nil {
		defer s.notify.Unsubscribe(wake)
	}

	prev := s.head
	for {
		cur := prev.next.Load()
		if cur == nil {
			if wake == nil {
				return
			}
			select {
			case _, ok := <-wake:
				if !ok {
					// Closed: what was appended before Close is already
					// linked, drain it on the next passes.
					wake = nil
				}
			case <-ctx.Done():
				return
			}
			continue
		}
		select {
		case ch <- cur.data:
		case <-ctx.Done():
			return
		}
		prev = cur
	}
}

// ForEach calls fn for each stored chunk in order until fn returns false.
func (s *Storage) ForEach(fn func([]byte) bool) {
	if s == nil || fn == nil {
		return
	}
	for cur := s.head.next.Load(); cur != nil; cur = cur.next.Load() {
		if !fn(cur.data) {
			return
		}
	}
}

// Bytes returns a concatenated copy of everything stored so far.
func (s *Storage) Bytes() []byte {
	var out []byte
	s.ForEach(func(b []byte) bool {
		out = append(out, b...)
		return true
	})
	return out
}

func (s *Storage) String() string {
	return string(s.Bytes())
}
