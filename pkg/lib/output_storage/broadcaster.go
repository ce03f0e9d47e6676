package output_storage

import (
	"errors"
	"sync"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

var errBroadcasterClosed = errors.New("broadcaster is closed")

// Broadcaster fans values out to subscribers. Delivery never blocks: a
// subscriber that has not drained its single slot loses the stale value in
// favour of the newest one, so it is only suited to wake-up signals.
type Broadcaster[T any] struct {
	in chan T

	mu     sync.Mutex
	subs   map[chan T]struct{}
	closed bool
}

// NewBroadcaster starts the fan-out goroutine. It runs until Close.
func NewBroadcaster[T any]() *Broadcaster[T] {
	b := &Broadcaster[T]{
		in:   make(chan T, 1),
		subs: make(map[chan T]struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster[T]) run() {
	for msg := range b.in {
		b.mu.Lock()
		subs := make([]chan T, 0, len(b.subs))
		for s := range b.subs {
			subs = append(subs, s)
		}
		b.mu.Unlock()

		for _, s := range subs {
			replace(s, msg)
		}
	}

	b.mu.Lock()
	for s := range b.subs {
		close(s)
	}
	b.subs = nil
	b.closed = true
	b.mu.Unlock()
	lib.Logger().Debug("broadcaster stopped")
}

// replace puts msg into a one-slot channel, evicting the queued value if
// there is one. Only safe with a single sender per channel.
func replace[T any](ch chan T, msg T) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- msg
}

// Close stops the broadcaster and closes every subscriber channel once the
// pending value has been delivered. Publish must not be called afterwards.
func (b *Broadcaster[T]) Close() {
	close(b.in)
}

// Subscribe registers a new one-slot channel. It fails once the broadcaster
// has shut down.
func (b *Broadcaster[T]) Subscribe() (chan T, error) {
	ch := make(chan T, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errBroadcasterClosed
	}
	b.subs[ch] = struct{}{}
	return ch, nil
}

// Unsubscribe stops deliveries to ch. The channel is left open since the
// fan-out goroutine may hold it; a value already in flight can still land.
func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		delete(b.subs, ch)
	}
}

// Publish hands msg to the fan-out goroutine without blocking on slow
// subscribers.
func (b *Broadcaster[T]) Publish(msg T) {
	replace(b.in, msg)
}
