// Package relay provides small push-based observable primitives: a Relay
// carrying a current value that is replayed to new subscribers, and an
// Events stream without replay for one-shot notifications.
//
// Publishers never block: each subscriber has its own FIFO queue drained by
// a dedicated goroutine, and all subscribers observe updates in the order
// they were published.
package relay

import "sync"

// subscriber holds the per-subscription delivery queue.
type subscriber[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool
	out    chan T
	done   chan struct{}
}

func newSubscriber[T any]() *subscriber[T] {
	s := &subscriber[T]{
		out:  make(chan T),
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscriber[T]) push(v T) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, v)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.cond.Signal()
	s.mu.Unlock()
}

// run drains the queue into the out channel until the subscription is
// cancelled. Pending values are dropped on cancellation.
func (s *subscriber[T]) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}

// Relay is an observable cell holding a current value. New subscribers
// immediately receive the value held at subscription time, followed by
// every subsequent published value in order.
type Relay[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[uint64]*subscriber[T]
	next  uint64
}

// New creates a Relay seeded with the given initial value.
func New[T any](initial T) *Relay[T] {
	return &Relay[T]{
		value: initial,
		subs:  make(map[uint64]*subscriber[T]),
	}
}

// Value returns the current value.
func (r *Relay[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Publish replaces the current value and delivers it to all subscribers.
func (r *Relay[T]) Publish(v T) {
	r.mu.Lock()
	r.value = v
	for _, s := range r.subs {
		s.push(v)
	}
	r.mu.Unlock()
}

// Subscribe returns a channel yielding the current value followed by all
// future values, and a cancel function that releases the subscription.
// The channel is closed after cancellation.
func (r *Relay[T]) Subscribe() (<-chan T, func()) {
	s := newSubscriber[T]()

	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = s
	s.push(r.value)
	r.mu.Unlock()

	go s.run()

	cancel := func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
		s.close()
	}
	return s.out, cancel
}

// Events is an observable stream without a current value. Subscribers only
// receive values published after they subscribe.
type Events[T any] struct {
	mu   sync.Mutex
	subs map[uint64]*subscriber[T]
	next uint64
}

// NewEvents creates an empty event stream.
func NewEvents[T any]() *Events[T] {
	return &Events[T]{subs: make(map[uint64]*subscriber[T])}
}

// Publish delivers v to all current subscribers. If no subscriber is
// registered the value is dropped.
func (e *Events[T]) Publish(v T) {
	e.mu.Lock()
	for _, s := range e.subs {
		s.push(v)
	}
	e.mu.Unlock()
}

// Subscribe returns a channel of future events and a cancel function.
func (e *Events[T]) Subscribe() (<-chan T, func()) {
	s := newSubscriber[T]()

	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = s
	e.mu.Unlock()

	go s.run()

	cancel := func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
		s.close()
	}
	return s.out, cancel
}
