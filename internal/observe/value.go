// Package observe implements a small observable-value primitive: subscribers
// receive the current value immediately (if one was ever set), then every
// subsequent change, in order, exactly once.
package observe

import "sync"

// Value holds the latest value of type T and fans out changes to
// subscribers. The zero state carries no value; subscribers made before the
// first Set only receive changes from that point on.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	set  bool
	subs map[int]*subscriber[T]
	next int
}

func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]*subscriber[T])}
}

// Set stores val as the current value and enqueues it for every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	v.set = true
	for _, s := range v.subs {
		s.push(val)
	}
}

// Get returns the current value and whether one has been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.set
}

// Subscribe registers a new subscriber. Delivery never blocks Set: each
// subscriber owns an unbounded queue drained by its own goroutine.
func (v *Value[T]) Subscribe() *Subscription[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := &subscriber[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan T),
	}
	if v.set {
		s.push(v.cur)
	}

	id := v.next
	v.next++
	v.subs[id] = s
	go s.run()

	return &Subscription[T]{
		C: s.out,
		cancel: func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
			s.stop()
		},
	}
}

// Subscription is one subscriber's view of a Value. Values arrive on C until
// Cancel is called, after which C is closed.
type Subscription[T any] struct {
	C      <-chan T
	cancel func()
	once   sync.Once
}

func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []T
	notify chan struct{}
	done   chan struct{}
	out    chan T
}

func (s *subscriber[T]) push(val T) {
	s.mu.Lock()
	s.queue = append(s.queue, val)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) stop() {
	close(s.done)
}

func (s *subscriber[T]) run() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			val := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- val:
			case <-s.done:
				return
			}
		}
	}
}
