// Package lock provides keyed mutual exclusion for read-then-write sequences
// against the record store, which offers no transactions of its own.
package lock

import (
	"context"
	"errors"
	"sync"
)

// Locker serializes work on a key. Acquire blocks until the key is free or ctx
// is done; the returned release func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ErrNotAcquired is returned when ctx ends before the key became free
var ErrNotAcquired = errors.New("lock not acquired")

// Local is a Locker for a single process
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

var _ Locker = &Local{}

// NewLocal returns an in-process Locker
func NewLocal() *Local {
	return &Local{
		slots: make(map[string]*slot),
	}
}

// Acquire implements Locker
func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.leave(key, s)
		return nil, ErrNotAcquired
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.leave(key, s)
		})
	}, nil
}

func (l *Local) leave(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}
