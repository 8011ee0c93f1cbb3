// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Signal a rendezvous point for goroutines waiting for or announcing the occurrence of an event.
// Every broadcast carries a value. Being channel based, waiting can be combined with other cases
// in a select.
type Signal[T any] struct {
	l   sync.Mutex
	cur *round[T]
}

// round is one pending broadcast. ch is closed once value is final.
type round[T any] struct {
	ch    chan struct{}
	value T
}

func (s *Signal[T]) init() {
	if s.cur == nil {
		s.cur = &round[T]{ch: make(chan struct{})}
	}
}

// Broadcast wakes all goroutines that are waiting on s and hands them v.
func (s *Signal[T]) Broadcast(v T) {
	s.l.Lock()
	s.init()
	r := s.cur
	r.value = v
	s.cur = &round[T]{ch: make(chan struct{})}
	s.l.Unlock()

	close(r.ch)
}

// NewWaiter create a Waiter that observes broadcasts made from now on.
func (s *Signal[T]) NewWaiter() *Waiter[T] {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	return &Waiter[T]{s: s, r: s.cur}
}

// Waiter follows the broadcasts of a Signal. A waiter that falls behind sees
// the first broadcast it missed and skips the rest.
type Waiter[T any] struct {
	s *Signal[T]
	r *round[T]
}

// C returns a channel closed by the next broadcast not yet consumed.
func (w *Waiter[T]) C() <-chan struct{} {
	return w.r.ch
}

// Value blocks until C is closed, returns the broadcast value and moves the
// waiter on to the latest pending broadcast.
func (w *Waiter[T]) Value() T {
	<-w.r.ch
	v := w.r.value

	w.s.l.Lock()
	w.r = w.s.cur
	w.s.l.Unlock()
	return v
}
