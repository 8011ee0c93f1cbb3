// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package crdt replicates the remote validator set. Every validator's state is
// a join semilattice: applying the same events in any order, any number of
// times, yields the same state. Removal is final.
package crdt

import (
	"cmp"
	"slices"
)

// ValUpdate is one announcement of a validator's signing key.
type ValUpdate struct {
	PubKey      string
	StartHeight uint64
	StartTime   uint64
}

// compare orders updates newest first; ties are broken on every field so the
// order is total.
func compare(a, b ValUpdate) int {
	return cmp.Or(
		cmp.Compare(b.StartHeight, a.StartHeight),
		cmp.Compare(b.StartTime, a.StartTime),
		cmp.Compare(b.PubKey, a.PubKey),
	)
}

// State is the replicated state of one validator. The zero value means the
// validator was never seen.
type State struct {
	Tombstoned bool
	// History is sorted newest first and free of duplicates.
	History []ValUpdate
}

// IsActive reports whether the validator was added and not removed.
func (s State) IsActive() bool {
	return !s.Tombstoned && len(s.History) > 0
}

// Exists reports whether any event was ever applied.
func (s State) Exists() bool {
	return s.Tombstoned || len(s.History) > 0
}

// At returns the key in effect at height: the newest update that started at
// or below it.
func (s State) At(height uint64) (ValUpdate, bool) {
	for _, u := range s.History {
		if u.StartHeight <= height {
			return u, true
		}
	}
	return ValUpdate{}, false
}

// EventKind distinguishes additions from removals.
type EventKind uint8

const (
	EventAdd EventKind = iota + 1
	EventRemove
)

// Event is a single replicated change.
type Event struct {
	Kind   EventKind
	Update ValUpdate
}

// Merge applies e to s and returns the result. s is not modified.
func Merge(s State, e Event) State {
	if s.Tombstoned {
		return State{Tombstoned: true}
	}
	switch e.Kind {
	case EventRemove:
		return State{Tombstoned: true}
	case EventAdd:
		history := make([]ValUpdate, 0, len(s.History)+1)
		history = append(history, s.History...)
		history = append(history, e.Update)
		slices.SortFunc(history, compare)
		return State{History: slices.Compact(history)}
	default:
		return s
	}
}

// Join combines two replicas of the same validator.
func Join(a, b State) State {
	if a.Tombstoned || b.Tombstoned {
		return State{Tombstoned: true}
	}
	s := a
	for _, u := range b.History {
		s = Merge(s, Event{Kind: EventAdd, Update: u})
	}
	return s
}
