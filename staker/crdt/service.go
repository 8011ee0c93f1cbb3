// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package crdt

import (
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/staker/storage"
)

const prefixValidators = "validators/"

// Validator is an active validator with its most recent key.
type Validator struct {
	Valoper string
	Latest  ValUpdate
}

// Service is the persisted validator registry.
type Service struct {
	validators *storage.Mapping[storage.StringKey, *State]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		validators: storage.NewMapping[storage.StringKey, *State](sctx, prefixValidators),
	}
}

// Get returns the validator's state, the zero State if never seen.
func (s *Service) Get(valoper string) (*State, error) {
	st, err := s.validators.Get(storage.StringKey(valoper))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	return st, nil
}

func (s *Service) apply(valoper string, e Event) error {
	st, err := s.Get(valoper)
	if err != nil {
		return err
	}
	next := Merge(*st, e)
	if err := s.validators.Set(storage.StringKey(valoper), &next); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

// ApplyAdd records an announcement. It has no effect on a removed validator.
func (s *Service) ApplyAdd(valoper string, update ValUpdate) error {
	return s.apply(valoper, Event{Kind: EventAdd, Update: update})
}

// ApplyRemove tombstones the validator, whether or not it was seen before.
func (s *Service) ApplyRemove(valoper string) error {
	return s.apply(valoper, Event{Kind: EventRemove})
}

func (s *Service) IsActive(valoper string) (bool, error) {
	st, err := s.Get(valoper)
	if err != nil {
		return false, err
	}
	return st.IsActive(), nil
}

// ActiveAt returns the key the validator used at height.
func (s *Service) ActiveAt(valoper string, height uint64) (ValUpdate, bool, error) {
	st, err := s.Get(valoper)
	if err != nil {
		return ValUpdate{}, false, err
	}
	if !st.IsActive() {
		return ValUpdate{}, false, nil
	}
	u, ok := st.At(height)
	return u, ok, nil
}

// ListActive returns active validators in ascending operator order, starting
// after startAfter. limit <= 0 means no limit.
func (s *Service) ListActive(startAfter string, limit int) ([]Validator, error) {
	var r kv.Range
	if startAfter != "" {
		r.Start = append([]byte(startAfter), 0)
	}
	var list []Validator
	err := s.validators.Scan(r, func(key []byte, st *State) (bool, error) {
		if !st.IsActive() {
			return true, nil
		}
		list = append(list, Validator{Valoper: string(key), Latest: st.History[0]})
		return limit <= 0 || len(list) < limit, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan validators")
	}
	return list, nil
}
