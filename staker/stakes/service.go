// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/storage"
)

const (
	prefixStakes      = "stakes/"
	prefixByValidator = "stakes-validator/"
)

type stakeKey struct {
	user      mesh.Address
	validator string
}

// user ‖ validator; the user part has a fixed length so a user's stakes are
// one contiguous range ordered by validator.
func (k stakeKey) Bytes() []byte {
	return append(k.user.Bytes(), k.validator...)
}

type validatorKey struct {
	validator string
	user      mesh.Address
}

func (k validatorKey) Bytes() []byte {
	return append(validatorPrefix(k.validator), k.user.Bytes()...)
}

func validatorPrefix(validator string) []byte {
	return append(binary.BigEndian.AppendUint16(nil, uint16(len(validator))), validator...)
}

// Entry is a stake together with the validator it is delegated to.
type Entry struct {
	Validator string
	Stake     *Stake
}

// Service stores stakes by (user, validator) and indexes them by validator.
type Service struct {
	stakes      *storage.Mapping[stakeKey, *Stake]
	byValidator *storage.Mapping[validatorKey, bool]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		stakes:      storage.NewMapping[stakeKey, *Stake](sctx, prefixStakes),
		byValidator: storage.NewMapping[validatorKey, bool](sctx, prefixByValidator),
	}
}

// Get returns the stake, empty if none was recorded.
func (s *Service) Get(user mesh.Address, validator string) (*Stake, error) {
	st, err := s.stakes.Get(stakeKey{user, validator})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	return st, nil
}

// Set stores the stake and keeps the validator index in step.
func (s *Service) Set(user mesh.Address, validator string, st *Stake) error {
	if len(validator) > math.MaxUint16 {
		return errors.New("validator id too long")
	}
	if err := s.stakes.Set(stakeKey{user, validator}, st); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	if err := s.byValidator.Set(validatorKey{validator, user}, true); err != nil {
		return errors.Wrap(err, "failed to index stake")
	}
	return nil
}

// ByUser lists the user's stakes ordered by validator, starting after
// startAfter. limit <= 0 means no limit.
func (s *Service) ByUser(user mesh.Address, startAfter string, limit int) ([]Entry, error) {
	r := kv.PrefixRange(user.Bytes())
	if startAfter != "" {
		r.Start = append(stakeKey{user, startAfter}.Bytes(), 0)
	}
	var list []Entry
	err := s.stakes.Scan(r, func(key []byte, st *Stake) (bool, error) {
		list = append(list, Entry{Validator: string(key[mesh.AddressLength:]), Stake: st})
		return limit <= 0 || len(list) < limit, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan user stakes")
	}
	return list, nil
}

// ByValidator returns every user that has staked with the validator.
func (s *Service) ByValidator(validator string) ([]mesh.Address, error) {
	prefix := validatorPrefix(validator)
	var users []mesh.Address
	err := s.byValidator.Scan(kv.PrefixRange(prefix), func(key []byte, _ bool) (bool, error) {
		users = append(users, mesh.BytesToAddress(key[len(prefix):]))
		return true, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan validator stakes")
	}
	return users, nil
}
