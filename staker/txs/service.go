// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txs

import (
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/storage"
)

const (
	prefixTxs     = "txs/"
	prefixByUser  = "txs-user/"
	slotIDCounter = "txs-counter"
)

type userTxKey struct {
	user mesh.Address
	id   uint64
}

func (k userTxKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.user.Bytes(), k.id)
}

// Service is the ledger of in-flight transactions. Entries are removed on
// commit or rollback, so presence means pending.
type Service struct {
	txs       *storage.Mapping[storage.Uint64Key, *Tx]
	byUser    *storage.Mapping[userTxKey, Kind]
	idCounter *storage.Raw[uint64]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		txs:       storage.NewMapping[storage.Uint64Key, *Tx](sctx, prefixTxs),
		byUser:    storage.NewMapping[userTxKey, Kind](sctx, prefixByUser),
		idCounter: storage.NewRaw[uint64](sctx, slotIDCounter),
	}
}

// Begin records a new pending transaction and returns its id. Ids start at 1
// and are never reused.
func (s *Service) Begin(kind Kind, amount *uint256.Int, user mesh.Address, validator string) (uint64, error) {
	id, err := s.newTxID()
	if err != nil {
		return 0, err
	}
	tx := &Tx{
		ID:        id,
		Kind:      kind,
		Amount:    *amount,
		User:      user,
		Validator: validator,
	}
	if err := s.txs.Set(storage.Uint64Key(id), tx); err != nil {
		return 0, errors.Wrap(err, "failed to set tx")
	}
	if err := s.byUser.Set(userTxKey{user, id}, kind); err != nil {
		return 0, errors.Wrap(err, "failed to index tx")
	}
	return id, nil
}

// Get returns the pending transaction with the given id.
func (s *Service) Get(id uint64) (*Tx, error) {
	exists, err := s.txs.Exists(storage.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tx")
	}
	if !exists {
		return nil, reverts.ErrUnknownTransaction
	}
	return s.txs.Get(storage.Uint64Key(id))
}

// Commit removes the transaction and returns it for the caller to apply.
func (s *Service) Commit(id uint64) (*Tx, error) {
	return s.remove(id)
}

// Rollback removes the transaction and returns it for the caller to undo.
func (s *Service) Rollback(id uint64) (*Tx, error) {
	return s.remove(id)
}

func (s *Service) remove(id uint64) (*Tx, error) {
	tx, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.txs.Delete(storage.Uint64Key(id))
	s.byUser.Delete(userTxKey{tx.User, id})
	return tx, nil
}

// ByUser returns the user's pending transactions in id order.
func (s *Service) ByUser(user mesh.Address) ([]*Tx, error) {
	var ids []uint64
	err := s.byUser.Scan(kv.PrefixRange(user.Bytes()), func(key []byte, _ Kind) (bool, error) {
		ids = append(ids, binary.BigEndian.Uint64(key[mesh.AddressLength:]))
		return true, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan user txs")
	}
	list := make([]*Tx, 0, len(ids))
	for _, id := range ids {
		tx, err := s.Get(id)
		if err != nil {
			return nil, errors.Wrapf(err, "user index points at tx %d", id)
		}
		list = append(list, tx)
	}
	return list, nil
}

// Count returns the number of pending transactions.
func (s *Service) Count() (int, error) {
	n := 0
	err := s.txs.Scan(kv.Range{}, func([]byte, *Tx) (bool, error) {
		n++
		return true, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to count txs")
	}
	return n, nil
}

// All lists pending transactions a page at a time. Ascending pages start after
// id startAfter; descending pages start below it. startAfter 0 starts at the
// first (or newest) entry.
func (s *Service) All(startAfter uint64, limit int, desc bool) ([]*Tx, error) {
	if limit <= 0 {
		return nil, nil
	}
	if desc {
		return s.allDesc(startAfter, limit)
	}
	if startAfter == math.MaxUint64 {
		return nil, nil
	}
	var list []*Tx
	r := kv.Range{Start: storage.Uint64Key(startAfter + 1).Bytes()}
	err := s.txs.Scan(r, func(_ []byte, tx *Tx) (bool, error) {
		list = append(list, tx)
		return len(list) < limit, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan txs")
	}
	return list, nil
}

// allDesc walks id windows downwards from before, doubling the window each
// step, so a page costs about the span of ids it covers rather than the whole
// ledger.
func (s *Service) allDesc(before uint64, limit int) ([]*Tx, error) {
	if before == 0 {
		last, err := s.idCounter.Get()
		if err != nil {
			return nil, err
		}
		if last == math.MaxUint64 {
			return nil, reverts.ErrArithmeticOverflow
		}
		before = last + 1
	}

	var list []*Tx
	width := uint64(limit)
	for hi := before; hi > 1 && len(list) < limit; {
		lo := uint64(1)
		if hi-1 > width {
			lo = hi - width
		}
		var window []*Tx
		r := kv.Range{Start: storage.Uint64Key(lo).Bytes(), Limit: storage.Uint64Key(hi).Bytes()}
		if err := s.txs.Scan(r, func(_ []byte, tx *Tx) (bool, error) {
			window = append(window, tx)
			return true, nil
		}); err != nil {
			return nil, errors.Wrap(err, "failed to scan txs")
		}
		for i := len(window) - 1; i >= 0 && len(list) < limit; i-- {
			list = append(list, window[i])
		}
		hi = lo
		if width < math.MaxUint64/2 {
			width *= 2
		}
	}
	return list, nil
}

func (s *Service) newTxID() (uint64, error) {
	id, err := s.idCounter.Get()
	if err != nil {
		return 0, err
	}
	if id == math.MaxUint64 {
		return 0, reverts.ErrArithmeticOverflow
	}
	id++
	if err := s.idCounter.Set(id); err != nil {
		return 0, err
	}
	return id, nil
}
