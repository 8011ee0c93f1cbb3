// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/rewards"
	"github.com/vechain/meshstake/staker/stakes"
	"github.com/vechain/meshstake/staker/txs"
)

//
// Getters - no state change
//

// Stake returns the user's position with validator, empty if none.
func (s *Staker) Stake(user mesh.Address, validator string) (st *stakes.Stake, err error) {
	err = s.view(func(svc *services) error {
		st, err = svc.stakes.Get(user, validator)
		return err
	})
	return
}

// Stakes pages through the user's positions in validator order.
func (s *Staker) Stakes(user mesh.Address, startAfter string, limit int) (list []stakes.Entry, err error) {
	err = s.view(func(svc *services) error {
		list, err = svc.stakes.ByUser(user, startAfter, limit)
		return err
	})
	return
}

// Distribution returns the reward accounting of validator.
func (s *Staker) Distribution(validator string) (dist *rewards.Distribution, err error) {
	err = s.view(func(svc *services) error {
		dist, err = svc.rewards.Get(validator)
		return err
	})
	return
}

// PendingTx returns the in-flight transaction id.
func (s *Staker) PendingTx(id uint64) (tx *txs.Tx, err error) {
	err = s.view(func(svc *services) error {
		tx, err = svc.txs.Get(id)
		return err
	})
	return
}

// PendingTxs pages through in-flight transactions, newest first when desc.
func (s *Staker) PendingTxs(startAfter uint64, limit int, desc bool) (list []*txs.Tx, err error) {
	err = s.view(func(svc *services) error {
		list, err = svc.txs.All(startAfter, limit, desc)
		return err
	})
	return
}

// PendingTxsByUser returns the user's in-flight transactions in id order.
func (s *Staker) PendingTxsByUser(user mesh.Address) (list []*txs.Tx, err error) {
	err = s.view(func(svc *services) error {
		list, err = svc.txs.ByUser(user)
		return err
	})
	return
}
