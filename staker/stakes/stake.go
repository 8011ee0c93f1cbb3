// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/rewards"
	"github.com/vechain/meshstake/staker/valrange"
)

// PendingUnbond is unstaked funds waiting for the unbonding period to pass.
type PendingUnbond struct {
	Amount    uint256.Int
	ReleaseAt uint64
}

// Stake is one user's position with one validator.
type Stake struct {
	Stake valrange.Range
	// PendingUnbonds is sorted by ReleaseAt. AddUnbond keeps it that way.
	PendingUnbonds   []PendingUnbond
	Alignment        rewards.Alignment
	WithdrawnFunds   uint256.Int
	WithdrawnRewards uint256.Int
}

// IsEmpty reports whether the position holds nothing worth keeping.
func (s *Stake) IsEmpty() bool {
	return s.Stake.High().IsZero() &&
		len(s.PendingUnbonds) == 0 &&
		s.Alignment.Int().Sign() == 0
}

// AddUnbond queues amount for release at releaseAt, or at the release time of
// the last queued unbond if that is later. It returns the time used.
func (s *Stake) AddUnbond(amount *uint256.Int, releaseAt uint64) uint64 {
	if n := len(s.PendingUnbonds); n > 0 && s.PendingUnbonds[n-1].ReleaseAt > releaseAt {
		releaseAt = s.PendingUnbonds[n-1].ReleaseAt
	}
	s.PendingUnbonds = append(s.PendingUnbonds, PendingUnbond{Amount: *amount, ReleaseAt: releaseAt})
	return releaseAt
}

// Unbonding returns the sum of all pending unbonds.
func (s *Stake) Unbonding() *uint256.Int {
	total := new(uint256.Int)
	for i := range s.PendingUnbonds {
		total.Add(total, &s.PendingUnbonds[i].Amount)
	}
	return total
}

// ReleasePending drops every unbond due at now and returns their sum. Calling
// it again with the same now releases nothing.
func (s *Stake) ReleasePending(now uint64) (*uint256.Int, error) {
	n := sort.Search(len(s.PendingUnbonds), func(i int) bool {
		return s.PendingUnbonds[i].ReleaseAt > now
	})
	released := new(uint256.Int)
	for i := range s.PendingUnbonds[:n] {
		if _, overflow := released.AddOverflow(released, &s.PendingUnbonds[i].Amount); overflow {
			return nil, reverts.ErrArithmeticOverflow
		}
	}
	withdrawn, overflow := new(uint256.Int).AddOverflow(&s.WithdrawnFunds, released)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	s.WithdrawnFunds = *withdrawn
	s.PendingUnbonds = append([]PendingUnbond(nil), s.PendingUnbonds[n:]...)
	return released, nil
}

// SlashPending cuts ratio off every unbond not yet released at now and
// returns the total taken.
func (s *Stake) SlashPending(now uint64, ratio decimal.Decimal) *uint256.Int {
	total := new(uint256.Int)
	for i := range s.PendingUnbonds {
		unbond := &s.PendingUnbonds[i]
		if unbond.ReleaseAt <= now {
			continue
		}
		cut := Portion(&unbond.Amount, ratio)
		unbond.Amount.Sub(&unbond.Amount, cut)
		total.Add(total, cut)
	}
	return total
}

// Portion returns floor(amount * ratio) for a ratio in [0, 1].
func Portion(amount *uint256.Int, ratio decimal.Decimal) *uint256.Int {
	cut := decimal.NewFromBigInt(amount.ToBig(), 0).Mul(ratio).Floor().BigInt()
	v, overflow := uint256.FromBig(cut)
	if overflow || v.Gt(amount) || cut.Sign() < 0 {
		return new(uint256.Int).Set(amount)
	}
	return v
}
