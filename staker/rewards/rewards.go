// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements lazy pro-rata reward accounting. A distribution
// only bumps a per validator points-per-stake counter; each stake holder's share
// is derived on demand from its stake, the counter and its alignment.
package rewards

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/meshstake/staker/reverts"
)

// DefaultPointsScale is the fixed point scale of points per stake.
var DefaultPointsScale = uint256.NewInt(1_000_000_000)

// Distribution is the reward accounting state of one validator.
type Distribution struct {
	TotalStake     uint256.Int
	PointsPerStake uint256.Int
	PointsLeftover uint256.Int
}

// Distribute spreads amount over the current total stake. The remainder of the
// division is carried into the next distribution. With no stake at all the
// whole amount is carried.
func Distribute(d *Distribution, amount, scale *uint256.Int) error {
	points, overflow := new(uint256.Int).MulOverflow(amount, scale)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	if _, overflow := points.AddOverflow(points, &d.PointsLeftover); overflow {
		return reverts.ErrArithmeticOverflow
	}
	if d.TotalStake.IsZero() {
		d.PointsLeftover = *points
		return nil
	}

	delta, leftover := new(uint256.Int).DivMod(points, &d.TotalStake, new(uint256.Int))
	pps, overflow := new(uint256.Int).AddOverflow(&d.PointsPerStake, delta)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	d.PointsPerStake = *pps
	d.PointsLeftover = *leftover
	return nil
}

// AddStake raises the validator's total stake.
func (d *Distribution) AddStake(amount *uint256.Int) error {
	total, overflow := new(uint256.Int).AddOverflow(&d.TotalStake, amount)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	d.TotalStake = *total
	return nil
}

// SubStake lowers the validator's total stake.
func (d *Distribution) SubStake(amount *uint256.Int) error {
	total, underflow := new(uint256.Int).SubOverflow(&d.TotalStake, amount)
	if underflow {
		return reverts.ErrInvariantViolation
	}
	d.TotalStake = *total
	return nil
}

// StakeIncreased keeps new stake from claiming past distributions.
func StakeIncreased(a *Alignment, amount, pps *uint256.Int) error {
	points, err := mulPoints(amount, pps)
	if err != nil {
		return err
	}
	return a.add(points.Neg(points))
}

// StakeDecreased keeps the points earned by stake that is leaving.
func StakeDecreased(a *Alignment, amount, pps *uint256.Int) error {
	points, err := mulPoints(amount, pps)
	if err != nil {
		return err
	}
	return a.add(points)
}

// Claimable returns the reward owed for stake, net of what was withdrawn.
// A negative entitlement means the accounting is corrupt and is reported, not
// clamped.
func Claimable(stake, pps *uint256.Int, a *Alignment, withdrawn, scale *uint256.Int) (*uint256.Int, error) {
	if scale.IsZero() {
		return nil, reverts.ErrInvariantViolation
	}
	points, err := mulPoints(stake, pps)
	if err != nil {
		return nil, err
	}
	points.Add(points, &a.v)
	if points.Sign() < 0 {
		return nil, reverts.ErrInvariantViolation
	}
	points.Quo(points, scale.ToBig())

	total, overflow := uint256.FromBig(points)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	owed, underflow := total.SubOverflow(total, withdrawn)
	if underflow {
		return nil, reverts.ErrInvariantViolation
	}
	return owed, nil
}

func mulPoints(amount, pps *uint256.Int) (*big.Int, error) {
	points, overflow := new(uint256.Int).MulOverflow(amount, pps)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	return points.ToBig(), nil
}
