// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package valrange tracks a quantity whose exact value depends on operations
// that are still awaiting confirmation. The true value is always within
// [low, high]: pending additions raise high, pending subtractions lower low.
package valrange

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/meshstake/staker/reverts"
)

// Ordering is the outcome of comparing a range against a point.
type Ordering int

const (
	// Overlap means the point lies within the range and the range is not
	// resolved, so the order cannot be determined yet.
	Overlap Ordering = iota
	Less
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "overlap"
	}
}

// Range is a [low, high] interval. The zero value is the resolved point 0.
type Range struct {
	low  uint256.Int
	high uint256.Int
}

// New returns the range [low, high].
func New(low, high *uint256.Int) (Range, error) {
	if low.Gt(high) {
		return Range{}, reverts.ErrInvalidRange
	}
	return Range{low: *low, high: *high}, nil
}

// NewVal returns the resolved range [v, v].
func NewVal(v *uint256.Int) Range {
	return Range{low: *v, high: *v}
}

func (r *Range) Low() *uint256.Int  { return new(uint256.Int).Set(&r.low) }
func (r *Range) High() *uint256.Int { return new(uint256.Int).Set(&r.high) }

// IsResolved reports whether no operation is pending.
func (r *Range) IsResolved() bool {
	return r.low.Eq(&r.high)
}

// PrepareAdd reserves room for an addition that is not yet confirmed.
func (r *Range) PrepareAdd(v *uint256.Int) error {
	high, overflow := new(uint256.Int).AddOverflow(&r.high, v)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	r.high = *high
	return nil
}

// CommitAdd confirms an addition previously prepared.
func (r *Range) CommitAdd(v *uint256.Int) error {
	low, overflow := new(uint256.Int).AddOverflow(&r.low, v)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	if low.Gt(&r.high) {
		return reverts.ErrInvalidRange
	}
	r.low = *low
	return nil
}

// RollbackAdd withdraws an addition previously prepared.
func (r *Range) RollbackAdd(v *uint256.Int) error {
	high, underflow := new(uint256.Int).SubOverflow(&r.high, v)
	if underflow || high.Lt(&r.low) {
		return reverts.ErrInvalidRange
	}
	r.high = *high
	return nil
}

// PrepareSub reserves a subtraction that is not yet confirmed. It fails when
// even the lowest possible value cannot cover v.
func (r *Range) PrepareSub(v *uint256.Int) error {
	if v.Gt(&r.low) {
		return reverts.ErrInsufficientStake
	}
	r.low.Sub(&r.low, v)
	return nil
}

// CommitSub confirms a subtraction previously prepared.
func (r *Range) CommitSub(v *uint256.Int) error {
	high, underflow := new(uint256.Int).SubOverflow(&r.high, v)
	if underflow || high.Lt(&r.low) {
		return reverts.ErrInvalidRange
	}
	r.high = *high
	return nil
}

// RollbackSub withdraws a subtraction previously prepared.
func (r *Range) RollbackSub(v *uint256.Int) error {
	low, overflow := new(uint256.Int).AddOverflow(&r.low, v)
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	if low.Gt(&r.high) {
		return reverts.ErrInvalidRange
	}
	r.low = *low
	return nil
}

// Sub removes v from both bounds. It is used for confirmed reductions, such
// as slashing, that bypass the prepare/commit cycle.
func (r *Range) Sub(v *uint256.Int) error {
	if v.Gt(&r.low) {
		return reverts.ErrInsufficientStake
	}
	r.low.Sub(&r.low, v)
	r.high.Sub(&r.high, v)
	return nil
}

// CollapseToLow resolves the range to its lower bound.
func (r *Range) CollapseToLow() { r.high = r.low }

// CollapseToHigh resolves the range to its upper bound.
func (r *Range) CollapseToHigh() { r.low = r.high }

// Cmp compares the range against the point v.
func (r *Range) Cmp(v *uint256.Int) Ordering {
	switch {
	case v.Lt(&r.low):
		return Greater
	case v.Gt(&r.high):
		return Less
	case r.IsResolved():
		return Equal
	default:
		return Overlap
	}
}

// MinFree returns how much room is left below total in the worst case.
func (r *Range) MinFree(total *uint256.Int) *uint256.Int {
	if r.high.Gt(total) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(total, &r.high)
}

// MaxFree returns how much room is left below total in the best case.
func (r *Range) MaxFree(total *uint256.Int) *uint256.Int {
	if r.low.Gt(total) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(total, &r.low)
}

func (r Range) String() string {
	if r.IsResolved() {
		return r.low.Dec()
	}
	return fmt.Sprintf("[%s, %s]", r.low.Dec(), r.high.Dec())
}

type rangeRLP struct {
	Low  *uint256.Int
	High *uint256.Int
}

// EncodeRLP implements rlp.Encoder.
func (r Range) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rangeRLP{Low: &r.low, High: &r.high})
}

// DecodeRLP implements rlp.Decoder.
func (r *Range) DecodeRLP(s *rlp.Stream) error {
	var dec rangeRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	if dec.Low.Gt(dec.High) {
		return reverts.ErrInvalidRange
	}
	r.low, r.high = *dec.Low, *dec.High
	return nil
}
