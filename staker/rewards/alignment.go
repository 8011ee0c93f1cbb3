// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/meshstake/staker/reverts"
)

// Alignment is the signed per stake correction that cancels out reward points
// accrued before the stake existed (or keeps those accrued by stake that has
// since left). Its magnitude never exceeds 256 bits.
type Alignment struct {
	v big.Int
}

// NewAlignment returns an alignment holding v.
func NewAlignment(v *big.Int) (Alignment, error) {
	var a Alignment
	if v.BitLen() > 256 {
		return a, reverts.ErrArithmeticOverflow
	}
	a.v.Set(v)
	return a, nil
}

// Int returns a copy of the signed value.
func (a *Alignment) Int() *big.Int {
	return new(big.Int).Set(&a.v)
}

func (a *Alignment) String() string {
	return a.v.String()
}

// add applies delta, leaving the alignment unchanged when the result would
// not fit.
func (a *Alignment) add(delta *big.Int) error {
	next := new(big.Int).Add(&a.v, delta)
	if next.BitLen() > 256 {
		return reverts.ErrArithmeticOverflow
	}
	a.v.Set(next)
	return nil
}

type alignmentRLP struct {
	Negative  bool
	Magnitude *uint256.Int
}

// EncodeRLP implements rlp.Encoder.
func (a Alignment) EncodeRLP(w io.Writer) error {
	mag, overflow := uint256.FromBig(new(big.Int).Abs(&a.v))
	if overflow {
		return reverts.ErrArithmeticOverflow
	}
	return rlp.Encode(w, &alignmentRLP{Negative: a.v.Sign() < 0, Magnitude: mag})
}

// DecodeRLP implements rlp.Decoder.
func (a *Alignment) DecodeRLP(s *rlp.Stream) error {
	var dec alignmentRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	a.v.Set(dec.Magnitude.ToBig())
	if dec.Negative {
		a.v.Neg(&a.v)
	}
	return nil
}
