// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txs

import (
	"github.com/holiman/uint256"

	"github.com/vechain/meshstake/mesh"
)

// Kind is the operation an in-flight transaction is waiting to confirm.
type Kind uint8

const (
	KindStake Kind = iota + 1
	KindUnstake
)

func (k Kind) String() string {
	switch k {
	case KindStake:
		return "stake"
	case KindUnstake:
		return "unstake"
	default:
		return "unknown"
	}
}

// Tx is a stake change sent to the remote side and not yet acknowledged.
type Tx struct {
	ID        uint64
	Kind      Kind
	Amount    uint256.Int
	User      mesh.Address
	Validator string
}
