// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txs

import "github.com/vechain/meshstake/staker/txs"

// Tx is an in-flight stake change awaiting its ack.
type Tx struct {
	ID        uint64 `json:"id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	User      string `json:"user"`
	Validator string `json:"validator"`
}

func convertTx(tx *txs.Tx) *Tx {
	return &Tx{
		ID:        tx.ID,
		Kind:      tx.Kind.String(),
		Amount:    tx.Amount.Dec(),
		User:      tx.User.String(),
		Validator: tx.Validator,
	}
}

func convertTxs(list []*txs.Tx) []*Tx {
	out := make([]*Tx, 0, len(list))
	for _, tx := range list {
		out = append(out, convertTx(tx))
	}
	return out
}
