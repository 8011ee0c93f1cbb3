// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import "github.com/vechain/meshstake/staker/crdt"

type Update struct {
	PubKey      string `json:"pubKey"`
	StartHeight uint64 `json:"startHeight"`
	StartTime   uint64 `json:"startTime"`
}

// Validator is an active validator with its latest key.
type Validator struct {
	Valoper string `json:"valoper"`
	Update
}

// Detail is the full registry state of one validator.
type Detail struct {
	Valoper    string   `json:"valoper"`
	Active     bool     `json:"active"`
	Tombstoned bool     `json:"tombstoned"`
	History    []Update `json:"history"`
}

func convertUpdate(u crdt.ValUpdate) Update {
	return Update{
		PubKey:      u.PubKey,
		StartHeight: u.StartHeight,
		StartTime:   u.StartTime,
	}
}

func convertDetail(valoper string, st *crdt.State) *Detail {
	d := &Detail{
		Valoper:    valoper,
		Active:     st.IsActive(),
		Tombstoned: st.Tombstoned,
		History:    make([]Update, 0, len(st.History)),
	}
	for _, u := range st.History {
		d.History = append(d.History, convertUpdate(u))
	}
	return d
}
