// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import "github.com/vechain/meshstake/staker/stakes"

type Unbond struct {
	Amount    string `json:"amount"`
	ReleaseAt uint64 `json:"releaseAt"`
}

// Stake is a user's position with one validator. Low is the committed stake,
// High additionally counts in-flight stakes.
type Stake struct {
	Validator        string   `json:"validator"`
	Low              string   `json:"low"`
	High             string   `json:"high"`
	PendingUnbonds   []Unbond `json:"pendingUnbonds"`
	WithdrawnFunds   string   `json:"withdrawnFunds"`
	WithdrawnRewards string   `json:"withdrawnRewards"`
}

func convertStake(validator string, st *stakes.Stake) *Stake {
	low, high := st.Stake.Low(), st.Stake.High()
	out := &Stake{
		Validator:        validator,
		Low:              low.Dec(),
		High:             high.Dec(),
		PendingUnbonds:   make([]Unbond, 0, len(st.PendingUnbonds)),
		WithdrawnFunds:   st.WithdrawnFunds.Dec(),
		WithdrawnRewards: st.WithdrawnRewards.Dec(),
	}
	for _, u := range st.PendingUnbonds {
		out.PendingUnbonds = append(out.PendingUnbonds, Unbond{Amount: u.Amount.Dec(), ReleaseAt: u.ReleaseAt})
	}
	return out
}
