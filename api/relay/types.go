// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"github.com/holiman/uint256"

	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/relay"
)

// ChangeRequest asks to stake or unstake amount of user's funds with validator.
type ChangeRequest struct {
	User      *mesh.Address `json:"user"`
	Validator string        `json:"validator"`
	Amount    *uint256.Int  `json:"amount"`
}

// ChangeResponse carries the id of the in-flight transaction.
type ChangeResponse struct {
	ID uint64 `json:"id"`
}

// AckRequest delivers the counterparty's answer to a packet we sent.
type AckRequest struct {
	Packet *relay.ProviderPacket `json:"packet"`
	Ack    relay.Ack             `json:"ack"`
}

// TimeoutRequest reports a packet that was never delivered.
type TimeoutRequest struct {
	Packet *relay.ProviderPacket `json:"packet"`
}
