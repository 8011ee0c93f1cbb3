// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// StakeChange asks the remote side to delegate or undelegate virtual stake.
type StakeChange struct {
	Validator string       `json:"validator"`
	Amount    *uint256.Int `json:"amount"`
	TxID      uint64       `json:"tx_id"`
}

// ProviderPacket is sent to the remote chain. Exactly one field is set.
type ProviderPacket struct {
	Stake   *StakeChange `json:"stake,omitempty"`
	Unstake *StakeChange `json:"unstake,omitempty"`
}

// Change returns the carried stake change.
func (p *ProviderPacket) Change() (*StakeChange, error) {
	switch {
	case p.Stake != nil && p.Unstake == nil:
		return p.Stake, nil
	case p.Unstake != nil && p.Stake == nil:
		return p.Unstake, nil
	default:
		return nil, errors.New("packet must carry exactly one of stake or unstake")
	}
}

// AddValidator announces a validator, or a new key for it.
type AddValidator struct {
	Valoper     string `json:"valoper"`
	PubKey      string `json:"pub_key"`
	StartHeight uint64 `json:"start_height"`
	StartTime   uint64 `json:"start_time"`
}

// ConsumerPacket is received from the remote chain. Exactly one field is set.
type ConsumerPacket struct {
	AddValidators    []AddValidator `json:"add_validators,omitempty"`
	RemoveValidators []string       `json:"remove_validators,omitempty"`
}

// Ack answers a packet: Result on success, Error otherwise.
type Ack struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Success reports whether the packet was accepted.
func (a *Ack) Success() bool {
	return a.Error == ""
}

// AckSuccess returns a success ack carrying an empty result.
func AckSuccess() Ack {
	return Ack{Result: json.RawMessage("{}")}
}

// AckFail returns an error ack.
func AckFail(err error) Ack {
	return Ack{Error: err.Error()}
}
