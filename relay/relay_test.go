// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/meshstake/lvldb"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker"
	"github.com/vechain/meshstake/staker/reverts"
)

var alice = mesh.BytesToAddress([]byte("alice"))

type recordingChannel struct {
	mu      sync.Mutex
	packets []*ProviderPacket
	fail    error
}

func (c *recordingChannel) Send(_ context.Context, packet *ProviderPacket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.packets = append(c.packets, packet)
	return nil
}

func (c *recordingChannel) last() *ProviderPacket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.packets[len(c.packets)-1]
}

type fixture struct {
	staker  *staker.Staker
	relayer *Relayer
	channel *recordingChannel
	clock   *mclock.Simulated
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := staker.DefaultConfig()
	cfg.UnbondingPeriod = 100
	s, err := staker.New(db, cfg)
	require.NoError(t, err)

	f := &fixture{staker: s, channel: &recordingChannel{}, clock: &mclock.Simulated{}}
	opts := DefaultOptions()
	opts.Clock = f.clock
	opts.Timeout = time.Minute
	opts.ExpireInterval = time.Second
	opts.Now = func() uint64 { return 1000 }
	f.relayer, err = New(s, f.channel, opts)
	require.NoError(t, err)

	ack := f.relayer.OnReceive(&ConsumerPacket{AddValidators: []AddValidator{{Valoper: "valA", PubKey: "pk", StartHeight: 1}}})
	require.True(t, ack.Success(), ack.Error)
	return f
}

func (f *fixture) low(t *testing.T) uint64 {
	st, err := f.staker.Stake(alice, "valA")
	require.NoError(t, err)
	return st.Stake.Low().Uint64()
}

func TestStakeAck(t *testing.T) {
	f := newFixture(t)
	id, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, 1, f.relayer.Pending())

	packet := f.channel.last()
	require.NotNil(t, packet.Stake)
	assert.Equal(t, id, packet.Stake.TxID)

	require.NoError(t, f.relayer.OnAck(packet, AckSuccess()))
	assert.Equal(t, uint64(1000), f.low(t))
	assert.Equal(t, 0, f.relayer.Pending())

	err = f.relayer.OnAck(packet, AckSuccess())
	assert.ErrorIs(t, err, ErrDuplicateAck)
	assert.ErrorIs(t, err, reverts.ErrUnknownTransaction)

	err = f.relayer.OnAck(&ProviderPacket{Stake: &StakeChange{Validator: "valA", Amount: uint256.NewInt(1), TxID: 99}}, AckSuccess())
	assert.ErrorIs(t, err, reverts.ErrUnknownTransaction)
	assert.NotErrorIs(t, err, ErrDuplicateAck)
}

func TestAckMustMatchPendingTx(t *testing.T) {
	f := newFixture(t)
	id, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(1000))
	require.NoError(t, err)

	for name, packet := range map[string]*ProviderPacket{
		"amount":    {Stake: &StakeChange{Validator: "valA", Amount: uint256.NewInt(999), TxID: id}},
		"no amount": {Stake: &StakeChange{Validator: "valA", TxID: id}},
		"validator": {Stake: &StakeChange{Validator: "valB", Amount: uint256.NewInt(1000), TxID: id}},
		"kind":      {Unstake: &StakeChange{Validator: "valA", Amount: uint256.NewInt(1000), TxID: id}},
	} {
		err := f.relayer.OnAck(packet, AckSuccess())
		assert.ErrorIs(t, err, ErrPacketMismatch, name)
		assert.True(t, reverts.IsRevertErr(err), name)
		assert.ErrorIs(t, f.relayer.OnTimeout(packet), ErrPacketMismatch, name)
	}

	_, err = f.staker.PendingTx(id)
	require.NoError(t, err, "mismatched packets leave the tx pending")
	assert.Equal(t, 1, f.relayer.Pending())

	require.NoError(t, f.relayer.OnAck(f.channel.last(), AckSuccess()))
	assert.Equal(t, uint64(1000), f.low(t))
}

func TestUnstakeErrorAck(t *testing.T) {
	f := newFixture(t)
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, f.relayer.OnAck(f.channel.last(), AckSuccess()))

	_, err = f.relayer.Unstake(context.Background(), alice, "valA", uint256.NewInt(300))
	require.NoError(t, err)
	assert.Equal(t, uint64(700), f.low(t))

	require.NoError(t, f.relayer.OnAck(f.channel.last(), AckFail(errors.New("validator jailed"))))
	assert.Equal(t, uint64(1000), f.low(t))

	_, err = f.relayer.Unstake(context.Background(), alice, "valA", uint256.NewInt(300))
	require.NoError(t, err)
	require.NoError(t, f.relayer.OnAck(f.channel.last(), AckSuccess()))
	st, err := f.staker.Stake(alice, "valA")
	require.NoError(t, err)
	require.Len(t, st.PendingUnbonds, 1)
	assert.Equal(t, uint64(1100), st.PendingUnbonds[0].ReleaseAt)
}

func TestSendFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.channel.fail = errors.New("channel closed")
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(10))
	require.Error(t, err)

	st, err := f.staker.Stake(alice, "valA")
	require.NoError(t, err)
	assert.True(t, st.Stake.High().IsZero())
	assert.Equal(t, 0, f.relayer.Pending())
}

func TestTimeout(t *testing.T) {
	f := newFixture(t)
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(10))
	require.NoError(t, err)
	packet := f.channel.last()

	require.NoError(t, f.relayer.OnTimeout(packet))
	st, err := f.staker.Stake(alice, "valA")
	require.NoError(t, err)
	assert.True(t, st.Stake.High().IsZero())

	assert.ErrorIs(t, f.relayer.OnAck(packet, AckSuccess()), ErrDuplicateAck, "late ack after timeout")
}

func TestExpire(t *testing.T) {
	f := newFixture(t)
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(10))
	require.NoError(t, err)

	f.clock.Run(30 * time.Second)
	_, err = f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(20))
	require.NoError(t, err)

	f.clock.Run(30 * time.Second)
	assert.Equal(t, 1, f.relayer.Expire())
	assert.Equal(t, 1, f.relayer.Pending())

	st, err := f.staker.Stake(alice, "valA")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), st.Stake.High().Uint64())

	f.clock.Run(30 * time.Second)
	waiter := f.relayer.Expired()
	assert.Equal(t, 1, f.relayer.Expire())
	assert.Equal(t, 1, waiter.Value())
	assert.Equal(t, 0, f.relayer.Expire())
	assert.Equal(t, 0, waiter.Value())
}

func TestRunExpires(t *testing.T) {
	f := newFixture(t)
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(10))
	require.NoError(t, err)

	f.relayer.Start()
	defer f.relayer.Stop()

	for i := 0; i < 3 && f.relayer.Pending() > 0; i++ {
		waiter := f.relayer.Expired()
		f.clock.WaitForTimers(1)
		f.clock.Run(time.Minute)
		select {
		case <-waiter.C():
			assert.GreaterOrEqual(t, waiter.Value(), 0)
		case <-time.After(5 * time.Second):
			t.Fatal("expiry pass did not run")
		}
	}
	assert.Equal(t, 0, f.relayer.Pending())
}

func TestRecover(t *testing.T) {
	f := newFixture(t)
	for range 3 {
		_, err := f.staker.StakeBegin(alice, "valA", uint256.NewInt(1))
		require.NoError(t, err)
	}
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(1))
	require.NoError(t, err)

	n, err := f.relayer.Recover()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "ids already tracked are not re-armed")
	assert.Equal(t, 4, f.relayer.Pending())

	f.clock.Run(time.Minute)
	assert.Equal(t, 4, f.relayer.Expire())
	pending, err := f.staker.PendingTxs(0, 10, false)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOnReceive(t *testing.T) {
	f := newFixture(t)
	ack := f.relayer.OnReceive(&ConsumerPacket{RemoveValidators: []string{"valA", "valB"}})
	require.True(t, ack.Success())

	ack = f.relayer.OnReceive(&ConsumerPacket{AddValidators: []AddValidator{{Valoper: "valB", PubKey: "pk", StartHeight: 5}}})
	require.True(t, ack.Success())

	for _, v := range []string{"valA", "valB"} {
		state, err := f.staker.ValidatorHistory(v)
		require.NoError(t, err)
		assert.True(t, state.Tombstoned, v)
		assert.False(t, state.IsActive(), v)
	}
	_, err := f.relayer.Stake(context.Background(), alice, "valA", uint256.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrValidatorNotActive)
}

func TestPacketJSON(t *testing.T) {
	packet := &ProviderPacket{Unstake: &StakeChange{Validator: "valA", Amount: uint256.NewInt(300), TxID: 7}}
	data, err := json.Marshal(packet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"unstake":{"validator":"valA","amount":"300","tx_id":7}}`, string(data))

	var dec ProviderPacket
	require.NoError(t, json.Unmarshal(data, &dec))
	change, err := dec.Change()
	require.NoError(t, err)
	assert.Equal(t, uint64(300), change.Amount.Uint64())

	_, err = (&ProviderPacket{}).Change()
	assert.Error(t, err)

	var ack Ack
	require.NoError(t, json.Unmarshal([]byte(`{"error":"boom"}`), &ack))
	assert.False(t, ack.Success())
	data, err = json.Marshal(AckSuccess())
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{}}`, string(data))

	var consumer ConsumerPacket
	require.NoError(t, json.Unmarshal([]byte(`{"add_validators":[{"valoper":"v","pub_key":"k","start_height":3,"start_time":4}]}`), &consumer))
	assert.Equal(t, AddValidator{Valoper: "v", PubKey: "k", StartHeight: 3, StartTime: 4}, consumer.AddValidators[0])
}
