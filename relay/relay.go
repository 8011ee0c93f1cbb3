// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package relay connects the staker to the remote chain. It sends stake
// changes, turns acknowledgements into commits or rollbacks, rolls back
// changes that are never acknowledged and applies validator set updates.
package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/cache"
	"github.com/vechain/meshstake/co"
	"github.com/vechain/meshstake/log"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/metrics"
	"github.com/vechain/meshstake/staker"
	"github.com/vechain/meshstake/staker/crdt"
	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/txs"
)

var (
	logger = log.WithContext("pkg", "relay")

	metricAcks    = metrics.LazyLoadCounterVec("relay_acks_count", []string{"kind", "result"})
	metricExpired = metrics.LazyLoadCounter("relay_expired_count")
)

// ErrDuplicateAck is returned for an ack of a transaction already resolved.
// It also matches reverts.ErrUnknownTransaction.
var ErrDuplicateAck = errors.New("duplicate ack")

// ErrPacketMismatch is returned for a packet whose contents differ from the
// pending transaction its id refers to.
var ErrPacketMismatch = reverts.New("packet does not match pending transaction")

type duplicateAckError struct {
	id uint64
}

func (e *duplicateAckError) Error() string        { return fmt.Sprintf("duplicate ack for tx %d", e.id) }
func (e *duplicateAckError) Unwrap() error        { return reverts.ErrUnknownTransaction }
func (e *duplicateAckError) Is(target error) bool { return target == ErrDuplicateAck }

// Channel delivers packets to the remote chain.
type Channel interface {
	Send(ctx context.Context, packet *ProviderPacket) error
}

// Options configures a Relayer.
type Options struct {
	// Timeout is how long a sent change may stay unacknowledged.
	Timeout time.Duration
	// ExpireInterval is how often Run looks for timed out changes.
	ExpireInterval time.Duration
	// ResolvedCacheSize bounds the memory of resolved tx ids used to tell
	// duplicate acks from unknown ones.
	ResolvedCacheSize int
	// Clock measures timeouts. Defaults to the system monotonic clock.
	Clock mclock.Clock
	// Now returns the wall time in unix seconds, used to schedule unbonds.
	Now func() uint64
}

func DefaultOptions() Options {
	return Options{
		Timeout:           10 * time.Minute,
		ExpireInterval:    10 * time.Second,
		ResolvedCacheSize: 4096,
	}
}

// Relayer drives stake changes through the remote chain.
type Relayer struct {
	staker  *staker.Staker
	channel Channel
	opts    Options

	mu        sync.Mutex
	deadlines map[uint64]mclock.AbsTime
	resolved  *cache.LRU

	expired co.Signal[int]
	goes    co.Goes
}

// New creates a relayer. Call Recover before accepting acks after a restart.
func New(s *staker.Staker, channel Channel, opts Options) (*Relayer, error) {
	if opts.Clock == nil {
		opts.Clock = mclock.System{}
	}
	if opts.Now == nil {
		opts.Now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if opts.Timeout <= 0 || opts.ExpireInterval <= 0 {
		return nil, errors.New("timeout and expire interval must be positive")
	}
	resolved, err := cache.NewLRU(opts.ResolvedCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "resolved cache")
	}
	return &Relayer{
		staker:    s,
		channel:   channel,
		opts:      opts,
		deadlines: make(map[uint64]mclock.AbsTime),
		resolved:  resolved,
	}, nil
}

// Stake begins a stake and sends it. A change that cannot be sent is rolled
// back immediately.
func (r *Relayer) Stake(ctx context.Context, user mesh.Address, validator string, amount *uint256.Int) (uint64, error) {
	id, err := r.staker.StakeBegin(user, validator, amount)
	if err != nil {
		return 0, err
	}
	packet := &ProviderPacket{Stake: &StakeChange{Validator: validator, Amount: amount, TxID: id}}
	return id, r.send(ctx, id, packet)
}

// Unstake begins an unstake and sends it.
func (r *Relayer) Unstake(ctx context.Context, user mesh.Address, validator string, amount *uint256.Int) (uint64, error) {
	id, err := r.staker.UnstakeBegin(user, validator, amount)
	if err != nil {
		return 0, err
	}
	packet := &ProviderPacket{Unstake: &StakeChange{Validator: validator, Amount: amount, TxID: id}}
	return id, r.send(ctx, id, packet)
}

func (r *Relayer) send(ctx context.Context, id uint64, packet *ProviderPacket) error {
	r.arm(id)
	if err := r.channel.Send(ctx, packet); err != nil {
		logger.Warn("send failed, rolling back", "id", id, "error", err)
		if _, rbErr := r.staker.Rollback(id); rbErr != nil {
			return errors.Wrapf(rbErr, "rollback after send failure (%v)", err)
		}
		r.settle(id)
		return errors.Wrap(err, "send packet")
	}
	return nil
}

// OnAck resolves the change carried by packet according to ack.
func (r *Relayer) OnAck(packet *ProviderPacket, ack Ack) error {
	tx, err := r.pending(packet)
	if err == nil {
		switch {
		case tx.Kind == txs.KindStake && ack.Success():
			err = r.staker.StakeCommit(tx.ID)
		case tx.Kind == txs.KindStake:
			err = r.staker.StakeRollback(tx.ID)
		case ack.Success():
			err = r.staker.UnstakeCommit(tx.ID, r.opts.Now())
		default:
			err = r.staker.UnstakeRollback(tx.ID)
		}
		if err == nil {
			r.settle(tx.ID)
		} else {
			err = r.classify(tx.ID, err)
		}
	}

	result := "commit"
	if !ack.Success() {
		result = "rollback"
	}
	switch {
	case errors.Is(err, ErrDuplicateAck):
		result = "duplicate"
	case err != nil:
		result = "failed"
	case !ack.Success():
		logger.Info("remote rejected change", "id", tx.ID, "reason", ack.Error)
	}
	metricAcks().AddWithLabel(1, map[string]string{"kind": packetKind(packet).String(), "result": result})
	return err
}

// OnTimeout rolls back the change carried by packet.
func (r *Relayer) OnTimeout(packet *ProviderPacket) error {
	tx, err := r.pending(packet)
	if err != nil {
		return err
	}
	if _, err := r.staker.Rollback(tx.ID); err != nil {
		return r.classify(tx.ID, err)
	}
	r.settle(tx.ID)
	metricExpired().Add(1)
	return nil
}

// pending returns the ledger entry packet answers for. The packet must
// describe the entry exactly.
func (r *Relayer) pending(packet *ProviderPacket) (*txs.Tx, error) {
	change, err := packet.Change()
	if err != nil {
		return nil, err
	}
	tx, err := r.staker.PendingTx(change.TxID)
	if err != nil {
		return nil, r.classify(change.TxID, err)
	}
	if tx.Kind != packetKind(packet) ||
		tx.Validator != change.Validator ||
		change.Amount == nil || !tx.Amount.Eq(change.Amount) {
		return nil, errors.Wrapf(ErrPacketMismatch, "tx %d is %s %s on %s", tx.ID, tx.Kind, &tx.Amount, tx.Validator)
	}
	return tx, nil
}

func packetKind(packet *ProviderPacket) txs.Kind {
	if packet.Unstake != nil {
		return txs.KindUnstake
	}
	return txs.KindStake
}

// OnReceive applies a validator set update and returns the ack to send back.
func (r *Relayer) OnReceive(packet *ConsumerPacket) Ack {
	var (
		adds    []string
		updates []crdt.ValUpdate
	)
	for _, v := range packet.AddValidators {
		adds = append(adds, v.Valoper)
		updates = append(updates, crdt.ValUpdate{PubKey: v.PubKey, StartHeight: v.StartHeight, StartTime: v.StartTime})
	}
	if err := r.staker.RegistryApply(adds, updates, packet.RemoveValidators); err != nil {
		return AckFail(err)
	}
	return AckSuccess()
}

// Expire rolls back every change whose deadline has passed and returns how
// many were rolled back.
func (r *Relayer) Expire() int {
	now := r.opts.Clock.Now()

	r.mu.Lock()
	var due []uint64
	for id, deadline := range r.deadlines {
		if deadline <= now {
			due = append(due, id)
		}
	}
	r.mu.Unlock()

	n := 0
	for _, id := range due {
		if _, err := r.staker.Rollback(id); err != nil {
			if errors.Is(err, reverts.ErrUnknownTransaction) {
				// resolved elsewhere
				r.settle(id)
				continue
			}
			logger.Warn("expire rollback failed", "id", id, "error", err)
			continue
		}
		logger.Info("rolled back timed out change", "id", id)
		r.settle(id)
		n++
	}
	if n > 0 {
		metricExpired().Add(int64(n))
	}
	r.expired.Broadcast(n)
	return n
}

// Recover re-arms timeouts for every change left pending in the ledger, such
// as after a restart.
func (r *Relayer) Recover() (int, error) {
	const page = 100
	var (
		after uint64
		n     int
	)
	for {
		list, err := r.staker.PendingTxs(after, page, false)
		if err != nil {
			return n, err
		}
		for _, tx := range list {
			if r.arm(tx.ID) {
				n++
			}
			after = tx.ID
		}
		if len(list) < page {
			logger.Info("recovered pending changes", "count", n)
			return n, nil
		}
	}
}

// Pending returns the number of changes awaiting an answer.
func (r *Relayer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deadlines)
}

// Expired returns a waiter that fires after each expiry pass with the number
// of changes it rolled back.
func (r *Relayer) Expired() *co.Waiter[int] {
	return r.expired.NewWaiter()
}

// Run expires timed out changes every ExpireInterval until ctx is done.
func (r *Relayer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.opts.Clock.After(r.opts.ExpireInterval):
			r.Expire()
		}
	}
}

// Start runs the expiry loop in the background.
func (r *Relayer) Start() {
	r.goes.Go(r.Run)
}

// Stop ends the background loop and waits for it.
func (r *Relayer) Stop() {
	r.goes.Stop()
}

// arm starts the timeout of id unless it is already running.
func (r *Relayer) arm(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deadlines[id]; ok {
		return false
	}
	r.deadlines[id] = r.opts.Clock.Now().Add(r.opts.Timeout)
	return true
}

func (r *Relayer) settle(id uint64) {
	r.mu.Lock()
	delete(r.deadlines, id)
	r.mu.Unlock()
	r.resolved.Remember(id)
}

func (r *Relayer) classify(id uint64, err error) error {
	if errors.Is(err, reverts.ErrUnknownTransaction) && r.resolved.Contains(id) {
		logger.Warn("duplicate ack", "id", id)
		return &duplicateAckError{id: id}
	}
	return err
}
