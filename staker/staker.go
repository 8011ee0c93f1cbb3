// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker tracks delegated stake and reward entitlement against
// validators of a remote chain. Stake changes are confirmed asynchronously:
// each one is begun, then committed or rolled back once the remote side
// answers.
package staker

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/log"
	"github.com/vechain/meshstake/staker/crdt"
	"github.com/vechain/meshstake/staker/rewards"
	"github.com/vechain/meshstake/staker/stakes"
	"github.com/vechain/meshstake/staker/storage"
	"github.com/vechain/meshstake/staker/txs"
)

var logger = log.WithContext("pkg", "staker")

func SetLogger(l log.Logger) {
	logger = l
}

// services is the set of stores bound to one unit of work.
type services struct {
	sctx     *storage.Context
	txs      *txs.Service
	rewards  *rewards.Service
	stakes   *stakes.Service
	registry *crdt.Service
}

func newServices(store kv.Store) *services {
	sctx := storage.NewContext(store)
	return &services{
		sctx:     sctx,
		txs:      txs.New(sctx),
		rewards:  rewards.New(sctx),
		stakes:   stakes.New(sctx),
		registry: crdt.New(sctx),
	}
}

// Staker is the accounting core. Every mutating call runs to completion and
// is written in one batch; a call that fails writes nothing.
type Staker struct {
	mu     sync.Mutex
	store  kv.Store
	config Config
}

// New creates a staker over store.
func New(store kv.Store, config Config) (*Staker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	s := &Staker{store: store, config: config}
	// the gauge tracks the ledger, including entries left by a previous run
	var pending int
	if err := s.view(func(svc *services) (err error) {
		pending, err = svc.txs.Count()
		return
	}); err != nil {
		return nil, err
	}
	metricPendingTxs().Set(int64(pending))
	return s, nil
}

// Config returns the staking parameters.
func (s *Staker) Config() Config {
	return s.config
}

// update runs fn in a fresh unit of work and writes its changes if fn succeeds.
func (s *Staker) update(op string, fn func(svc *services) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc := newServices(s.store)
	err := fn(svc)
	if err == nil {
		err = svc.sctx.Commit()
	}
	observeOp(op, err)
	return err
}

// view runs fn against the current state. Changes made by fn are dropped.
func (s *Staker) view(fn func(svc *services) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(newServices(s.store))
}
