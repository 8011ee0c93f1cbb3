// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/rewards"
	"github.com/vechain/meshstake/staker/txs"
)

// StakeBegin reserves amount for a stake on validator and records the
// pending transaction. The stake earns nothing until committed.
func (s *Staker) StakeBegin(user mesh.Address, validator string, amount *uint256.Int) (uint64, error) {
	logger.Debug("beginning stake", "user", user, "validator", validator, "amount", amount)

	var id uint64
	err := s.update("stake_begin", func(svc *services) error {
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		active, err := svc.registry.IsActive(validator)
		if err != nil {
			return err
		}
		if !active {
			return reverts.ErrValidatorNotActive
		}
		st, err := svc.stakes.Get(user, validator)
		if err != nil {
			return err
		}
		if err := st.Stake.PrepareAdd(amount); err != nil {
			return err
		}
		if err := svc.stakes.Set(user, validator, st); err != nil {
			return err
		}
		id, err = svc.txs.Begin(txs.KindStake, amount, user, validator)
		return err
	})
	if err != nil {
		logger.Info("begin stake failed", "user", user, "validator", validator, "error", err)
		return 0, err
	}
	metricPendingTxs().Add(1)
	logger.Info("began stake", "id", id, "user", user, "validator", validator)
	return id, nil
}

// StakeCommit confirms a pending stake.
func (s *Staker) StakeCommit(id uint64) error {
	_, err := s.resolve(id, txs.KindStake, true, 0)
	return err
}

// StakeRollback abandons a pending stake.
func (s *Staker) StakeRollback(id uint64) error {
	_, err := s.resolve(id, txs.KindStake, false, 0)
	return err
}

// UnstakeBegin reserves amount of the committed stake for removal. The
// reserved amount keeps earning rewards until committed.
func (s *Staker) UnstakeBegin(user mesh.Address, validator string, amount *uint256.Int) (uint64, error) {
	logger.Debug("beginning unstake", "user", user, "validator", validator, "amount", amount)

	var id uint64
	err := s.update("unstake_begin", func(svc *services) error {
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		st, err := svc.stakes.Get(user, validator)
		if err != nil {
			return err
		}
		if err := st.Stake.PrepareSub(amount); err != nil {
			return err
		}
		if err := svc.stakes.Set(user, validator, st); err != nil {
			return err
		}
		id, err = svc.txs.Begin(txs.KindUnstake, amount, user, validator)
		return err
	})
	if err != nil {
		logger.Info("begin unstake failed", "user", user, "validator", validator, "error", err)
		return 0, err
	}
	metricPendingTxs().Add(1)
	logger.Info("began unstake", "id", id, "user", user, "validator", validator)
	return id, nil
}

// UnstakeCommit confirms a pending unstake. The funds become releasable one
// unbonding period after now.
func (s *Staker) UnstakeCommit(id uint64, now uint64) error {
	_, err := s.resolve(id, txs.KindUnstake, true, now)
	return err
}

// UnstakeRollback abandons a pending unstake, restoring the reserved stake.
func (s *Staker) UnstakeRollback(id uint64) error {
	_, err := s.resolve(id, txs.KindUnstake, false, 0)
	return err
}

// Commit confirms a pending transaction of either kind.
func (s *Staker) Commit(id uint64, now uint64) (*txs.Tx, error) {
	return s.resolve(id, 0, true, now)
}

// Rollback abandons a pending transaction of either kind.
func (s *Staker) Rollback(id uint64) (*txs.Tx, error) {
	return s.resolve(id, 0, false, 0)
}

// resolve removes the pending transaction and applies or undoes it. A zero
// kind accepts either kind.
func (s *Staker) resolve(id uint64, kind txs.Kind, commit bool, now uint64) (*txs.Tx, error) {
	action, done := "rollback", "rolled back tx"
	if commit {
		action, done = "commit", "committed tx"
	}
	logger.Debug("resolving tx", "id", id, "action", action)

	var tx *txs.Tx
	err := s.update(action, func(svc *services) error {
		var err error
		if tx, err = svc.txs.Get(id); err != nil {
			return err
		}
		if kind != 0 && tx.Kind != kind {
			return errors.Wrapf(reverts.ErrWrongTxKind, "tx %d is %s", id, tx.Kind)
		}
		if commit {
			_, err = svc.txs.Commit(id)
		} else {
			_, err = svc.txs.Rollback(id)
		}
		if err != nil {
			return err
		}

		switch {
		case tx.Kind == txs.KindStake && commit:
			return s.commitStake(svc, tx)
		case tx.Kind == txs.KindStake:
			return s.rollbackStake(svc, tx)
		case tx.Kind == txs.KindUnstake && commit:
			return s.commitUnstake(svc, tx, now)
		case tx.Kind == txs.KindUnstake:
			return s.rollbackUnstake(svc, tx)
		default:
			return errors.Wrapf(reverts.ErrInvariantViolation, "tx %d has unknown kind %d", id, tx.Kind)
		}
	})
	if err != nil {
		logger.Info(action+" tx failed", "id", id, "error", err)
		return nil, err
	}
	metricPendingTxs().Add(-1)
	logger.Info(done, "id", id, "kind", tx.Kind, "user", tx.User, "validator", tx.Validator, "amount", &tx.Amount)
	return tx, nil
}

func (s *Staker) commitStake(svc *services, tx *txs.Tx) error {
	st, err := svc.stakes.Get(tx.User, tx.Validator)
	if err != nil {
		return err
	}
	dist, err := svc.rewards.Get(tx.Validator)
	if err != nil {
		return err
	}
	if err := st.Stake.CommitAdd(&tx.Amount); err != nil {
		return err
	}
	if err := rewards.StakeIncreased(&st.Alignment, &tx.Amount, &dist.PointsPerStake); err != nil {
		return err
	}
	if err := dist.AddStake(&tx.Amount); err != nil {
		return err
	}
	if err := svc.stakes.Set(tx.User, tx.Validator, st); err != nil {
		return err
	}
	return svc.rewards.Set(tx.Validator, dist)
}

func (s *Staker) rollbackStake(svc *services, tx *txs.Tx) error {
	st, err := svc.stakes.Get(tx.User, tx.Validator)
	if err != nil {
		return err
	}
	if err := st.Stake.RollbackAdd(&tx.Amount); err != nil {
		return err
	}
	return svc.stakes.Set(tx.User, tx.Validator, st)
}

func (s *Staker) commitUnstake(svc *services, tx *txs.Tx, now uint64) error {
	st, err := svc.stakes.Get(tx.User, tx.Validator)
	if err != nil {
		return err
	}
	dist, err := svc.rewards.Get(tx.Validator)
	if err != nil {
		return err
	}
	if err := st.Stake.CommitSub(&tx.Amount); err != nil {
		return err
	}
	if now > ^uint64(0)-s.config.UnbondingPeriod {
		return reverts.ErrArithmeticOverflow
	}
	releaseAt := st.AddUnbond(&tx.Amount, now+s.config.UnbondingPeriod)
	if releaseAt != now+s.config.UnbondingPeriod {
		logger.Warn("unbond release delayed to keep queue order", "id", tx.ID, "releaseAt", releaseAt)
	}
	if err := rewards.StakeDecreased(&st.Alignment, &tx.Amount, &dist.PointsPerStake); err != nil {
		return err
	}
	if err := dist.SubStake(&tx.Amount); err != nil {
		return err
	}
	if err := svc.stakes.Set(tx.User, tx.Validator, st); err != nil {
		return err
	}
	return svc.rewards.Set(tx.Validator, dist)
}

func (s *Staker) rollbackUnstake(svc *services, tx *txs.Tx) error {
	st, err := svc.stakes.Get(tx.User, tx.Validator)
	if err != nil {
		return err
	}
	if err := st.Stake.RollbackSub(&tx.Amount); err != nil {
		return err
	}
	return svc.stakes.Set(tx.User, tx.Validator, st)
}
