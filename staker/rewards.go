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
	"github.com/vechain/meshstake/staker/stakes"
	"github.com/vechain/meshstake/staker/txs"
)

// Distribute credits amount of reward to everyone staked with validator, pro
// rata to committed stake. Rewards for a validator with no stake are carried
// into its next distribution.
func (s *Staker) Distribute(validator string, amount *uint256.Int) error {
	logger.Debug("distributing rewards", "validator", validator, "amount", amount)

	err := s.update("distribute", func(svc *services) error {
		state, err := svc.registry.Get(validator)
		if err != nil {
			return err
		}
		if !state.Exists() {
			return reverts.ErrValidatorNotActive
		}
		dist, err := svc.rewards.Get(validator)
		if err != nil {
			return err
		}
		if err := rewards.Distribute(dist, amount, s.config.PointsScale); err != nil {
			return err
		}
		return svc.rewards.Set(validator, dist)
	})
	if err != nil {
		logger.Info("distribute failed", "validator", validator, "error", err)
		return err
	}
	logger.Info("distributed rewards", "validator", validator, "amount", amount)
	return nil
}

// Claimable returns the reward the user can withdraw from validator.
func (s *Staker) Claimable(user mesh.Address, validator string) (*uint256.Int, error) {
	var owed *uint256.Int
	err := s.view(func(svc *services) error {
		var err error
		owed, err = s.claimable(svc, user, validator)
		return err
	})
	return owed, err
}

// WithdrawRewards marks everything claimable as paid and returns the amount
// the caller must transfer to the user.
func (s *Staker) WithdrawRewards(user mesh.Address, validator string) (*uint256.Int, error) {
	logger.Debug("withdrawing rewards", "user", user, "validator", validator)

	var owed *uint256.Int
	err := s.update("withdraw_rewards", func(svc *services) error {
		var err error
		if owed, err = s.claimable(svc, user, validator); err != nil {
			return err
		}
		if owed.IsZero() {
			return nil
		}
		st, err := svc.stakes.Get(user, validator)
		if err != nil {
			return err
		}
		withdrawn, overflow := new(uint256.Int).AddOverflow(&st.WithdrawnRewards, owed)
		if overflow {
			return reverts.ErrArithmeticOverflow
		}
		st.WithdrawnRewards = *withdrawn
		return svc.stakes.Set(user, validator, st)
	})
	if err != nil {
		logger.Info("withdraw rewards failed", "user", user, "validator", validator, "error", err)
		return nil, err
	}
	logger.Info("withdrew rewards", "user", user, "validator", validator, "amount", owed)
	return owed, nil
}

func (s *Staker) claimable(svc *services, user mesh.Address, validator string) (*uint256.Int, error) {
	st, err := svc.stakes.Get(user, validator)
	if err != nil {
		return nil, err
	}
	dist, err := svc.rewards.Get(validator)
	if err != nil {
		return nil, err
	}
	committed, err := committedStake(svc, user, validator, st)
	if err != nil {
		return nil, err
	}
	owed, err := rewards.Claimable(committed, &dist.PointsPerStake, &st.Alignment, &st.WithdrawnRewards, s.config.PointsScale)
	if err != nil {
		return nil, errors.Wrapf(err, "claimable for %s on %s", user, validator)
	}
	return owed, nil
}

// committedStake is the stake that earns rewards: the lower bound plus the
// unstakes that are reserved but not yet confirmed.
func committedStake(svc *services, user mesh.Address, validator string, st *stakes.Stake) (*uint256.Int, error) {
	pending, err := svc.txs.ByUser(user)
	if err != nil {
		return nil, err
	}
	committed := st.Stake.Low()
	for _, tx := range pending {
		if tx.Kind != txs.KindUnstake || tx.Validator != validator {
			continue
		}
		if _, overflow := committed.AddOverflow(committed, &tx.Amount); overflow {
			return nil, reverts.ErrArithmeticOverflow
		}
	}
	return committed, nil
}
