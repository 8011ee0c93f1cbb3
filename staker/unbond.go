// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/rewards"
	"github.com/vechain/meshstake/staker/stakes"
)

// ReleasePending releases every unbond of the user that is due at now, across
// all validators, and returns the total the caller must transfer.
func (s *Staker) ReleasePending(user mesh.Address, now uint64) (*uint256.Int, error) {
	logger.Debug("releasing unbonds", "user", user, "now", now)

	total := new(uint256.Int)
	err := s.update("release_pending", func(svc *services) error {
		entries, err := svc.stakes.ByUser(user, "", 0)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			released, err := entry.Stake.ReleasePending(now)
			if err != nil {
				return err
			}
			if released.IsZero() {
				continue
			}
			if _, overflow := total.AddOverflow(total, released); overflow {
				return reverts.ErrArithmeticOverflow
			}
			if err := svc.stakes.Set(user, entry.Validator, entry.Stake); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("release unbonds failed", "user", user, "error", err)
		return nil, err
	}
	logger.Info("released unbonds", "user", user, "amount", total)
	return total, nil
}

// SlashPending cuts ratio off every unbond of validator that is not yet due at
// now and returns the total taken.
func (s *Staker) SlashPending(validator string, now uint64, ratio decimal.Decimal) (*uint256.Int, error) {
	logger.Debug("slashing unbonds", "validator", validator, "ratio", ratio)

	var total *uint256.Int
	err := s.update("slash_pending", func(svc *services) error {
		var err error
		total, err = s.slashPending(svc, validator, now, ratio)
		return err
	})
	if err != nil {
		logger.Info("slash unbonds failed", "validator", validator, "error", err)
		return nil, err
	}
	metricSlashed().Add(1)
	logger.Info("slashed unbonds", "validator", validator, "amount", total)
	return total, nil
}

// Slash punishes validator misbehaviour: ratio is cut off both the committed
// stake and the unbonds not yet due. It returns the bonded and unbonding
// amounts taken.
func (s *Staker) Slash(validator string, now uint64, ratio decimal.Decimal) (bonded, unbonding *uint256.Int, err error) {
	logger.Debug("slashing validator", "validator", validator, "ratio", ratio)

	bonded = new(uint256.Int)
	err = s.update("slash", func(svc *services) error {
		var err error
		if unbonding, err = s.slashPending(svc, validator, now, ratio); err != nil {
			return err
		}
		users, err := svc.stakes.ByValidator(validator)
		if err != nil {
			return err
		}
		dist, err := svc.rewards.Get(validator)
		if err != nil {
			return err
		}
		for _, user := range users {
			st, err := svc.stakes.Get(user, validator)
			if err != nil {
				return err
			}
			cut := stakes.Portion(st.Stake.Low(), ratio)
			if cut.IsZero() {
				continue
			}
			if err := st.Stake.Sub(cut); err != nil {
				return err
			}
			if err := rewards.StakeDecreased(&st.Alignment, cut, &dist.PointsPerStake); err != nil {
				return err
			}
			if err := dist.SubStake(cut); err != nil {
				return err
			}
			if err := svc.stakes.Set(user, validator, st); err != nil {
				return err
			}
			bonded.Add(bonded, cut)
		}
		return svc.rewards.Set(validator, dist)
	})
	if err != nil {
		logger.Info("slash validator failed", "validator", validator, "error", err)
		return nil, nil, err
	}
	metricSlashed().Add(1)
	logger.Info("slashed validator", "validator", validator, "bonded", bonded, "unbonding", unbonding)
	return bonded, unbonding, nil
}

func (s *Staker) checkRatio(ratio decimal.Decimal) error {
	if ratio.IsNegative() || ratio.GreaterThan(s.config.MaxSlashing) {
		return errors.Wrapf(reverts.ErrInvalidRatio, "%s not in [0, %s]", ratio, s.config.MaxSlashing)
	}
	return nil
}

func (s *Staker) slashPending(svc *services, validator string, now uint64, ratio decimal.Decimal) (*uint256.Int, error) {
	if err := s.checkRatio(ratio); err != nil {
		return nil, err
	}
	users, err := svc.stakes.ByValidator(validator)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for _, user := range users {
		st, err := svc.stakes.Get(user, validator)
		if err != nil {
			return nil, err
		}
		slashed := st.SlashPending(now, ratio)
		if slashed.IsZero() {
			continue
		}
		if _, overflow := total.AddOverflow(total, slashed); overflow {
			return nil, reverts.ErrArithmeticOverflow
		}
		if err := svc.stakes.Set(user, validator, st); err != nil {
			return nil, err
		}
	}
	return total, nil
}
