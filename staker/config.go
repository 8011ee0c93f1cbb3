// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/meshstake/staker/rewards"
)

// DefaultUnbondingPeriod is 21 days, in seconds.
const DefaultUnbondingPeriod = 21 * 24 * 3600

// Config holds the staking parameters.
type Config struct {
	// UnbondingPeriod is how long, in seconds, unstaked funds stay slashable
	// before they can be released.
	UnbondingPeriod uint64
	// PointsScale is the fixed point scale of reward points per stake.
	PointsScale *uint256.Int
	// MaxSlashing caps the ratio accepted by the slashing operations.
	MaxSlashing decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		UnbondingPeriod: DefaultUnbondingPeriod,
		PointsScale:     new(uint256.Int).Set(rewards.DefaultPointsScale),
		MaxSlashing:     decimal.NewFromInt(1),
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.PointsScale == nil || c.PointsScale.IsZero() {
		return errors.New("points scale must be positive")
	}
	if c.MaxSlashing.IsNegative() || c.MaxSlashing.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Errorf("max slashing %s out of [0, 1]", c.MaxSlashing)
	}
	return nil
}
