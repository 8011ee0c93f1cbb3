// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/staker/storage"
)

const prefixDistributions = "distributions/"

// Service persists one Distribution per validator.
type Service struct {
	distributions *storage.Mapping[storage.StringKey, *Distribution]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		distributions: storage.NewMapping[storage.StringKey, *Distribution](sctx, prefixDistributions),
	}
}

// Get returns the validator's distribution, empty if none was recorded.
func (s *Service) Get(validator string) (*Distribution, error) {
	d, err := s.distributions.Get(storage.StringKey(validator))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distribution")
	}
	return d, nil
}

func (s *Service) Set(validator string, d *Distribution) error {
	if err := s.distributions.Set(storage.StringKey(validator), d); err != nil {
		return errors.Wrap(err, "failed to set distribution")
	}
	return nil
}
