// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/meshstake/staker/crdt"
)

// RegistryApplyAdd merges a validator announcement from the remote chain.
func (s *Staker) RegistryApplyAdd(valoper string, update crdt.ValUpdate) error {
	return s.RegistryApply([]string{valoper}, []crdt.ValUpdate{update}, nil)
}

// RegistryApplyRemove merges a validator removal from the remote chain.
func (s *Staker) RegistryApplyRemove(valoper string) error {
	return s.RegistryApply(nil, nil, []string{valoper})
}

// RegistryApply merges a batch of announcements and removals in one write.
// adds[i] is announced with updates[i].
func (s *Staker) RegistryApply(adds []string, updates []crdt.ValUpdate, removes []string) error {
	logger.Debug("applying validator updates", "adds", len(adds), "removes", len(removes))

	err := s.update("registry_apply", func(svc *services) error {
		for i, valoper := range adds {
			if err := svc.registry.ApplyAdd(valoper, updates[i]); err != nil {
				return err
			}
		}
		for _, valoper := range removes {
			if err := svc.registry.ApplyRemove(valoper); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("apply validator updates failed", "error", err)
		return err
	}
	logger.Info("applied validator updates", "adds", adds, "removes", removes)
	return nil
}

// RegistryIsActive reports whether valoper can currently receive stake.
func (s *Staker) RegistryIsActive(valoper string) (active bool, err error) {
	err = s.view(func(svc *services) error {
		active, err = svc.registry.IsActive(valoper)
		return err
	})
	return
}

// ListValidators pages through active validators in operator order.
func (s *Staker) ListValidators(startAfter string, limit int) (list []crdt.Validator, err error) {
	err = s.view(func(svc *services) error {
		list, err = svc.registry.ListActive(startAfter, limit)
		return err
	})
	return
}

// ValidatorHistory returns the replicated state of valoper, including removed
// ones.
func (s *Staker) ValidatorHistory(valoper string) (state *crdt.State, err error) {
	err = s.view(func(svc *services) error {
		state, err = svc.registry.Get(valoper)
		return err
	})
	return
}

// ValidatorKeyAt returns the key valoper signed with at height.
func (s *Staker) ValidatorKeyAt(valoper string, height uint64) (update crdt.ValUpdate, ok bool, err error) {
	err = s.view(func(svc *services) error {
		update, ok, err = svc.registry.ActiveAt(valoper, height)
		return err
	})
	return
}
