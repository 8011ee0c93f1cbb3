// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker"
	"github.com/vechain/meshstake/staker/crdt"
	"github.com/vechain/meshstake/staker/stakes"
	"github.com/vechain/meshstake/staker/txs"
)

type M map[string]any

func txView(tx *txs.Tx) M {
	return M{
		"id":        tx.ID,
		"kind":      tx.Kind.String(),
		"amount":    tx.Amount.Dec(),
		"user":      tx.User.String(),
		"validator": tx.Validator,
	}
}

func stakeView(validator string, st *stakes.Stake) M {
	unbonds := make([]M, 0, len(st.PendingUnbonds))
	for _, u := range st.PendingUnbonds {
		unbonds = append(unbonds, M{"amount": u.Amount.Dec(), "releaseAt": u.ReleaseAt})
	}
	return M{
		"validator":        validator,
		"low":              st.Stake.Low().Dec(),
		"high":             st.Stake.High().Dec(),
		"pendingUnbonds":   unbonds,
		"withdrawnFunds":   st.WithdrawnFunds.Dec(),
		"withdrawnRewards": st.WithdrawnRewards.Dec(),
	}
}

func updateView(u crdt.ValUpdate) M {
	return M{"pubKey": u.PubKey, "startHeight": u.StartHeight, "startTime": u.StartTime}
}

func validatorAddAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "valoper", "pubkey", "start-height", "start-time"); err != nil {
		return err
	}
	height, err := parseUint(ctx.Args().Get(2), "start-height")
	if err != nil {
		return err
	}
	startTime, err := parseUint(ctx.Args().Get(3), "start-time")
	if err != nil {
		return err
	}
	update := crdt.ValUpdate{PubKey: ctx.Args().Get(1), StartHeight: height, StartTime: startTime}
	return withStaker(ctx, func(s *staker.Staker) error {
		return s.RegistryApplyAdd(ctx.Args().First(), update)
	})
}

func validatorRemoveAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "valoper"); err != nil {
		return err
	}
	return withStaker(ctx, func(s *staker.Staker) error {
		return s.RegistryApplyRemove(ctx.Args().First())
	})
}

func validatorListAction(ctx *cli.Context) error {
	return withStaker(ctx, func(s *staker.Staker) error {
		list, err := s.ListValidators(ctx.String(startAfterFlag.Name), ctx.Int(limitFlag.Name))
		if err != nil {
			return err
		}
		out := make([]M, 0, len(list))
		for _, v := range list {
			view := updateView(v.Latest)
			view["valoper"] = v.Valoper
			out = append(out, view)
		}
		return printJSON(ctx, out)
	})
}

func validatorShowAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "valoper"); err != nil {
		return err
	}
	valoper := ctx.Args().First()
	return withStaker(ctx, func(s *staker.Staker) error {
		st, err := s.ValidatorHistory(valoper)
		if err != nil {
			return err
		}
		if !st.Exists() {
			return errors.Errorf("validator [%v] not found", valoper)
		}
		history := make([]M, 0, len(st.History))
		for _, u := range st.History {
			history = append(history, updateView(u))
		}
		return printJSON(ctx, M{
			"valoper":    valoper,
			"active":     st.IsActive(),
			"tombstoned": st.Tombstoned,
			"history":    history,
		})
	})
}

type beginFunc func(s *staker.Staker, user mesh.Address, validator string, amount *uint256.Int) (uint64, error)

// beginAction starts a stake change given as <user> <validator> <amount>.
func beginAction(begin beginFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if err := requireArgs(ctx, "user", "validator", "amount"); err != nil {
			return err
		}
		user, err := parseUser(ctx.Args().Get(0))
		if err != nil {
			return err
		}
		amount, err := parseAmount(ctx.Args().Get(2))
		if err != nil {
			return err
		}
		return withStaker(ctx, func(s *staker.Staker) error {
			id, err := begin(s, user, ctx.Args().Get(1), amount)
			if err != nil {
				return err
			}
			return printJSON(ctx, M{"id": id})
		})
	}
}

func resolveAction(resolve func(ctx *cli.Context, s *staker.Staker, id uint64) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if err := requireArgs(ctx, "id"); err != nil {
			return err
		}
		id, err := parseUint(ctx.Args().First(), "id")
		if err != nil {
			return err
		}
		return withStaker(ctx, func(s *staker.Staker) error {
			return resolve(ctx, s, id)
		})
	}
}

func distributeAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "validator", "amount"); err != nil {
		return err
	}
	amount, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	return withStaker(ctx, func(s *staker.Staker) error {
		return s.Distribute(ctx.Args().First(), amount)
	})
}

func rewardsAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "user", "validator"); err != nil {
		return err
	}
	user, err := parseUser(ctx.Args().First())
	if err != nil {
		return err
	}
	validator := ctx.Args().Get(1)
	return withStaker(ctx, func(s *staker.Staker) error {
		claim := s.Claimable
		if ctx.Bool(withdrawFlag.Name) {
			claim = s.WithdrawRewards
		}
		owed, err := claim(user, validator)
		if err != nil {
			return err
		}
		return printJSON(ctx, M{"user": user.String(), "validator": validator, "amount": owed.Dec()})
	})
}

func stakesAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "user"); err != nil {
		return err
	}
	user, err := parseUser(ctx.Args().First())
	if err != nil {
		return err
	}
	return withStaker(ctx, func(s *staker.Staker) error {
		list, err := s.Stakes(user, ctx.String(startAfterFlag.Name), ctx.Int(limitFlag.Name))
		if err != nil {
			return err
		}
		out := make([]M, 0, len(list))
		for _, e := range list {
			out = append(out, stakeView(e.Validator, e.Stake))
		}
		return printJSON(ctx, out)
	})
}

func releaseAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "user"); err != nil {
		return err
	}
	user, err := parseUser(ctx.Args().First())
	if err != nil {
		return err
	}
	return withStaker(ctx, func(s *staker.Staker) error {
		released, err := s.ReleasePending(user, now(ctx))
		if err != nil {
			return err
		}
		return printJSON(ctx, M{"user": user.String(), "released": released.Dec()})
	})
}

func slashAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, "validator", "ratio"); err != nil {
		return err
	}
	ratio, err := parseRatio(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	validator := ctx.Args().First()
	return withStaker(ctx, func(s *staker.Staker) error {
		bonded, unbonding, err := s.Slash(validator, now(ctx), ratio)
		if err != nil {
			return err
		}
		return printJSON(ctx, M{"validator": validator, "bonded": bonded.Dec(), "unbonding": unbonding.Dec()})
	})
}

func txsAction(ctx *cli.Context) error {
	return withStaker(ctx, func(s *staker.Staker) error {
		var (
			list []*txs.Tx
			err  error
		)
		if u := ctx.String(userFlag.Name); u != "" {
			user, perr := parseUser(u)
			if perr != nil {
				return perr
			}
			list, err = s.PendingTxsByUser(user)
		} else {
			var after uint64
			if a := ctx.String(startAfterFlag.Name); a != "" {
				if after, err = parseUint(a, "start-after"); err != nil {
					return err
				}
			}
			list, err = s.PendingTxs(after, ctx.Int(limitFlag.Name), true)
		}
		if err != nil {
			return err
		}
		out := make([]M, 0, len(list))
		for _, tx := range list {
			out = append(out, txView(tx))
		}
		return printJSON(ctx, out)
	})
}
