// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/meshstake/log"
	"github.com/vechain/meshstake/staker"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "meshstake"
	app.Usage = "Virtual staking provider for a mesh of chains"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
		unbondingPeriodFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "serve the query API and run the relay",
			Flags: []cli.Flag{
				apiAddrFlag,
				apiCorsFlag,
				enableAPILogsFlag,
				enableMetricsFlag,
				relayURLFlag,
				relayTimeoutFlag,
			},
			Action: serveAction,
		},
		{
			Name:  "validator",
			Usage: "inspect and edit the validator registry",
			Subcommands: []cli.Command{
				{
					Name:      "add",
					Usage:     "announce a validator or a new key for it",
					ArgsUsage: "<valoper> <pubkey> <start-height> <start-time>",
					Action:    validatorAddAction,
				},
				{
					Name:      "remove",
					Usage:     "tombstone a validator",
					ArgsUsage: "<valoper>",
					Action:    validatorRemoveAction,
				},
				{
					Name:   "list",
					Usage:  "list active validators",
					Flags:  []cli.Flag{startAfterFlag, limitFlag},
					Action: validatorListAction,
				},
				{
					Name:      "show",
					Usage:     "show the key history of a validator",
					ArgsUsage: "<valoper>",
					Action:    validatorShowAction,
				},
			},
		},
		{
			Name:  "stake",
			Usage: "begin or resolve a stake",
			Subcommands: []cli.Command{
				{
					Name:      "begin",
					ArgsUsage: "<user> <validator> <amount>",
					Action:    beginAction((*staker.Staker).StakeBegin),
				},
				{
					Name:      "commit",
					ArgsUsage: "<id>",
					Action: resolveAction(func(_ *cli.Context, s *staker.Staker, id uint64) error {
						return s.StakeCommit(id)
					}),
				},
				{
					Name:      "rollback",
					ArgsUsage: "<id>",
					Action: resolveAction(func(_ *cli.Context, s *staker.Staker, id uint64) error {
						return s.StakeRollback(id)
					}),
				},
			},
		},
		{
			Name:  "unstake",
			Usage: "begin or resolve an unstake",
			Subcommands: []cli.Command{
				{
					Name:      "begin",
					ArgsUsage: "<user> <validator> <amount>",
					Action:    beginAction((*staker.Staker).UnstakeBegin),
				},
				{
					Name:      "commit",
					ArgsUsage: "<id>",
					Flags:     []cli.Flag{nowFlag},
					Action: resolveAction(func(ctx *cli.Context, s *staker.Staker, id uint64) error {
						return s.UnstakeCommit(id, now(ctx))
					}),
				},
				{
					Name:      "rollback",
					ArgsUsage: "<id>",
					Action: resolveAction(func(_ *cli.Context, s *staker.Staker, id uint64) error {
						return s.UnstakeRollback(id)
					}),
				},
			},
		},
		{
			Name:      "stakes",
			Usage:     "list the positions of a user",
			ArgsUsage: "<user>",
			Flags:     []cli.Flag{startAfterFlag, limitFlag},
			Action:    stakesAction,
		},
		{
			Name:      "distribute",
			Usage:     "distribute rewards to the stakers of a validator",
			ArgsUsage: "<validator> <amount>",
			Action:    distributeAction,
		},
		{
			Name:      "rewards",
			Usage:     "show, or withdraw, the rewards claimable by a user",
			ArgsUsage: "<user> <validator>",
			Flags:     []cli.Flag{withdrawFlag},
			Action:    rewardsAction,
		},
		{
			Name:      "release",
			Usage:     "release the matured unbonds of a user",
			ArgsUsage: "<user>",
			Flags:     []cli.Flag{nowFlag},
			Action:    releaseAction,
		},
		{
			Name:      "slash",
			Usage:     "slash the bonded and unbonding stake of a validator",
			ArgsUsage: "<validator> <ratio>",
			Flags:     []cli.Flag{nowFlag},
			Action:    slashAction,
		},
		{
			Name:   "txs",
			Usage:  "list in-flight transactions, newest first",
			Flags:  []cli.Flag{userFlag, startAfterFlag, limitFlag},
			Action: txsAction,
		},
	}
	return app
}

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
