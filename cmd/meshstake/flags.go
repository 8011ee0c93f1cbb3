// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "path to a YAML configuration file",
		EnvVar: "MESHSTAKE_CONFIG",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for the staking database",
		EnvVar: "MESHSTAKE_DATA_DIR",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-5)",
		EnvVar: "MESHSTAKE_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "MESHSTAKE_JSON_LOGS",
	}
	unbondingPeriodFlag = cli.Uint64Flag{
		Name:   "unbonding-period",
		Usage:  "seconds unstaked funds stay slashable before release",
		EnvVar: "MESHSTAKE_UNBONDING_PERIOD",
	}

	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8680",
		Usage:  "API service listening address",
		EnvVar: "MESHSTAKE_API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: "MESHSTAKE_API_CORS",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:   "enable-api-logs",
		Usage:  "enables API requests logging",
		EnvVar: "MESHSTAKE_ENABLE_API_LOGS",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables prometheus metrics collection, served on /metrics",
		EnvVar: "MESHSTAKE_ENABLE_METRICS",
	}
	relayURLFlag = cli.StringFlag{
		Name:   "relay-url",
		Usage:  "counterparty endpoint packets are posted to; relay endpoints are disabled when empty",
		EnvVar: "MESHSTAKE_RELAY_URL",
	}
	relayTimeoutFlag = cli.DurationFlag{
		Name:   "relay-timeout",
		Value:  10 * time.Minute,
		Usage:  "how long a sent stake change may stay unacknowledged",
		EnvVar: "MESHSTAKE_RELAY_TIMEOUT",
	}

	startAfterFlag = cli.StringFlag{
		Name:  "start-after",
		Usage: "return entries after this key",
	}
	limitFlag = cli.IntFlag{
		Name:  "limit",
		Value: 10,
		Usage: "maximum number of entries to return",
	}
	nowFlag = cli.Uint64Flag{
		Name:  "now",
		Usage: "current time in unix seconds, defaults to the system clock",
	}
	userFlag = cli.StringFlag{
		Name:  "user",
		Usage: "only show entries of this user",
	}
	withdrawFlag = cli.BoolFlag{
		Name:  "withdraw",
		Usage: "mark the claimable rewards as withdrawn",
	}
)
