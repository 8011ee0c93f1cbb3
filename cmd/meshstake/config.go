// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/meshstake/api"
	"github.com/vechain/meshstake/relay"
	"github.com/vechain/meshstake/staker"
)

// fileConfig is the layout of the YAML configuration file. Empty values keep
// the defaults.
type fileConfig struct {
	Staker struct {
		UnbondingPeriod uint64 `yaml:"unbonding_period"`
		PointsScale     string `yaml:"points_scale"`
		MaxSlashing     string `yaml:"max_slashing"`
	} `yaml:"staker"`
	API struct {
		Addr    string `yaml:"addr"`
		Cors    string `yaml:"cors"`
		Logs    bool   `yaml:"logs"`
		Metrics bool   `yaml:"metrics"`
	} `yaml:"api"`
	Relay struct {
		URL            string        `yaml:"url"`
		Timeout        time.Duration `yaml:"timeout"`
		ExpireInterval time.Duration `yaml:"expire_interval"`
	} `yaml:"relay"`
}

type config struct {
	Staker   staker.Config
	API      api.Options
	APIAddr  string
	Relay    relay.Options
	RelayURL string
}

func defaultConfig() *config {
	return &config{
		Staker:  staker.DefaultConfig(),
		APIAddr: apiAddrFlag.Value,
		Relay:   relay.DefaultOptions(),
	}
}

func readConfigFile(path string) (*fileConfig, error) {
	content, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &fc, nil
}

func (c *config) applyFile(fc *fileConfig) error {
	if fc.Staker.UnbondingPeriod != 0 {
		c.Staker.UnbondingPeriod = fc.Staker.UnbondingPeriod
	}
	if fc.Staker.PointsScale != "" {
		scale, err := uint256.FromDecimal(fc.Staker.PointsScale)
		if err != nil {
			return errors.Wrap(err, "staker.points_scale")
		}
		c.Staker.PointsScale = scale
	}
	if fc.Staker.MaxSlashing != "" {
		ceil, err := decimal.NewFromString(fc.Staker.MaxSlashing)
		if err != nil {
			return errors.Wrap(err, "staker.max_slashing")
		}
		c.Staker.MaxSlashing = ceil
	}
	if fc.API.Addr != "" {
		c.APIAddr = fc.API.Addr
	}
	c.API.AllowedOrigins = fc.API.Cors
	c.API.EnableReqLogger = fc.API.Logs
	c.API.EnableMetrics = fc.API.Metrics
	c.RelayURL = fc.Relay.URL
	if fc.Relay.Timeout > 0 {
		c.Relay.Timeout = fc.Relay.Timeout
	}
	if fc.Relay.ExpireInterval > 0 {
		c.Relay.ExpireInterval = fc.Relay.ExpireInterval
	}
	return nil
}

// applyFlags overrides the configuration with flags set on the command line
// or through MESHSTAKE_* environment variables.
func (c *config) applyFlags(ctx *cli.Context) {
	if ctx.GlobalIsSet(unbondingPeriodFlag.Name) {
		c.Staker.UnbondingPeriod = ctx.GlobalUint64(unbondingPeriodFlag.Name)
	}
	if ctx.IsSet(apiAddrFlag.Name) {
		c.APIAddr = ctx.String(apiAddrFlag.Name)
	}
	if ctx.IsSet(apiCorsFlag.Name) {
		c.API.AllowedOrigins = ctx.String(apiCorsFlag.Name)
	}
	if ctx.IsSet(enableAPILogsFlag.Name) {
		c.API.EnableReqLogger = ctx.Bool(enableAPILogsFlag.Name)
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		c.API.EnableMetrics = ctx.Bool(enableMetricsFlag.Name)
	}
	if ctx.IsSet(relayURLFlag.Name) {
		c.RelayURL = ctx.String(relayURLFlag.Name)
	}
	if ctx.IsSet(relayTimeoutFlag.Name) {
		c.Relay.Timeout = ctx.Duration(relayTimeoutFlag.Name)
	}
}

// loadDotEnv loads a .env file from the working directory, if present, into
// the environment. It must run before flags are parsed.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "load .env")
	}
	return nil
}

// loadConfig builds the configuration from defaults, the optional config file
// and finally the flags.
func loadConfig(ctx *cli.Context) (*config, error) {
	cfg := defaultConfig()
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		fc, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, err
		}
	}
	cfg.applyFlags(ctx)

	if err := cfg.Staker.Validate(); err != nil {
		return nil, errors.Wrap(err, "staker config")
	}
	return cfg, nil
}
