// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/log"
	"github.com/vechain/meshstake/lvldb"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker"
)

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name))

	var handler slog.Handler
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.vechain.meshstake")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.meshstake")
		} else {
			return filepath.Join(home, ".org.vechain.meshstake")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// openStaker opens the database under the data dir and the staker on top of
// it. The caller closes the returned database.
func openStaker(ctx *cli.Context, cfg *config) (*staker.Staker, *lvldb.LevelDB, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return nil, nil, errors.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open database [%v]", dir)
	}
	s, err := staker.New(kv.Bucket("staker/").NewStore(db), cfg.Staker)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

// withStaker runs fn against the configured staker and closes the database
// afterwards.
func withStaker(ctx *cli.Context, fn func(s *staker.Staker) error) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, db, err := openStaker(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(s)
}

func requireArgs(ctx *cli.Context, names ...string) error {
	if ctx.NArg() != len(names) {
		return errors.Errorf("%s: expected arguments %v, got %d", ctx.Command.Name, names, ctx.NArg())
	}
	return nil
}

func parseUser(s string) (mesh.Address, error) {
	addr, err := mesh.ParseAddress(s)
	if err != nil {
		return mesh.Address{}, errors.WithMessagef(err, "user [%v]", s)
	}
	return *addr, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "amount [%v]", s)
	}
	return amount, nil
}

func parseUint(s string, name string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.WithMessagef(err, "%s [%v]", name, s)
	}
	return v, nil
}

func parseRatio(s string) (decimal.Decimal, error) {
	ratio, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.WithMessagef(err, "ratio [%v]", s)
	}
	return ratio, nil
}

// now returns the --now flag or the system clock in unix seconds.
func now(ctx *cli.Context) uint64 {
	if ctx.IsSet(nowFlag.Name) {
		return ctx.Uint64(nowFlag.Name)
	}
	return uint64(time.Now().Unix())
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
