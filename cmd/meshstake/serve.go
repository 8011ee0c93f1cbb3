// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/meshstake/api"
	"github.com/vechain/meshstake/metrics"
	"github.com/vechain/meshstake/relay"
	"github.com/vechain/meshstake/staker"
)

const (
	relaySendTimeout = 10 * time.Second
	shutdownTimeout  = 5 * time.Second
)

type server struct {
	listener net.Listener
	srv      *http.Server
	relayer  *relay.Relayer
}

// newServer binds the API listener and, when a relay URL is configured, the
// relayer with its timeouts re-armed for changes left pending.
func newServer(s *staker.Staker, cfg *config) (*server, error) {
	var relayer *relay.Relayer
	if cfg.RelayURL != "" {
		var err error
		relayer, err = relay.New(s, relay.NewHTTPChannel(cfg.RelayURL, relaySendTimeout), cfg.Relay)
		if err != nil {
			return nil, err
		}
		if _, err := relayer.Recover(); err != nil {
			return nil, errors.Wrap(err, "recover pending changes")
		}
	}

	listener, err := net.Listen("tcp", cfg.APIAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen API addr [%v]", cfg.APIAddr)
	}
	return &server{
		listener: listener,
		srv: &http.Server{
			Handler:           api.New(s, relayer, cfg.API),
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
		},
		relayer: relayer,
	}, nil
}

func (srv *server) URL() string {
	return "http://" + srv.listener.Addr().String()
}

// run serves until ctx is done, then shuts the API down gracefully.
func (srv *server) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.srv.Serve(srv.listener); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	if srv.relayer != nil {
		g.Go(func() error {
			srv.relayer.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.API.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	s, db, err := openStaker(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing database..."); db.Close() }()

	srv, err := newServer(s, cfg)
	if err != nil {
		return err
	}
	logger.Info("API server started", "url", srv.URL(), "relay", cfg.RelayURL != "", "metrics", cfg.API.EnableMetrics)

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.run(exitCtx)
}
