// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	relayapi "github.com/vechain/meshstake/api/relay"
	"github.com/vechain/meshstake/api/rewards"
	"github.com/vechain/meshstake/api/stakes"
	"github.com/vechain/meshstake/api/txs"
	"github.com/vechain/meshstake/api/validators"
	"github.com/vechain/meshstake/log"
	"github.com/vechain/meshstake/metrics"
	"github.com/vechain/meshstake/relay"
	"github.com/vechain/meshstake/staker"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router. The relay endpoints are mounted only when relayer is
// not nil.
func New(s *staker.Staker, relayer *relay.Relayer, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	validators.New(s).
		Mount(router, "/validators")
	stakes.New(s).
		Mount(router, "/stakes")
	rewards.New(s).
		Mount(router, "/rewards")
	txs.New(s).
		Mount(router, "/txs")
	if relayer != nil {
		relayapi.New(relayer).
			Mount(router, "/relay")
	}

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
