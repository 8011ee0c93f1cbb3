// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/vechain/meshstake/log"
)

// RequestLoggerHandler returns a http handler that logs every request after it is served.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)

		logger.Info("API Request",
			"timestamp", start.Unix(),
			"URI", r.URL.String(),
			"Method", r.Method,
			"DurationMs", time.Since(start).Milliseconds(),
		)
	})
}
