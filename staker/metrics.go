// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/meshstake/metrics"
	"github.com/vechain/meshstake/staker/reverts"
)

var (
	metricOps        = metrics.LazyLoadCounterVec("staker_ops_count", []string{"op", "result"})
	metricPendingTxs = metrics.LazyLoadGauge("staker_pending_txs")
	metricSlashed    = metrics.LazyLoadCounter("staker_slash_count")
)

func observeOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
		if reverts.IsRevertErr(err) {
			result = "rejected"
		}
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": result})
}
