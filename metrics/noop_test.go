// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("count1").Add(1)
	CounterVec("countVec1", []string{"op"}).AddWithLabel(1, map[string]string{"unknown": "label"})
	Gauge("gauge1").Set(3)
	HistogramVec("hist1", []string{"op"}, nil).ObserveWithLabels(1, map[string]string{"unknown": "label"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
