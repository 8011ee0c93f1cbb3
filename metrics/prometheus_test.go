// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("prom_count")
	countVec := CounterVec("prom_count_vec", []string{"zeroOrOne"})
	gauge := Gauge("prom_gauge")
	histVec := HistogramVec("prom_hist_vec", []string{"zeroOrOne"}, BucketHTTPReqs)

	total := 0
	for i := range 10 {
		labels := map[string]string{"zeroOrOne": strconv.Itoa(i % 2)}
		count.Add(1)
		countVec.AddWithLabel(int64(i), labels)
		histVec.ObserveWithLabels(int64(i), labels)
		gauge.Add(int64(i))
		total += i
	}
	gauge.Add(-5)

	// same name returns the same meter
	Counter("prom_count").Add(1)

	families := gather(t)
	require.Equal(t, float64(11), families["meshstake_prom_count"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(total-5), families["meshstake_prom_gauge"].Metric[0].GetGauge().GetValue())

	vec := families["meshstake_prom_count_vec"].Metric
	require.Len(t, vec, 2)
	require.Equal(t, float64(total), vec[0].GetCounter().GetValue()+vec[1].GetCounter().GetValue())

	hist := families["meshstake_prom_hist_vec"].Metric
	require.Len(t, hist, 2)
	require.Equal(t, float64(total), hist[0].GetHistogram().GetSampleSum()+hist[1].GetHistogram().GetSampleSum())
	require.Equal(t, uint64(10), hist[0].GetHistogram().GetSampleCount()+hist[1].GetHistogram().GetSampleCount())

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "meshstake_prom_count 11")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		Counter("noopCounter"),
		CounterVec("noopCounterVec", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}
