package metadata

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Values of the result label of oasmeta_requests_total.
const (
	resultUnmatched = "unmatched"
	resultPath      = "path"
	resultOperation = "operation"
	resultError     = "error"
)

type metrics struct {
	requests     *prometheus.CounterVec
	parserRuns   *prometheus.CounterVec
	parseErrors  *prometheus.CounterVec
	cacheEntries prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{}
	var err error

	if m.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oasmeta_requests_total",
		Help: "Requests seen by the metadata middleware, by match result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.parserRuns, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oasmeta_parser_runs_total",
		Help: "Request parser invocations that read request state.",
	}, []string{"parser"})); err != nil {
		return nil, err
	}
	if m.parseErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oasmeta_parse_errors_total",
		Help: "Request parser invocations that failed.",
	}, []string{"parser"})); err != nil {
		return nil, err
	}
	if m.cacheEntries, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oasmeta_cache_entries",
		Help: "Number of compiled path templates.",
	})); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector registered by an
// earlier middleware.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
