package qcircuit

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

/*
Metrics tracks objective evaluations and optimizer outcomes. The running
latency window feeds ExportMetrics; the same events are mirrored onto
Prometheus collectors registered with the registerer given to NewMetrics.
*/
type Metrics struct {
	mu sync.RWMutex

	Evaluations       int64
	FailedEvaluations int64
	Runs              int64
	Converged         int64
	BudgetExhausted   int64
	BestValue         float64
	TotalEvalTime     time.Duration

	AverageEvalLatency time.Duration
	P95EvalLatency     time.Duration
	P99EvalLatency     time.Duration

	latencyWindow []time.Duration
	windowSize    int

	evaluations *prometheus.CounterVec
	latency     prometheus.Histogram
	outcomes    *prometheus.CounterVec
	best        prometheus.Gauge
}

// NewMetrics registers its collectors with reg; a nil reg keeps them private.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		latencyWindow: make([]time.Duration, 0, 1000), // Store last 1000 measurements
		windowSize:    1000,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qcircuit",
			Name:      "objective_evaluations_total",
			Help:      "Objective evaluations, by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qcircuit",
			Name:      "objective_evaluation_seconds",
			Help:      "Wall time of one objective evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qcircuit",
			Name:      "optimizer_runs_total",
			Help:      "Finished optimizer runs, by terminal state.",
		}, []string{"state"}),
		best: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qcircuit",
			Name:      "optimizer_best_value",
			Help:      "Best objective value of the last finished run.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.evaluations, m.latency, m.outcomes, m.best)
	}

	return m
}

func (m *Metrics) recordEvaluation(startTime time.Time, err error) {
	duration := time.Since(startTime)

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.evaluations.WithLabelValues(result).Inc()
	m.latency.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Evaluations++
	if err != nil {
		m.FailedEvaluations++
	}
	m.TotalEvalTime += duration
	m.updateLatencyPercentiles(duration)
}

// recordRun counts a finished run. A NaN best means nothing was evaluated and
// leaves the best value alone.
func (m *Metrics) recordRun(state OptimizerState, best float64) {
	m.outcomes.WithLabelValues(state.String()).Inc()
	if !math.IsNaN(best) {
		m.best.Set(best)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs++
	if !math.IsNaN(best) {
		m.BestValue = best
	}
	switch state {
	case Converged:
		m.Converged++
	case BudgetExhausted:
		m.BudgetExhausted++
	}
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageEvalLatency = m.TotalEvalTime / time.Duration(m.Evaluations)

	m.latencyWindow = append(m.latencyWindow, duration)
	if len(m.latencyWindow) > m.windowSize {
		m.latencyWindow = m.latencyWindow[1:]
	}

	sorted := append([]time.Duration(nil), m.latencyWindow...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95Index := int(float64(len(sorted)) * 0.95)
	p99Index := int(float64(len(sorted)) * 0.99)
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}
	if p99Index >= len(sorted) {
		p99Index = len(sorted) - 1
	}

	m.P95EvalLatency = sorted[p95Index]
	m.P99EvalLatency = sorted[p99Index]
}

// ExportMetrics returns a snapshot suitable for printing.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"evaluations":        m.Evaluations,
		"failed_evaluations": m.FailedEvaluations,
		"runs":               m.Runs,
		"converged":          m.Converged,
		"budget_exhausted":   m.BudgetExhausted,
		"best_value":         m.BestValue,
		"avg_latency_us":     m.AverageEvalLatency.Microseconds(),
		"p95_latency_us":     m.P95EvalLatency.Microseconds(),
		"p99_latency_us":     m.P99EvalLatency.Microseconds(),
	}
}
