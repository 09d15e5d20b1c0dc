package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bisection/internal/bisection"
)

// Исходы запуска для метки outcome
const (
	OutcomeConverged     = "converged"
	OutcomeInvalidBounds = "invalid_bounds"
	OutcomeNoSignChange  = "no_sign_change"
	OutcomeMaxIterations = "max_iterations"
	OutcomeEvalError     = "eval_error"
	OutcomeOther         = "error"
)

// Metrics — счётчики запусков метода бисекции
type Metrics struct {
	Solves     *prometheus.CounterVec
	Iterations prometheus.Histogram
	ActiveRuns prometheus.Gauge
}

// New регистрирует метрики в reg; в тестах передаётся свой реестр.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Solves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bisection_solves_total",
				Help: "Total number of bisection runs by outcome",
			},
			[]string{"outcome"},
		),
		Iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bisection_iterations",
			Help:    "Iterations needed by converged runs",
			Buckets: prometheus.LinearBuckets(0, 10, 12),
		}),
		ActiveRuns: f.NewGauge(prometheus.GaugeOpts{
			Name: "bisection_active_runs",
			Help: "Runs currently iterating",
		}),
	}
}

// Observe учитывает завершённый запуск
func (m *Metrics) Observe(res bisection.Result, err error) {
	outcome := Outcome(err)
	m.Solves.WithLabelValues(outcome).Inc()
	if err == nil {
		m.Iterations.Observe(float64(res.Iterations))
	}
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeConverged
	case errors.Is(err, bisection.ErrInvalidBounds):
		return OutcomeInvalidBounds
	case errors.Is(err, bisection.ErrNoSignChange):
		return OutcomeNoSignChange
	case errors.Is(err, bisection.ErrMaxIterations):
		return OutcomeMaxIterations
	case errors.Is(err, bisection.ErrEvaluation):
		return OutcomeEvalError
	default:
		return OutcomeOther
	}
}
