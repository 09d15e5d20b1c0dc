package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"bisection/internal/bisection"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeConverged, Outcome(nil))
	assert.Equal(t, OutcomeInvalidBounds, Outcome(bisection.CheckBounds(1, 0)))
	assert.Equal(t, OutcomeNoSignChange, Outcome(bisection.CheckSignCompatible(0, 1, 1, 1)))
	assert.Equal(t, OutcomeMaxIterations, Outcome(bisection.CheckMaxIterations(2, 1)))
	assert.Equal(t, OutcomeEvalError, Outcome(&bisection.EvalError{X: 1}))
	assert.Equal(t, OutcomeOther, Outcome(errors.New("other")))
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe(bisection.Result{Iterations: 30}, nil)
	m.Observe(bisection.Result{Iterations: 12}, nil)
	m.Observe(bisection.Result{}, bisection.CheckBounds(3, 1))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Solves.WithLabelValues(OutcomeConverged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues(OutcomeInvalidBounds)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Iterations))

	m.ActiveRuns.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveRuns))
}
