package bisection

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square2(x float64) float64 { return x*x - 2 }

func cubic(x float64) float64 { return math.Pow(x-10.75, 3) }

func identity(x float64) float64 { return x }

// countingFunc считает вызовы Eval
type countingFunc struct {
	fn    func(float64) float64
	calls int
}

func (c *countingFunc) Eval(x float64) (float64, error) {
	c.calls++
	return c.fn(x), nil
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, 1.5, Midpoint(1, 2))
	assert.Equal(t, 0.0, Midpoint(-3, 3))
	assert.Equal(t, -2.25, Midpoint(-4, -0.5))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		a := rng.NormFloat64() * 1e6
		b := rng.NormFloat64() * 1e6
		c := Midpoint(a, b)
		assert.GreaterOrEqual(t, c, math.Min(a, b))
		assert.LessOrEqual(t, c, math.Max(a, b))
	}
}

func TestCheckBounds(t *testing.T) {
	require.NoError(t, CheckBounds(1, 2))

	err := CheckBounds(10, -3)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid input: 10 is greater than -3.")
	assert.ErrorIs(t, err, ErrInvalidBounds)

	var be *InvalidBoundsError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 10.0, be.A)
	assert.Equal(t, -3.0, be.B)

	assert.EqualError(t, CheckBounds(2.5, 2.5), "Invalid input: 2.5 is greater than 2.5.")
	assert.ErrorIs(t, CheckBounds(math.NaN(), 1), ErrInvalidBounds)
}

func TestCheckSignCompatible(t *testing.T) {
	tests := []struct {
		name   string
		fa, fb float64
		ok     bool
	}{
		{"neg-pos", -1, 1, true},
		{"pos-neg", 2, -0.5, true},
		{"both positive", 1, 2, false},
		{"both negative", -1, -2, false},
		{"zero at a", 0, 1, false},
		{"zero at b", -1, 0, false},
		{"both zero", 0, 0, false},
		{"nan", math.NaN(), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSignCompatible(0, 1, tt.fa, tt.fb)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrNoSignChange)
			assert.EqualError(t, err, "a and b are not guaranteed to contain a root of the continous function provided")
		})
	}
}

func TestCheckMaxIterations(t *testing.T) {
	assert.NoError(t, CheckMaxIterations(0, 10))
	assert.NoError(t, CheckMaxIterations(10, 10))

	err := CheckMaxIterations(11, 10)
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.EqualError(t, err, "Maximum number of iterations (10) reached without convergence")
}

func TestUpdateBracket(t *testing.T) {
	tests := []struct {
		name string
		in   State
		c    float64
		fc   float64
		want State
	}{
		{
			name: "b moves down",
			in:   State{A: 1, B: 2, FA: -0.5, FB: 0.5},
			c:    1.5, fc: 0.2,
			want: State{A: 1, B: 1.5, FA: -0.5, FB: 0.2},
		},
		{
			name: "a moves up",
			in:   State{A: 1, B: 2, FA: 0.5, FB: -0.5},
			c:    1.5, fc: 0.2,
			want: State{A: 1.5, B: 2, FA: 0.2, FB: -0.5},
		},
		{
			name: "exact zero at midpoint",
			in:   State{A: 1, B: 2, FA: -0.5, FB: 0.5},
			c:    1.5, fc: 0,
			want: State{A: 1.5, B: 1.5},
		},
		{
			name: "exact zero at a",
			in:   State{A: 1, B: 2, FA: 0, FB: 0.5},
			c:    1.5, fc: -0.2,
			want: State{A: 1, B: 1},
		},
		{
			name: "exact zero at b",
			in:   State{A: 1, B: 2, FA: -0.5, FB: 0},
			c:    1.5, fc: 0.2,
			want: State{A: 2, B: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdateBracket(tt.in, tt.c, tt.fc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateBracket_SameSign(t *testing.T) {
	for _, s := range []State{
		{A: 1, B: 2, FA: 0.5, FB: 0.5},
		{A: 1, B: 2, FA: -0.5, FB: -0.5},
	} {
		_, err := UpdateBracket(s, 1.5, 0.2)
		assert.ErrorIs(t, err, ErrNoSignChange)
		assert.EqualError(t, err, "The function evaluations must have one positive and one negative value.")

		var se *NoSignChangeError
		require.ErrorAs(t, err, &se)
		assert.True(t, se.InStep)
	}
}

func TestUpdateBracket_SubBracket(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		a := rng.Float64()*200 - 100
		b := a + rng.Float64()*50 + 1e-6
		fa := -(rng.Float64() + 1e-3)
		fb := rng.Float64() + 1e-3
		if rng.Intn(2) == 0 {
			fa, fb = -fa, -fb
		}
		c := Midpoint(a, b)
		fc := rng.NormFloat64()

		got, err := UpdateBracket(State{A: a, B: b, FA: fa, FB: fb}, c, fc)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.A, a)
		assert.LessOrEqual(t, got.B, b)
		assert.LessOrEqual(t, got.A, got.B)
		assert.True(t, got.A == c || got.B == c)
	}
}

func TestUpdateStep(t *testing.T) {
	f := FuncOf(square2)

	t.Run("a moves to midpoint", func(t *testing.T) {
		got, err := UpdateStep(f, State{A: -1, B: 2, FA: square2(-1), FB: square2(2)})
		require.NoError(t, err)
		assert.Equal(t, State{A: 0.5, B: 2, FA: square2(0.5), FB: 2}, got)
	})

	t.Run("b moves to midpoint", func(t *testing.T) {
		got, err := UpdateStep(f, State{A: 1, B: 2, FA: square2(1), FB: square2(2)})
		require.NoError(t, err)
		assert.Equal(t, 1.0, got.A)
		assert.Equal(t, 1.5, got.B)
		assert.Equal(t, -1.0, got.FA)
		assert.Equal(t, square2(1.5), got.FB)
	})

	t.Run("single evaluation", func(t *testing.T) {
		cf := &countingFunc{fn: square2}
		_, err := UpdateStep(cf, State{A: 1, B: 2, FA: -1, FB: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, cf.calls)
	})
}

func TestConverged(t *testing.T) {
	assert.True(t, Converged(State{A: 1, B: 1 + 1e-10, FA: -0.5, FB: 0.5}, 1e-9, 1e-9))
	assert.True(t, Converged(State{A: 1, B: 2, FA: 1e-10, FB: 1e-10}, 1e-9, 1e-9))
	assert.True(t, Converged(State{A: 1, B: 1 + 1e-10, FA: 0, FB: 1e-10}, 1e-9, 1e-9))
	assert.True(t, Converged(State{}, 1e-9, 1e-9))

	assert.False(t, Converged(State{A: 1, B: 2, FA: -0.5, FB: 0.5}, 1e-9, 1e-9))
	assert.False(t, Converged(State{A: 1, B: 1.1, FA: -1, FB: 1}, 1e-2, 1e-2))

	// среднее, а не сумма
	assert.True(t, Converged(State{A: 0, B: 1, FA: -0.6, FB: 0.6}, 1e-9, 0.7))

	s := State{A: 1, B: 1.5, FA: -1, FB: 0.25}
	first := Converged(s, 1e-3, 1e-3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Converged(s, 1e-3, 1e-3))
	}
}

func TestRun_Sqrt2(t *testing.T) {
	opts := DefaultOptions()
	opts.TolInput = 1e-10
	opts.TolOutput = 1e-20

	cf := &countingFunc{fn: square2}
	res, err := Run(cf, 0, 10, opts)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt2, res.Root, 1e-9)
	assert.Positive(t, res.Iterations)
	assert.LessOrEqual(t, res.Iterations, opts.MaxIterations)
	assert.Len(t, res.History, res.Iterations)
	assert.Equal(t, 2+res.Iterations, cf.calls)
	assert.Equal(t, State{A: 0, B: 10, FA: -2, FB: 98}, res.Initial)

	for i, it := range res.History {
		assert.Equal(t, i+1, it.K)
	}
	last := res.History[len(res.History)-1].State
	assert.True(t, Converged(last, opts.TolInput, opts.TolOutput))
}

func TestRun_Cubic(t *testing.T) {
	res, err := Run(FuncOf(cubic), 0, 20, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 10.75, res.Root, 1e-8)
}

func TestRun_NoSignChange(t *testing.T) {
	_, err := Run(FuncOf(identity), 5, 10, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSignChange)
	assert.EqualError(t, err, "a and b are not guaranteed to contain a root of the continous function provided")
}

func TestRun_InvalidBounds(t *testing.T) {
	cf := &countingFunc{fn: identity}
	_, err := Run(cf, 10, -3, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBounds)
	assert.EqualError(t, err, "Invalid input: 10 is greater than -3.")
	assert.Zero(t, cf.calls)
}

func TestRun_MaxIterations(t *testing.T) {
	opts := DefaultOptions()
	opts.TolInput = 1e-10
	opts.MaxIterations = 10

	cf := &countingFunc{fn: cubic}
	_, err := Run(cf, 0, 20, opts)
	require.Error(t, err)
	assert.EqualError(t, err, "Maximum number of iterations (10) reached without convergence")

	var me *MaxIterationsExceededError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 10, me.Max)
	// бюджет проверяется до шага: 11 шагов, затем отказ
	assert.Equal(t, 2+11, cf.calls)
}

// 10.75 не лежит на двоичной сетке [0, 20], точного нуля не будет
func TestRun_MaxIterationsDefaultTolerances(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 10

	cf := &countingFunc{fn: cubic}
	res, err := Run(cf, 0, 20, opts)
	assert.EqualError(t, err, "Maximum number of iterations (10) reached without convergence")
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, 2+11, cf.calls)
}

func TestRun_ExactRoot(t *testing.T) {
	res, err := Run(FuncOf(identity), -1, 3, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Root)
	assert.Equal(t, 2, res.Iterations)
	require.Len(t, res.History, 2)
	assert.Equal(t, Iter{K: 1, State: State{A: -1, B: 1, FA: -1, FB: 1}}, res.History[0])
	assert.Equal(t, Iter{K: 2, State: State{}}, res.History[1])
}

func TestRun_AlreadyConverged(t *testing.T) {
	res, err := Run(FuncOf(identity), -1e-12, 1e-12, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.Empty(t, res.History)
	assert.Equal(t, 0.0, res.Root)
}

func TestRun_WithoutHistory(t *testing.T) {
	var steps []Iter
	opts := DefaultOptions()
	opts.RecordHistory = false
	opts.OnStep = func(it Iter) { steps = append(steps, it) }

	res, err := Run(FuncOf(square2), 1, 2, opts)
	require.NoError(t, err)
	assert.Nil(t, res.History)
	assert.Len(t, steps, res.Iterations)
	assert.Equal(t, res.Iterations, steps[len(steps)-1].K)
}

func TestRun_EvalErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("error from f", func(t *testing.T) {
		f := funcErr(func(x float64) (float64, error) {
			if x > 5 {
				return 0, boom
			}
			return x - 1, nil
		})
		_, err := Run(f, 0, 10, DefaultOptions())
		assert.ErrorIs(t, err, ErrEvaluation)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nan at midpoint", func(t *testing.T) {
		f := FuncOf(func(x float64) float64 {
			if x == 0.5 {
				return math.NaN()
			}
			return x - 0.7
		})
		_, err := Run(f, 0, 1, DefaultOptions())
		var ee *EvalError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, 0.5, ee.X)
		assert.EqualError(t, err, "bisection: f(0.5) is NaN")
	})
}

func TestRun_InvalidOptions(t *testing.T) {
	for _, mutate := range []func(*Options){
		func(o *Options) { o.TolInput = -1 },
		func(o *Options) { o.TolOutput = math.NaN() },
		func(o *Options) { o.MaxIterations = -5 },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		_, err := Run(FuncOf(square2), 0, 2, opts)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	}
}

type funcErr func(float64) (float64, error)

func (f funcErr) Eval(x float64) (float64, error) { return f(x) }
