package bisection

import (
	"math"

	"go.uber.org/zap"
)

// State — отрезок и значения функции на его концах.
// Каждый шаг возвращает новое значение, старое не меняется.
type State struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	FA float64 `json:"fa"`
	FB float64 `json:"fb"`
}

// Width — длина отрезка b-a
func (s State) Width() float64 {
	return s.B - s.A
}

// Iter — одна итерация метода бисекции
type Iter struct {
	K int `json:"k"`
	State
}

// Result — итог работы метода
type Result struct {
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	Initial    State   `json:"initial"`
	History    []Iter  `json:"history,omitempty"`
}

// Midpoint — середина отрезка
func Midpoint(a, b float64) float64 {
	return (a + b) / 2
}

func CheckBounds(a, b float64) error {
	if !(a < b) {
		return &InvalidBoundsError{A: a, B: b}
	}
	return nil
}

// CheckSignCompatible требует строго разных знаков: ноль на границе
// исходного отрезка не принимается.
func CheckSignCompatible(a, b, fa, fb float64) error {
	if (fa > 0 && fb < 0) || (fa < 0 && fb > 0) {
		return nil
	}
	return &NoSignChangeError{A: a, B: b, FA: fa, FB: fb}
}

func CheckMaxIterations(n, max int) error {
	if n > max {
		return &MaxIterationsExceededError{Max: max}
	}
	return nil
}

// UpdateBracket сужает отрезок по середине c, сохраняя смену знака.
//
// Точный ноль в c, a или b стягивает оба конца в эту точку и обнуляет
// оба значения функции, даже если это ещё не достигнутый конец отрезка.
func UpdateBracket(s State, c, fc float64) (State, error) {
	if sign(s.FA) == sign(s.FB) {
		return State{}, &NoSignChangeError{A: s.A, B: s.B, FA: s.FA, FB: s.FB, InStep: true}
	}

	switch {
	case fc == 0:
		return collapse(c), nil
	case s.FA == 0:
		return collapse(s.A), nil
	case s.FB == 0:
		return collapse(s.B), nil
	case sign(s.FA) == sign(fc):
		return State{A: c, B: s.B, FA: fc, FB: s.FB}, nil
	default:
		return State{A: s.A, B: c, FA: s.FA, FB: fc}, nil
	}
}

// UpdateStep вычисляет f в середине отрезка ровно один раз и сужает отрезок.
func UpdateStep(f Func, s State) (State, error) {
	c := Midpoint(s.A, s.B)
	fc, err := eval(f, c)
	if err != nil {
		return State{}, err
	}
	return UpdateBracket(s, c, fc)
}

// Converged — |a-b| < tolInput или среднее |f(a)|, |f(b)| < tolOutput
func Converged(s State, tolInput, tolOutput float64) bool {
	if math.Abs(s.A-s.B) < tolInput {
		return true
	}
	return (math.Abs(s.FA)+math.Abs(s.FB))/2 < tolOutput
}

// Run — метод бисекции на отрезке [a, b].
// Любая ошибка сразу возвращается вызывающему, частичный результат не отдаётся.
func Run(f Func, a, b float64, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	log := opts.logger()

	if err := CheckBounds(a, b); err != nil {
		return Result{}, err
	}
	fa, err := eval(f, a)
	if err != nil {
		return Result{}, err
	}
	fb, err := eval(f, b)
	if err != nil {
		return Result{}, err
	}
	if err := CheckSignCompatible(a, b, fa, fb); err != nil {
		return Result{}, err
	}

	s := State{A: a, B: b, FA: fa, FB: fb}
	res := Result{Initial: s}

	n := 0
	for !Converged(s, opts.TolInput, opts.TolOutput) {
		if err := CheckMaxIterations(n, opts.MaxIterations); err != nil {
			log.Debug("bisection: budget exhausted",
				zap.Int("max", opts.MaxIterations),
				zap.Float64("width", s.Width()))
			return Result{}, err
		}
		n++

		next, err := UpdateStep(f, s)
		if err != nil {
			return Result{}, err
		}
		s = next

		it := Iter{K: n, State: s}
		if opts.RecordHistory {
			res.History = append(res.History, it)
		}
		if opts.OnStep != nil {
			opts.OnStep(it)
		}
		log.Debug("bisection: step",
			zap.Int("k", n),
			zap.Float64("a", s.A),
			zap.Float64("b", s.B),
			zap.Float64("fa", s.FA),
			zap.Float64("fb", s.FB))
	}

	res.Root = Midpoint(s.A, s.B)
	res.Iterations = n
	return res, nil
}

func eval(f Func, x float64) (float64, error) {
	y, err := f.Eval(x)
	if err != nil {
		return math.NaN(), &EvalError{X: x, Err: err}
	}
	if math.IsNaN(y) {
		return math.NaN(), &EvalError{X: x}
	}
	return y, nil
}

func collapse(x float64) State {
	return State{A: x, B: x}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
