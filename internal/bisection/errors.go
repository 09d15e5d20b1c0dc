package bisection

import (
	"errors"
	"fmt"
)

// Тексты ошибок сверяются внешними потребителями, менять их нельзя.
var (
	ErrInvalidBounds  = errors.New("bisection: invalid bounds")
	ErrNoSignChange   = errors.New("bisection: no sign change")
	ErrMaxIterations  = errors.New("bisection: maximum iterations exceeded")
	ErrEvaluation     = errors.New("bisection: function evaluation failed")
	ErrInvalidOptions = errors.New("bisection: invalid options")
)

// InvalidBoundsError — нарушено условие a < b
type InvalidBoundsError struct {
	A, B float64
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("Invalid input: %v is greater than %v.", e.A, e.B)
}

func (e *InvalidBoundsError) Is(target error) bool { return target == ErrInvalidBounds }

// NoSignChangeError — значения функции на концах не имеют разных знаков.
// InStep отличает проверку внутри шага от начальной проверки отрезка.
type NoSignChangeError struct {
	A, B   float64
	FA, FB float64
	InStep bool
}

func (e *NoSignChangeError) Error() string {
	if e.InStep {
		return "The function evaluations must have one positive and one negative value."
	}
	return "a and b are not guaranteed to contain a root of the continous function provided"
}

func (e *NoSignChangeError) Is(target error) bool { return target == ErrNoSignChange }

// MaxIterationsExceededError — исчерпан бюджет итераций
type MaxIterationsExceededError struct {
	Max int
}

func (e *MaxIterationsExceededError) Error() string {
	return fmt.Sprintf("Maximum number of iterations (%d) reached without convergence", e.Max)
}

func (e *MaxIterationsExceededError) Is(target error) bool { return target == ErrMaxIterations }

// EvalError — f(x) вернула ошибку или NaN
type EvalError struct {
	X   float64
	Err error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bisection: evaluating f(%v): %v", e.X, e.Err)
	}
	return fmt.Sprintf("bisection: f(%v) is NaN", e.X)
}

func (e *EvalError) Unwrap() error { return e.Err }

func (e *EvalError) Is(target error) bool { return target == ErrEvaluation }
