package bisection

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Func — интерфейс для непрерывной функции f(x)
type Func interface {
	Eval(x float64) (float64, error)
}

// FuncOf превращает обычную функцию в Func
type FuncOf func(x float64) float64

func (f FuncOf) Eval(x float64) (float64, error) {
	return f(x), nil
}

var decimalComma = regexp.MustCompile(`(\d),(\d)`)

// exprFunc — реализация Func на основе govaluate
type exprFunc struct {
	expr *govaluate.EvaluableExpression
}

var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow: ожидается 2 аргумента, получено %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ожидается 1 аргумент, получено %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

// NewExprFunc создаёт вычислимую функцию по строке f(x)
func NewExprFunc(expr string) (Func, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, fmt.Errorf("пустое выражение")
	}

	// нормализуем запятые в десятичной записи: "1,5" -> "1.5",
	// но "pow(x, 2)" не трогаем
	src = decimalComma.ReplaceAllString(src, "$1.$2")

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(src, exprFuncs)
	if err != nil {
		return nil, err
	}

	return &exprFunc{expr: parsed}, nil
}

// Eval не разделяет карту параметров между вызовами, поэтому
// одну функцию можно вычислять из нескольких горутин.
func (f *exprFunc) Eval(x float64) (float64, error) {
	v, err := f.expr.Evaluate(map[string]interface{}{"x": x})
	if err != nil {
		return math.NaN(), err
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("выражение не вернуло число: %T", v)
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}
