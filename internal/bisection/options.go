package bisection

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	DefaultTolInput      = 1e-9
	DefaultTolOutput     = 1e-30
	DefaultMaxIterations = 1000
)

// Options — параметры запуска метода
type Options struct {
	// TolInput — порог по ширине отрезка |a-b|
	TolInput float64
	// TolOutput — порог по среднему |f(a)|, |f(b)|
	TolOutput float64
	// MaxIterations — сколько шагов можно сделать до отказа
	MaxIterations int
	// RecordHistory включает накопление Result.History
	RecordHistory bool
	// OnStep вызывается после каждой итерации
	OnStep func(Iter)
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		TolInput:      DefaultTolInput,
		TolOutput:     DefaultTolOutput,
		MaxIterations: DefaultMaxIterations,
		RecordHistory: true,
	}
}

func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.TolInput) || o.TolInput < 0:
		return fmt.Errorf("%w: tolInput = %v", ErrInvalidOptions, o.TolInput)
	case math.IsNaN(o.TolOutput) || o.TolOutput < 0:
		return fmt.Errorf("%w: tolOutput = %v", ErrInvalidOptions, o.TolOutput)
	case o.MaxIterations < 0:
		return fmt.Errorf("%w: maxIterations = %d", ErrInvalidOptions, o.MaxIterations)
	}
	return nil
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
