package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"bisection/internal/bisection"
	"bisection/internal/logging"
)

// Config — вся конфигурация приложения
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Solver  SolverConfig
}

type ServerConfig struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port string `envconfig:"PORT" default:"8080"`
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

func (c LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Development = c.Development
	return cfg
}

// SolverConfig — значения по умолчанию для запусков метода
type SolverConfig struct {
	TolInput      float64 `envconfig:"BISECT_TOL_INPUT" default:"1e-9"`
	TolOutput     float64 `envconfig:"BISECT_TOL_OUTPUT" default:"1e-30"`
	MaxIterations int     `envconfig:"BISECT_MAX_ITER" default:"1000"`
	// Samples — число точек графика f на [a, b]
	Samples int `envconfig:"BISECT_SAMPLES" default:"400"`
}

func (c SolverConfig) Options() bisection.Options {
	opts := bisection.DefaultOptions()
	opts.TolInput = c.TolInput
	opts.TolOutput = c.TolOutput
	opts.MaxIterations = c.MaxIterations
	return opts
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Solver.Samples < 2 {
		return nil, fmt.Errorf("failed to load config: BISECT_SAMPLES must be at least 2, got %d", cfg.Solver.Samples)
	}
	if err := cfg.Solver.Options().Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Logging: LogConfig{
			Level: "info",
		},
		Solver: SolverConfig{
			TolInput:      bisection.DefaultTolInput,
			TolOutput:     bisection.DefaultTolOutput,
			MaxIterations: bisection.DefaultMaxIterations,
			Samples:       400,
		},
	}
}
