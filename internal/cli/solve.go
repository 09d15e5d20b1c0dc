package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bisection/internal/bisection"
	"bisection/internal/chart"
	"bisection/internal/metrics"
)

// Имена файлов графиков в --plot-dir
const (
	ConvergencePlot = "bisection_results.png"
	FunctionPlot    = "function_vis.png"
)

type SolveOptions struct {
	*RootOptions
	Expr      string
	A, B      float64
	TolInput  float64
	TolOutput float64
	MaxIter   int
	PlotDir   string
}

// SolveOutput — результат команды solve
type SolveOutput struct {
	Root       float64  `json:"root"`
	Iterations int      `json:"iterations"`
	Plots      []string `json:"plots,omitempty"`
}

func (o SolveOutput) String() string {
	s := fmt.Sprintf("Root: %s\nNumber of iterations: %d",
		strconv.FormatFloat(o.Root, 'g', -1, 64), o.Iterations)
	for _, p := range o.Plots {
		s += "\nPlot: " + p
	}
	return s
}

func NewSolveCommand(root *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: root}
	defaults := bisection.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find a root of f on [a, b]",
		Example: `  bisect solve --func "x*x - 2" --a 1 --b 2
  bisect solve --func "pow(x - 10.75, 3)" --a 0 --b 20 --plot-dir figs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Expr, "func", "", "function of x, e.g. \"x*x - 2\"")
	cmd.Flags().Float64Var(&opts.A, "a", 0, "left end of the bracket")
	cmd.Flags().Float64Var(&opts.B, "b", 0, "right end of the bracket")
	cmd.Flags().Float64Var(&opts.TolInput, "tol-input", defaults.TolInput, "stop when |b - a| is below this")
	cmd.Flags().Float64Var(&opts.TolOutput, "tol-output", defaults.TolOutput, "stop when mean |f(a)|, |f(b)| is below this")
	cmd.Flags().IntVar(&opts.MaxIter, "max-iter", defaults.MaxIterations, "iteration budget")
	cmd.Flags().StringVar(&opts.PlotDir, "plot-dir", "", "write convergence and function plots to this directory")
	_ = cmd.MarkFlagRequired("func")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *SolveOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := opts.logger()
	defer func() { _ = logger.Sync() }()

	f, err := bisection.NewExprFunc(opts.Expr)
	if err != nil {
		_ = out.Error("invalid_function", err.Error())
		return WrapExitError(ExitCommandError, "invalid function", err)
	}

	bopts := bisection.DefaultOptions()
	bopts.TolInput = opts.TolInput
	bopts.TolOutput = opts.TolOutput
	bopts.MaxIterations = opts.MaxIter
	bopts.Logger = logger

	res, err := bisection.Run(f, opts.A, opts.B, bopts)
	if err != nil {
		code := metrics.Outcome(err)
		_ = out.Error(code, err.Error())
		if code == metrics.OutcomeOther {
			return WrapExitError(ExitCommandError, "solve", err)
		}
		return WrapExitError(ExitFailure, "solve", err)
	}
	logger.Info("converged", zap.Float64("root", res.Root), zap.Int("iterations", res.Iterations))

	result := SolveOutput{Root: res.Root, Iterations: res.Iterations}
	if opts.PlotDir != "" {
		plots, err := writePlots(opts.PlotDir, f, res)
		if err != nil {
			_ = out.Error("plot", err.Error())
			return WrapExitError(ExitFailure, "plot", err)
		}
		result.Plots = plots
	}

	return out.Success(result)
}

func writePlots(dir string, f bisection.Func, res bisection.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	convergence := filepath.Join(dir, ConvergencePlot)
	if err := chart.SaveConvergence(convergence, res); err != nil {
		return nil, err
	}
	function := filepath.Join(dir, FunctionPlot)
	if err := chart.SaveFunction(function, f, res); err != nil {
		return nil, err
	}
	return []string{convergence, function}, nil
}
