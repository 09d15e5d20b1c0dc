package chart

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bisection/internal/bisection"
)

// WriteConvergence — слева a, b и середины по итерациям, справа длина
// отрезка в логарифмическом масштабе.
func WriteConvergence(w io.Writer, res bisection.Result) error {
	states, err := brackets(res)
	if err != nil {
		return err
	}

	left, err := bracketPlot(states, res)
	if err != nil {
		return err
	}
	right, err := widthPlot(states)
	if err != nil {
		return err
	}
	return writeRow(w, left, right)
}

func SaveConvergence(path string, res bisection.Result) error {
	return saveTo(path, func(w io.Writer) error {
		return WriteConvergence(w, res)
	})
}

func bracketPlot(states []bisection.State, res bisection.Result) (*plot.Plot, error) {
	as := make(plotter.XYs, len(states))
	bs := make(plotter.XYs, len(states))
	mids := make(plotter.XYs, len(states))
	for i, s := range states {
		k := float64(i)
		as[i] = plotter.XY{X: k, Y: s.A}
		bs[i] = plotter.XY{X: k, Y: s.B}
		mids[i] = plotter.XY{X: k, Y: bisection.Midpoint(s.A, s.B)}
	}

	p := plot.New()
	p.Title.Text = "Convergence of a, b and midpoints"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Value"
	p.Add(plotter.NewGrid())

	if err := addSeries(p, "a values", as, colorA, draw.CircleGlyph{}, dashed); err != nil {
		return nil, err
	}
	if err := addSeries(p, "b values", bs, colorB, draw.BoxGlyph{}, dashed); err != nil {
		return nil, err
	}
	if err := addSeries(p, "midpoints", mids, colorMid, draw.CrossGlyph{}, nil); err != nil {
		return nil, err
	}

	root := plotter.XYs{{X: float64(res.Iterations), Y: res.Root}}
	if err := addPoints(p, "root", root, rootStyle(vg.Points(6))); err != nil {
		return nil, err
	}
	return p, nil
}

func widthPlot(states []bisection.State) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Convergence of interval size"
	p.X.Label.Text = "Iteration"
	p.Add(plotter.NewGrid())

	// на логарифмической шкале нули не рисуются: схлопнутый отрезок отбрасываем
	widths := make(plotter.XYs, 0, len(states))
	distinct := map[float64]struct{}{}
	for i, s := range states {
		if w := s.Width(); w > 0 && finite(w) {
			widths = append(widths, plotter.XY{X: float64(i), Y: w})
			distinct[w] = struct{}{}
		}
	}
	if len(widths) == 0 {
		p.Y.Label.Text = "Interval size"
		return p, nil
	}

	// log-шкала требует невырожденного положительного диапазона
	if len(distinct) > 1 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Label.Text = "Interval size (log scale)"
	} else {
		p.Y.Label.Text = "Interval size"
	}

	if err := addSeries(p, "b - a", widths, colorF, draw.CircleGlyph{}, nil); err != nil {
		return nil, err
	}
	return p, nil
}
