package chart

import (
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bisection/internal/bisection"
)

const (
	curveSamples = 1000
	zoomSamples  = 500
	zoomHalf     = 0.1
)

// Sample вычисляет f в n равноотстоящих точках [lo, hi].
// Точки с ошибкой или не конечным значением пропускаются.
func Sample(f bisection.Func, lo, hi float64, n int) plotter.XYs {
	if n < 2 {
		n = 2
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	return evalAt(f, xs)
}

func evalAt(f bisection.Func, xs []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for _, x := range xs {
		y, err := f.Eval(x)
		if err != nil || !finite(y) {
			continue
		}
		out = append(out, plotter.XY{X: x, Y: y})
	}
	return out
}

// WriteFunction — слева f(x) с точками a и b всех итераций, справа
// увеличенная окрестность корня.
func WriteFunction(w io.Writer, f bisection.Func, res bisection.Result) error {
	states, err := brackets(res)
	if err != nil {
		return err
	}

	var as, bs []float64
	for _, s := range states {
		as = append(as, s.A)
		bs = append(bs, s.B)
	}
	aPts := evalAt(f, as)
	bPts := evalAt(f, bs)
	rootPt := evalAt(f, []float64{res.Root})

	lo := floats.Min(as) - 1
	hi := floats.Max(bs) + 1

	full, err := functionPlot(
		"Function with iterations of a and b",
		Sample(f, lo, hi, curveSamples), aPts, bPts, rootPt, true,
	)
	if err != nil {
		return err
	}

	zoom, err := functionPlot(
		"Zoomed-in view of root",
		Sample(f, res.Root-0.5, res.Root+0.5, zoomSamples),
		window(aPts, res.Root), window(bPts, res.Root), window(rootPt, res.Root), false,
	)
	if err != nil {
		return err
	}
	zoom.X.Min, zoom.X.Max = res.Root-zoomHalf, res.Root+zoomHalf
	zoom.Y.Min, zoom.Y.Max = -zoomHalf, zoomHalf

	return writeRow(w, full, zoom)
}

func SaveFunction(path string, f bisection.Func, res bisection.Result) error {
	return saveTo(path, func(w io.Writer) error {
		return WriteFunction(w, f, res)
	})
}

func functionPlot(title string, curve, aPts, bPts, rootPt plotter.XYs, legend bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "f(x)"
	p.Add(plotter.NewGrid())

	if len(curve) > 1 {
		line, err := plotter.NewLine(curve)
		if err != nil {
			return nil, err
		}
		line.Color = colorF
		p.Add(line)
		if legend {
			p.Legend.Add("f(x)", line)
		}
	}

	axis := plotter.NewFunction(func(float64) float64 { return 0 })
	axis.Color = colorF
	axis.Width = vg.Points(0.8)
	axis.Dashes = dashed
	p.Add(axis)

	name := func(s string) string {
		if legend {
			return s
		}
		return ""
	}
	radius := vg.Points(3)
	if !legend {
		radius = vg.Points(2)
	}

	if err := addPoints(p, name("a values"), aPts, draw.GlyphStyle{Color: colorA, Radius: radius, Shape: draw.CircleGlyph{}}); err != nil {
		return nil, err
	}
	if err := addPoints(p, name("b values"), bPts, draw.GlyphStyle{Color: colorB, Radius: radius, Shape: draw.BoxGlyph{}}); err != nil {
		return nil, err
	}
	if err := addPoints(p, name("root"), rootPt, rootStyle(2*radius)); err != nil {
		return nil, err
	}
	return p, nil
}

// window оставляет точки внутри окна увеличения вокруг root
func window(pts plotter.XYs, root float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(pts))
	for _, p := range pts {
		if math.Abs(p.X-root) <= zoomHalf && math.Abs(p.Y) <= zoomHalf {
			out = append(out, p)
		}
	}
	return out
}
