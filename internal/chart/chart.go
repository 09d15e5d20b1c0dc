// Package chart рисует результаты метода бисекции в PNG.
//
// Функции пакета только читают bisection.Result. Точки, в которых
// функция не вычисляется или даёт не конечное значение, на графики не
// попадают.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"bisection/internal/bisection"
)

// ErrNoHistory — результат получен без RecordHistory
var ErrNoHistory = errors.New("chart: result has no iteration history")

var (
	colorA    = color.RGBA{R: 220, A: 255}
	colorB    = color.RGBA{B: 220, A: 255}
	colorMid  = color.RGBA{G: 190, B: 190, A: 255}
	colorRoot = color.RGBA{R: 240, G: 200, A: 255}
	colorF    = color.Black

	dashed = []vg.Length{vg.Points(4), vg.Points(2)}
)

const (
	figWidth  = 9 * vg.Inch
	figHeight = 4 * vg.Inch
)

// brackets — исходный отрезок и все итерации по порядку
func brackets(res bisection.Result) ([]bisection.State, error) {
	if res.Iterations > 0 && len(res.History) != res.Iterations {
		return nil, ErrNoHistory
	}
	out := make([]bisection.State, 0, len(res.History)+1)
	out = append(out, res.Initial)
	for _, it := range res.History {
		out = append(out, it.State)
	}
	return out, nil
}

func addSeries(p *plot.Plot, name string, xys plotter.XYs, c color.Color, shape draw.GlyphDrawer, dash []vg.Length) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("chart: %s: %w", name, err)
	}
	line.Color = c
	line.Dashes = dash
	points.Color = c
	points.Shape = shape
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}

func addPoints(p *plot.Plot, name string, xys plotter.XYs, style draw.GlyphStyle) error {
	if len(xys) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("chart: %s: %w", name, err)
	}
	sc.GlyphStyle = style
	p.Add(sc)
	if name != "" {
		p.Legend.Add(name, sc)
	}
	return nil
}

func rootStyle(radius vg.Length) draw.GlyphStyle {
	return draw.GlyphStyle{Color: colorRoot, Radius: radius, Shape: draw.CircleGlyph{}}
}

// writeRow рисует графики в одну строку и пишет PNG в w
func writeRow(w io.Writer, plots ...*plot.Plot) error {
	img := vgimg.New(figWidth, figHeight)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write png: %w", err)
	}
	return nil
}

func saveTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
