/*
Copyright © 2018 the tsview authors.
This file is part of tsview.

tsview is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

tsview is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with tsview.  If not, see <http://www.gnu.org/licenses/>.
*/

package tsviewutil

import (
	"fmt"
	"image/color"
	"math"

	"github.com/spatialmodel/tsview"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	keptColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	excludedColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	trendColor    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// numColors is the number of colors in the map palette.
const numColors = 256

// pointFigure is the displacement history of one pixel.
type pointFigure struct {
	Point *tsview.TimeSeriesPoint
	Trend *tsview.TrendResult // may be nil

	// Errors are the uncertainties of each date, in the display unit.
	// They are drawn as error bars if not nil.
	Errors []float64

	// Min and Max are the y range if Limits is true. Otherwise the range
	// is chosen from the data.
	Min, Max float64
	Limits   bool
}

// errorPoints are points with symmetric vertical errors.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Plot returns the figure as a plot. NaN samples are left out, and the
// trend line is left out if it is not finite.
func (f *pointFigure) Plot() (*plot.Plot, error) {
	pt := f.Point
	if f.Errors != nil && len(f.Errors) != len(pt.Values) {
		return nil, fmt.Errorf("tsview: %d errors for %d dates: %w", len(f.Errors), len(pt.Values), tsview.ErrInput)
	}
	p := plot.New()
	p.Title.Text = pt.Pixel.String()
	trend := f.Trend != nil && !math.IsNaN(f.Trend.Slope) && !math.IsNaN(f.Trend.Intercept)
	if trend {
		p.Title.Text += ", velocity " + f.Trend.String()
	}
	p.X.Label.Text = "Year"
	p.Y.Label.Text = fmt.Sprintf("Displacement (%s)", pt.Unit)
	p.Add(plotter.NewGrid())

	var kept, excluded errorPoints
	for i, v := range pt.Values {
		if math.IsNaN(v) {
			continue
		}
		xy := plotter.XY{X: pt.Times[i], Y: v}
		e := struct{ Low, High float64 }{}
		if f.Errors != nil && !math.IsNaN(f.Errors[i]) {
			e.Low, e.High = f.Errors[i], f.Errors[i]
		}
		if pt.Excluded[i] {
			excluded.XYs = append(excluded.XYs, xy)
			excluded.YErrors = append(excluded.YErrors, e)
		} else {
			kept.XYs = append(kept.XYs, xy)
			kept.YErrors = append(kept.YErrors, e)
		}
	}

	for _, s := range []struct {
		name  string
		pts   errorPoints
		color color.Color
	}{
		{name: "kept", pts: kept, color: keptColor},
		{name: "excluded", pts: excluded, color: excludedColor},
	} {
		if len(s.pts.XYs) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(s.pts.XYs)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = s.color
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(s.name, sc)
		if f.Errors == nil {
			continue
		}
		eb, err := plotter.NewYErrorBars(s.pts)
		if err != nil {
			return nil, err
		}
		eb.LineStyle.Color = s.color
		p.Add(eb)
	}

	if trend {
		first, last := pt.Times[0], pt.Times[len(pt.Times)-1]
		line, err := plotter.NewLine(plotter.XYs{
			{X: first, Y: f.Trend.Intercept + f.Trend.Slope*first},
			{X: last, Y: f.Trend.Intercept + f.Trend.Slope*last},
		})
		if err != nil {
			return nil, err
		}
		line.Color = trendColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("trend", line)
	}
	p.Legend.Top = true
	if f.Limits {
		p.Y.Min, p.Y.Max = f.Min, f.Max
	}
	return p, nil
}

// Save writes the figure to path. The format is chosen from the file
// extension.
func (f *pointFigure) Save(path string) error {
	p, err := f.Plot()
	if err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// mapGrid adapts a raster to plotter.GridXYZ. Rows are flipped so that Y
// increases upwards.
type mapGrid struct {
	r      *mat.Dense
	mapper *tsview.CoordinateMapper // nil for radar coordinates
}

func (g mapGrid) Dims() (c, r int) {
	r, c = g.r.Dims()
	return c, r
}

func (g mapGrid) row(r int) int {
	rows, _ := g.r.Dims()
	return rows - 1 - r
}

func (g mapGrid) Z(c, r int) float64 { return g.r.At(g.row(r), c) }

func (g mapGrid) X(c int) float64 {
	if g.mapper == nil {
		return float64(c)
	}
	_, lon := g.mapper.PixelToLaLo(0, c)
	return lon
}

func (g mapGrid) Y(r int) float64 {
	if g.mapper == nil {
		return float64(r)
	}
	lat, _ := g.mapper.PixelToLaLo(g.row(r), 0)
	return lat
}

// mapFigure is the displacement map of one epoch.
type mapFigure struct {
	Map    *tsview.MapResult
	Mapper *tsview.CoordinateMapper // nil for radar coordinates

	// Min and Max are the color range if Limits is true. Otherwise the
	// range of the raster is used.
	Min, Max float64
	Limits   bool
}

// Plot returns the figure as a plot. NaN pixels are transparent.
func (f *mapFigure) Plot() (*plot.Plot, error) {
	m := f.Map
	min, max := m.Min, m.Max
	if f.Limits {
		min, max = f.Min, f.Max
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		return nil, fmt.Errorf("tsview: map of %s has no valid pixels: %w", m.Date, tsview.ErrInsufficientData)
	}
	if min == max {
		min, max = min-0.5, max+0.5
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(min)
	cm.SetMax(max)
	hm := plotter.NewHeatMap(mapGrid{r: m.Raster, mapper: f.Mapper}, cm.Palette(numColors))
	hm.Min, hm.Max = min, max
	hm.NaN = color.Transparent
	hm.Underflow = hm.Palette.Colors()[0]
	hm.Overflow = hm.Palette.Colors()[numColors-1]

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, [%.3g, %.3g] %s", m.Date, min, max, m.Unit)
	if f.Mapper != nil {
		p.X.Label.Text = "Longitude"
		p.Y.Label.Text = "Latitude"
	} else {
		p.X.Label.Text = "Range (x)"
		p.Y.Label.Text = "Azimuth (rows from bottom)"
	}
	p.Add(hm)
	return p, nil
}

// Save writes the figure to path. The format is chosen from the file
// extension.
func (f *mapFigure) Save(path string) error {
	p, err := f.Plot()
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
