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

package tsview

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// secondsPerYear is the length of a decimal year in seconds.
const secondsPerYear = daysPerYear * 24 * 60 * 60

// TrendResult is a linear displacement trend.
type TrendResult struct {
	// Slope is the velocity in display units per year.
	Slope float64

	// Intercept is the displacement at decimal year zero.
	Intercept float64

	// StdErr is the standard error of Slope.
	StdErr float64

	// Unit is the label of Slope, e.g. "cm/yr".
	Unit string

	// N is the number of samples used in the fit.
	N int

	factor float64 // display units per meter
}

func (t *TrendResult) String() string {
	return fmt.Sprintf("%.4f ± %.4f %s", t.Slope, t.StdErr, t.Unit)
}

// SI returns the slope as a velocity in m s⁻¹.
func (t *TrendResult) SI() *unit.Unit {
	f := t.factor
	if f == 0 {
		f = 1
	}
	return unit.New(t.Slope/f/secondsPerYear, unit.MeterPerSecond)
}

// EstimateTrend fits values = intercept + slope×times by ordinary least
// squares. times are decimal years and values are in the display unit u.
// It returns an error wrapping ErrInsufficientData if fewer than two
// samples are given.
func EstimateTrend(times, values []float64, u UnitSpec) (*TrendResult, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("tsview: trend has %d times but %d values: %w",
			len(times), len(values), ErrInput)
	}
	n := len(times)
	if n < 2 {
		return nil, fmt.Errorf("tsview: trend needs at least 2 dates but has %d: %w",
			n, ErrInsufficientData)
	}

	// Shift the times so the fit is well conditioned.
	t0 := times[0]
	x := make([]float64, n)
	for i, t := range times {
		x[i] = t - t0
	}
	alpha, beta := stat.LinearRegression(x, values, nil, false)

	var stderr float64
	if n > 2 {
		resid := make([]float64, n)
		floats.AddScaledTo(resid, values, -beta, x)
		floats.AddConst(-alpha, resid)
		sse := floats.Dot(resid, resid)

		xm := stat.Mean(x, nil)
		var sxx float64
		for _, v := range x {
			sxx += (v - xm) * (v - xm)
		}
		stderr = math.Sqrt(sse / float64(n-2) / sxx)
	}

	return &TrendResult{
		Slope:     beta,
		Intercept: alpha - beta*t0,
		StdErr:    stderr,
		Unit:      u.Name + "/yr",
		N:         n,
		factor:    u.Factor,
	}, nil
}
