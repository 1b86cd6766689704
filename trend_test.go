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
	"errors"
	"math"
	"testing"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/unit"
)

func TestEstimateTrendLine(t *testing.T) {
	u, _ := ParseUnit("cm")
	tr, err := EstimateTrend([]float64{2015, 2016, 2017, 2018}, []float64{0, 1, 2, 3}, u)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(tr.Slope, 1) {
		t.Errorf("slope: have %g, want 1", tr.Slope)
	}
	if absDifferent(tr.StdErr, 0) {
		t.Errorf("stderr: have %g, want 0", tr.StdErr)
	}
	if absDifferent(tr.Intercept, -2015) {
		t.Errorf("intercept: have %g, want -2015", tr.Intercept)
	}
	if tr.Unit != "cm/yr" {
		t.Errorf("unit: have %s, want cm/yr", tr.Unit)
	}
	if tr.N != 4 {
		t.Errorf("n: have %d, want 4", tr.N)
	}

	si := tr.SI()
	if err := si.Check(unit.MeterPerSecond); err != nil {
		t.Error(err)
	}
	if want := 0.01 / (365.25 * 86400); different(si.Value(), want, testTolerance) {
		t.Errorf("SI: have %g, want %g", si.Value(), want)
	}
}

func TestEstimateTrendNoisy(t *testing.T) {
	x := []float64{2017.0, 2017.1, 2017.25, 2017.4, 2017.6, 2017.9, 2018.2}
	y := []float64{0.1, 0.5, 0.4, 1.2, 1.1, 1.9, 2.6}
	u, _ := ParseUnit("mm")
	tr, err := EstimateTrend(x, y, u)
	if err != nil {
		t.Fatal(err)
	}
	slope, intercept, _, _, _, _ := stats.LinearRegression(x, y)
	if different(tr.Slope, slope, 1e-6) {
		t.Errorf("slope: have %g, want %g", tr.Slope, slope)
	}
	if different(tr.Intercept, intercept, 1e-6) {
		t.Errorf("intercept: have %g, want %g", tr.Intercept, intercept)
	}

	// Standard error of the slope from centered sums.
	var xm, ym, sxx, sxy, sse float64
	for i := range x {
		xm += x[i] / float64(len(x))
		ym += y[i] / float64(len(y))
	}
	for i := range x {
		sxx += (x[i] - xm) * (x[i] - xm)
		sxy += (x[i] - xm) * (y[i] - ym)
	}
	for i := range x {
		r := (y[i] - ym) - sxy/sxx*(x[i]-xm)
		sse += r * r
	}
	slopeSE := math.Sqrt(sse / float64(len(x)-2) / sxx)
	if different(tr.StdErr, slopeSE, 1e-6) {
		t.Errorf("stderr: have %g, want %g", tr.StdErr, slopeSE)
	}
}

func TestEstimateTrendTwoPoints(t *testing.T) {
	u, _ := ParseUnit("m")
	tr, err := EstimateTrend([]float64{2017, 2017.5}, []float64{1, 2}, u)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(tr.Slope, 2) {
		t.Errorf("slope: have %g, want 2", tr.Slope)
	}
	if tr.StdErr != 0 {
		t.Errorf("stderr: have %g, want 0", tr.StdErr)
	}
}

func TestEstimateTrendInsufficient(t *testing.T) {
	u, _ := ParseUnit("m")
	for _, n := range []int{0, 1} {
		_, err := EstimateTrend(make([]float64, n), make([]float64, n), u)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("n=%d: have error %v, want ErrInsufficientData", n, err)
		}
	}
	if _, err := EstimateTrend([]float64{1, 2}, []float64{1}, u); !errors.Is(err, ErrInput) {
		t.Errorf("have error %v, want ErrInput", err)
	}
}
