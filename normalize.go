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
	"sort"
	"strings"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/mat"
)

// DefaultUnit is the display unit used until SetUnit is called.
const DefaultUnit = "cm"

// unitFactors holds the number of display units per meter.
var unitFactors = map[string]float64{
	"mm": 1000,
	"cm": 100,
	"dm": 10,
	"m":  1,
	"km": 0.001,
}

// Units returns the recognized display unit names.
func Units() []string {
	o := make([]string, 0, len(unitFactors))
	for u := range unitFactors {
		o = append(o, u)
	}
	sort.Slice(o, func(i, j int) bool { return unitFactors[o[i]] > unitFactors[o[j]] })
	return o
}

// UnitSpec is a display unit for displacement.
type UnitSpec struct {
	// Name is the unit token, e.g. "cm".
	Name string

	// Factor is the number of display units per meter.
	Factor float64
}

// ParseUnit returns the UnitSpec for token. Matching is case-insensitive.
// It returns an error wrapping ErrUnit for unknown tokens.
func ParseUnit(token string) (UnitSpec, error) {
	name := strings.ToLower(strings.TrimSpace(token))
	f, ok := unitFactors[name]
	if !ok {
		return UnitSpec{}, fmt.Errorf("tsview: %q is not one of %v: %w", token, Units(), ErrUnit)
	}
	return UnitSpec{Name: name, Factor: f}, nil
}

func (u UnitSpec) String() string { return u.Name }

// Scale converts values in meters to display units in place.
func (u UnitSpec) Scale(values []float64) {
	for i := range values {
		values[i] *= u.Factor
	}
}

// ScaleRaster converts a raster in meters to display units in place.
func (u UnitSpec) ScaleRaster(r *mat.Dense) {
	r.Scale(u.Factor, r)
}

// Meters converts a display-unit value to a length.
func (u UnitSpec) Meters(v float64) *unit.Unit {
	return unit.New(v/u.Factor, unit.Meter)
}

// ZeroFirst subtracts values[zeroIdx] from every element of values in
// place. Nothing is done if zeroIdx is out of range.
func ZeroFirst(values []float64, zeroIdx int) {
	if zeroIdx < 0 || zeroIdx >= len(values) {
		return
	}
	base := values[zeroIdx]
	for i := range values {
		values[i] -= base
	}
}
