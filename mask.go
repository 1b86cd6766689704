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

	"gonum.org/v1/gonum/mat"
)

// ApplyMask sets r to NaN wherever mask is zero or NaN.
func ApplyMask(r, mask *mat.Dense) error {
	rr, rc := r.Dims()
	mr, mc := mask.Dims()
	if rr != mr || rc != mc {
		return fmt.Errorf("tsview: mask is %d×%d but raster is %d×%d: %w", mr, mc, rr, rc, ErrInput)
	}
	r.Apply(func(i, j int, v float64) float64 {
		m := mask.At(i, j)
		if m == 0 || math.IsNaN(m) {
			return math.NaN()
		}
		return v
	}, r)
	return nil
}

// RasterRange returns the minimum and maximum of r, ignoring NaN values.
// Both are NaN if every value is NaN.
func RasterRange(r *mat.Dense) (min, max float64) {
	min, max = math.NaN(), math.NaN()
	rows, cols := r.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := r.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(min) || v < min {
				min = v
			}
			if math.IsNaN(max) || v > max {
				max = v
			}
		}
	}
	return min, max
}
