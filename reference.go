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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReferenceSpec holds the optional reference pixel and reference date.
// The two are independent: the pixel applies to point and map queries,
// the date applies to map queries only.
type ReferenceSpec struct {
	// Pixel, if not nil, is subtracted from every series and raster.
	Pixel *Pixel

	// Date, if not empty, is the epoch whose raster is subtracted from
	// every map.
	Date string
}

// IsZero reports whether no reference is set.
func (r ReferenceSpec) IsZero() bool { return r.Pixel == nil && r.Date == "" }

// SubtractPointReference subtracts, date by date, the reference pixel
// series ref from series. Both must be aligned with the DateList.
func SubtractPointReference(series, ref []float64) error {
	if len(series) != len(ref) {
		return fmt.Errorf("tsview: reference series has %d values but series has %d: %w",
			len(ref), len(series), ErrInput)
	}
	floats.Sub(series, ref)
	return nil
}

// SubtractMapReference subtracts the reference epoch raster ref from r
// in place.
func SubtractMapReference(r, ref *mat.Dense) error {
	rr, rc := r.Dims()
	fr, fc := ref.Dims()
	if rr != fr || rc != fc {
		return fmt.Errorf("tsview: reference raster is %d×%d but raster is %d×%d: %w",
			fr, fc, rr, rc, ErrInput)
	}
	r.Sub(r, ref)
	return nil
}

// SubtractPixel subtracts the value of r at p from every element of r.
// If that value is NaN the whole raster becomes NaN.
func SubtractPixel(r *mat.Dense, p Pixel) error {
	rows, cols := r.Dims()
	if p.Row < 0 || p.Row >= rows || p.Col < 0 || p.Col >= cols {
		return fmt.Errorf("tsview: reference pixel (%s) is outside of the %d×%d raster: %w",
			p, rows, cols, ErrInput)
	}
	v := r.At(p.Row, p.Col)
	r.Apply(func(_, _ int, x float64) float64 { return x - v }, r)
	return nil
}
