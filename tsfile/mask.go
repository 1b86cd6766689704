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

package tsfile

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/tsview"
	"gonum.org/v1/gonum/mat"
)

// MaskFileType is the FILE_TYPE of mask files.
const MaskFileType = "mask"

// ReadMask reads the mask(length, width) variable from the netCDF file at
// path. Zero values mark masked pixels.
func ReadMask(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsfile: %v: %w", err, tsview.ErrNotFound)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("tsfile: %s is not a netCDF file: %v: %w", path, err, tsview.ErrFileFormat)
	}
	l := cf.Header.Lengths(MaskVar)
	if len(l) != 2 {
		return nil, fmt.Errorf("tsfile: %s has no 2-D %s variable: %w", path, MaskVar, tsview.ErrFileFormat)
	}
	rr := cf.Reader(MaskVar, nil, nil)
	buf := rr.Zero(-1)
	if _, err = rr.Read(buf); err != nil {
		return nil, fmt.Errorf("tsfile: reading mask: %v", err)
	}
	data, ok := buf.([]float32)
	if !ok {
		return nil, fmt.Errorf("tsfile: %s variable should be FLOAT: %w", MaskVar, tsview.ErrFileFormat)
	}
	o := mat.NewDense(l[0], l[1], nil)
	raw := o.RawMatrix().Data
	for i, v := range data {
		raw[i] = float64(v)
	}
	return o, nil
}

// WriteMask writes m to a new mask file at path.
func WriteMask(path string, m *mat.Dense) error {
	rows, cols := m.Dims()
	h := cdf.NewHeader([]string{LengthDim, WidthDim}, []int{rows, cols})
	h.AddAttribute("", tsview.AttrFileType, MaskFileType)
	h.AddVariable(MaskVar, []string{LengthDim, WidthDim}, []float32{0})
	h.AddAttribute(MaskVar, "description", "Pixels to display; 0 is masked")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("tsfile: creating mask header: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tsfile: creating mask file: %v", err)
	}
	cf, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		return fmt.Errorf("tsfile: creating mask file: %v", err)
	}
	data := make([]float32, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, float32(m.At(i, j)))
		}
	}
	w := cf.Writer(MaskVar, []int{0, 0}, []int{rows - 1, cols})
	if _, err = w.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("tsfile: writing mask: %v", err)
	}
	if err = cdf.UpdateNumRecs(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
