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
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/tsview"
	"gonum.org/v1/gonum/mat"
)

// Writer writes a time-series product. Every epoch must be written with
// WriteEpoch before Close.
type Writer struct {
	f    *cdf.File
	file *os.File // nil unless created by Create

	meta    *tsview.Metadata
	index   map[string]int
	written map[string]bool
}

// Create creates the product at path for the given metadata attributes
// and epoch dates.
func Create(path string, attrs map[string]string, dates []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tsfile: creating time-series file: %v", err)
	}
	w, err := NewWriter(f, attrs, dates)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter writes the header of a product to rw. Dates are normalized
// and written in ascending order.
func NewWriter(rw cdf.ReaderWriterAt, attrs map[string]string, dates []string) (*Writer, error) {
	meta, err := tsview.ParseMetadata(attrs)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("tsfile: no dates: %w", tsview.ErrInput)
	}
	w := &Writer{
		meta:    meta,
		index:   make(map[string]int, len(dates)),
		written: make(map[string]bool, len(dates)),
	}
	sorted := make([]string, 0, len(dates))
	for _, d := range dates {
		dd, err := tsview.NormalizeDate(d)
		if err != nil {
			return nil, err
		}
		if _, ok := w.index[dd]; ok {
			return nil, fmt.Errorf("tsfile: duplicate date %s: %w", dd, tsview.ErrInput)
		}
		w.index[dd] = -1
		sorted = append(sorted, dd)
	}
	sort.Strings(sorted)
	for i, d := range sorted {
		w.index[d] = i
	}

	h := cdf.NewHeader(
		[]string{DateDim, DateLenDim, LengthDim, WidthDim},
		[]int{len(sorted), dateLen, meta.Length, meta.Width})

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(meta.Attributes))
	for k := range meta.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if v := meta.Attributes[k]; v != "" {
			h.AddAttribute("", k, v)
		}
	}

	h.AddVariable(DateVar, []string{DateDim, DateLenDim}, "")
	h.AddAttribute(DateVar, "description", "Acquisition date, YYYYMMDD")
	h.AddVariable(TimeseriesVar, []string{DateDim, LengthDim, WidthDim}, []float32{0})
	h.AddAttribute(TimeseriesVar, "description", "Line-of-sight displacement")
	h.AddAttribute(TimeseriesVar, "units", "m")
	h.Define()
	for _, err := range h.Check() {
		return nil, fmt.Errorf("tsfile: creating time-series header: %v", err)
	}

	if w.f, err = cdf.Create(rw, h); err != nil {
		return nil, fmt.Errorf("tsfile: creating time-series file: %v", err)
	}
	// End indices lie one past the last column, so that a complete write
	// does not report io.EOF.
	dw := w.f.Writer(DateVar, []int{0, 0}, []int{len(sorted) - 1, dateLen})
	if _, err = dw.Write(strings.Join(sorted, "")); err != nil {
		return nil, fmt.Errorf("tsfile: writing dates: %v", err)
	}
	return w, nil
}

// WriteEpoch writes the raster of date, in meters.
func (w *Writer) WriteEpoch(date string, r *mat.Dense) error {
	d, err := tsview.NormalizeDate(date)
	if err != nil {
		return err
	}
	rec, ok := w.index[d]
	if !ok {
		return fmt.Errorf("tsfile: %s is not one of the product dates: %w", d, tsview.ErrNotFound)
	}
	rows, cols := r.Dims()
	if rows != w.meta.Length || cols != w.meta.Width {
		return fmt.Errorf("tsfile: epoch %s is %d×%d but should be %d×%d: %w",
			d, rows, cols, w.meta.Length, w.meta.Width, tsview.ErrInput)
	}
	data := make([]float32, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, float32(r.At(i, j)))
		}
	}
	ew := w.f.Writer(TimeseriesVar, []int{rec, 0, 0}, []int{rec, rows - 1, cols})
	if _, err := ew.Write(data); err != nil {
		return fmt.Errorf("tsfile: writing epoch %s: %v", d, err)
	}
	w.written[d] = true
	return nil
}

// Close checks that every epoch has been written and closes the file if
// the writer was created by Create.
func (w *Writer) Close() error {
	var missing []string
	for d := range w.index {
		if !w.written[d] {
			missing = append(missing, d)
		}
	}
	sort.Strings(missing)
	if w.file != nil {
		if err := cdf.UpdateNumRecs(w.file); err != nil {
			w.file.Close()
			return err
		}
		if err := w.file.Close(); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("tsfile: epochs %v were not written: %w", missing, tsview.ErrInput)
	}
	return nil
}
