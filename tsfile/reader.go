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

// Package tsfile reads and writes displacement time-series products stored
// as netCDF classic files.
//
// A product holds its metadata as global CHAR attributes, the epoch dates
// in the CHAR variable date(date, date_len) as YYYYMMDD, and the
// displacements in meters in the FLOAT variable
// timeseries(date, length, width).
package tsfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/ctessum/cdf"
	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/tsview"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// Names of the netCDF dimensions and variables.
const (
	DateDim    = "date"
	DateLenDim = "date_len"
	LengthDim  = "length"
	WidthDim   = "width"

	DateVar       = "date"
	TimeseriesVar = "timeseries"
	MaskVar       = "mask"
)

const dateLen = len(tsview.DateLayout)

// Reader is a tsview.GridStore backed by a netCDF time-series product.
type Reader struct {
	cdf.File
	closer io.Closer

	meta  *tsview.Metadata
	dates []string       // ascending
	index map[string]int // date to record in the file

	// CacheSize is the number of epochs held in the memory cache. The
	// default is 10. CacheSize can only be changed before the first epoch
	// is read.
	CacheSize int

	epochCache *requestcache.Cache
	epochInit  sync.Once
}

// Open opens the product at path. The file stays open until Close is
// called.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsfile: %v: %w", err, tsview.ErrNotFound)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tsfile: opening %s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader creates a reader for the product stored in rw.
func NewReader(rw cdf.ReaderWriterAt) (*Reader, error) {
	cf, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("tsfile: not a netCDF file: %v: %w", err, tsview.ErrFileFormat)
	}
	r := &Reader{
		File:      *cf,
		CacheSize: 10,
	}

	attrs := make(map[string]string)
	for _, a := range r.Header.Attributes("") {
		attrs[a] = attrString(r.Header.GetAttribute("", a))
	}
	if r.meta, err = tsview.ParseMetadata(attrs); err != nil {
		return nil, err
	}

	if err = r.checkVariable(TimeseriesVar, []string{DateDim, LengthDim, WidthDim}); err != nil {
		return nil, err
	}
	if err = r.checkVariable(DateVar, []string{DateDim, DateLenDim}); err != nil {
		return nil, err
	}
	l := r.Header.Lengths(TimeseriesVar)
	if l[1] != r.meta.Length || l[2] != r.meta.Width {
		return nil, fmt.Errorf("tsfile: %s is %d×%d but metadata gives %d×%d: %w",
			TimeseriesVar, l[1], l[2], r.meta.Length, r.meta.Width, tsview.ErrFileFormat)
	}
	if dl := r.Header.Lengths(DateVar); dl[1] != dateLen {
		return nil, fmt.Errorf("tsfile: %s has %d characters per date, want %d: %w",
			DateVar, dl[1], dateLen, tsview.ErrFileFormat)
	}

	if err = r.readDates(l[0]); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) checkVariable(name string, dims []string) error {
	have := r.Header.Dimensions(name)
	if have == nil {
		return fmt.Errorf("tsfile: missing variable %s: %w", name, tsview.ErrFileFormat)
	}
	if !reflect.DeepEqual(have, dims) {
		return fmt.Errorf("tsfile: variable %s has dimensions %v, want %v: %w",
			name, have, dims, tsview.ErrFileFormat)
	}
	return nil
}

func (r *Reader) readDates(n int) error {
	rr := r.File.Reader(DateVar, nil, nil)
	buf := rr.Zero(-1)
	if _, err := rr.Read(buf); err != nil {
		return fmt.Errorf("tsfile: reading dates: %v", err)
	}
	b := buf.([]byte)
	r.index = make(map[string]int, n)
	for i := 0; i < n; i++ {
		d, err := tsview.NormalizeDate(string(b[i*dateLen : (i+1)*dateLen]))
		if err != nil {
			return fmt.Errorf("tsfile: record %d: %v: %w", i, err, tsview.ErrFileFormat)
		}
		if _, ok := r.index[d]; ok {
			return fmt.Errorf("tsfile: duplicate date %s: %w", d, tsview.ErrFileFormat)
		}
		r.index[d] = i
		r.dates = append(r.dates, d)
	}
	sort.Strings(r.dates)
	return nil
}

// attrString converts a netCDF attribute value to text. Numeric
// attributes with several values are joined by spaces.
func attrString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimRight(t, "\x00")
	case nil:
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return cast.ToString(v)
	}
	s := make([]string, rv.Len())
	for i := range s {
		s[i] = cast.ToString(rv.Index(i).Interface())
	}
	return strings.Join(s, " ")
}

// Close releases the underlying file, if the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Metadata implements tsview.GridStore.
func (r *Reader) Metadata() *tsview.Metadata { return r.meta }

// Dates implements tsview.GridStore.
func (r *Reader) Dates() []string { return append([]string(nil), r.dates...) }

// Epoch implements tsview.GridStore. Recently read epochs are cached.
func (r *Reader) Epoch(date string) (*mat.Dense, error) {
	rec, ok := r.index[date]
	if !ok {
		return nil, fmt.Errorf("tsfile: epoch %s: %w", date, tsview.ErrNotFound)
	}
	r.epochInit.Do(func() {
		r.epochCache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return r.readEpoch(request.(int))
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(r.CacheSize))
	})
	req := r.epochCache.NewRequest(context.TODO(), rec, date)
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	// Cached matrices are shared between callers.
	return mat.DenseCopyOf(result.(*mat.Dense)), nil
}

// readEpoch reads file record rec of the timeseries variable.
func (r *Reader) readEpoch(rec int) (*mat.Dense, error) {
	rr := r.File.Reader(TimeseriesVar, []int{rec, 0, 0}, []int{rec, r.meta.Length - 1, r.meta.Width - 1})
	buf := rr.Zero(-1)
	if _, err := rr.Read(buf); err != nil {
		return nil, fmt.Errorf("tsfile: reading epoch record %d: %v", rec, err)
	}
	data := buf.([]float32)
	o := mat.NewDense(r.meta.Length, r.meta.Width, nil)
	raw := o.RawMatrix().Data
	for i, v := range data {
		raw[i] = float64(v)
	}
	return o, nil
}

// PixelSeries implements tsview.GridStore. It reads one value per epoch
// without loading whole rasters.
func (r *Reader) PixelSeries(row, col int) ([]float64, error) {
	if !r.meta.InBounds(tsview.Pixel{Row: row, Col: col}) {
		return nil, fmt.Errorf("tsfile: pixel (y=%d, x=%d) is outside of the %d×%d raster: %w",
			row, col, r.meta.Length, r.meta.Width, tsview.ErrInput)
	}
	o := make([]float64, len(r.dates))
	buf := make([]float32, 1)
	for i, d := range r.dates {
		rec := r.index[d]
		idx := []int{rec, row, col}
		rr := r.File.Reader(TimeseriesVar, idx, idx)
		if _, err := rr.Read(buf); err != nil {
			return nil, fmt.Errorf("tsfile: reading pixel (y=%d, x=%d) of %s: %v", row, col, d, err)
		}
		o[i] = float64(buf[0])
	}
	return o, nil
}
