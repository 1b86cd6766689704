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

// Package tsview extracts, corrects, and normalizes per-pixel displacement
// time series from a stack of InSAR displacement epochs.
//
// An Engine wraps a GridStore and answers point queries (the displacement
// history of one pixel, with its linear trend) and map queries (the
// displacement raster of one epoch) under a configuration of excluded dates,
// reference pixel and date, display unit, and zero-first normalization.
package tsview

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"
)

// Version gives the version of this software.
const Version = "0.1.0"

// TimeSeriesPoint is the displacement history of one pixel. All slices are
// aligned with the DateList.
type TimeSeriesPoint struct {
	Pixel

	Dates []string
	Times []float64 // decimal years

	// Values are displacements in Unit. Excluded dates keep their values.
	Values []float64

	// Excluded flags the dates excluded when the point was queried.
	Excluded []bool

	Unit string
}

// Kept returns the times and values of the dates that are not excluded.
func (p *TimeSeriesPoint) Kept() (times, values []float64) {
	for i, x := range p.Excluded {
		if !x {
			times = append(times, p.Times[i])
			values = append(values, p.Values[i])
		}
	}
	return times, values
}

// MapResult is the displacement raster of one epoch.
type MapResult struct {
	Date  string
	Index int // position of Date in the DateList

	// Raster holds displacements in Unit.
	Raster *mat.Dense

	// Min and Max are the range of Raster, ignoring NaN values.
	Min, Max float64

	Unit string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.Log = l }
}

// WithFs sets the filesystem used to resolve exclusion date files. The
// default is the operating system filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// Engine answers point and map queries on a GridStore. It is safe for
// concurrent use; queries run against a snapshot of the configuration.
type Engine struct {
	// Log receives configuration changes and dropped input.
	Log logrus.FieldLogger

	store  GridStore
	meta   *Metadata
	dates  []string
	times  []float64
	mapper *CoordinateMapper // nil for products in radar coordinates
	fs     afero.Fs

	mu  sync.RWMutex
	cfg config
}

type config struct {
	exclude   *ExclusionSet
	ref       ReferenceSpec
	unit      UnitSpec
	zeroFirst bool
}

// NewEngine creates an engine for store. The default configuration
// excludes nothing, has no reference, displays centimeters, and does
// not apply zero-first normalization.
func NewEngine(store GridStore, opts ...Option) (*Engine, error) {
	meta := store.Metadata()
	if meta == nil || meta.FileType != TimeseriesFileType {
		return nil, fmt.Errorf("tsview: store is not a time-series product: %w", ErrFileFormat)
	}
	dates := store.Dates()
	if len(dates) == 0 {
		return nil, fmt.Errorf("tsview: store has no epochs: %w", ErrInsufficientData)
	}
	times, err := DecimalYears(dates)
	if err != nil {
		return nil, err
	}
	u, err := ParseUnit(DefaultUnit)
	if err != nil {
		panic(err)
	}
	e := &Engine{
		Log:   logrus.StandardLogger(),
		store: store,
		meta:  meta,
		dates: dates,
		times: times,
		fs:    afero.NewOsFs(),
		cfg:   config{unit: u},
	}
	for _, o := range opts {
		o(e)
	}
	if meta.HasGeoTransform() {
		if e.mapper, err = NewCoordinateMapper(meta); err != nil {
			return nil, err
		}
	}
	e.Log.WithFields(logrus.Fields{
		"epochs": len(dates),
		"first":  dates[0],
		"last":   dates[len(dates)-1],
		"length": meta.Length,
		"width":  meta.Width,
	}).Debug("tsview engine ready")
	return e, nil
}

func (e *Engine) snapshot() config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Dates returns the DateList.
func (e *Engine) Dates() []string { return append([]string(nil), e.dates...) }

// DecimalYears returns the DateList as decimal years.
func (e *Engine) DecimalYears() []float64 { return append([]float64(nil), e.times...) }

// Metadata returns the product metadata.
func (e *Engine) Metadata() *Metadata { return e.meta }

// Mapper returns the coordinate mapper of a geocoded product. It returns
// an error wrapping ErrNotGeocoded otherwise.
func (e *Engine) Mapper() (*CoordinateMapper, error) {
	if e.mapper == nil {
		return nil, fmt.Errorf("tsview: %w", ErrNotGeocoded)
	}
	return e.mapper, nil
}

// Exclusions returns the current exclusion set.
func (e *Engine) Exclusions() *ExclusionSet { return e.snapshot().exclude }

// Unit returns the current display unit.
func (e *Engine) Unit() UnitSpec { return e.snapshot().unit }

// Reference returns the current reference.
func (e *Engine) Reference() ReferenceSpec { return e.snapshot().ref }

// ZeroFirst reports whether zero-first normalization is enabled.
func (e *Engine) ZeroFirst() bool { return e.snapshot().zeroFirst }

// SetReference sets the reference pixel and date. A nil pixel or an empty
// date clears that part of the reference. The error wraps ErrInput for a
// pixel outside of the raster and ErrNotFound for a date that is not an
// epoch.
func (e *Engine) SetReference(pixel *Pixel, date string) error {
	var ref ReferenceSpec
	if pixel != nil {
		if err := e.meta.checkPixel(*pixel); err != nil {
			return err
		}
		p := *pixel
		ref.Pixel = &p
	}
	if date != "" {
		d, err := NormalizeDate(date)
		if err != nil {
			return err
		}
		if _, err := e.dateIndex(d); err != nil {
			return err
		}
		ref.Date = d
	}
	e.mu.Lock()
	e.cfg.ref = ref
	e.mu.Unlock()

	fields := logrus.Fields{"pixel": "none", "date": "none"}
	if ref.Pixel != nil {
		fields["pixel"] = ref.Pixel.String()
	}
	if ref.Date != "" {
		fields["date"] = ref.Date
	}
	e.Log.WithFields(fields).Info("tsview reference set")
	return nil
}

// SetExclusions replaces the excluded dates with those given by tokens,
// each a date or the path of a date list file. Unknown dates are dropped
// and logged. Excluding every date is allowed; point queries then return
// the series with an error wrapping ErrInsufficientData.
func (e *Engine) SetExclusions(tokens []string) error {
	ex := NewExclusionSet(e.fs, e.Log, tokens, e.dates)
	if ex.Len() == len(e.dates) {
		e.Log.WithField("epochs", len(e.dates)).Warn("every date is excluded, no trend can be estimated")
	}
	e.mu.Lock()
	e.cfg.exclude = ex
	e.mu.Unlock()
	return nil
}

// SetUnit sets the display unit. The error wraps ErrUnit for unknown
// tokens.
func (e *Engine) SetUnit(token string) error {
	u, err := ParseUnit(token)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg.unit = u
	e.mu.Unlock()
	e.Log.WithField("unit", u.Name).Debug("tsview display unit set")
	return nil
}

// SetZeroFirst enables or disables zero-first normalization, which
// shifts each point series so that its first kept date is zero.
func (e *Engine) SetZeroFirst(b bool) {
	e.mu.Lock()
	e.cfg.zeroFirst = b
	e.mu.Unlock()
	e.Log.WithField("zero_first", b).Debug("tsview zero-first set")
}

// QueryPoint returns the displacement history of the pixel at (row, col)
// and its trend over the kept dates. If the trend cannot be estimated, the
// point is returned along with a nil trend and an error wrapping
// ErrInsufficientData.
func (e *Engine) QueryPoint(row, col int) (*TimeSeriesPoint, *TrendResult, error) {
	cfg := e.snapshot()
	p := Pixel{Row: row, Col: col}
	if err := e.meta.checkPixel(p); err != nil {
		return nil, nil, err
	}
	values, err := e.store.PixelSeries(row, col)
	if err != nil {
		return nil, nil, err
	}
	if len(values) != len(e.dates) {
		return nil, nil, fmt.Errorf("tsview: pixel (%s) has %d values but there are %d dates: %w",
			p, len(values), len(e.dates), ErrFileFormat)
	}
	if cfg.ref.Pixel != nil {
		ref, err := e.store.PixelSeries(cfg.ref.Pixel.Row, cfg.ref.Pixel.Col)
		if err != nil {
			return nil, nil, err
		}
		if err := SubtractPointReference(values, ref); err != nil {
			return nil, nil, err
		}
	}
	cfg.unit.Scale(values)
	if cfg.zeroFirst {
		ZeroFirst(values, cfg.exclude.ZeroIndex(len(values)))
	}

	pt := &TimeSeriesPoint{
		Pixel:    p,
		Dates:    e.Dates(),
		Times:    e.DecimalYears(),
		Values:   values,
		Excluded: make([]bool, len(values)),
		Unit:     cfg.unit.Name,
	}
	for i := range pt.Excluded {
		pt.Excluded[i] = cfg.exclude.IsExcluded(i)
	}

	tr, err := e.trend(pt, cfg)
	if err != nil {
		return pt, nil, err
	}
	return pt, tr, nil
}

// QueryPointLaLo is QueryPoint for the pixel nearest to (lat, lon). The
// error wraps ErrNotGeocoded for products in radar coordinates.
func (e *Engine) QueryPointLaLo(lat, lon float64) (*TimeSeriesPoint, *TrendResult, error) {
	m, err := e.Mapper()
	if err != nil {
		return nil, nil, err
	}
	row, col := m.LaLoToPixel(lat, lon)
	return e.QueryPoint(row, col)
}

// Trend estimates the trend of p over the dates that are not excluded by
// the current configuration.
func (e *Engine) Trend(p *TimeSeriesPoint) (*TrendResult, error) {
	return e.trend(p, e.snapshot())
}

func (e *Engine) trend(p *TimeSeriesPoint, cfg config) (*TrendResult, error) {
	if len(p.Values) != len(p.Times) {
		return nil, fmt.Errorf("tsview: point has %d values but %d times: %w",
			len(p.Values), len(p.Times), ErrInput)
	}
	u := cfg.unit
	if p.Unit != "" && p.Unit != u.Name {
		var err error
		if u, err = ParseUnit(p.Unit); err != nil {
			return nil, err
		}
	}
	times, _ := cfg.exclude.Partition(p.Times)
	values, _ := cfg.exclude.Partition(p.Values)
	return EstimateTrend(times, values, u)
}

// QueryMap returns the displacement raster of the epoch at date. The epoch
// reference raster and then the reference pixel value are subtracted. The
// error wraps ErrNotFound if date is not an epoch.
func (e *Engine) QueryMap(date string) (*MapResult, error) {
	d, err := NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	i, err := e.dateIndex(d)
	if err != nil {
		return nil, err
	}
	return e.queryMap(i)
}

// QueryMapIndex is QueryMap for the i-th epoch of the DateList. Negative
// indices count back from the last epoch, so -1 is the last epoch.
func (e *Engine) QueryMapIndex(i int) (*MapResult, error) {
	n := len(e.dates)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("tsview: epoch index out of range [%d, %d): %w", -n, n, ErrInput)
	}
	return e.queryMap(i)
}

func (e *Engine) queryMap(i int) (*MapResult, error) {
	cfg := e.snapshot()
	date := e.dates[i]
	r, err := e.store.Epoch(date)
	if err != nil {
		return nil, err
	}
	if cfg.ref.Date != "" {
		ref, err := e.store.Epoch(cfg.ref.Date)
		if err != nil {
			return nil, err
		}
		if err := SubtractMapReference(r, ref); err != nil {
			return nil, err
		}
	}
	if cfg.ref.Pixel != nil {
		if err := SubtractPixel(r, *cfg.ref.Pixel); err != nil {
			return nil, err
		}
	}
	cfg.unit.ScaleRaster(r)
	o := &MapResult{
		Date:   date,
		Index:  i,
		Raster: r,
		Unit:   cfg.unit.Name,
	}
	o.Min, o.Max = RasterRange(r)
	return o, nil
}

// NearestEpoch returns the index of the epoch closest in time to
// decimalYear. Ties go to the earlier epoch.
func (e *Engine) NearestEpoch(decimalYear float64) int {
	best, bestDiff := 0, math.Inf(1)
	for i, t := range e.times {
		if d := math.Abs(t - decimalYear); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

func (e *Engine) dateIndex(d string) (int, error) {
	for i, dd := range e.dates {
		if dd == d {
			return i, nil
		}
	}
	return -1, fmt.Errorf("tsview: %s is not an epoch: %w", d, ErrNotFound)
}

// IsInsufficientData reports whether err was caused by too few kept dates
// to estimate a trend.
func IsInsufficientData(err error) bool { return errors.Is(err, ErrInsufficientData) }
