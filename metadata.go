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
	"strings"

	"github.com/spf13/cast"
)

// TimeseriesFileType is the only FILE_TYPE that can be opened as a GridStore.
const TimeseriesFileType = "timeseries"

// Metadata attribute names.
const (
	AttrFileType = "FILE_TYPE"
	AttrWidth    = "WIDTH"
	AttrLength   = "FILE_LENGTH"
	AttrXFirst   = "X_FIRST"
	AttrYFirst   = "Y_FIRST"
	AttrXStep    = "X_STEP"
	AttrYStep    = "Y_STEP"
	AttrRefX     = "ref_x"
	AttrRefY     = "ref_y"
)

// Pixel is a raster location given as row (y) and column (x).
type Pixel struct {
	Row, Col int
}

func (p Pixel) String() string { return fmt.Sprintf("y=%d, x=%d", p.Row, p.Col) }

// GeoTransform holds the affine mapping of a geocoded product: the
// coordinate of the first pixel and the per-axis step, in degrees.
type GeoTransform struct {
	LatOrigin, LonOrigin float64 // Y_FIRST, X_FIRST
	LatStep, LonStep     float64 // Y_STEP, X_STEP
}

// Metadata is the validated attribute set of a time-series product.
type Metadata struct {
	FileType string
	Width    int // number of columns
	Length   int // number of rows

	// Geo is nil for products in radar coordinates.
	Geo *GeoTransform

	// RefPixel is the reference pixel recorded in the file, if any.
	RefPixel *Pixel

	// Attributes holds all attributes as read from the product.
	Attributes map[string]string
}

// ParseMetadata converts a raw attribute map into Metadata. It returns an
// error wrapping ErrFileFormat if the declared file type is not
// TimeseriesFileType, and ErrInput for malformed values.
func ParseMetadata(attrs map[string]string) (*Metadata, error) {
	m := &Metadata{Attributes: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		m.Attributes[k] = strings.TrimSpace(v)
	}
	m.FileType = m.Attributes[AttrFileType]
	if m.FileType != TimeseriesFileType {
		return nil, fmt.Errorf("tsview: file type is %q but only %q is supported: %w",
			m.FileType, TimeseriesFileType, ErrFileFormat)
	}

	var err error
	if m.Width, err = m.requiredInt(AttrWidth); err != nil {
		return nil, err
	}
	if m.Length, err = m.requiredInt(AttrLength); err != nil {
		return nil, err
	}

	geoKeys := []string{AttrYFirst, AttrXFirst, AttrYStep, AttrXStep}
	var present int
	for _, k := range geoKeys {
		if _, ok := m.Attributes[k]; ok {
			present++
		}
	}
	switch present {
	case 0:
	case len(geoKeys):
		v := make([]float64, len(geoKeys))
		for i, k := range geoKeys {
			v[i], err = cast.ToFloat64E(m.Attributes[k])
			if err != nil {
				return nil, fmt.Errorf("tsview: parsing metadata %s: %v: %w", k, err, ErrInput)
			}
		}
		if v[2] == 0 || v[3] == 0 {
			return nil, fmt.Errorf("tsview: metadata Y_STEP and X_STEP must be non-zero: %w", ErrInput)
		}
		m.Geo = &GeoTransform{LatOrigin: v[0], LonOrigin: v[1], LatStep: v[2], LonStep: v[3]}
	default:
		return nil, fmt.Errorf("tsview: metadata has %d of the %d geo-transform attributes %v: %w",
			present, len(geoKeys), geoKeys, ErrInput)
	}

	ry, okY := m.Attributes[AttrRefY]
	rx, okX := m.Attributes[AttrRefX]
	if okY && okX {
		row, errY := cast.ToIntE(ry)
		col, errX := cast.ToIntE(rx)
		if errY == nil && errX == nil {
			m.RefPixel = &Pixel{Row: row, Col: col}
		}
	}
	return m, nil
}

func (m *Metadata) requiredInt(key string) (int, error) {
	s, ok := m.Attributes[key]
	if !ok {
		return 0, fmt.Errorf("tsview: metadata is missing %s: %w", key, ErrFileFormat)
	}
	v, err := cast.ToIntE(s)
	if err != nil {
		return 0, fmt.Errorf("tsview: parsing metadata %s: %v: %w", key, err, ErrInput)
	}
	if v <= 0 {
		return 0, fmt.Errorf("tsview: metadata %s=%d but should be >0: %w", key, v, ErrInput)
	}
	return v, nil
}

// HasGeoTransform reports whether the product is geocoded.
func (m *Metadata) HasGeoTransform() bool { return m.Geo != nil }

// InBounds reports whether p lies inside the raster.
func (m *Metadata) InBounds(p Pixel) bool {
	return p.Row >= 0 && p.Row < m.Length && p.Col >= 0 && p.Col < m.Width
}

// checkPixel returns an error wrapping ErrInput if p is outside the raster.
func (m *Metadata) checkPixel(p Pixel) error {
	if !m.InBounds(p) {
		return fmt.Errorf("tsview: pixel (%s) is outside of the %d×%d raster: %w",
			p, m.Length, m.Width, ErrInput)
	}
	return nil
}
