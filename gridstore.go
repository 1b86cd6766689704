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

	"gonum.org/v1/gonum/mat"
)

// A GridStore provides read-only access to the epochs of a displacement
// time-series product. Values are in meters.
type GridStore interface {
	// Dates returns the epoch dates in ascending order.
	Dates() []string

	// Epoch returns the raster for date, with Metadata().Length rows and
	// Metadata().Width columns. The caller owns the returned matrix.
	// The error wraps ErrNotFound if there is no such date.
	Epoch(date string) (*mat.Dense, error)

	// PixelSeries returns the value at (row, col) of every epoch, in
	// Dates order. The error wraps ErrInput if the pixel is outside of
	// the raster.
	PixelSeries(row, col int) ([]float64, error)

	// Metadata returns the product metadata.
	Metadata() *Metadata
}

// MemStore is a GridStore held in memory.
type MemStore struct {
	meta   *Metadata
	dates  []string
	epochs map[string]*mat.Dense
}

// NewMemStore creates a GridStore from epochs, a map from date to raster
// in meters. Dates are normalized and sorted. Every raster must be
// FILE_LENGTH × WIDTH.
func NewMemStore(attrs map[string]string, epochs map[string]*mat.Dense) (*MemStore, error) {
	meta, err := ParseMetadata(attrs)
	if err != nil {
		return nil, err
	}
	s := &MemStore{
		meta:   meta,
		epochs: make(map[string]*mat.Dense, len(epochs)),
	}
	for date, r := range epochs {
		d, err := NormalizeDate(date)
		if err != nil {
			return nil, err
		}
		if _, ok := s.epochs[d]; ok {
			return nil, fmt.Errorf("tsview: duplicate epoch %s: %w", d, ErrInput)
		}
		rows, cols := r.Dims()
		if rows != meta.Length || cols != meta.Width {
			return nil, fmt.Errorf("tsview: epoch %s is %d×%d but should be %d×%d: %w",
				d, rows, cols, meta.Length, meta.Width, ErrInput)
		}
		s.epochs[d] = mat.DenseCopyOf(r)
		s.dates = append(s.dates, d)
	}
	sort.Strings(s.dates)
	return s, nil
}

// Dates implements GridStore.
func (s *MemStore) Dates() []string {
	return append([]string(nil), s.dates...)
}

// Epoch implements GridStore.
func (s *MemStore) Epoch(date string) (*mat.Dense, error) {
	r, ok := s.epochs[date]
	if !ok {
		return nil, fmt.Errorf("tsview: epoch %s: %w", date, ErrNotFound)
	}
	return mat.DenseCopyOf(r), nil
}

// PixelSeries implements GridStore.
func (s *MemStore) PixelSeries(row, col int) ([]float64, error) {
	if err := s.meta.checkPixel(Pixel{Row: row, Col: col}); err != nil {
		return nil, err
	}
	o := make([]float64, len(s.dates))
	for i, d := range s.dates {
		o[i] = s.epochs[d].At(row, col)
	}
	return o, nil
}

// Metadata implements GridStore.
func (s *MemStore) Metadata() *Metadata { return s.meta }
