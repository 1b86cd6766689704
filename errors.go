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

import "errors"

// These errors are wrapped by the failures returned from this package and
// from the GridStore implementations. Use errors.Is to tell them apart.
var (
	// ErrFileFormat is returned when a product does not declare the
	// timeseries file type.
	ErrFileFormat = errors.New("unsupported file format")

	// ErrNotFound is returned when a date or a referenced file is missing.
	ErrNotFound = errors.New("not found")

	// ErrNotGeocoded is returned by latitude/longitude operations on a
	// product without a geo-transform.
	ErrNotGeocoded = errors.New("product is not geocoded")

	// ErrUnit is returned for an unrecognized display unit.
	ErrUnit = errors.New("unrecognized unit")

	// ErrInsufficientData is returned when a trend is requested with
	// fewer than two kept dates.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInput is returned for invalid caller input, such as a pixel
	// outside of the raster.
	ErrInput = errors.New("invalid input")
)
