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

	"github.com/ctessum/geom"
)

// CoordinateMapper converts between pixel indices and geographic
// coordinates of a geocoded product.
type CoordinateMapper struct {
	GeoTransform
}

// NewCoordinateMapper returns a mapper for meta. It returns an error
// wrapping ErrNotGeocoded if meta has no geo-transform.
func NewCoordinateMapper(meta *Metadata) (*CoordinateMapper, error) {
	if !meta.HasGeoTransform() {
		return nil, fmt.Errorf("tsview: no %s/%s/%s/%s metadata: %w",
			AttrYFirst, AttrXFirst, AttrYStep, AttrXStep, ErrNotGeocoded)
	}
	return &CoordinateMapper{GeoTransform: *meta.Geo}, nil
}

// PixelToLaLo returns the coordinate of the pixel at (row, col).
func (c *CoordinateMapper) PixelToLaLo(row, col int) (lat, lon float64) {
	lat = c.LatOrigin + float64(row)*c.LatStep
	lon = c.LonOrigin + float64(col)*c.LonStep
	return lat, lon
}

// LaLoToPixel returns the pixel nearest to (lat, lon). The result may lie
// outside of the raster.
func (c *CoordinateMapper) LaLoToPixel(lat, lon float64) (row, col int) {
	row = int(math.Floor((lat-c.LatOrigin)/c.LatStep + 0.5))
	col = int(math.Floor((lon-c.LonOrigin)/c.LonStep + 0.5))
	return row, col
}

// Bounds returns the extent spanned by the pixel centers of a
// length × width raster, with X as longitude and Y as latitude.
func (c *CoordinateMapper) Bounds(length, width int) *geom.Bounds {
	b := geom.NewBounds()
	lat0, lon0 := c.PixelToLaLo(0, 0)
	lat1, lon1 := c.PixelToLaLo(length-1, width-1)
	b.Extend(geom.Point{X: lon0, Y: lat0}.Bounds())
	b.Extend(geom.Point{X: lon1, Y: lat1}.Bounds())
	return b
}
