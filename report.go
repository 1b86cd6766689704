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
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// reportDelimiter separates the columns of a report row.
const reportDelimiter = "    "

// reportDigits is the number of significant digits of report values.
const reportDigits = 12

// WriteReport writes p to w as text: a block of '#' header lines naming
// source, the pixel, its coordinate if the product is geocoded, and the
// reference pixel, then one "date    displacement" row per date with
// displacement in meters, to 12 significant digits.
func (e *Engine) WriteReport(w io.Writer, source string, p *TimeSeriesPoint) error {
	u, err := ParseUnit(p.Unit)
	if err != nil {
		return err
	}
	if len(p.Dates) != len(p.Values) {
		return fmt.Errorf("tsview: point has %d dates but %d values: %w",
			len(p.Dates), len(p.Values), ErrInput)
	}

	ref := "None"
	if r := e.Reference(); r.Pixel != nil {
		ref = r.Pixel.String()
	} else if e.meta.RefPixel != nil {
		ref = e.meta.RefPixel.String()
	}

	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# timeseries_file=%s\n", source)
	fmt.Fprintf(b, "# %s\n", p.Pixel)
	if e.mapper != nil {
		lat, lon := e.mapper.PixelToLaLo(p.Row, p.Col)
		fmt.Fprintf(b, "# lat=%.6f, lon=%.6f\n", lat, lon)
	}
	fmt.Fprintf(b, "# reference pixel: %s\n", ref)
	fmt.Fprintf(b, "# unit=m/yr\n")
	for i, d := range p.Dates {
		v := strconv.FormatFloat(u.Meters(p.Values[i]).Value(), 'g', reportDigits, 64)
		fmt.Fprintf(b, "%s%s%s\n", d, reportDelimiter, v)
	}
	return b.Flush()
}
