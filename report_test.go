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
	"bytes"
	"strings"
	"testing"
)

func TestWriteReport(t *testing.T) {
	e, _ := testEngine(t)
	p, _, err := e.QueryPoint(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	b := new(bytes.Buffer)
	if err := e.WriteReport(b, "timeseries.nc", p); err != nil {
		t.Fatal(err)
	}
	want := `# timeseries_file=timeseries.nc
# y=2, x=3
# lat=33.998000, lon=-117.997000
# reference pixel: y=1, x=2
# unit=m/yr
20170101    0.0003
20170113    0.0123
20170125    0.0243
20170206    0.0363
`
	if have := b.String(); have != want {
		t.Errorf("have\n%s\nwant\n%s", have, want)
	}

	if err := e.SetReference(&Pixel{Row: 0, Col: 0}, ""); err != nil {
		t.Fatal(err)
	}
	if err := e.SetUnit("mm"); err != nil {
		t.Fatal(err)
	}
	p, _, err = e.QueryPoint(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	b.Reset()
	if err := e.WriteReport(b, "timeseries.nc", p); err != nil {
		t.Fatal(err)
	}
	want = `# timeseries_file=timeseries.nc
# y=0, x=0
# lat=34.000000, lon=-118.000000
# reference pixel: y=0, x=0
# unit=m/yr
20170101    0
20170113    0
20170125    0
20170206    0
`
	if have := b.String(); have != want {
		t.Errorf("have\n%s\nwant\n%s", have, want)
	}

	// Sub-micrometer displacements are kept.
	p = &TimeSeriesPoint{
		Pixel:    Pixel{Row: 0, Col: 0},
		Dates:    []string{"20170101", "20170113"},
		Times:    []float64{2017, 2017.0329},
		Values:   []float64{0, 1.23e-5},
		Excluded: []bool{false, false},
		Unit:     "cm",
	}
	b.Reset()
	if err := e.WriteReport(b, "timeseries.nc", p); err != nil {
		t.Fatal(err)
	}
	if want := "20170113    1.23e-07\n"; !strings.HasSuffix(b.String(), want) {
		t.Errorf("have\n%s\nwant suffix %q", b.String(), want)
	}
}
