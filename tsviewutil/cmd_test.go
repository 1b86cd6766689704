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

package tsviewutil

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/tsview"
	"github.com/spatialmodel/tsview/tsfile"
	"gonum.org/v1/gonum/mat"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	b := new(bytes.Buffer)
	Root.SetOutput(b)
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

// synthEngine writes a synthetic product and returns an engine for it.
func synthEngine(t *testing.T, length, width, epochs int) (*tsview.Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synth.nc")
	if err := Synthetic(path, length, width, epochs); err != nil {
		t.Fatal(err)
	}
	r, err := tsfile.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	logger, _ := test.NewNullLogger()
	e, err := tsview.NewEngine(r, tsview.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	return e, path
}

func exists(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Errorf("missing output file: %v", err)
		return
	}
	if fi.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestVersion(t *testing.T) {
	have := execute(t, "version")
	want := fmt.Sprintf("tsview v%s\n", tsview.Version)
	if have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestSynthetic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.nc")
	if err := Synthetic(path, 4, 5, 6); err != nil {
		t.Fatal(err)
	}
	r, err := tsfile.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	dates := r.Dates()
	wantDates := []string{"20170101", "20170113", "20170125", "20170206", "20170218", "20170302"}
	if !reflect.DeepEqual(dates, wantDates) {
		t.Errorf("dates: have %v, want %v", dates, wantDates)
	}
	times, err := tsview.DecimalYears(dates)
	if err != nil {
		t.Fatal(err)
	}
	series, err := r.PixelSeries(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range series {
		dt := times[k] - times[0]
		want := 0.03*dt + 0.005*math.Sin(2*math.Pi*dt)
		if math.Abs(v-want) > 1e-6 { // float32 storage
			t.Errorf("epoch %d: have %g, want %g", k, v, want)
		}
	}

	if err := Synthetic(filepath.Join(t.TempDir(), "bad.nc"), 0, 1, 2); !errors.Is(err, tsview.ErrInput) {
		t.Errorf("have error %v, want ErrInput", err)
	}
}

func TestSyntheticVelocity(t *testing.T) {
	for _, tc := range []struct {
		col, width int
		want       float64
	}{
		{col: 0, width: 5, want: -0.03},
		{col: 2, width: 5, want: 0},
		{col: 4, width: 5, want: 0.03},
		{col: 0, width: 1, want: 0},
	} {
		if have := SyntheticVelocity(tc.col, tc.width); math.Abs(have-tc.want) > 1e-12 {
			t.Errorf("SyntheticVelocity(%d, %d): have %g, want %g", tc.col, tc.width, have, tc.want)
		}
	}
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.nc")
	execute(t, "synth", path, "--length", "10", "--width", "20", "--epochs", "5")
	have := execute(t, "info", path)
	want := `file_type=timeseries
length=10, width=20
epochs=5, first=20170101, last=20170218
lat=[34.191000, 34.200000], lon=[-118.600000, -118.581000]
reference pixel: y=5, x=10
`
	if have != want {
		t.Errorf("have\n%s\nwant\n%s", have, want)
	}
}

func TestPointCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synth.nc")
	execute(t, "synth", path, "--length", "6", "--width", "12", "--epochs", "8")
	out := execute(t, "point", path, "--lalo", "34.195,-118.59", "--unit", "mm",
		"--save", "--output", filepath.Join(dir, "pt"), "--ylim=-50,50")
	for _, want := range []string{"# timeseries_file=" + path + "\n", "# y=5, x=10\n",
		"# lat=34.195000, lon=-118.590000\n", "mm/yr\n", " m s^-1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q but is\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n2017"); n != 8 {
		t.Errorf("have %d report rows, want 8", n)
	}
	exists(t, filepath.Join(dir, "pt_ts.txt"))
	exists(t, filepath.Join(dir, "pt_ts.png"))
}

func TestMapCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synth.nc")
	execute(t, "synth", path, "--length", "6", "--width", "12", "--epochs", "8")
	out := execute(t, "map", path, "-n", "-1", "-u", "cm", "--mask", filepath.Join(dir, "missing.nc"),
		"--save", "--output", filepath.Join(dir, "m"), "--ylim-mat=-3,3")
	if !strings.HasPrefix(out, "date=20170326, index=7, ") {
		t.Errorf("unexpected output %q", out)
	}
	exists(t, filepath.Join(dir, "m_20170326.png"))
}

func TestPoint(t *testing.T) {
	e, path := synthEngine(t, 3, 5, 4)
	if err := e.SetExclusions([]string{"20170113"}); err != nil {
		t.Fatal(err)
	}
	errs := []float64{0.1, 0.2, 0.3, 0.4}
	base := filepath.Join(t.TempDir(), "point")
	b := new(bytes.Buffer)
	o := PointOptions{Errors: errs, YMin: -5, YMax: 5, YLimits: true, Save: base}
	if err := Point(b, e, path, tsview.Pixel{Row: 1, Col: 4}, o); err != nil {
		t.Fatal(err)
	}
	exists(t, base+"_ts.txt")
	exists(t, base+"_ts.png")

	report, err := os.ReadFile(base + "_ts.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), string(report)) {
		t.Errorf("printed output should start with the saved report:\n%s\n%s", b.String(), report)
	}
	_, tr, err := e.QueryPoint(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("velocity_si=%.6g\n", tr.SI())
	if !strings.HasSuffix(b.String(), want) {
		t.Errorf("output should end with %q but is\n%s", want, b.String())
	}

	f := &pointFigure{Errors: errs[:2]}
	if f.Point, _, err = e.QueryPoint(0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Plot(); !errors.Is(err, tsview.ErrInput) {
		t.Errorf("have error %v, want ErrInput", err)
	}
}

// A pixel with a missing epoch has no velocity, but its history can still
// be drawn.
func TestPointFigureNaN(t *testing.T) {
	s, err := tsview.NewMemStore(map[string]string{
		tsview.AttrFileType: tsview.TimeseriesFileType,
		tsview.AttrLength:   "1",
		tsview.AttrWidth:    "1",
	}, map[string]*mat.Dense{
		"20170101": mat.NewDense(1, 1, []float64{0}),
		"20170201": mat.NewDense(1, 1, []float64{math.NaN()}),
		"20170301": mat.NewDense(1, 1, []float64{0.02}),
	})
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	e, err := tsview.NewEngine(s, tsview.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	pt, tr, err := e.QueryPoint(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(tr.Slope) {
		t.Errorf("slope: have %g, want NaN", tr.Slope)
	}

	f := &pointFigure{Point: pt, Trend: tr, Errors: []float64{0.1, math.NaN(), 0.1}, Min: -1, Max: 3, Limits: true}
	p, err := f.Plot()
	if err != nil {
		t.Fatal(err)
	}
	if p.Y.Min != -1 || p.Y.Max != 3 {
		t.Errorf("y range: have [%g, %g], want [-1, 3]", p.Y.Min, p.Y.Max)
	}
	if strings.Contains(p.Title.Text, "velocity") {
		t.Errorf("title should not have a velocity: %q", p.Title.Text)
	}
	path := filepath.Join(t.TempDir(), "nan.png")
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}
	exists(t, path)
}

func TestMaskMap(t *testing.T) {
	e, _ := synthEngine(t, 3, 5, 4)
	m, err := e.QueryMapIndex(-1)
	if err != nil {
		t.Fatal(err)
	}
	min0 := m.Min

	// A missing mask leaves the map unchanged.
	if err := maskMap(m, filepath.Join(t.TempDir(), "missing.nc")); err != nil {
		t.Fatal(err)
	}
	if m.Min != min0 {
		t.Errorf("min: have %g, want %g", m.Min, min0)
	}

	mask := mat.NewDense(3, 5, nil)
	for i := 0; i < 3; i++ {
		for j := 1; j < 5; j++ {
			mask.Set(i, j, 1)
		}
	}
	maskPath := filepath.Join(t.TempDir(), "mask.nc")
	if err := tsfile.WriteMask(maskPath, mask); err != nil {
		t.Fatal(err)
	}
	if err := maskMap(m, maskPath); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(m.Raster.At(1, 0)) {
		t.Errorf("masked pixel: have %g, want NaN", m.Raster.At(1, 0))
	}
	if m.Min <= min0 {
		t.Errorf("min after masking the slowest column: have %g, want > %g", m.Min, min0)
	}

	// The figure of a fully masked map has no color range.
	m.Raster.Apply(func(_, _ int, _ float64) float64 { return math.NaN() }, m.Raster)
	m.Min, m.Max = tsview.RasterRange(m.Raster)
	if _, err := (&mapFigure{Map: m}).Plot(); !errors.Is(err, tsview.ErrInsufficientData) {
		t.Errorf("have error %v, want ErrInsufficientData", err)
	}
	if _, err := (&mapFigure{Map: m, Min: -1, Max: 1, Limits: true}).Plot(); err != nil {
		t.Errorf("with limits: %v", err)
	}
}

func TestPair(t *testing.T) {
	for _, tc := range []struct {
		in   []string
		want []string
		err  bool
	}{
		{in: nil, want: nil},
		{in: []string{"1", "2"}, want: []string{"1", "2"}},
		{in: []string{"1,2"}, want: []string{"1", "2"}},
		{in: []string{"34.1 -118.2"}, want: []string{"34.1", "-118.2"}},
		{in: []string{"1"}, err: true},
		{in: []string{"1", "2", "3"}, err: true},
	} {
		have, err := pair("yx", tc.in)
		if tc.err {
			if !errors.Is(err, tsview.ErrInput) {
				t.Errorf("%v: have error %v, want ErrInput", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(have, tc.want) {
			t.Errorf("%v: have %v, want %v", tc.in, have, tc.want)
		}
	}
}

func TestConfigureEngine(t *testing.T) {
	e, _ := synthEngine(t, 3, 5, 4)
	cfg := viper.New()
	cfg.Set("unit", "MM")
	cfg.Set("zero-first", true)
	cfg.Set("exclude", []string{"20170125", "notadate"})
	cfg.Set("ref-lalo", []string{"34.199", "-118.598"})
	cfg.Set("ref-date", "170113")
	if err := configureEngine(cfg, e); err != nil {
		t.Fatal(err)
	}
	if e.Unit().Name != "mm" {
		t.Errorf("unit: have %s, want mm", e.Unit())
	}
	if !e.ZeroFirst() {
		t.Error("zero-first should be set")
	}
	if have := e.Exclusions().Dates; !reflect.DeepEqual(have, []string{"20170125"}) {
		t.Errorf("exclusions: have %v, want [20170125]", have)
	}
	ref := e.Reference()
	if ref.Pixel == nil || *ref.Pixel != (tsview.Pixel{Row: 1, Col: 2}) || ref.Date != "20170113" {
		t.Errorf("reference: have %+v, want y=1, x=2 on 20170113", ref)
	}

	cfg.Set("unit", "furlong")
	if err := configureEngine(cfg, e); !errors.Is(err, tsview.ErrUnit) {
		t.Errorf("have error %v, want ErrUnit", err)
	}
	cfg.Set("unit", "cm")
	cfg.Set("ref-lalo", []string{})
	cfg.Set("ref-yx", []string{"9", "9"})
	if err := configureEngine(cfg, e); !errors.Is(err, tsview.ErrInput) {
		t.Errorf("have error %v, want ErrInput", err)
	}
}

func TestDisplayLimits(t *testing.T) {
	for _, name := range []string{"ylim", "ylim-mat"} {
		cfg := viper.New()
		if _, _, ok, err := displayLimits(cfg, name); ok || err != nil {
			t.Errorf("%s unset: have %v, %v", name, ok, err)
		}
		cfg.Set(name, []string{"-2,5"})
		min, max, ok, err := displayLimits(cfg, name)
		if err != nil || !ok || min != -2 || max != 5 {
			t.Errorf("%s: have %g, %g, %v, %v; want -2, 5, true, nil", name, min, max, ok, err)
		}
		cfg.Set(name, []string{"5", "-2"})
		if _, _, _, err := displayLimits(cfg, name); !errors.Is(err, tsview.ErrInput) {
			t.Errorf("%s: have error %v, want ErrInput", name, err)
		}
	}
}
