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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tsview"
	"github.com/spatialmodel/tsview/tsfile"
	"github.com/spf13/cast"
)

// pair parses a two-element option such as --yx or --lalo. Elements may
// be given as separate values or as one comma- or space-separated value.
func pair(name string, s []string) ([]string, error) {
	var o []string
	for _, v := range s {
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			o = append(o, f)
		}
	}
	if len(o) == 0 {
		return nil, nil
	}
	if len(o) != 2 {
		return nil, fmt.Errorf("tsview: --%s needs 2 values but has %d (%v): %w", name, len(o), o, tsview.ErrInput)
	}
	return o, nil
}

// pixelOption parses a Y X option into a pixel. It returns nil if the
// option is not set.
func pixelOption(cfg *viper.Viper, name string) (*tsview.Pixel, error) {
	s, err := pair(name, cfg.GetStringSlice(name))
	if s == nil || err != nil {
		return nil, err
	}
	row, err := cast.ToIntE(s[0])
	if err != nil {
		return nil, fmt.Errorf("tsview: --%s: %v: %w", name, err, tsview.ErrInput)
	}
	col, err := cast.ToIntE(s[1])
	if err != nil {
		return nil, fmt.Errorf("tsview: --%s: %v: %w", name, err, tsview.ErrInput)
	}
	return &tsview.Pixel{Row: row, Col: col}, nil
}

// floatPair parses a two-element floating point option. ok is false if
// the option is not set.
func floatPair(cfg *viper.Viper, name string) (a, b float64, ok bool, err error) {
	s, err := pair(name, cfg.GetStringSlice(name))
	if s == nil || err != nil {
		return 0, 0, false, err
	}
	if a, err = cast.ToFloat64E(s[0]); err != nil {
		return 0, 0, false, fmt.Errorf("tsview: --%s: %v: %w", name, err, tsview.ErrInput)
	}
	if b, err = cast.ToFloat64E(s[1]); err != nil {
		return 0, 0, false, fmt.Errorf("tsview: --%s: %v: %w", name, err, tsview.ErrInput)
	}
	return a, b, true, nil
}

// pixelOrLaLo resolves a pixel from either the Y X option yxName or the
// LAT LON option laloName. If both are set, the latitude and longitude
// win.
func pixelOrLaLo(cfg *viper.Viper, e *tsview.Engine, yxName, laloName string) (*tsview.Pixel, error) {
	lat, lon, ok, err := floatPair(cfg, laloName)
	if err != nil {
		return nil, err
	}
	if ok {
		m, err := e.Mapper()
		if err != nil {
			return nil, err
		}
		row, col := m.LaLoToPixel(lat, lon)
		return &tsview.Pixel{Row: row, Col: col}, nil
	}
	return pixelOption(cfg, yxName)
}

// openEngine opens the time-series product at path and configures an
// engine for it from cfg. The caller must close the returned reader.
func openEngine(cfg *viper.Viper, path string) (*tsview.Engine, *tsfile.Reader, error) {
	r, err := tsfile.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, nil, err
	}
	e, err := tsview.NewEngine(r, tsview.WithLogger(logrus.StandardLogger()))
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	if err = configureEngine(cfg, e); err != nil {
		r.Close()
		return nil, nil, err
	}
	return e, r, nil
}

// configureEngine applies the display options in cfg to e.
func configureEngine(cfg *viper.Viper, e *tsview.Engine) error {
	if err := e.SetUnit(cfg.GetString("unit")); err != nil {
		return err
	}
	e.SetZeroFirst(cfg.GetBool("zero-first"))
	if ex := expandStringSlice(cfg.GetStringSlice("exclude")); len(ex) > 0 {
		if err := e.SetExclusions(ex); err != nil {
			return err
		}
	}
	ref, err := pixelOrLaLo(cfg, e, "ref-yx", "ref-lalo")
	if err != nil {
		return err
	}
	refDate := cfg.GetString("ref-date")
	if ref != nil || refDate != "" {
		return e.SetReference(ref, refDate)
	}
	return nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	o := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(os.ExpandEnv(v)); v != "" {
			o = append(o, v)
		}
	}
	return o
}

// outputBase returns the path prefix of saved files, making sure that its
// directory exists.
func outputBase(cfg *viper.Viper) (string, error) {
	base := os.ExpandEnv(cfg.GetString("output"))
	if base == "" {
		return "", fmt.Errorf("tsview: --output is empty: %w", tsview.ErrInput)
	}
	if _, err := os.Stat(filepath.Dir(base)); err != nil {
		return "", fmt.Errorf("tsview: the output directory doesn't exist: %v", err)
	}
	return base, nil
}

// displayLimits returns the display range given by option name, in
// display units. ok is false if the option is not set.
func displayLimits(cfg *viper.Viper, name string) (min, max float64, ok bool, err error) {
	min, max, ok, err = floatPair(cfg, name)
	if ok && min >= max {
		return 0, 0, false, fmt.Errorf("tsview: --%s minimum %g is not less than maximum %g: %w",
			name, min, max, tsview.ErrInput)
	}
	return min, max, ok, err
}
