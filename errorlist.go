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
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// ReadErrorList reads per-date displacement uncertainties, in meters, from
// a text file of "date value" lines and aligns them with dates. Blank
// lines and lines starting with '#' are skipped. Dates in the file that are
// not in dates are ignored; dates without a value cause an error wrapping
// ErrNotFound.
func ReadErrorList(fs afero.Fs, path string, dates []string) ([]float64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsview: opening error list: %v: %w", err, ErrNotFound)
	}
	defer f.Close()

	values := make(map[string]float64)
	s := bufio.NewScanner(f)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("tsview: %s line %d: want 2 columns but have %d: %w",
				path, line, len(fields), ErrInput)
		}
		d, err := NormalizeDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("tsview: %s line %d: %w", path, line, err)
		}
		v, err := cast.ToFloat64E(fields[1])
		if err != nil {
			return nil, fmt.Errorf("tsview: %s line %d: %v: %w", path, line, err, ErrInput)
		}
		values[d] = v
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("tsview: reading error list %s: %v", path, err)
	}

	o := make([]float64, len(dates))
	for i, d := range dates {
		v, ok := values[d]
		if !ok {
			return nil, fmt.Errorf("tsview: error list %s has no value for %s: %w", path, d, ErrNotFound)
		}
		o[i] = v
	}
	return o, nil
}
