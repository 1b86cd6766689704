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
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DateLayout is the canonical 8-digit date form.
const DateLayout = "20060102"

// daysPerYear is the year length used for decimal-year conversion.
const daysPerYear = 365.25

// NormalizeDate converts a date token to the canonical YYYYMMDD form.
// Accepted inputs are YYYYMMDD, YYMMDD (years 50-99 map to the 1900s),
// and YYYY-MM-DD or YYYY/MM/DD.
func NormalizeDate(s string) (string, error) {
	d := strings.TrimSpace(s)
	d = strings.NewReplacer("-", "", "/", "").Replace(d)
	if len(d) == 6 {
		if d[0] >= '5' {
			d = "19" + d
		} else {
			d = "20" + d
		}
	}
	t, err := time.Parse(DateLayout, d)
	if err != nil || len(d) != len(DateLayout) {
		return "", fmt.Errorf("tsview: invalid date %q: %w", s, ErrInput)
	}
	return t.Format(DateLayout), nil
}

// ParseDate parses a canonical date.
func ParseDate(d string) (time.Time, error) {
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, fmt.Errorf("tsview: invalid date %q: %w", d, ErrInput)
	}
	return t, nil
}

// DecimalYear returns t as a fractional year, year + (day of year - 1)/365.25.
func DecimalYear(t time.Time) float64 {
	return float64(t.Year()) + float64(t.YearDay()-1)/daysPerYear
}

// DecimalYears converts canonical dates to decimal years.
func DecimalYears(dates []string) ([]float64, error) {
	o := make([]float64, len(dates))
	for i, d := range dates {
		t, err := ParseDate(d)
		if err != nil {
			return nil, err
		}
		o[i] = DecimalYear(t)
	}
	return o, nil
}

// ReadDateList reads one date per line from the named file. Only the first
// whitespace-separated field of each line is used; blank lines and lines
// starting with '#' are skipped. The returned dates are normalized and sorted.
// A line that is not a date is an error.
func ReadDateList(fs afero.Fs, path string) ([]string, error) {
	return ScanDateList(fs, path, nil)
}

// ScanDateList is ReadDateList, except that lines that are not dates are
// passed to drop and skipped. If drop is nil they are an error.
func ScanDateList(fs afero.Fs, path string, drop func(line int, token string, err error)) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsview: opening date list: %v: %w", err, ErrNotFound)
	}
	defer f.Close()

	var dates []string
	s := bufio.NewScanner(f)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		d, err := NormalizeDate(fields[0])
		if err != nil {
			if drop == nil {
				return nil, fmt.Errorf("tsview: %s line %d: %w", path, line, err)
			}
			drop(line, fields[0], err)
			continue
		}
		dates = append(dates, d)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("tsview: reading date list %s: %v", path, err)
	}
	sort.Strings(dates)
	return dates, nil
}
