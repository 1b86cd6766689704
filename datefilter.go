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
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ExclusionSet is the canonical set of excluded dates of a DateList.
// The zero value excludes nothing; use NewExclusionSet to build one.
type ExclusionSet struct {
	// Dates are the excluded dates in ascending order.
	Dates []string

	// Indices are the positions of Dates within the DateList, strictly
	// increasing.
	Indices []int

	excluded map[int]bool
}

// NewExclusionSet canonicalizes tokens against dateList. Each token is either
// a date or the path of a file in fs holding one date per line. Tokens that
// are not dates, and dates missing from dateList, are dropped and logged.
// dateList must be sorted.
func NewExclusionSet(fs afero.Fs, log logrus.FieldLogger, tokens []string, dateList []string) *ExclusionSet {
	seen := make(map[string]bool)
	var dates []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for _, tok := range tokens {
		if isFile(fs, tok) {
			fileDates, err := ScanDateList(fs, tok, func(line int, token string, err error) {
				log.WithFields(logrus.Fields{"file": tok, "line": line, "token": token}).Warn("ignoring exclusion date that is not a date")
			})
			if err != nil {
				log.WithFields(logrus.Fields{"token": tok, "error": err}).Warn("ignoring exclusion date file")
				continue
			}
			for _, d := range fileDates {
				add(d)
			}
			continue
		}
		d, err := NormalizeDate(tok)
		if err != nil {
			log.WithField("token", tok).Warn("ignoring exclusion token that is neither a date nor a file")
			continue
		}
		add(d)
	}
	sort.Strings(dates)

	index := make(map[string]int, len(dateList))
	for i, d := range dateList {
		index[d] = i
	}
	e := &ExclusionSet{excluded: make(map[int]bool)}
	for _, d := range dates {
		i, ok := index[d]
		if !ok {
			log.WithField("date", d).Warn("ignoring exclusion date not in the time series")
			continue
		}
		e.Dates = append(e.Dates, d)
		e.Indices = append(e.Indices, i)
		e.excluded[i] = true
	}
	sort.Ints(e.Indices)
	if len(e.Dates) > 0 {
		log.WithField("dates", e.Dates).Info("excluding dates")
	}
	return e
}

func isFile(fs afero.Fs, path string) bool {
	fi, err := fs.Stat(path)
	return err == nil && !fi.IsDir()
}

// IsExcluded reports whether DateList index i is excluded.
func (e *ExclusionSet) IsExcluded(i int) bool {
	if e == nil {
		return false
	}
	return e.excluded[i]
}

// Len returns the number of excluded dates.
func (e *ExclusionSet) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Indices)
}

// Kept returns the ascending indices in [0, n) that are not excluded,
// where n is the length of the DateList.
func (e *ExclusionSet) Kept(n int) []int {
	o := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !e.IsExcluded(i) {
			o = append(o, i)
		}
	}
	return o
}

// ZeroIndex returns the smallest kept index of a DateList of length n, or
// 0 if nothing is excluded. It returns -1 if every date is excluded.
func (e *ExclusionSet) ZeroIndex(n int) int {
	for i := 0; i < n; i++ {
		if !e.IsExcluded(i) {
			return i
		}
	}
	return -1
}

// Partition splits values, which must be aligned with the DateList, into
// the kept and excluded values, preserving order.
func (e *ExclusionSet) Partition(values []float64) (kept, excluded []float64) {
	kept = make([]float64, 0, len(values))
	excluded = make([]float64, 0, e.Len())
	for i, v := range values {
		if e.IsExcluded(i) {
			excluded = append(excluded, v)
		} else {
			kept = append(kept, v)
		}
	}
	return kept, excluded
}
