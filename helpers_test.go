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
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"
)

const testTolerance = 1.e-8

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b float64) bool {
	return math.Abs(a-b) > testTolerance || math.IsNaN(a) || math.IsNaN(b)
}

// sortedTestDates are the epochs of the test product in DateList order.
var sortedTestDates = []string{"20170101", "20170113", "20170125", "20170206"}

func testAttrs() map[string]string {
	return map[string]string{
		AttrFileType: TimeseriesFileType,
		AttrLength:   "3",
		AttrWidth:    "4",
		AttrYFirst:   "34.0",
		AttrXFirst:   "-118.0",
		AttrYStep:    "-0.001",
		AttrXStep:    "0.001",
		AttrRefY:     "1",
		AttrRefX:     "2",
		"PROCESSOR":  "test",
	}
}

// testValue is the displacement in meters of the test product at
// DateList index k and pixel (r, c).
func testValue(k, r, c int) float64 {
	return 0.01*float64(k) + 0.001*float64(r*k) + 0.0001*float64(c)
}

func testEpochs() map[string]*mat.Dense {
	o := make(map[string]*mat.Dense)
	for k, d := range sortedTestDates {
		m := mat.NewDense(3, 4, nil)
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				m.Set(r, c, testValue(k, r, c))
			}
		}
		o[d] = m
	}
	return o
}

func testStore(t *testing.T) *MemStore {
	t.Helper()
	epochs := testEpochs()
	// Exercise date normalization on input.
	epochs["2017-01-13"] = epochs["20170113"]
	delete(epochs, "20170113")
	s, err := NewMemStore(testAttrs(), epochs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testEngine(t *testing.T, opts ...Option) (*Engine, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.Level = logrus.DebugLevel
	opts = append([]Option{WithLogger(logger), WithFs(afero.NewMemMapFs())}, opts...)
	e, err := NewEngine(testStore(t), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e, hook
}
