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
	"io"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tsview"
	"github.com/spatialmodel/tsview/tsfile"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// Info writes a summary of the product behind e to w.
func Info(w io.Writer, e *tsview.Engine) error {
	m := e.Metadata()
	dates := e.Dates()
	fmt.Fprintf(w, "file_type=%s\n", m.FileType)
	fmt.Fprintf(w, "length=%d, width=%d\n", m.Length, m.Width)
	fmt.Fprintf(w, "epochs=%d, first=%s, last=%s\n", len(dates), dates[0], dates[len(dates)-1])
	if m.HasGeoTransform() {
		mapper, err := e.Mapper()
		if err != nil {
			return err
		}
		b := mapper.Bounds(m.Length, m.Width)
		fmt.Fprintf(w, "lat=[%.6f, %.6f], lon=[%.6f, %.6f]\n", b.Min.Y, b.Max.Y, b.Min.X, b.Max.X)
	} else {
		fmt.Fprintln(w, "radar coordinates")
	}
	ref := "None"
	if m.RefPixel != nil {
		ref = m.RefPixel.String()
	}
	_, err := fmt.Fprintf(w, "reference pixel: %s\n", ref)
	return err
}

// PointOptions control the output of Point.
type PointOptions struct {
	// Errors, if not nil, are the uncertainties of each date in the
	// display unit.
	Errors []float64

	// YMin and YMax are the y range of the figure if YLimits is true.
	YMin, YMax float64
	YLimits    bool

	// Save, if not empty, is the path prefix of the saved report and
	// figure.
	Save string
}

// Point writes the displacement history and velocity of pixel p to w.
// The velocity is written in the display unit and in SI units.
func Point(w io.Writer, e *tsview.Engine, source string, p tsview.Pixel, o PointOptions) error {
	pt, tr, err := e.QueryPoint(p.Row, p.Col)
	if err != nil {
		if pt == nil || !tsview.IsInsufficientData(err) {
			return err
		}
		logrus.WithFields(logrus.Fields{"pixel": p.String(), "error": err}).Warn("tsview: no velocity")
	}
	if err = e.WriteReport(w, source, pt); err != nil {
		return err
	}
	if tr != nil {
		fmt.Fprintf(w, "velocity=%s\n", tr)
		fmt.Fprintf(w, "velocity_si=%.6g\n", tr.SI())
	}
	if o.Save == "" {
		return nil
	}
	save := o.Save

	path := save + "_ts.txt"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tsview: creating report: %v", err)
	}
	if err = e.WriteReport(f, source, pt); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fig := &pointFigure{Point: pt, Trend: tr, Errors: o.Errors, Min: o.YMin, Max: o.YMax, Limits: o.YLimits}
	if err = fig.Save(save + "_ts.png"); err != nil {
		return err
	}
	logrus.WithField("path", save).Info("tsview saved point report and figure")
	return nil
}

// Synthetic parameters.
const (
	synthStart    = "20170101"
	synthInterval = 12 // days between epochs
	synthLat      = 34.2
	synthLon      = -118.6
	synthStep     = 0.001
	synthAmp      = 0.005 // seasonal amplitude, m
)

// SyntheticVelocity is the velocity in m/yr of pixel (row, col) of a
// synthetic product with the given width. Velocities increase linearly
// from -3 cm/yr in the first column to 3 cm/yr in the last.
func SyntheticVelocity(col, width int) float64 {
	if width < 2 {
		return 0
	}
	return -0.03 + 0.06*float64(col)/float64(width-1)
}

// Synthetic writes a geocoded product with length × width pixels and
// the given number of epochs to path. Each pixel moves at
// SyntheticVelocity plus an annual sinusoid, relative to the first epoch.
func Synthetic(path string, length, width, epochs int) error {
	if length < 1 || width < 1 || epochs < 2 {
		return fmt.Errorf("tsview: synthetic product must have at least 1×1 pixels and 2 epochs, but has %d×%d and %d: %w",
			length, width, epochs, tsview.ErrInput)
	}
	start, err := tsview.ParseDate(synthStart)
	if err != nil {
		panic(err)
	}
	dates := make([]string, epochs)
	for i := range dates {
		dates[i] = start.Add(time.Duration(i*synthInterval) * 24 * time.Hour).Format(tsview.DateLayout)
	}
	times, err := tsview.DecimalYears(dates)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		tsview.AttrFileType: tsview.TimeseriesFileType,
		tsview.AttrLength:   cast.ToString(length),
		tsview.AttrWidth:    cast.ToString(width),
		tsview.AttrYFirst:   cast.ToString(synthLat),
		tsview.AttrXFirst:   cast.ToString(synthLon),
		tsview.AttrYStep:    cast.ToString(-synthStep),
		tsview.AttrXStep:    cast.ToString(synthStep),
		tsview.AttrRefY:     cast.ToString(length / 2),
		tsview.AttrRefX:     cast.ToString(width / 2),
		"PROCESSOR":         "tsview synth",
	}
	w, err := tsfile.Create(path, attrs, dates)
	if err != nil {
		return err
	}
	r := mat.NewDense(length, width, nil)
	for k, d := range dates {
		dt := times[k] - times[0]
		season := synthAmp * math.Sin(2*math.Pi*dt)
		r.Apply(func(_, j int, _ float64) float64 {
			return SyntheticVelocity(j, width)*dt + season
		}, r)
		if err = w.WriteEpoch(d, r); err != nil {
			w.Close()
			return err
		}
	}
	if err = w.Close(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"path":   path,
		"length": length,
		"width":  width,
		"epochs": epochs,
	}).Info("tsview wrote synthetic product")
	return nil
}
