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

// Package tsviewutil is the command-line interface of tsview.
package tsviewutil

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tsview"
	"github.com/spatialmodel/tsview/tsfile"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to tsview.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "yx",
			usage: `
              yx is the row and column of the pixel to display, as "Y,X".
              The default is the center of the raster.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "lalo",
			usage: `
              lalo is the latitude and longitude of the pixel to display, as
              "LAT,LON". It overrides yx and requires a geocoded product.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "ref-yx",
			usage: `
              ref-yx is the row and column of the reference pixel, as "Y,X".
              Its displacement is subtracted from every point and map.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "ref-lalo",
			usage: `
              ref-lalo is the latitude and longitude of the reference pixel, as
              "LAT,LON". It overrides ref-yx.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "ref-date",
			usage: `
              ref-date is the reference date, YYYYMMDD or YYMMDD. Its raster is
              subtracted from displayed maps.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "exclude",
			usage: `
              exclude lists dates to exclude from trend estimation, as dates
              or paths to text files with one date per line.`,
			shorthand:  "e",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "zero-first",
			usage: `
              zero-first shifts each point series so that its first kept date
              has zero displacement.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "unit",
			usage: `
              unit is the display unit of displacement: mm, cm, dm, m, or km.`,
			shorthand:  "u",
			defaultVal: tsview.DefaultUnit,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "epoch",
			usage: `
              epoch is the index of the epoch to display. Negative values count
              from the last epoch.`,
			shorthand:  "n",
			defaultVal: -2,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "mask",
			usage: `
              mask is the path of a mask file. Pixels where the mask is zero are
              not displayed. A missing mask file is ignored with a warning.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "error",
			usage: `
              error is the path of a text file of "date value" lines giving the
              displacement uncertainty, in meters, of each epoch. The values
              are drawn as error bars.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the path prefix of saved files.`,
			shorthand:  "o",
			defaultVal: "tsview",
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "save",
			usage: `
              save writes the figure, and for points the text report, to files
              starting with the output prefix.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "ylim",
			usage: `
              ylim is the y range of point figures, as "MIN,MAX" in the display
              unit. The default is the range of the displayed history.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "ylim-mat",
			usage: `
              ylim-mat is the display range of maps, as "MIN,MAX" in the display
              unit. The default is the range of the displayed raster.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "length",
			usage: `
              length is the number of rows of the synthetic product.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
		{
			name: "width",
			usage: `
              width is the number of columns of the synthetic product.`,
			defaultVal: 40,
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
		{
			name: "epochs",
			usage: `
              epochs is the number of epochs of the synthetic product.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TSVIEW")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(pointCmd)
	Root.AddCommand(mapCmd)
	Root.AddCommand(synthCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tsview: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tsview",
	Short: "An InSAR displacement time-series viewer.",
	Long: `tsview extracts, corrects, and displays displacement time series from
InSAR time-series products. Use the subcommands specified below to inspect a
product, display the history of a pixel, or display the displacement map of
an epoch.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TSVIEW_var' where 'var' is the
name of the variable to be set, with dashes replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of tsview.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tsview v%s\n", tsview.Version)
	},
	DisableAutoGenTag: true,
}

// infoCmd prints the metadata of a product.
var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print information about a time-series product.",
	Long: `info prints the size, dates, georeferencing, and reference pixel of the
time-series product in FILE.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := tsfile.Open(os.ExpandEnv(args[0]))
		if err != nil {
			return err
		}
		defer r.Close()
		e, err := tsview.NewEngine(r)
		if err != nil {
			return err
		}
		return Info(cmd.OutOrStdout(), e)
	},
	DisableAutoGenTag: true,
}

// pointCmd displays the history of one pixel.
var pointCmd = &cobra.Command{
	Use:   "point FILE",
	Short: "Display the displacement history of a pixel.",
	Long: `point prints the displacement history and linear velocity of one pixel
of the time-series product in FILE. With --save, the history is also
written as a text report and a figure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, r, err := openEngine(Cfg, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		p, err := pixelOrLaLo(Cfg, e, "yx", "lalo")
		if err != nil {
			return err
		}
		if p == nil {
			m := e.Metadata()
			p = &tsview.Pixel{Row: m.Length / 2, Col: m.Width / 2}
		}
		var o PointOptions
		if path := Cfg.GetString("error"); path != "" {
			if o.Errors, err = tsview.ReadErrorList(afero.NewOsFs(), os.ExpandEnv(path), e.Dates()); err != nil {
				return err
			}
			e.Unit().Scale(o.Errors)
		}
		if o.YMin, o.YMax, o.YLimits, err = displayLimits(Cfg, "ylim"); err != nil {
			return err
		}
		if Cfg.GetBool("save") {
			if o.Save, err = outputBase(Cfg); err != nil {
				return err
			}
		}
		return Point(cmd.OutOrStdout(), e, args[0], *p, o)
	},
	DisableAutoGenTag: true,
}

// mapCmd displays the displacement map of one epoch.
var mapCmd = &cobra.Command{
	Use:   "map FILE",
	Short: "Display the displacement map of an epoch.",
	Long: `map prints the range of the displacement map of one epoch of the
time-series product in FILE. With --save, the map is also written as a figure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, r, err := openEngine(Cfg, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		m, err := e.QueryMapIndex(Cfg.GetInt("epoch"))
		if err != nil {
			return err
		}
		if path := Cfg.GetString("mask"); path != "" {
			if err = maskMap(m, os.ExpandEnv(path)); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "date=%s, index=%d, min=%g, max=%g, unit=%s\n",
			m.Date, m.Index, m.Min, m.Max, m.Unit)

		if !Cfg.GetBool("save") {
			return nil
		}
		base, err := outputBase(Cfg)
		if err != nil {
			return err
		}
		f := &mapFigure{Map: m}
		if f.Min, f.Max, f.Limits, err = displayLimits(Cfg, "ylim-mat"); err != nil {
			return err
		}
		if e.Metadata().HasGeoTransform() {
			if f.Mapper, err = e.Mapper(); err != nil {
				return err
			}
		}
		path := base + "_" + m.Date + ".png"
		if err = f.Save(path); err != nil {
			return err
		}
		logrus.WithField("path", path).Info("tsview saved map figure")
		return nil
	},
	DisableAutoGenTag: true,
}

// maskMap masks m with the mask file at path. A missing file is logged and
// leaves m unchanged.
func maskMap(m *tsview.MapResult, path string) error {
	mask, err := tsfile.ReadMask(path)
	if errors.Is(err, tsview.ErrNotFound) {
		logrus.WithFields(logrus.Fields{"mask": path, "error": err}).Warn("tsview: mask file not found, continuing without mask")
		return nil
	} else if err != nil {
		return err
	}
	if err = tsview.ApplyMask(m.Raster, mask); err != nil {
		return err
	}
	m.Min, m.Max = tsview.RasterRange(m.Raster)
	return nil
}

// synthCmd writes a synthetic product.
var synthCmd = &cobra.Command{
	Use:   "synth FILE",
	Short: "Create a synthetic time-series product.",
	Long: `synth writes a geocoded time-series product with a known linear velocity
field and seasonal signal to FILE. It is useful for trying out tsview and
for testing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Synthetic(os.ExpandEnv(args[0]), Cfg.GetInt("length"), Cfg.GetInt("width"), Cfg.GetInt("epochs"))
	},
	DisableAutoGenTag: true,
}
