/*
Copyright © 2018 the PointSource authors.
This file is part of PointSource.

PointSource is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PointSource is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PointSource.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package pointsourceutil provides the command-line and configuration
// interface to the PointSource emission estimation model.
package pointsourceutil

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pointsource"
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
	// Options are the configuration options available to PointSource.
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
			name: "CatalogFile",
			usage: `
              CatalogFile is the path to the TOML catalog of emission
              sources and satellite overpasses.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Overpass",
			usage: `
              Overpass is the name of the catalog overpass to estimate
              emissions for.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Winds",
			usage: `
              Winds lists the wind datasets to run the estimate with. Each
              name must be present in the overpass catalog entry; 'average'
              is derived from the MERRA and ECMWF entries when absent.`,
			defaultVal: []string{pointsource.WindAverage},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plume.Factor",
			usage: `
              Plume.Factor is the fraction of the plume-center enhancement
              above which an observation is classified as in-plume.`,
			defaultVal: pointsource.DefaultPlumeFactor,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Plume.XMax",
			usage: `
              Plume.XMax is the maximum downwind distance [m] an in-plume
              observation may have.`,
			defaultVal: pointsource.DefaultXMax,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.Factor",
			usage: `
              Background.Factor is the fraction of the plume-center
              enhancement below which a downwind observation may count as
              background.`,
			defaultVal: pointsource.DefaultBackgroundFactor,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.YMaxPositive",
			usage: `
              Background.YMaxPositive is the outer edge [m] of the
              background band on the positive side of the track axis.`,
			defaultVal: pointsource.DefaultYMaxPositive,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.YMaxNegative",
			usage: `
              Background.YMaxNegative is the outer edge [m] of the
              background band on the negative side of the track axis.`,
			defaultVal: pointsource.DefaultYMaxNegative,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.YMinPositive",
			usage: `
              Background.YMinPositive is the inner edge [m] of the
              background band on the positive side of the track axis.`,
			defaultVal: pointsource.DefaultYMinPositive,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.YMinNegative",
			usage: `
              Background.YMinNegative is the inner edge [m] of the
              background band on the negative side of the track axis.`,
			defaultVal: pointsource.DefaultYMinNegative,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.Offset",
			usage: `
              Background.Offset is the cross-wind distance [m] subtracted
              from a downwind observation before testing whether the plume
              has decayed there.`,
			defaultVal: pointsource.DefaultOffset,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Background.Sign",
			usage: `
              Background.Sign selects the axis ('x' along-wind or 'y'
              cross-wind) whose sign assigns an observation to a side of
              the background band.`,
			defaultVal: "y",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.SNRMin",
			usage: `
              Quality.SNRMin is the minimum strong-band CO2 signal-to-noise
              ratio. Zero disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.ChiSquaredMax",
			usage: `
              Quality.ChiSquaredMax is the maximum reduced chi-squared of
              the retrieval fit. Zero disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.AlbedoMin",
			usage: `
              Quality.AlbedoMin is the minimum strong-band albedo. Zero
              disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.AlbedoMax",
			usage: `
              Quality.AlbedoMax is the maximum strong-band albedo. Zero
              disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.SurfacePressureMin",
			usage: `
              Quality.SurfacePressureMin is the minimum retrieved surface
              pressure [hPa]. Zero disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.SurfacePressureMax",
			usage: `
              Quality.SurfacePressureMax is the maximum retrieved surface
              pressure [hPa]. Zero disables the threshold.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Quality.OutcomeFlags",
			usage: `
              Quality.OutcomeFlags lists the retrieval outcome flags
              accepted by the quality filter.`,
			defaultVal: []int{1, 2},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Variant.Correction",
			usage: `
              Variant.Correction selects the bias correction of the CO2
              product to fit against: retrieved, partial, corrected, or
              S31.`,
			defaultVal: "corrected",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Variant.Column",
			usage: `
              Variant.Column fits total column amounts [g/m^2] instead of
              column-averaged mixing ratios [ppm].`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Variant.Smoothed",
			usage: `
              Variant.Smoothed applies swath-grid box smoothing to the
              observations before classification.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "OutputUnits",
			usage: `
              OutputUnits are the units emission estimates are reported in:
              'g/s', 'kg/s', 't/yr', or 'Mt/yr'.`,
			defaultVal: "t/yr",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "SurfaceStability",
			usage: `
              SurfaceStability derives the dispersion coefficient from the
              surface stability class; if false the overpass's elevated
              coefficient is used instead.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "SZAAdjust",
			usage: `
              SZAAdjust applies the solar and sensor zenith-angle parallax
              correction when evaluating model enhancements.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Weighted",
			usage: `
              Weighted fits with per-sounding uncertainty weighting.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Uncertainty",
			usage: `
              Uncertainty computes the uncertainty breakdown of the
              estimate.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags()},
		},
		{
			name: "UseSecondary",
			usage: `
              UseSecondary solves jointly for the cataloged secondary
              sources of the main source.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Secondary",
			usage: `
              Secondary lists catalog source names to solve for jointly
              with the main source, overriding the catalog's own secondary
              list.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "FixedSecondary",
			usage: `
              FixedSecondary lists catalog source names whose modeled
              contribution at their reported emission rates is subtracted
              from the observations instead of being solved for.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "BackgroundAverage",
			usage: `
              BackgroundAverage overrides the computed mean background
              value [ppm or g/m^2]. NaN means compute it from the
              background observations.`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), bestwindCmd.Flags(), ensembleCmd.Flags()},
		},
		{
			name: "Search.Margin",
			usage: `
              Search.Margin widens the initial wind-direction search
              interval [degrees] beyond the bearing range spanned by the
              wind datasets.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{bestwindCmd.Flags()},
		},
		{
			name: "Search.Tolerance",
			usage: `
              Search.Tolerance is the interval width [degrees] at which
              the wind-direction search stops refining.`,
			defaultVal: 2.5,
			flagsets:   []*pflag.FlagSet{bestwindCmd.Flags()},
		},
		{
			name: "Search.Workers",
			usage: `
              Search.Workers bounds the number of candidate wind
              directions evaluated concurrently. Values below 2 mean
              serial evaluation.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{bestwindCmd.Flags()},
		},
		{
			name: "Ensemble.PlumeFactors",
			usage: `
              Ensemble.PlumeFactors lists the plume threshold fractions
              the ensemble perturbs the estimate over.`,
			defaultVal: []string{"0.05", "0.10", "0.15"},
			flagsets:   []*pflag.FlagSet{ensembleCmd.Flags()},
		},
		{
			name: "Ensemble.BackgroundFactors",
			usage: `
              Ensemble.BackgroundFactors lists the background threshold
              fractions the ensemble perturbs the estimate over.`,
			defaultVal: []string{"0.005", "0.01", "0.02"},
			flagsets:   []*pflag.FlagSet{ensembleCmd.Flags()},
		},
		{
			name: "Ensemble.Wind",
			usage: `
              Ensemble.Wind is the wind dataset the ensemble runs with.`,
			defaultVal: pointsource.WindAverage,
			flagsets:   []*pflag.FlagSet{ensembleCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("POINTSOURCE")

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
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
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
	Root.AddCommand(runCmd)
	Root.AddCommand(bestwindCmd)
	Root.AddCommand(ensembleCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pointsource: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pointsource",
	Short: "Estimate point-source CO2 emissions from satellite observations.",
	Long: `PointSource estimates the CO2 emission rate of an individual facility
by fitting a Gaussian plume model to satellite CO2 retrievals from a
single overpass. Use the subcommands specified below to access the
model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'POINTSOURCE_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PointSource.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PointSource v%s\n", pointsource.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate emissions for one overpass.",
	Long: `run classifies the observations of the requested catalog overpass into
plume and background sets and inverts the plume enhancements into an
emission-rate estimate, once per requested wind dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(Cfg, os.Stdout)
	},
	DisableAutoGenTag: true,
}

var bestwindCmd = &cobra.Command{
	Use:   "bestwind",
	Short: "Estimate emissions with a wind-direction search.",
	Long: `bestwind searches for the wind direction that maximizes the correlation
between modeled and observed enhancements before inverting, which
compensates for direction errors in the wind datasets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunBestWind(Cfg, os.Stdout)
	},
	DisableAutoGenTag: true,
}

var ensembleCmd = &cobra.Command{
	Use:   "ensemble",
	Short: "Estimate the spread of the estimate over threshold choices.",
	Long: `ensemble repeats the estimate over a set of plume and background
classification thresholds and reports the spread of the resulting
emission totals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunEnsemble(Cfg, os.Stdout)
	},
	DisableAutoGenTag: true,
}

// checkEmissionUnits parses a requested output unit name.
func checkEmissionUnits(s string) (pointsource.EmissionUnits, error) {
	switch s {
	case "g/s":
		return pointsource.GramPerSecond, nil
	case "kg/s":
		return pointsource.KilogramPerSecond, nil
	case "t/yr":
		return pointsource.TonnePerYear, nil
	case "Mt/yr":
		return pointsource.MegatonnePerYear, nil
	}
	return 0, fmt.Errorf("pointsource: invalid output units '%s'; "+
		"options are 'g/s', 'kg/s', 't/yr', and 'Mt/yr'", s)
}

// checkBiasCorrection parses a bias-correction name.
func checkBiasCorrection(s string) (pointsource.BiasCorrection, error) {
	switch strings.ToLower(s) {
	case "retrieved":
		return pointsource.BiasRetrieved, nil
	case "partial":
		return pointsource.BiasPartial, nil
	case "corrected":
		return pointsource.BiasCorrected, nil
	case "s31":
		return pointsource.BiasS31, nil
	}
	return 0, fmt.Errorf("pointsource: invalid bias correction '%s'; "+
		"options are 'retrieved', 'partial', 'corrected', and 'S31'", s)
}

// checkTrackSign parses a background side-assignment axis name.
func checkTrackSign(s string) (pointsource.TrackSign, error) {
	switch strings.ToLower(s) {
	case "y":
		return pointsource.SignCrossWind, nil
	case "x":
		return pointsource.SignAlongWind, nil
	}
	return 0, fmt.Errorf("pointsource: invalid background sign axis '%s'; "+
		"options are 'x' and 'y'", s)
}
