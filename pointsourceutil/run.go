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

package pointsourceutil

import (
	"fmt"
	"io"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pointsource"
	"github.com/spf13/cast"
)

// ModelOptions builds pipeline options from the configuration. Catalog
// cat resolves the source names in the Secondary and FixedSecondary
// settings.
func ModelOptions(cfg *viper.Viper, cat *pointsource.Catalog) (*pointsource.Options, error) {
	opts := pointsource.DefaultOptions()

	opts.Plume.Factor = cfg.GetFloat64("Plume.Factor")
	opts.Plume.XMax = cfg.GetFloat64("Plume.XMax")

	opts.Background.Factor = cfg.GetFloat64("Background.Factor")
	opts.Background.YMaxPositive = cfg.GetFloat64("Background.YMaxPositive")
	opts.Background.YMaxNegative = cfg.GetFloat64("Background.YMaxNegative")
	opts.Background.YMinPositive = cfg.GetFloat64("Background.YMinPositive")
	opts.Background.YMinNegative = cfg.GetFloat64("Background.YMinNegative")
	opts.Background.Offset = cfg.GetFloat64("Background.Offset")
	sign, err := checkTrackSign(cfg.GetString("Background.Sign"))
	if err != nil {
		return nil, err
	}
	opts.Background.Sign = sign

	opts.Quality = pointsource.QualityFilter{
		SNRStrongCO2Min:    cfg.GetFloat64("Quality.SNRMin"),
		ChiSquaredMax:      cfg.GetFloat64("Quality.ChiSquaredMax"),
		AlbedoMin:          cfg.GetFloat64("Quality.AlbedoMin"),
		AlbedoMax:          cfg.GetFloat64("Quality.AlbedoMax"),
		SurfacePressureMin: cfg.GetFloat64("Quality.SurfacePressureMin"),
		SurfacePressureMax: cfg.GetFloat64("Quality.SurfacePressureMax"),
		OutcomeFlags:       cast.ToIntSlice(cfg.Get("Quality.OutcomeFlags")),
	}

	correction, err := checkBiasCorrection(cfg.GetString("Variant.Correction"))
	if err != nil {
		return nil, err
	}
	opts.Variant = pointsource.CO2Variant{
		Correction: correction,
		Kind:       pointsource.CO2MixingRatio,
		Smoothed:   cfg.GetBool("Variant.Smoothed"),
	}
	if cfg.GetBool("Variant.Column") {
		opts.Variant.Kind = pointsource.CO2Column
	}

	units, err := checkEmissionUnits(cfg.GetString("OutputUnits"))
	if err != nil {
		return nil, err
	}
	opts.OutputUnits = units

	opts.SurfaceStability = cfg.GetBool("SurfaceStability")
	opts.SZAAdjust = cfg.GetBool("SZAAdjust")
	opts.Weighted = cfg.GetBool("Weighted")
	opts.Uncertainty = cfg.GetBool("Uncertainty")
	opts.UseSecondary = cfg.GetBool("UseSecondary")
	opts.BackgroundAverage = cfg.GetFloat64("BackgroundAverage")

	for _, name := range cfg.GetStringSlice("Secondary") {
		s, err := cat.Source(name)
		if err != nil {
			return nil, err
		}
		opts.Secondary = append(opts.Secondary, s)
	}
	for _, name := range cfg.GetStringSlice("FixedSecondary") {
		s, err := cat.Source(name)
		if err != nil {
			return nil, err
		}
		opts.FixedSecondary = append(opts.FixedSecondary, s)
	}
	return opts, nil
}

// loadModel reads the catalog named in the configuration and prepares
// the requested overpass and the model options.
func loadModel(cfg *viper.Viper) (*pointsource.Overpass, *pointsource.Options, error) {
	cat, err := ReadCatalog(cfg.GetString("CatalogFile"))
	if err != nil {
		return nil, nil, err
	}
	o, err := FindOverpass(cat, cfg.GetString("Overpass"))
	if err != nil {
		return nil, nil, err
	}
	opts, err := ModelOptions(cfg, cat)
	if err != nil {
		return nil, nil, err
	}
	return o, opts, nil
}

// solvedNames returns the names of the sources an inversion under opts
// solves for, in the order their estimates appear in a Result.
func solvedNames(o *pointsource.Overpass, opts *pointsource.Options) []string {
	names := []string{o.Source.Name}
	secondary := opts.Secondary
	if secondary == nil && opts.UseSecondary {
		secondary = o.Source.Secondary
	}
	for _, s := range secondary {
		names = append(names, s.Name)
	}
	return names
}

// Run estimates emissions for the configured overpass once per
// requested wind dataset and writes a summary of each estimate to w.
func Run(cfg *viper.Viper, w io.Writer) error {
	o, opts, err := loadModel(cfg)
	if err != nil {
		return err
	}
	windNames := cfg.GetStringSlice("Winds")
	winds := make([]pointsource.Wind, len(windNames))
	for i, name := range windNames {
		if winds[i], err = o.Winds.Get(name); err != nil {
			return err
		}
	}
	results, err := pointsource.RunModel(o, winds, opts)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Fprintf(w, "%s, %s wind %s\n", o.String(), windNames[i], winds[i].String())
		if err := printResult(w, r, solvedNames(o, opts), opts.OutputUnits); err != nil {
			return err
		}
	}
	return nil
}

// RunBestWind estimates emissions for the configured overpass using the
// wind-direction search and writes a summary to w.
func RunBestWind(cfg *viper.Viper, w io.Writer) error {
	o, opts, err := loadModel(cfg)
	if err != nil {
		return err
	}
	so := &pointsource.SearchOptions{
		Margin:    cfg.GetFloat64("Search.Margin"),
		Tolerance: cfg.GetFloat64("Search.Tolerance"),
		Workers:   cfg.GetInt("Search.Workers"),
	}
	r, best, err := pointsource.BestWind(o, opts, so)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s, best wind %s\n", o.String(), best.String())
	return printResult(w, r, solvedNames(o, opts), opts.OutputUnits)
}

// RunEnsemble estimates the spread of the emission estimate over the
// configured classification-threshold variants and writes a summary to
// w.
func RunEnsemble(cfg *viper.Viper, w io.Writer) error {
	o, opts, err := loadModel(cfg)
	if err != nil {
		return err
	}
	wind, err := o.Winds.Get(cfg.GetString("Ensemble.Wind"))
	if err != nil {
		return err
	}
	backgroundVariants, err := factorVariants(
		cfg.GetStringSlice("Ensemble.BackgroundFactors"), "background",
		func(opts *pointsource.Options, f float64) { opts.Background.Factor = f })
	if err != nil {
		return err
	}
	plumeVariants, err := factorVariants(
		cfg.GetStringSlice("Ensemble.PlumeFactors"), "plume",
		func(opts *pointsource.Options, f float64) { opts.Plume.Factor = f })
	if err != nil {
		return err
	}
	res, err := pointsource.RunEnsemble(o, wind, opts, backgroundVariants, plumeVariants)
	if err != nil {
		return err
	}
	units := opts.OutputUnits
	fmt.Fprintf(w, "%s, %s wind %s\n", o.String(), cfg.GetString("Ensemble.Wind"), wind.String())
	fmt.Fprintf(w, "  background-threshold estimates [%v]: %v\n", units, res.BackgroundEstimates)
	fmt.Fprintf(w, "  plume-threshold estimates [%v]: %v\n", units, res.PlumeEstimates)
	fmt.Fprintf(w, "  spread: background %g, plume %g [%v]; wind %g\n",
		res.BackgroundStdDev, res.PlumeStdDev, units, res.Wind)
	return nil
}

// factorVariants converts a list of threshold fractions into ensemble
// parameter variants applying set.
func factorVariants(factors []string, name string, set func(*pointsource.Options, float64)) ([]pointsource.ParameterVariant, error) {
	variants := make([]pointsource.ParameterVariant, len(factors))
	for i, s := range factors {
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("pointsource: invalid %s threshold '%s': %v", name, s, err)
		}
		variants[i] = pointsource.ParameterVariant{
			Name:  fmt.Sprintf("%s=%g", name, f),
			Apply: func(opts *pointsource.Options) { set(opts, f) },
		}
	}
	return variants, nil
}

// printResult writes a human-readable summary of one inversion result.
func printResult(w io.Writer, r *pointsource.Result, names []string, units pointsource.EmissionUnits) error {
	vals, err := r.EmissionValues(units)
	if err != nil {
		return err
	}
	for i, name := range names {
		fmt.Fprintf(w, "  %s: %g %v\n", name, vals[i], units)
	}
	fmt.Fprintf(w, "  scale factor %.3f, correlation %.3f\n", r.ScaleFactor, r.Correlation)
	fmt.Fprintf(w, "  plume points %d, background points %d, background mean %g\n",
		r.PlumePoints, r.BackgroundPoints, r.BackgroundMean)
	if u := r.Uncertainty; u != nil {
		fmt.Fprintf(w, "  uncertainty: wind %.3f, plume %.3f, background %.3f, nrmse %.3f\n",
			u.Wind, u.PlumeObservation, u.BackgroundObservation, u.NRMSE)
	}
	return nil
}
