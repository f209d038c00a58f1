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

package pointsource

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Options control one classify-and-invert run.
type Options struct {
	Plume      PlumeCriteria
	Background BackgroundCriteria
	Quality    QualityFilter

	// Variant selects the observed CO2 value to fit against.
	Variant CO2Variant

	// OutputUnits are the units estimated emission rates are reported in.
	OutputUnits EmissionUnits

	// SurfaceStability selects the surface stability lookup; when false
	// the overpass's elevated dispersion coefficient is used.
	SurfaceStability bool

	// TemporalScaler optionally scales reported annual emissions to the
	// overpass time.
	TemporalScaler TemporalScaler

	// SZAAdjust applies the solar/sensor zenith-angle parallax
	// correction when evaluating model enhancements.
	SZAAdjust bool

	// Weighted selects uncertainty-weighted least squares.
	Weighted bool

	// Uncertainty controls whether the uncertainty breakdown is
	// computed.
	Uncertainty bool

	// UseSecondary solves jointly for the source's secondary sources.
	// Secondary overrides the source's own secondary list when non-nil.
	UseSecondary bool
	Secondary    []*Source

	// FixedSecondary are known emitters whose modeled contribution is
	// subtracted from the observations instead of being solved for.
	FixedSecondary []*Source

	// BackgroundAverage overrides the computed background mean when it
	// is not NaN.
	BackgroundAverage float64

	Log logrus.FieldLogger
}

// DefaultOptions returns the standard model configuration.
func DefaultOptions() *Options {
	return &Options{
		Plume:             DefaultPlumeCriteria(),
		Background:        DefaultBackgroundCriteria(),
		Variant:           CO2Variant{Correction: BiasCorrected, Kind: CO2MixingRatio},
		OutputUnits:       TonnePerYear,
		SurfaceStability:  true,
		SZAAdjust:         true,
		Uncertainty:       true,
		BackgroundAverage: math.NaN(),
		Log:               logrus.StandardLogger(),
	}
}

// clone returns a shallow copy; criteria and filter values are copied,
// slices and interfaces are shared.
func (opts *Options) clone() *Options {
	c := *opts
	return &c
}

// secondarySources returns the free secondary sources for an inversion
// of o under these options.
func (opts *Options) secondarySources(o *Overpass) []*Source {
	if opts.Secondary != nil {
		return opts.Secondary
	}
	if opts.UseSecondary {
		return o.Source.Secondary
	}
	return nil
}

func (opts *Options) logger() logrus.FieldLogger {
	if opts.Log != nil {
		return opts.Log
	}
	return logrus.StandardLogger()
}
