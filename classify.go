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
	"fmt"
)

// A Classification is the partition of one overpass's quality-filtered
// observations under one candidate wind, together with the model
// sensitivities of the plume points. It is created fresh for each wind
// candidate and consumed by Solve.
type Classification struct {
	// The four disjoint observation subsets. Other holds points that
	// passed the quality filter but are neither plume nor background;
	// it is kept for diagnostics only.
	Plume, Background, Other, FailedQuality *Dataset

	// ModelEnhancements is the total modeled enhancement [g/m^2] at
	// each plume point from the main and all free secondary sources.
	ModelEnhancements []float64

	// Alpha is the model sensitivity matrix: one row per plume point,
	// one column per free source (main source first), each entry the
	// modeled enhancement per unit (1 g/s) emission rate.
	Alpha [][]float64

	// Fixed is the modeled enhancement at each plume point from the
	// fixed secondary sources, to be subtracted from the observations.
	Fixed []float64

	// Observed values and retrieval uncertainties extracted under the
	// run's CO2 variant, parallel to the Plume and Background sets.
	PlumeValues, PlumeUncertainties           []float64
	BackgroundValues, BackgroundUncertainties []float64

	// KMean is the mean column-to-mixing-ratio scaling of the
	// background points, used to express column enhancements in ppm.
	KMean float64

	// Wind is the candidate wind the classification was computed with,
	// at the emissions-weighted mean release height.
	Wind Wind

	// Emissions [g/s] of the main source and each free secondary, in
	// Alpha column order, and their total including none of the fixed
	// sources.
	Emissions []float64
}

// effectiveOrStackHeight returns the plume-rise effective height where
// stack parameters allow, and the plain stack height otherwise.
func effectiveOrStackHeight(s *Source, w Wind) float64 {
	if w.Speed() == 0 {
		return s.Height
	}
	h, err := s.EffectiveHeight(w)
	if err != nil {
		return s.Height
	}
	return h
}

// Classify partitions the observations of overpass o under candidate
// wind w into plume, background, other, and failed-quality sets, and
// accumulates the per-source model sensitivities of the plume points.
func Classify(o *Overpass, w Wind, opts *Options) (*Classification, error) {
	if err := opts.Variant.Validate(); err != nil {
		return nil, err
	}
	if o.Data == nil {
		return nil, fmt.Errorf("pointsource: overpass %v has no observation data", o)
	}
	a, err := o.A(opts.SurfaceStability)
	if err != nil {
		return nil, err
	}

	mainEmissions, err := o.Source.EmissionsAt(o.Time, opts.TemporalScaler)
	if err != nil {
		return nil, err
	}
	F, err := gramsPerSecondValue(mainEmissions)
	if err != nil {
		return nil, err
	}

	secondary := opts.secondarySources(o)
	secondaryF := make([]float64, len(secondary))
	for i, s := range secondary {
		em, err := s.EmissionsAt(o.Time, opts.TemporalScaler)
		if err != nil {
			return nil, err
		}
		if secondaryF[i], err = gramsPerSecondValue(em); err != nil {
			return nil, err
		}
	}
	fixedF := make([]float64, len(opts.FixedSecondary))
	for i, s := range opts.FixedSecondary {
		em, err := s.EmissionsAt(o.Time, opts.TemporalScaler)
		if err != nil {
			return nil, err
		}
		if fixedF[i], err = gramsPerSecondValue(em); err != nil {
			return nil, err
		}
	}

	// The wind is evaluated at the emissions-weighted mean release
	// height of the contributing sources.
	heights := effectiveOrStackHeight(o.Source, w) * F
	weight := F
	for i, s := range secondary {
		heights += effectiveOrStackHeight(s, w) * secondaryF[i]
		weight += secondaryF[i]
	}
	if weight == 0 {
		return nil, fmt.Errorf("pointsource: reported emissions for %s total zero", o.Source.Name)
	}
	w = w.WithHeight(heights / weight)
	u := w.Speed()
	basis := NewWindBasis(w)

	filtered, failed := o.Data.Filter(opts.Quality)
	if opts.Variant.Smoothed {
		if err := filtered.Smooth(opts.Variant); err != nil {
			return nil, err
		}
	}
	if opts.SZAAdjust {
		if err := filtered.SignSensorZenith(basis, o.Source.Location, u, a); err != nil {
			return nil, err
		}
	}

	xOff, yOff := filtered.PlumeCenterOffset(basis, o.Source.Location, u, a)
	secondaryOffsets := make([][2]float64, len(secondary))
	for i, s := range secondary {
		sx, sy := filtered.PlumeCenterOffset(basis, s.Location, u, a)
		secondaryOffsets[i] = [2]float64{sx, sy}
	}

	// enhancement evaluates the model at (x, y), averaging the
	// incoming- and reflected-ray sampling positions when the
	// zenith-angle correction is on.
	enhancement := func(x, y, f float64, p *ObservationPoint) float64 {
		if !opts.SZAAdjust {
			return Enhancement(x, y, u, f, a, 0)
		}
		xi, yi := basis.SZAOffset(p.SolarZenith, p.SolarAzimuth)
		xr, yr := basis.SZAOffset(p.SensorZenith, p.SolarAzimuth)
		incoming := Enhancement(x+xi, y+yi, u, f, a, 0)
		reflected := Enhancement(x-xr, y-yr, u, f, a, 0)
		return 0.5 * (incoming + reflected)
	}

	c := &Classification{
		Plume:         &Dataset{Mode: o.Data.Mode},
		Background:    &Dataset{Mode: o.Data.Mode},
		Other:         &Dataset{Mode: o.Data.Mode},
		FailedQuality: failed,
		Wind:          w,
		Emissions:     append([]float64{F}, secondaryF...),
	}

	for i := range filtered.Points {
		p := &filtered.Points[i]
		x, y := basis.CoordToWindBasis(o.Source.Location, p.Location)
		dist := CartesianDistance(x, y, xOff, yOff)

		inBackground := opts.Background.InBackground(x, y, dist, u, F, a)
		inPlume := opts.Plume.InPlume(x, y, u, F, a)
		// A point is in the plume if any contributing plume covers it,
		// but in the background only if it is clear of every plume.
		for k, s := range secondary {
			xs, ys := basis.CoordToWindBasis(s.Location, p.Location)
			secDist := CartesianDistance(xs, ys, secondaryOffsets[k][0], secondaryOffsets[k][1])
			inPlume = inPlume || opts.Plume.InPlume(xs, ys, u, 1, a)
			inBackground = inBackground && opts.Background.InBackground(xs, ys, secDist, u, 1, a)
		}

		val, err := filtered.Value(i, opts.Variant)
		if err != nil {
			return nil, err
		}

		if inBackground {
			c.Background.Points = append(c.Background.Points, *p)
			c.BackgroundValues = append(c.BackgroundValues, val)
			c.BackgroundUncertainties = append(c.BackgroundUncertainties, p.XCO2Uncertainty)
		}
		if inPlume {
			c.Plume.Points = append(c.Plume.Points, *p)
			c.PlumeValues = append(c.PlumeValues, val)
			c.PlumeUncertainties = append(c.PlumeUncertainties, p.XCO2Uncertainty)

			main := enhancement(x, y, F, p)
			total := main
			alpha := make([]float64, 0, 1+len(secondary))
			alpha = append(alpha, main/F)
			for k, s := range secondary {
				xs, ys := basis.CoordToWindBasis(s.Location, p.Location)
				v := enhancement(xs, ys, secondaryF[k], p)
				total += v
				alpha = append(alpha, v/secondaryF[k])
			}
			c.ModelEnhancements = append(c.ModelEnhancements, total)
			c.Alpha = append(c.Alpha, alpha)

			var fixed float64
			for k, s := range opts.FixedSecondary {
				xs, ys := basis.CoordToWindBasis(s.Location, p.Location)
				fixed += enhancement(xs, ys, fixedF[k], p)
			}
			c.Fixed = append(c.Fixed, fixed)
		}
		if !inBackground && !inPlume {
			c.Other.Points = append(c.Other.Points, *p)
		}
	}

	var kSum float64
	for i := range c.Background.Points {
		kSum += c.Background.Points[i].K
	}
	if n := len(c.Background.Points); n > 0 {
		c.KMean = kSum / float64(n)
	}
	return c, nil
}
