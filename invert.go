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
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Structural failures of the inversion. These indicate the requested
// inversion is not meaningful rather than merely imprecise, so the
// solver fails fast instead of degrading silently.
var (
	ErrZeroWind      = errors.New("pointsource: wind speed is zero; not a valid wind for inversion")
	ErrFewBackground = errors.New("pointsource: not enough background points to carry out fit")
	ErrFewPlume      = errors.New("pointsource: not enough plume points to carry out fit")
)

// An Uncertainty is the relative uncertainty breakdown of an inversion,
// each term normalized by the mean observed enhancement (except Wind,
// which is the relative spread between wind datasets).
type Uncertainty struct {
	Wind                  float64
	PlumeObservation      float64
	BackgroundObservation float64
	// NRMSE is the root-mean-square least-squares residual per plume
	// point, normalized by the mean observed enhancement.
	NRMSE float64
}

// A Result is the outcome of one emission-rate inversion.
type Result struct {
	// ScaleFactor is the ratio of total estimated to total reported
	// emissions of the solved-for sources.
	ScaleFactor float64

	// Emissions holds the estimated emission rate of each solved-for
	// source, main source first.
	Emissions []*unit.Unit

	// PlumePoints and BackgroundPoints are the sizes of the sets the
	// fit used.
	PlumePoints      int
	BackgroundPoints int

	// Correlation is the Pearson correlation between modeled and
	// observed enhancements.
	Correlation float64

	// BackgroundMean is the background reference value that was
	// subtracted, in the units of the CO2 variant.
	BackgroundMean float64

	// ResidualSumSquares is the sum of squared least-squares residuals.
	ResidualSumSquares float64

	// Uncertainty is present when the uncertainty breakdown was
	// requested.
	Uncertainty *Uncertainty
}

// EmissionValues returns the estimated emission rates expressed in
// units u, in the same order as Emissions.
func (r *Result) EmissionValues(u EmissionUnits) ([]float64, error) {
	vals := make([]float64, len(r.Emissions))
	for i, e := range r.Emissions {
		v, err := EmissionRateValue(e, u)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// Solve inverts the classified enhancements of c into emission-rate
// estimates by (optionally weighted) least squares. It fails fast on
// structurally invalid states: a zero candidate wind speed, or fewer
// than three points in either the plume or the background set.
func Solve(o *Overpass, c *Classification, opts *Options) (*Result, error) {
	switch {
	case c.Wind.Speed() == 0:
		return nil, ErrZeroWind
	case len(c.BackgroundValues) <= 2:
		return nil, ErrFewBackground
	case len(c.PlumeValues) <= 2:
		return nil, ErrFewPlume
	}

	n := len(c.PlumeValues)
	m := len(c.Alpha[0])

	bgAvg := opts.BackgroundAverage
	if math.IsNaN(bgAvg) {
		bgAvg = stat.Mean(c.BackgroundValues, nil)
	}

	// Column enhancements are modeled in g/m^2; mixing-ratio variants
	// are rescaled to ppm with the mean background column ratio.
	scale := 1.
	if opts.Variant.Kind == CO2MixingRatio {
		if c.KMean == 0 {
			return nil, fmt.Errorf("pointsource: background column ratio is zero; cannot scale model to ppm")
		}
		scale = 1 / c.KMean
	}

	model := make([]float64, n)
	observed := make([]float64, n)
	alpha := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		model[i] = c.ModelEnhancements[i] * scale
		observed[i] = c.PlumeValues[i] - bgAvg - c.Fixed[i]*scale
		for j := 0; j < m; j++ {
			alpha.Set(i, j, c.Alpha[i][j]*scale)
		}
	}

	// Weighted fit: diagonal weights 1/sigma_i, normalized to unit
	// Frobenius norm so the residual magnitudes stay comparable to the
	// unweighted fit, applied to both sides of the system.
	b := make([]float64, n)
	copy(b, observed)
	if opts.Weighted {
		weights := make([]float64, n)
		var norm float64
		for i, sigma := range c.PlumeUncertainties {
			if sigma == 0 {
				return nil, fmt.Errorf("pointsource: plume point %d has zero retrieval uncertainty; cannot weight fit", i)
			}
			weights[i] = 1 / sigma
			norm += weights[i] * weights[i]
		}
		norm = math.Sqrt(norm)
		for i := range weights {
			weights[i] /= norm
			b[i] *= weights[i]
			for j := 0; j < m; j++ {
				alpha.Set(i, j, alpha.At(i, j)*weights[i])
			}
		}
	}

	var f mat.VecDense
	if err := f.SolveVec(alpha, mat.NewVecDense(n, b)); err != nil {
		return nil, fmt.Errorf("pointsource: least-squares fit failed: %v", err)
	}

	var residSS float64
	var resid mat.VecDense
	resid.MulVec(alpha, &f)
	for i := 0; i < n; i++ {
		r := b[i] - resid.AtVec(i)
		residSS += r * r
	}

	emissions := make([]*unit.Unit, m)
	var estTotal float64
	for j := 0; j < m; j++ {
		emissions[j] = GramsPerSecond(f.AtVec(j))
		estTotal += f.AtVec(j)
	}
	var reported float64
	for _, e := range c.Emissions {
		reported += e
	}

	result := &Result{
		ScaleFactor:        estTotal / reported,
		Emissions:          emissions,
		PlumePoints:        n,
		BackgroundPoints:   len(c.BackgroundValues),
		Correlation:        stat.Correlation(model, observed, nil),
		BackgroundMean:     bgAvg,
		ResidualSumSquares: residSS,
	}

	if opts.Uncertainty {
		meanEnhancement := stat.Mean(observed, nil)
		u := &Uncertainty{
			PlumeObservation:      rms(c.PlumeUncertainties) / meanEnhancement,
			BackgroundObservation: rms(c.BackgroundUncertainties) / meanEnhancement,
			NRMSE:                 math.Sqrt(residSS/float64(n)) / meanEnhancement,
		}
		if spread, err := o.Winds.SpeedSpread(); err == nil {
			u.Wind = spread
		} else {
			opts.logger().WithError(err).Warn("wind uncertainty unavailable")
			u.Wind = math.NaN()
		}
		result.Uncertainty = u
	}
	return result, nil
}

// rms returns the root mean square of v.
func rms(v []float64) float64 {
	var ss float64
	for _, x := range v {
		ss += x * x
	}
	return math.Sqrt(ss / float64(len(v)))
}
