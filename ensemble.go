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

	"github.com/GaryBoone/GoStats/stats"
)

// A ParameterVariant is one named modification of the model options,
// used to sweep an ensemble of runs. Apply mutates a private copy of
// the base options.
type ParameterVariant struct {
	Name  string
	Apply func(*Options)
}

// An EnsembleResult summarizes the spread of total emission estimates
// across parameter variants. The spread across background variants
// measures the background-selection uncertainty; the spread across
// plume variants (typically bias corrections) measures the plume
// observation uncertainty.
type EnsembleResult struct {
	// Total estimated emissions per variant, in the base options'
	// output units, in the order the variants were given.
	BackgroundEstimates []float64
	PlumeEstimates      []float64

	// Standard deviations of the estimate populations above.
	BackgroundStdDev float64
	PlumeStdDev      float64

	// Wind is the relative spread between the wind datasets, as in
	// Uncertainty.
	Wind float64
}

// RunEnsemble runs the classify-and-invert pipeline once per parameter
// variant with wind w and collects the spread of total emission
// estimates. Each variant is applied to its own copy of base, so
// variants are independent and base is never modified.
func RunEnsemble(o *Overpass, w Wind, base *Options, backgroundVariants, plumeVariants []ParameterVariant) (*EnsembleResult, error) {
	run := func(v ParameterVariant) (float64, error) {
		opts := base.clone()
		opts.Uncertainty = false
		if v.Apply != nil {
			v.Apply(opts)
		}
		r, _, err := ClassifyAndSolve(o, w, opts)
		if err != nil {
			return 0, fmt.Errorf("pointsource: ensemble variant %s: %v", v.Name, err)
		}
		vals, err := r.EmissionValues(base.OutputUnits)
		if err != nil {
			return 0, err
		}
		var total float64
		for _, x := range vals {
			total += x
		}
		return total, nil
	}

	result := new(EnsembleResult)
	for _, v := range backgroundVariants {
		total, err := run(v)
		if err != nil {
			return nil, err
		}
		result.BackgroundEstimates = append(result.BackgroundEstimates, total)
	}
	for _, v := range plumeVariants {
		total, err := run(v)
		if err != nil {
			return nil, err
		}
		result.PlumeEstimates = append(result.PlumeEstimates, total)
	}

	if len(result.BackgroundEstimates) > 0 {
		result.BackgroundStdDev = stats.StatsPopulationStandardDeviation(result.BackgroundEstimates)
	}
	if len(result.PlumeEstimates) > 0 {
		result.PlumeStdDev = stats.StatsPopulationStandardDeviation(result.PlumeEstimates)
	}
	if spread, err := o.Winds.SpeedSpread(); err == nil {
		result.Wind = spread
	}
	return result, nil
}
