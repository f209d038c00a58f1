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
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// searchCandidates is the number of equally spaced bearings evaluated
// per refinement round.
const searchCandidates = 9

// SearchOptions tune the wind-direction search.
type SearchOptions struct {
	// Margin [degrees] widens the initial search interval beyond the
	// bearing range spanned by the wind datasets.
	Margin float64

	// Tolerance [degrees] is the interval width at which the search
	// stops refining.
	Tolerance float64

	// Workers bounds the number of candidate evaluations run
	// concurrently within one refinement round; values below 2 mean
	// serial evaluation. Candidates are independent, so ordering
	// between them never affects the result.
	Workers int
}

// DefaultSearchOptions returns the standard search configuration.
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{Margin: 10, Tolerance: 2.5}
}

// BestWind searches for the rotation of the canonical Average wind that
// maximizes the correlation between modeled and observed enhancements,
// then runs the full classify-and-invert pipeline with that wind. The
// initial interval spans the bearings of the MERRA and ECMWF winds
// widened by the margin on each side; each round evaluates nine equally
// spaced bearings and narrows the interval to three steps either side
// of the best one. The search is local over a bounded interval; it is
// not guaranteed to find a global maximum.
//
// Candidates whose classification fails or yields too few plume points
// score a correlation of zero, so degenerate windows are never chosen.
func BestWind(o *Overpass, opts *Options, so *SearchOptions) (*Result, Wind, error) {
	if so == nil {
		so = DefaultSearchOptions()
	}
	merra, err := o.Winds.Get(WindMERRA)
	if err != nil {
		return nil, Wind{}, err
	}
	ecmwf, err := o.Winds.Get(WindECMWF)
	if err != nil {
		return nil, Wind{}, err
	}
	average, err := o.Winds.Get(WindAverage)
	if err != nil {
		return nil, Wind{}, err
	}

	dirMin := math.Min(merra.Bearing(), ecmwf.Bearing()) - so.Margin
	dirMax := math.Max(merra.Bearing(), ecmwf.Bearing()) + so.Margin
	adjustMin := dirMin - average.Bearing()
	adjustMax := dirMax - average.Bearing()

	// When the interval is already narrower than the tolerance the loop
	// body never runs and the zero adjustment, the Average wind itself,
	// is used.
	adjustments := make([]float64, searchCandidates)
	correlations := make([]float64, searchCandidates)
	best := 0
	for delta := adjustMax - adjustMin; delta > so.Tolerance; delta = math.Abs(adjustMax - adjustMin) {
		floats.Span(adjustments, adjustMin, adjustMax)
		evaluateCandidates(o, average, adjustments, correlations, opts, so.Workers)

		best = floats.MaxIdx(correlations)
		adjustMax = adjustments[min(searchCandidates-1, best+3)]
		adjustMin = adjustments[max(0, best-3)]
	}

	bestWind := average.Rotate(adjustments[best])
	opts.logger().WithField("adjustment", adjustments[best]).
		WithField("correlation", correlations[best]).
		Info("wind search converged")

	result, _, err := ClassifyAndSolve(o, bestWind, opts)
	if err != nil {
		return nil, bestWind, err
	}
	return result, bestWind, nil
}

// evaluateCandidates fills correlations with the score of each
// adjustment, fanning the evaluations out over workers when asked to.
func evaluateCandidates(o *Overpass, average Wind, adjustments, correlations []float64, opts *Options, workers int) {
	if workers < 2 {
		for i, adj := range adjustments {
			correlations[i] = candidateCorrelation(o, average.Rotate(adj), opts)
		}
		return
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, adj := range adjustments {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, adj float64) {
			defer wg.Done()
			correlations[i] = candidateCorrelation(o, average.Rotate(adj), opts)
			<-sem
		}(i, adj)
	}
	wg.Wait()
}

// candidateCorrelation scores one candidate wind: the Pearson
// correlation between the modeled enhancements and the observed values
// with fixed-source contributions removed. Failed classifications and
// windows with too few plume points score zero.
func candidateCorrelation(o *Overpass, w Wind, opts *Options) float64 {
	c, err := Classify(o, w, opts)
	if err != nil || len(c.PlumeValues) <= 2 {
		return 0
	}
	scale := 1.
	if opts.Variant.Kind == CO2MixingRatio {
		if c.KMean == 0 {
			return 0
		}
		scale = 1 / c.KMean
	}
	observed := make([]float64, len(c.PlumeValues))
	for i := range observed {
		observed[i] = c.PlumeValues[i] - c.Fixed[i]*scale
	}
	cor := stat.Correlation(observed, c.ModelEnhancements, nil)
	if math.IsNaN(cor) {
		return 0
	}
	return cor
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
