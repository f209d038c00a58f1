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

import "github.com/sirupsen/logrus"

// Version gives this version of PointSource.
const Version = "0.1.0"

// ClassifyAndSolve runs the full classify-then-invert pipeline for one
// candidate wind and returns both the inversion result and the
// classification it was computed from.
func ClassifyAndSolve(o *Overpass, w Wind, opts *Options) (*Result, *Classification, error) {
	c, err := Classify(o, w, opts)
	if err != nil {
		return nil, nil, err
	}
	r, err := Solve(o, c, opts)
	if err != nil {
		return nil, c, err
	}
	return r, c, nil
}

// RunModel runs the classify-and-invert pipeline for each of the given
// candidate winds and returns one result per wind, logging a summary of
// each. A nil winds slice runs the canonical Average wind alone.
func RunModel(o *Overpass, winds []Wind, opts *Options) ([]*Result, error) {
	if winds == nil {
		avg, err := o.Winds.Get(WindAverage)
		if err != nil {
			return nil, err
		}
		winds = []Wind{avg}
	}
	log := opts.logger()
	results := make([]*Result, len(winds))
	for i, w := range winds {
		r, _, err := ClassifyAndSolve(o, w, opts)
		if err != nil {
			return nil, err
		}
		vals, err := r.EmissionValues(opts.OutputUnits)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"overpass":    o.String(),
			"wind":        w.String(),
			"emissions":   vals,
			"units":       opts.OutputUnits.String(),
			"scaleFactor": r.ScaleFactor,
			"correlation": r.Correlation,
			"plumePoints": r.PlumePoints,
		}).Info("inversion complete")
		results[i] = r
	}
	return results, nil
}
