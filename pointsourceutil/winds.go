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
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pointsource"
)

// AttachWinds resolves a wind from each provider at the overpass time,
// source location, and the given height, and stores it in the
// overpass's wind set under the provider's dataset name. A failed
// lookup is logged and replaced with a calm placeholder wind rather
// than aborting, so one broken dataset does not block estimates with
// the remaining ones; the inversion itself still rejects a calm wind
// if the placeholder is later selected.
func AttachWinds(o *pointsource.Overpass, providers map[string]pointsource.WindProvider, height float64, log logrus.FieldLogger) {
	if o.Winds == nil {
		o.Winds = make(pointsource.WindSet)
	}
	for name, p := range providers {
		w, err := p.Wind(o.Time, o.Source.Location, height)
		if err != nil {
			log.WithFields(logrus.Fields{
				"overpass": o.String(),
				"dataset":  name,
			}).WithError(err).Warn("wind lookup failed; substituting calm wind")
			w = pointsource.NewWind(0, 0, height)
		}
		o.Winds[name] = w
	}
}
