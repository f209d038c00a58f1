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
	"time"
)

// An Overpass is a single satellite observation event over a source.
// It composes a Source, the observation time, the winds resolved for
// that time, and the atmospheric stability state; none of these change
// once the overpass has been constructed, and they are resolved once
// per overpass rather than per observation point.
type Overpass struct {
	Source *Source
	Time   time.Time

	// Winds holds the wind vectors resolved from each available wind
	// dataset for this overpass.
	Winds WindSet

	// SurfaceWindSpeed [m/s] and CloudFraction [0-1] determine the
	// stability class.
	SurfaceWindSpeed float64
	CloudFraction    float64

	// AElevated optionally overrides the dispersion coefficient for
	// elevated (non-surface) stability conditions; 0 means unset.
	AElevated float64

	// Mode is the satellite viewing mode of this overpass.
	Mode ObservationMode

	// Data is the raw observation dataset for this pass. It may be nil
	// until an ObservationProvider has supplied it.
	Data *Dataset
}

// Stability returns the stability class for this overpass, derived
// from the surface wind speed and cloud fraction.
func (o *Overpass) Stability() StabilityClass {
	return ClassifyStability(o.SurfaceWindSpeed, o.CloudFraction)
}

// A returns the horizontal dispersion coefficient for this overpass.
// With surface == false the elevated coefficient is used instead of
// the surface stability lookup.
func (o *Overpass) A(surface bool) (float64, error) {
	if surface {
		return o.Stability().DispersionCoefficient(), nil
	}
	if o.AElevated == 0 {
		return 0, fmt.Errorf("pointsource: overpass %v of %s has no elevated stability coefficient",
			o.Time.Format("2006-01-02"), o.Source.Name)
	}
	return o.AElevated, nil
}

func (o *Overpass) String() string {
	return fmt.Sprintf("%s %s", o.Source.Name, o.Time.Format("2006-01-02 15:04:05"))
}
