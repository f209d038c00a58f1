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

// StabilityClass is a Pasquill-Gifford atmospheric stability class.
// In addition to the standard classes A-D, the intermediate classes
// AB, BC, and CD carry dispersion coefficients halfway between their
// neighbors.
type StabilityClass int

// Stability classes, ordered from most unstable to neutral.
const (
	StabilityA StabilityClass = iota
	StabilityAB
	StabilityB
	StabilityBC
	StabilityC
	StabilityCD
	StabilityD
)

var stabilityNames = [...]string{"A", "AB", "B", "BC", "C", "CD", "D"}

// dispersionCoefficients holds the horizontal dispersion coefficient a
// for each class, used in the power-law plume spread sigma_y = a*(x/1km)^0.894.
var dispersionCoefficients = [...]float64{213, 184.5, 156, 130, 104, 86, 68}

func (c StabilityClass) String() string {
	if c < StabilityA || c > StabilityD {
		return "unknown"
	}
	return stabilityNames[c]
}

// DispersionCoefficient returns the coefficient a for the class.
func (c StabilityClass) DispersionCoefficient() float64 {
	return dispersionCoefficients[c]
}

// ClassifyStability determines the stability class from the surface
// wind speed [m/s] and the cloud fraction [0-1]. The classification is
// a pure function of its inputs: insolation is split at cloud fractions
// of 1/3 and 2/3 into strong, moderate, and slight, and within each
// band the class depends only on wind speed.
func ClassifyStability(surfaceWind, cloudFraction float64) StabilityClass {
	const (
		highModerate = 0.33333
		moderateLow  = 0.66667
	)
	switch {
	case cloudFraction < highModerate:
		switch {
		case surfaceWind < 2:
			return StabilityA
		case surfaceWind < 3:
			return StabilityAB
		case surfaceWind < 5:
			return StabilityB
		case surfaceWind < 6:
			return StabilityBC
		default:
			return StabilityC
		}
	case cloudFraction < moderateLow:
		switch {
		case surfaceWind < 2:
			return StabilityAB
		case surfaceWind < 3:
			return StabilityB
		case surfaceWind < 5:
			return StabilityBC
		case surfaceWind < 6:
			return StabilityCD
		default:
			return StabilityD
		}
	default:
		switch {
		case surfaceWind < 2:
			return StabilityB
		case surfaceWind < 5:
			return StabilityC
		default:
			return StabilityD
		}
	}
}
