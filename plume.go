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

// Package pointsource estimates greenhouse-gas emission rates of point
// sources from satellite column-CO2 retrievals. It fits a steady-state,
// vertically integrated 2D Gaussian plume model to observed
// enhancements, classifies soundings into plume and background
// populations, and solves a least-squares inverse problem for the
// emission rate, optionally searching over wind direction for the
// best model-observation correlation.
package pointsource

import "math"

// Default classification parameters.
const (
	DefaultPlumeFactor      = 0.10
	DefaultBackgroundFactor = 0.01
	DefaultXMax             = 75.e3
	DefaultYMaxPositive     = 50.e3
	DefaultYMaxNegative     = 50.e3
	DefaultYMinPositive     = 0.
	DefaultYMinNegative     = 0.
	DefaultOffset           = 3.e3
)

// Enhancement returns the expected column enhancement [g/m^2] at
// wind-basis position (x, y) [m] downwind of a source emitting F [g/s]
// into a wind of speed u [m/s], for dispersion coefficient a and source
// cross-section y0 [m].
//
// The plume spreads horizontally as sigma_y = a*(x/1km)^0.894; a
// nonzero y0 is folded in as a virtual upwind offset of the source.
// The function is total over valid numeric inputs: positions at or
// upwind of the source (x <= 0) and degenerate denominators
// (sigma_y*u == 0) both return 0 rather than failing.
func Enhancement(x, y, u, F, a, y0 float64) float64 {
	if x <= 0 {
		return 0
	}
	x0 := math.Pow(y0/a, 1/0.894) * 1000
	sigmaY := a * math.Pow((x+x0)/1000, 0.894)
	denom := math.Sqrt(2*math.Pi) * sigmaY * u
	if denom == 0 {
		return 0
	}
	return F / denom * math.Exp(-0.5*(y/sigmaY)*(y/sigmaY))
}

// TrackSign selects which wind-basis coordinate signs the along-track
// distance used by the background band test.
type TrackSign int

const (
	// SignCrossWind signs the distance by the cross-wind coordinate y.
	SignCrossWind TrackSign = iota
	// SignAlongWind signs the distance by the along-wind coordinate x.
	SignAlongWind
)

// PlumeCriteria are the thresholds of the in-plume test.
type PlumeCriteria struct {
	// Factor is the fraction of the on-axis enhancement below which a
	// point is no longer considered inside the plume.
	Factor float64
	// XMax is the maximum along-wind distance [m] to consider.
	XMax float64
}

// DefaultPlumeCriteria returns the standard in-plume thresholds.
func DefaultPlumeCriteria() PlumeCriteria {
	return PlumeCriteria{Factor: DefaultPlumeFactor, XMax: DefaultXMax}
}

// InPlume reports whether wind-basis position (x, y) is inside the
// plume: within XMax downwind and with a modeled enhancement of at
// least Factor times the on-axis value at the same x. Points at or
// upwind of the source are never in the plume.
func (c PlumeCriteria) InPlume(x, y, u, F, a float64) bool {
	if x <= 0 {
		return false
	}
	vmax := Enhancement(x, 0, u, F, a, 0)
	v := Enhancement(x, y, u, F, a, 0)
	return v >= c.Factor*vmax && x <= c.XMax
}

// BackgroundCriteria are the thresholds of the in-background test.
// The background is an annulus around the source: close enough to share
// the ambient signal but far enough from the plume centerline that the
// modeled enhancement has decayed away.
type BackgroundCriteria struct {
	// Factor is the fraction of the on-axis enhancement above which a
	// point is considered contaminated by the plume.
	Factor float64
	// The allowed signed-distance bands are [-YMaxNegative, -YMinNegative]
	// and [YMinPositive, YMaxPositive], all in meters; boundaries are
	// inclusive.
	YMaxPositive, YMaxNegative float64
	YMinPositive, YMinNegative float64
	// Offset is the extra cross-wind displacement [m] subtracted from
	// |y| before the decay test.
	Offset float64
	// Sign selects whether the controlling distance is signed by the
	// along-wind or the cross-wind coordinate.
	Sign TrackSign
}

// DefaultBackgroundCriteria returns the standard background thresholds.
func DefaultBackgroundCriteria() BackgroundCriteria {
	return BackgroundCriteria{
		Factor:       DefaultBackgroundFactor,
		YMaxPositive: DefaultYMaxPositive,
		YMaxNegative: DefaultYMaxNegative,
		YMinPositive: DefaultYMinPositive,
		YMinNegative: DefaultYMinNegative,
		Offset:       DefaultOffset,
		Sign:         SignCrossWind,
	}
}

// InBackground reports whether wind-basis position (x, y) belongs to
// the background. r is the precomputed Cartesian distance [m] from the
// point to the plume center; it is signed by x or y according to Sign
// and must fall in one of the allowed bands. Downwind of the source the
// modeled enhancement at (x, max(0,|y|-Offset)) must additionally have
// decayed to at most Factor times the on-axis value; at or upwind of
// the source only the band test applies, because background membership
// is defined relative to the source position, not the plume decay.
func (c BackgroundCriteria) InBackground(x, y, r, u, F, a float64) bool {
	switch c.Sign {
	case SignAlongWind:
		r *= sign(x)
	default:
		r *= sign(y)
	}
	inBand := (-c.YMaxNegative <= r && r <= -c.YMinNegative) ||
		(c.YMinPositive <= r && r <= c.YMaxPositive)
	if x <= 0 {
		return inBand
	}
	vmax := Enhancement(x, 0, u, F, a, 0)
	v := Enhancement(x, math.Max(0, math.Abs(y)-c.Offset), u, F, a, 0)
	return v <= c.Factor*vmax && inBand
}
