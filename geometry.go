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
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// earthRadius is the radius of a spherical Earth [m].
const earthRadius = 6.371e6

// greatCircle returns the distance [m] along the surface of a spherical
// Earth between two points given in radians, using the spherical law of
// cosines. The zero-separation case is handled before the inverse
// trigonometry so floating rounding cannot push the Acos argument out
// of its domain.
func greatCircle(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	angle := math.Acos(math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1))
	return earthRadius * angle
}

// A WindBasis converts geographic coordinates into a 2D Cartesian frame
// aligned with a reference wind: x is distance along the wind and y is
// distance across it.
//
// The basis is left-handed (xhat cross yhat = -1). This convention is
// load-bearing: the sign conventions of the background classification
// bands are calibrated against it, so it must not be changed to a
// right-handed frame.
type WindBasis struct {
	Wind Wind
}

// NewWindBasis creates a WindBasis for the given reference wind.
func NewWindBasis(w Wind) *WindBasis {
	return &WindBasis{Wind: w}
}

// Distance returns the great-circle distance [m] between two lon/lat
// points given in degrees (geom.Point{X: lon, Y: lat}).
func (b *WindBasis) Distance(p1, p2 geom.Point) float64 {
	const d2r = math.Pi / 180
	return math.Abs(greatCircle(p1.Y*d2r, p1.X*d2r, p2.Y*d2r, p2.X*d2r))
}

// CoordToDist converts the separation between origin and p into local
// East (x) and North (y) distances in meters, measuring the spherical
// distance along each axis independently. This is not a true map
// projection and is only valid over short baselines.
func (b *WindBasis) CoordToDist(origin, p geom.Point) (x, y float64) {
	const d2r = math.Pi / 180
	lat1, lon1 := origin.Y*d2r, origin.X*d2r
	lat2, lon2 := p.Y*d2r, p.X*d2r
	x = greatCircle(lat1, lon1, lat1, lon2) * sign(lon2-lon1)
	y = greatCircle(lat1, lon1, lat2, lon1) * sign(lat2-lat1)
	return x, y
}

// ToWindBasis rotates the East/North vector (x, y) into the wind-aligned
// frame, returning distance along the wind and across it. See the type
// documentation for the handedness convention.
func (b *WindBasis) ToWindBasis(x, y float64) (xw, yw float64) {
	theta := math.Atan2(y, x)
	alpha := math.Atan2(b.Wind.V, b.Wind.U)
	beta := alpha - theta
	r := math.Hypot(x, y)
	return r * math.Cos(beta), r * math.Sin(beta)
}

// CoordToWindBasis converts the lon/lat point p into wind-basis
// coordinates [m] relative to origin.
func (b *WindBasis) CoordToWindBasis(origin, p geom.Point) (xw, yw float64) {
	x, y := b.CoordToDist(origin, p)
	return b.ToWindBasis(x, y)
}

// SZAOffset computes the horizontal (x, y) displacement [m], in the wind
// basis, of the point where a ray at the given zenith and azimuth angles
// [degrees] crosses the plume height. The column is sampled where the
// ray passes through the plume, not at the ground footprint, so model
// enhancements are evaluated at the shifted position.
func (b *WindBasis) SZAOffset(zenith, azimuth float64) (x, y float64) {
	const d2r = math.Pi / 180
	r := b.Wind.Height * math.Tan(zenith*d2r)
	xe := r * math.Sin(azimuth*d2r)
	yn := r * math.Cos(azimuth*d2r)
	return b.ToWindBasis(xe, yn)
}

// CartesianDistance returns the Euclidean distance between two points
// in a plane. It assumes flat ground and is meant for separations of at
// most a few tens of km, unlike Distance.
func CartesianDistance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// AzimuthSign reports which half of the plane a compass angle [degrees,
// 0-360] lies in: +1 for the eastern half (0-180), -1 for the western
// half. It is used to decide forward versus back scatter when signing
// sensor zenith angles.
func AzimuthSign(angle float64) (int, error) {
	if angle < 0 || angle > 360 {
		return 0, fmt.Errorf("pointsource: azimuth angle must be within [0, 360] degrees; got %g", angle)
	}
	if angle <= 180 {
		return 1, nil
	}
	return -1, nil
}

// ConvexHull returns the convex hull of the given points in
// counter-clockwise order, starting from the lexicographically smallest
// vertex, using Andrew's monotone chain algorithm. Fewer than 4 distinct
// points do not describe a useful sounding footprint region, so the
// result is empty in that case rather than an error.
func ConvexHull(points []geom.Point) []geom.Point {
	uniq := make(map[geom.Point]struct{}, len(points))
	for _, p := range points {
		uniq[p] = struct{}{}
	}
	if len(uniq) < 4 {
		return nil
	}
	pts := make([]geom.Point, 0, len(uniq))
	for p := range uniq {
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b geom.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []geom.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []geom.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// FootprintArea returns the area [m^2] enclosed by the four lon/lat
// vertices of a sounding footprint, assuming a closed polygon on flat
// ground. The vertices are reprojected sinusoidally before applying the
// shoelace formula, which is adequate for footprints of ~10 km^2.
func FootprintArea(vertices []geom.Point) (float64, error) {
	if len(vertices) != 4 {
		return 0, fmt.Errorf("pointsource: footprint must have 4 vertices; got %d", len(vertices))
	}
	const latDist = math.Pi * earthRadius / 180
	x := make([]float64, 4)
	y := make([]float64, 4)
	for i, v := range vertices {
		y[i] = v.Y * latDist
		x[i] = v.X * latDist * math.Cos(v.Y*math.Pi/180)
	}
	var area float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		area += x[i]*y[j] - x[j]*y[i]
	}
	return math.Abs(area) / 2, nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
