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
	"time"

	"github.com/ctessum/geom"
)

// Wind is a horizontal wind vector in a local East-North frame, together
// with the height above ground it applies at. U is the Eastward component
// and V the Northward component, both in m/s. The zero value is a calm
// wind at ground level.
//
// Wind values are immutable; arithmetic operations return new values.
type Wind struct {
	U, V   float64 // East and North components [m/s]
	Height float64 // measurement height [m]
}

// NewWind creates a Wind from East and North components [m/s]
// at measurement height h [m].
func NewWind(u, v, h float64) Wind {
	return Wind{U: u, V: v, Height: h}
}

// WindFromBearing creates a Wind with the given scalar speed [m/s],
// compass bearing [degrees, north-clockwise], and height [m].
func WindFromBearing(speed, bearing, h float64) Wind {
	rad := bearing * math.Pi / 180
	return Wind{
		U:      speed * math.Sin(rad),
		V:      speed * math.Cos(rad),
		Height: h,
	}
}

// Speed returns the scalar wind speed [m/s]. It is always nonnegative.
func (w Wind) Speed() float64 {
	return math.Hypot(w.U, w.V)
}

// Bearing returns the compass bearing [degrees] the wind blows toward,
// measured north-clockwise in the range (-180, 180].
func (w Wind) Bearing() float64 {
	return math.Atan2(w.U, w.V) * 180 / math.Pi
}

// Add returns the component-wise sum of two winds. The height of the
// result is the average of the two operand heights, so the average of
// winds w and v is 0.5*(w+v) with no separate height bookkeeping.
func (w Wind) Add(v Wind) Wind {
	return Wind{
		U:      w.U + v.U,
		V:      w.V + v.V,
		Height: 0.5 * (w.Height + v.Height),
	}
}

// Sub returns the component-wise difference of two winds, averaging
// heights the same way Add does.
func (w Wind) Sub(v Wind) Wind {
	return Wind{
		U:      w.U - v.U,
		V:      w.V - v.V,
		Height: 0.5 * (w.Height + v.Height),
	}
}

// Scale returns the wind multiplied by scalar k, height unchanged.
func (w Wind) Scale(k float64) Wind {
	return Wind{U: w.U * k, V: w.V * k, Height: w.Height}
}

// Rotate returns the wind rotated by angle degrees. Positive angles add
// to the compass bearing; the speed and height are unchanged.
func (w Wind) Rotate(angle float64) Wind {
	rad := angle * math.Pi / 180
	s := w.Speed()
	theta := math.Atan2(w.V, w.U) - rad
	return Wind{
		U:      s * math.Cos(theta),
		V:      s * math.Sin(theta),
		Height: w.Height,
	}
}

// WithHeight returns a copy of the wind at a different reference height.
// The components are not adjusted; this only relabels the height, for
// example when the plume height differs from the data level.
func (w Wind) WithHeight(h float64) Wind {
	return Wind{U: w.U, V: w.V, Height: h}
}

func (w Wind) String() string {
	return fmt.Sprintf("%g m/s, %g degrees", w.Speed(), w.Bearing())
}

// A WindProvider supplies wind vectors from an external wind-field
// dataset. Implementations typically read reanalysis files; they are
// outside this package. An error return means no data is available for
// the requested time and place, and the caller decides how to proceed.
type WindProvider interface {
	Wind(t time.Time, loc geom.Point, height float64) (Wind, error)
}

// Canonical wind dataset names. Average is derived from MERRA and ECMWF.
const (
	WindMERRA   = "MERRA"
	WindECMWF   = "ECMWF"
	WindGEM     = "GEM"
	WindAverage = "Average"
)

// A WindSet holds the winds resolved for one overpass, keyed by dataset
// name. Winds are resolved once per overpass, not per observation point.
type WindSet map[string]Wind

// Get returns the named wind. The Average wind is derived on demand as
// the mean of the MERRA and ECMWF winds when it has not been stored
// explicitly.
func (s WindSet) Get(name string) (Wind, error) {
	if w, ok := s[name]; ok {
		return w, nil
	}
	if name == WindAverage {
		m, mok := s[WindMERRA]
		e, eok := s[WindECMWF]
		if mok && eok {
			return m.Add(e).Scale(0.5), nil
		}
	}
	return Wind{}, fmt.Errorf("pointsource: no %s wind in wind set", name)
}

// SpeedSpread returns the relative difference |s1-s2|/(s1+s2) between
// the MERRA and ECMWF wind speeds, which is used as the wind
// contribution to the inversion uncertainty. It returns an error when
// either wind is missing or both speeds are zero.
func (s WindSet) SpeedSpread() (float64, error) {
	m, err := s.Get(WindMERRA)
	if err != nil {
		return 0, err
	}
	e, err := s.Get(WindECMWF)
	if err != nil {
		return 0, err
	}
	sum := m.Speed() + e.Speed()
	if sum == 0 {
		return 0, fmt.Errorf("pointsource: both %s and %s winds are calm", WindMERRA, WindECMWF)
	}
	return math.Abs((m.Speed() - e.Speed()) / sum), nil
}
