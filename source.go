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

	"github.com/ctessum/atmos/plumerise"
	"github.com/ctessum/geom"
	"github.com/ctessum/unit"
)

// A Source is a point emitter: a facility location with a stack and a
// reported annual-average emission rate. Sources sitting close enough
// together that their plumes cannot be separated are attached as
// secondary sources and are included or excluded from an inversion
// together with the main source.
type Source struct {
	// Name is the short identifier the source is cataloged under.
	Name string

	// Description is a human-readable facility name.
	Description string

	// Location is the facility location (X: lon, Y: lat degrees).
	Location geom.Point

	// Height is the stack height [m].
	Height float64

	// Optional stack parameters used to estimate the effective release
	// height from plume rise. Diameter [m], gas exit temperature [K],
	// and gas exit velocity [m/s].
	StackDiameter, StackTemp, StackVelocity *unit.Unit

	// Emissions is the reported annual-average emission rate.
	Emissions *unit.Unit

	// Secondary sources whose plumes overlap this one.
	Secondary []*Source
}

// A TemporalScaler scales a reported annual-average emission rate to a
// specific time, for example from hourly emissions records. It is an
// external lookup; a nil scaler means no temporal adjustment.
type TemporalScaler interface {
	Factor(s *Source, t time.Time) (float64, error)
}

// EmissionsAt returns the reported emission rate of the source at time
// t, applying the temporal scaling if a scaler is given.
func (s *Source) EmissionsAt(t time.Time, scaler TemporalScaler) (*unit.Unit, error) {
	if s.Emissions == nil {
		return nil, fmt.Errorf("pointsource: source %s has no reported emissions", s.Name)
	}
	if scaler == nil {
		return s.Emissions.Clone(), nil
	}
	f, err := scaler.Factor(s, t)
	if err != nil {
		return nil, err
	}
	return unit.Mul(s.Emissions, unit.New(f, unit.Dimless)), nil
}

// plume-rise profile extent for effective-height estimation.
const (
	plumeRiseTop = 3000. // m
	plumeRiseDz  = 25.   // m
)

// EffectiveHeight returns the effective release height [m] of the
// source in the given wind: the stack height plus buoyant plume rise
// computed from the stack parameters with the ASME (1973) formulas,
// evaluated in a neutral standard-atmosphere profile. When any stack
// parameter is missing the stack height is returned unchanged.
func (s *Source) EffectiveHeight(w Wind) (float64, error) {
	if s.StackDiameter == nil || s.StackTemp == nil || s.StackVelocity == nil {
		return s.Height, nil
	}
	if w.Speed() == 0 {
		return 0, fmt.Errorf("pointsource: cannot compute plume rise for source %s in calm wind", s.Name)
	}
	n := int(plumeRiseTop / plumeRiseDz)
	layerHeights := make([]float64, n+1)
	temperature := make([]float64, n)
	windSpeed := make([]float64, n)
	sClass := make([]float64, n)
	s1 := make([]float64, n)
	for i := 0; i < n; i++ {
		layerHeights[i+1] = layerHeights[i] + plumeRiseDz
		mid := layerHeights[i] + plumeRiseDz/2
		temperature[i] = 288.15 - 0.0065*mid // standard lapse rate
		windSpeed[i] = w.Speed()
		sClass[i] = 0 // neutral
		s1[i] = 0.
	}
	_, plumeHeight, err := plumerise.ASME(s.Height,
		s.StackDiameter.Value(), s.StackTemp.Value(), s.StackVelocity.Value(),
		layerHeights, temperature, windSpeed, sClass, s1)
	if err != nil {
		if err == plumerise.ErrAboveModelTop {
			return plumeRiseTop, nil
		}
		return 0, err
	}
	return plumeHeight, nil
}

// A Catalog is a repository of known sources and their satellite
// overpasses, constructed once from a data file and passed to whatever
// needs lookup by name.
type Catalog struct {
	Sources    map[string]*Source
	Overpasses []*Overpass
}

// Source returns the named source.
func (c *Catalog) Source(name string) (*Source, error) {
	s, ok := c.Sources[name]
	if !ok {
		return nil, fmt.Errorf("pointsource: no source named %s in catalog", name)
	}
	return s, nil
}
