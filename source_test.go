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
	"testing"
	"time"

	"github.com/ctessum/unit"
)

type constantScaler float64

func (c constantScaler) Factor(s *Source, t time.Time) (float64, error) {
	return float64(c), nil
}

func TestEmissionsAt(t *testing.T) {
	const testTolerance = 1.e-12
	s := &Source{Name: "plant", Emissions: KilogramsPerSecond(10)}
	now := time.Date(2017, 5, 28, 11, 48, 0, 0, time.UTC)

	e, err := s.EmissionsAt(now, nil)
	if err != nil {
		t.Fatal(err)
	}
	if different(e.Value(), 10, testTolerance) {
		t.Errorf("unscaled: got %g, want 10", e.Value())
	}
	// The returned quantity is a copy.
	if e == s.Emissions {
		t.Error("EmissionsAt returned the source's own quantity")
	}

	e, err = s.EmissionsAt(now, constantScaler(1.5))
	if err != nil {
		t.Fatal(err)
	}
	if different(e.Value(), 15, testTolerance) {
		t.Errorf("scaled: got %g, want 15", e.Value())
	}
	if !e.Dimensions().Matches(emissionRate) {
		t.Errorf("scaled emissions have dimensions %v", e.Dimensions())
	}

	if _, err := (&Source{Name: "empty"}).EmissionsAt(now, nil); err == nil {
		t.Error("expected an error for a source with no reported emissions")
	}
}

func TestEffectiveHeight(t *testing.T) {
	wind := NewWind(0, 5, 100)

	// Missing stack parameters fall back to the stack height.
	bare := &Source{Name: "bare", Height: 120}
	h, err := bare.EffectiveHeight(wind)
	if err != nil {
		t.Fatal(err)
	}
	if h != 120 {
		t.Errorf("bare stack: got %g, want 120", h)
	}

	full := &Source{
		Name:          "full",
		Height:        120,
		StackDiameter: unit.New(8, unit.Meter),
		StackTemp:     unit.New(420, unit.Kelvin),
		StackVelocity: unit.New(15, unit.MeterPerSecond),
	}
	h, err = full.EffectiveHeight(wind)
	if err != nil {
		t.Fatal(err)
	}
	if !(h > 120) {
		t.Errorf("buoyant stack: effective height %g did not exceed the stack height", h)
	}
	if h > plumeRiseTop {
		t.Errorf("effective height %g above the profile top", h)
	}

	if _, err := full.EffectiveHeight(NewWind(0, 0, 100)); err == nil {
		t.Error("expected an error for plume rise in calm wind")
	}
}

func TestCatalogSource(t *testing.T) {
	c := &Catalog{Sources: map[string]*Source{
		"plant": {Name: "plant"},
	}}
	s, err := c.Source("plant")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "plant" {
		t.Errorf("got %s", s.Name)
	}
	if _, err := c.Source("missing"); err == nil {
		t.Error("expected an error for an unknown source")
	}
}

func TestOverpass(t *testing.T) {
	o := &Overpass{
		Source:           &Source{Name: "plant"},
		Time:             time.Date(2017, 5, 28, 11, 48, 0, 0, time.UTC),
		SurfaceWindSpeed: 4,
		CloudFraction:    0.1,
		AElevated:        104,
	}
	if got := o.Stability(); got != StabilityB {
		t.Errorf("stability: got %v, want B", got)
	}
	a, err := o.A(true)
	if err != nil {
		t.Fatal(err)
	}
	if a != 156 {
		t.Errorf("surface coefficient: got %g, want 156", a)
	}
	a, err = o.A(false)
	if err != nil {
		t.Fatal(err)
	}
	if a != 104 {
		t.Errorf("elevated coefficient: got %g, want 104", a)
	}
	if _, err := (&Overpass{Source: o.Source}).A(false); err == nil {
		t.Error("expected an error for an unset elevated coefficient")
	}
	if s := o.String(); s != "plant 2017-05-28 11:48:00" {
		t.Errorf("String: got %q", s)
	}
}
