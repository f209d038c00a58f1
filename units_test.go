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

	"github.com/ctessum/unit"
)

func TestEmissionRateValue(t *testing.T) {
	const testTolerance = 1.e-12

	r := KilogramsPerSecond(2)
	tests := []struct {
		units EmissionUnits
		want  float64
	}{
		{GramPerSecond, 2000},
		{KilogramPerSecond, 2},
		{TonnePerYear, 2 * secondsPerYear / 1000},
		{MegatonnePerYear, 2 * secondsPerYear / 1000 / 1e6},
	}
	for _, test := range tests {
		got, err := EmissionRateValue(r, test.units)
		if err != nil {
			t.Fatalf("%v: %v", test.units, err)
		}
		if different(got, test.want, testTolerance) {
			t.Errorf("%v: got %g, want %g", test.units, got, test.want)
		}
	}

	// The constructors agree with the conversions.
	g, err := EmissionRateValue(GramsPerSecond(1500), KilogramPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	if different(g, 1.5, testTolerance) {
		t.Errorf("g/s constructor: got %g kg/s, want 1.5", g)
	}
	y, err := EmissionRateValue(TonnesPerYear(secondsPerYear/1000), KilogramPerSecond)
	if err != nil {
		t.Fatal(err)
	}
	if different(y, 1, testTolerance) {
		t.Errorf("t/yr constructor: got %g kg/s, want 1", y)
	}

	// Non-rate units are rejected.
	if _, err := EmissionRateValue(unit.New(3, unit.Meter), TonnePerYear); err == nil {
		t.Error("expected an error for a length quantity")
	}
}

func TestEmissionUnitsString(t *testing.T) {
	tests := []struct {
		units EmissionUnits
		want  string
	}{
		{GramPerSecond, "g/s"},
		{KilogramPerSecond, "kg/s"},
		{TonnePerYear, "t/yr"},
		{MegatonnePerYear, "Mt/yr"},
		{EmissionUnits(42), "unknown"},
	}
	for _, test := range tests {
		if got := test.units.String(); got != test.want {
			t.Errorf("%d: got %s, want %s", int(test.units), got, test.want)
		}
	}
}
