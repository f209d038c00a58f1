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
)

func TestWindSpeedBearing(t *testing.T) {
	const testTolerance = 1.e-10
	tests := []struct {
		u, v           float64
		speed, bearing float64
	}{
		{0, 5, 5, 0},    // from the south, blowing north
		{5, 0, 5, 90},   // blowing east
		{0, -5, 5, 180}, // blowing south
		{-5, 0, 5, -90}, // blowing west
		{3, 4, 5, 36.86989764584402},
	}
	for _, test := range tests {
		w := NewWind(test.u, test.v, 100)
		if absDifferent(w.Speed(), test.speed, testTolerance) {
			t.Errorf("(%g, %g): speed %g, want %g", test.u, test.v, w.Speed(), test.speed)
		}
		if absDifferent(w.Bearing(), test.bearing, testTolerance) {
			t.Errorf("(%g, %g): bearing %g, want %g", test.u, test.v, w.Bearing(), test.bearing)
		}
	}
}

func TestWindFromBearing(t *testing.T) {
	const testTolerance = 1.e-10
	for _, bearing := range []float64{0, 45, 90, 135, -90, -179} {
		w := WindFromBearing(7, bearing, 250)
		if absDifferent(w.Speed(), 7, testTolerance) {
			t.Errorf("bearing %g: speed %g, want 7", bearing, w.Speed())
		}
		if absDifferent(w.Bearing(), bearing, testTolerance) {
			t.Errorf("bearing round trip: got %g, want %g", w.Bearing(), bearing)
		}
		if w.Height != 250 {
			t.Errorf("bearing %g: height %g, want 250", bearing, w.Height)
		}
	}
}

func TestWindRotate(t *testing.T) {
	const testTolerance = 1.e-10
	w := NewWind(3, 4, 150)
	for _, angle := range []float64{0, 10, -30, 90, 180} {
		r := w.Rotate(angle)
		if absDifferent(r.Speed(), w.Speed(), testTolerance) {
			t.Errorf("rotate %g: speed changed from %g to %g", angle, w.Speed(), r.Speed())
		}
		wantBearing := w.Bearing() + angle
		if wantBearing > 180 {
			wantBearing -= 360
		}
		if absDifferent(r.Bearing(), wantBearing, testTolerance) {
			t.Errorf("rotate %g: bearing %g, want %g", angle, r.Bearing(), wantBearing)
		}
		back := r.Rotate(-angle)
		if absDifferent(back.U, w.U, testTolerance) || absDifferent(back.V, w.V, testTolerance) {
			t.Errorf("rotate %g round trip: got (%g, %g), want (%g, %g)",
				angle, back.U, back.V, w.U, w.V)
		}
		if r.Height != w.Height {
			t.Errorf("rotate %g: height changed to %g", angle, r.Height)
		}
	}
}

func TestWindAddSub(t *testing.T) {
	const testTolerance = 1.e-12
	a := NewWind(1, 2, 100)
	b := NewWind(3, -1, 300)

	sum := a.Add(b)
	if absDifferent(sum.U, 4, testTolerance) || absDifferent(sum.V, 1, testTolerance) {
		t.Errorf("Add: got (%g, %g), want (4, 1)", sum.U, sum.V)
	}
	if absDifferent(sum.Height, 200, testTolerance) {
		t.Errorf("Add: height %g, want the average 200", sum.Height)
	}

	diff := a.Sub(b)
	if absDifferent(diff.U, -2, testTolerance) || absDifferent(diff.V, 3, testTolerance) {
		t.Errorf("Sub: got (%g, %g), want (-2, 3)", diff.U, diff.V)
	}
	if absDifferent(diff.Height, 200, testTolerance) {
		t.Errorf("Sub: height %g, want the average 200", diff.Height)
	}

	scaled := a.Scale(2)
	if scaled.U != 2 || scaled.V != 4 || scaled.Height != 100 {
		t.Errorf("Scale: got %+v", scaled)
	}
}

func TestWindSetAverage(t *testing.T) {
	const testTolerance = 1.e-12
	s := WindSet{
		WindMERRA: NewWind(2, 0, 100),
		WindECMWF: NewWind(4, 2, 300),
	}
	avg, err := s.Get(WindAverage)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(avg.U, 3, testTolerance) || absDifferent(avg.V, 1, testTolerance) {
		t.Errorf("derived average: got (%g, %g), want (3, 1)", avg.U, avg.V)
	}
	if absDifferent(avg.Height, 200, testTolerance) {
		t.Errorf("derived average height: got %g, want 200", avg.Height)
	}

	// A stored Average takes precedence over the derived one.
	s[WindAverage] = NewWind(9, 9, 50)
	avg, err = s.Get(WindAverage)
	if err != nil {
		t.Fatal(err)
	}
	if avg.U != 9 {
		t.Errorf("stored average not used: got %+v", avg)
	}

	if _, err := s.Get(WindGEM); err == nil {
		t.Error("expected an error for a missing dataset")
	}
}

func TestWindSetSpeedSpread(t *testing.T) {
	const testTolerance = 1.e-12
	s := WindSet{
		WindMERRA: NewWind(0, 6, 100),
		WindECMWF: NewWind(0, 4, 100),
	}
	spread, err := s.SpeedSpread()
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(spread, 0.2, testTolerance) {
		t.Errorf("spread: got %g, want 0.2", spread)
	}

	if _, err := (WindSet{WindMERRA: NewWind(0, 6, 100)}).SpeedSpread(); err == nil {
		t.Error("expected an error with ECMWF missing")
	}
	calm := WindSet{
		WindMERRA: NewWind(0, 0, 100),
		WindECMWF: NewWind(0, 0, 100),
	}
	if _, err := calm.SpeedSpread(); err == nil {
		t.Error("expected an error when both winds are calm")
	}
}

func TestWindRotateBearingRange(t *testing.T) {
	// Bearings stay in (-180, 180].
	w := WindFromBearing(5, 170, 100).Rotate(20)
	if b := w.Bearing(); b > 180 || b <= -180 {
		t.Errorf("bearing %g outside (-180, 180]", b)
	}
	if absDifferent(w.Bearing(), -170, 1e-9) {
		t.Errorf("bearing: got %g, want -170", w.Bearing())
	}
}
