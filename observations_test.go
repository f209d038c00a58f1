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

	"github.com/ctessum/geom"
)

func TestCO2Variant(t *testing.T) {
	v := CO2Variant{Correction: BiasCorrected}
	if err := v.Validate(); err != nil {
		t.Error(err)
	}
	if v.Units() != "ppm" {
		t.Errorf("units: got %s", v.Units())
	}
	if s := v.String(); s != "corrected_xco2" {
		t.Errorf("String: got %s", s)
	}

	col := CO2Variant{Correction: BiasS31, Kind: CO2Column, Smoothed: true}
	if col.Units() != "g/m^2" {
		t.Errorf("column units: got %s", col.Units())
	}
	if s := col.String(); s != "smoothed_S31_co2_column" {
		t.Errorf("column String: got %s", s)
	}

	if err := (CO2Variant{Correction: 9}).Validate(); err == nil {
		t.Error("expected an error for an invalid correction")
	}
	if err := (CO2Variant{Kind: 7}).Validate(); err == nil {
		t.Error("expected an error for an invalid kind")
	}
}

func TestObservationValue(t *testing.T) {
	p := ObservationPoint{
		RetrievedXCO2: 401,
		PartialXCO2:   402,
		CorrectedXCO2: 403,
		S31XCO2:       404,
		K:             2,
	}
	d := NewDataset([]ObservationPoint{p}, ModeNadir)

	tests := []struct {
		v    CO2Variant
		want float64
	}{
		{CO2Variant{Correction: BiasRetrieved}, 401},
		{CO2Variant{Correction: BiasPartial}, 402},
		{CO2Variant{Correction: BiasCorrected}, 403},
		{CO2Variant{Correction: BiasS31}, 404},
		// Column amounts are the mixing ratio scaled by K.
		{CO2Variant{Correction: BiasRetrieved, Kind: CO2Column}, 802},
		{CO2Variant{Correction: BiasCorrected, Kind: CO2Column}, 806},
	}
	for _, test := range tests {
		got, err := d.Value(0, test.v)
		if err != nil {
			t.Fatalf("%v: %v", test.v, err)
		}
		if got != test.want {
			t.Errorf("%v: got %g, want %g", test.v, got, test.want)
		}
	}

	// Smoothed values must be prepared before use.
	if _, err := d.Value(0, CO2Variant{Correction: BiasCorrected, Smoothed: true}); err == nil {
		t.Error("expected an error for an unprepared smoothed variant")
	}
}

func TestSmooth(t *testing.T) {
	const testTolerance = 1.e-12
	// A 2x2 swath patch with one empty cell. Each smoothed value is the
	// average over the filled cells of the 3x3 neighborhood, which here
	// is all three points for every point.
	points := []ObservationPoint{
		{Row: 10, Footprint: 0, CorrectedXCO2: 400},
		{Row: 10, Footprint: 1, CorrectedXCO2: 404},
		{Row: 11, Footprint: 0, CorrectedXCO2: 408},
	}
	d := NewDataset(points, ModeNadir)
	v := CO2Variant{Correction: BiasCorrected}
	if err := d.Smooth(v); err != nil {
		t.Fatal(err)
	}
	sm := v
	sm.Smoothed = true
	want := (400. + 404. + 408.) / 3
	for i := range points {
		got, err := d.Value(i, sm)
		if err != nil {
			t.Fatal(err)
		}
		if absDifferent(got, want, testTolerance) {
			t.Errorf("point %d: got %g, want %g", i, got, want)
		}
	}

	empty := NewDataset(nil, ModeNadir)
	if err := empty.Smooth(v); err == nil {
		t.Error("expected an error smoothing an empty dataset")
	}
}

func TestQualityFilter(t *testing.T) {
	good := ObservationPoint{
		SNRStrongCO2:      500,
		ReducedChiSquared: 1.1,
		AlbedoStrongCO2:   0.3,
		SurfacePressure:   980,
		OutcomeFlag:       1,
	}

	// The zero filter only applies the default outcome flags.
	var f QualityFilter
	if !f.Pass(&good) {
		t.Error("zero filter rejected a flag-1 point")
	}
	bad := good
	bad.OutcomeFlag = 3
	if f.Pass(&bad) {
		t.Error("zero filter accepted a flag-3 point")
	}

	f = QualityFilter{
		SNRStrongCO2Min:    200,
		ChiSquaredMax:      2,
		AlbedoMin:          0.1,
		AlbedoMax:          0.5,
		SurfacePressureMin: 900,
		SurfacePressureMax: 1100,
		OutcomeFlags:       []int{1},
	}
	if !f.Pass(&good) {
		t.Error("full filter rejected a good point")
	}
	for _, mutate := range []func(p *ObservationPoint){
		func(p *ObservationPoint) { p.SNRStrongCO2 = 100 },
		func(p *ObservationPoint) { p.ReducedChiSquared = 3 },
		func(p *ObservationPoint) { p.AlbedoStrongCO2 = 0.05 },
		func(p *ObservationPoint) { p.AlbedoStrongCO2 = 0.9 },
		func(p *ObservationPoint) { p.SurfacePressure = 800 },
		func(p *ObservationPoint) { p.SurfacePressure = 1200 },
		func(p *ObservationPoint) { p.OutcomeFlag = 2 },
	} {
		p := good
		mutate(&p)
		if f.Pass(&p) {
			t.Errorf("filter accepted a point failing a threshold: %+v", p)
		}
	}

	d := NewDataset([]ObservationPoint{good, bad}, ModeNadir)
	kept, failed := d.Filter(QualityFilter{})
	if kept.Len() != 1 || failed.Len() != 1 {
		t.Errorf("Filter: kept %d, failed %d; want 1 and 1", kept.Len(), failed.Len())
	}
}

func TestPlumeCenterOffset(t *testing.T) {
	const testTolerance = 1.e-6
	// Soundings along a line 0.01 degrees east of the source. Close to
	// the source the narrow plume misses the line entirely, so the
	// maximum modeled enhancement is at the farthest sounding, where
	// the plume has widened onto it.
	points := []ObservationPoint{
		{Location: geom.Point{X: 0.01, Y: 0.02}},
		{Location: geom.Point{X: 0.01, Y: 0.05}},
		{Location: geom.Point{X: 0.01, Y: 0.2}},
	}
	d := NewDataset(points, ModeNadir)
	b := NewWindBasis(NewWind(0, 5, 100)) // northward wind
	x, y := d.PlumeCenterOffset(b, geom.Point{X: 0, Y: 0}, 5, 104)
	if different(x, 0.2*metersPerDegree, testTolerance) {
		t.Errorf("offset x: got %g, want %g", x, 0.2*metersPerDegree)
	}
	if different(y, 0.01*metersPerDegree, 1e-4) {
		t.Errorf("offset y: got %g, want %g", y, 0.01*metersPerDegree)
	}
}

func TestSignSensorZenith(t *testing.T) {
	points := []ObservationPoint{
		{Location: geom.Point{X: 0, Y: 0.02}, SolarAzimuth: 135, SensorZenith: 30},
		{Location: geom.Point{X: 0, Y: 0.05}, SolarAzimuth: 135, SensorZenith: 40},
	}
	b := NewWindBasis(NewWind(0, 5, 100))
	origin := geom.Point{X: 0, Y: 0}

	// Nadir datasets are left unchanged.
	nadir := NewDataset(points, ModeNadir)
	if err := nadir.SignSensorZenith(b, origin, 5, 104); err != nil {
		t.Fatal(err)
	}
	if nadir.Points[0].SensorZenith != 30 {
		t.Errorf("nadir zenith changed to %g", nadir.Points[0].SensorZenith)
	}

	// The sun in the eastern half means back scatter: negative zenith.
	glintPoints := make([]ObservationPoint, len(points))
	copy(glintPoints, points)
	glint := NewDataset(glintPoints, ModeGlint)
	if err := glint.SignSensorZenith(b, origin, 5, 104); err != nil {
		t.Fatal(err)
	}
	if glint.Points[0].SensorZenith != -30 || glint.Points[1].SensorZenith != -40 {
		t.Errorf("glint zeniths: got %g, %g; want -30, -40",
			glint.Points[0].SensorZenith, glint.Points[1].SensorZenith)
	}

	// The sun in the western half means forward scatter: unchanged
	// positive zenith.
	westPoints := make([]ObservationPoint, len(points))
	copy(westPoints, points)
	for i := range westPoints {
		westPoints[i].SolarAzimuth = 250
	}
	west := NewDataset(westPoints, ModeGlint)
	if err := west.SignSensorZenith(b, origin, 5, 104); err != nil {
		t.Fatal(err)
	}
	if west.Points[0].SensorZenith != 30 {
		t.Errorf("west sun zenith: got %g, want 30", west.Points[0].SensorZenith)
	}
}
