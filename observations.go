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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// BiasCorrection selects which bias-correction variant of the retrieved
// CO2 value to use.
type BiasCorrection int

// The bias-correction variants present in the retrieval products.
const (
	BiasRetrieved BiasCorrection = iota
	BiasPartial
	BiasCorrected
	BiasS31
)

func (b BiasCorrection) String() string {
	switch b {
	case BiasRetrieved:
		return "retrieved"
	case BiasPartial:
		return "partial"
	case BiasCorrected:
		return "corrected"
	case BiasS31:
		return "S31"
	}
	return "unknown"
}

// CO2Kind selects between the column-averaged mixing ratio and the
// total column amount.
type CO2Kind int

const (
	// CO2MixingRatio is the column-averaged dry-air mole fraction [ppm].
	CO2MixingRatio CO2Kind = iota
	// CO2Column is the total column amount [g/m^2].
	CO2Column
)

func (k CO2Kind) String() string {
	if k == CO2Column {
		return "co2_column"
	}
	return "xco2"
}

// A CO2Variant names one of the finite legal combinations of
// bias-correction, CO2 kind, and optional swath smoothing. Using a
// closed type instead of attribute-name strings means an invalid
// combination is rejected at validation time rather than surfacing as
// a missing-field failure mid-inversion.
type CO2Variant struct {
	Correction BiasCorrection
	Kind       CO2Kind
	Smoothed   bool
}

// Validate returns an error if the variant names a combination that
// does not exist in the retrieval products.
func (v CO2Variant) Validate() error {
	if v.Correction < BiasRetrieved || v.Correction > BiasS31 {
		return fmt.Errorf("pointsource: invalid bias correction %d", int(v.Correction))
	}
	if v.Kind != CO2MixingRatio && v.Kind != CO2Column {
		return fmt.Errorf("pointsource: invalid CO2 kind %d", int(v.Kind))
	}
	return nil
}

// Units returns the measurement units of the variant.
func (v CO2Variant) Units() string {
	if v.Kind == CO2Column {
		return "g/m^2"
	}
	return "ppm"
}

func (v CO2Variant) String() string {
	s := fmt.Sprintf("%v_%v", v.Correction, v.Kind)
	if v.Smoothed {
		s = "smoothed_" + s
	}
	return s
}

// An ObservationPoint is a single satellite retrieval. Points are
// immutable once a dataset has been prepared: classification filters
// them into subsets without modifying them.
type ObservationPoint struct {
	ID int64

	// Location is the sounding footprint center (X: lon, Y: lat degrees).
	Location geom.Point

	// Row and Footprint are the swath indices of the sounding, used to
	// grid points for smoothing. Footprint runs 0-7 across the swath.
	Row, Footprint int

	// Retrieved CO2 mixing ratio [ppm] under each bias correction.
	RetrievedXCO2, PartialXCO2, CorrectedXCO2, S31XCO2 float64

	// K is the ratio of the retrieved column amount [g/m^2] to the
	// mixing ratio [ppm]; multiplying an xco2 value by K gives the
	// column amount.
	K float64

	// XCO2Uncertainty is the per-sounding retrieval uncertainty [ppm].
	XCO2Uncertainty float64

	// Retrieval-quality indicators.
	SNRStrongCO2      float64
	ReducedChiSquared float64
	AlbedoStrongCO2   float64
	SurfacePressure   float64
	OutcomeFlag       int

	// Viewing geometry [degrees]. SensorZenith is signed for glint
	// observations (positive forward scatter, negative back scatter).
	SolarZenith, SolarAzimuth, SensorZenith float64
}

// value returns the unsmoothed observation under variant v.
func (p *ObservationPoint) value(v CO2Variant) float64 {
	var x float64
	switch v.Correction {
	case BiasRetrieved:
		x = p.RetrievedXCO2
	case BiasPartial:
		x = p.PartialXCO2
	case BiasCorrected:
		x = p.CorrectedXCO2
	case BiasS31:
		x = p.S31XCO2
	}
	if v.Kind == CO2Column {
		return x * p.K
	}
	return x
}

// ObservationMode is the satellite viewing mode of an overpass.
type ObservationMode int

const (
	ModeNadir ObservationMode = iota
	ModeGlint
)

// A Dataset is an ordered collection of observation points from one
// overpass, together with any smoothed value columns derived from them.
type Dataset struct {
	Points []ObservationPoint
	Mode   ObservationMode

	smoothed map[CO2Variant][]float64
}

// NewDataset creates a Dataset from a slice of points.
func NewDataset(points []ObservationPoint, mode ObservationMode) *Dataset {
	return &Dataset{Points: points, Mode: mode}
}

// Len returns the number of points in the dataset.
func (d *Dataset) Len() int { return len(d.Points) }

// Value returns the observation value of point i under variant v.
// Smoothed variants must have been prepared with Smooth first.
func (d *Dataset) Value(i int, v CO2Variant) (float64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	if !v.Smoothed {
		return d.Points[i].value(v), nil
	}
	vals, ok := d.smoothed[v]
	if !ok {
		return 0, fmt.Errorf("pointsource: smoothed values for %v have not been computed", v)
	}
	return vals[i], nil
}

// Smooth computes a smoothed value column for variant v by gridding the
// points onto the swath (row x footprint) grid and box-averaging each
// cell with its filled neighbors. The result is stored on the dataset
// and served by Value for the smoothed variant.
func (d *Dataset) Smooth(v CO2Variant) error {
	raw := CO2Variant{Correction: v.Correction, Kind: v.Kind}
	if err := raw.Validate(); err != nil {
		return err
	}
	if len(d.Points) == 0 {
		return fmt.Errorf("pointsource: cannot smooth an empty dataset")
	}
	minRow, maxRow, nfoot := d.Points[0].Row, d.Points[0].Row, 0
	for _, p := range d.Points {
		if p.Row < minRow {
			minRow = p.Row
		}
		if p.Row > maxRow {
			maxRow = p.Row
		}
		if p.Footprint+1 > nfoot {
			nfoot = p.Footprint + 1
		}
	}
	nrows := maxRow - minRow + 1
	grid := sparse.ZerosDense(nrows, nfoot)
	filled := sparse.ZerosDense(nrows, nfoot)
	for _, p := range d.Points {
		grid.Set(p.value(raw), p.Row-minRow, p.Footprint)
		filled.Set(1, p.Row-minRow, p.Footprint)
	}
	vals := make([]float64, len(d.Points))
	for i, p := range d.Points {
		r, f := p.Row-minRow, p.Footprint
		var sum, n float64
		for dr := -1; dr <= 1; dr++ {
			for df := -1; df <= 1; df++ {
				rr, ff := r+dr, f+df
				if rr < 0 || rr >= nrows || ff < 0 || ff >= nfoot {
					continue
				}
				if filled.Get(rr, ff) == 0 {
					continue
				}
				sum += grid.Get(rr, ff)
				n++
			}
		}
		vals[i] = sum / n
	}
	vsm := v
	vsm.Smoothed = true
	if d.smoothed == nil {
		d.smoothed = make(map[CO2Variant][]float64)
	}
	d.smoothed[vsm] = vals
	return nil
}

// A QualityFilter holds the retrieval-quality thresholds soundings must
// satisfy before classification. A zero threshold disables the
// corresponding test, and a nil OutcomeFlags accepts flags 1 and 2.
type QualityFilter struct {
	SNRStrongCO2Min    float64
	ChiSquaredMax      float64
	AlbedoMin          float64
	AlbedoMax          float64
	SurfacePressureMin float64
	SurfacePressureMax float64
	OutcomeFlags       []int
}

// Pass reports whether point p satisfies every enabled threshold.
func (f QualityFilter) Pass(p *ObservationPoint) bool {
	if f.SNRStrongCO2Min != 0 && !(p.SNRStrongCO2 > f.SNRStrongCO2Min) {
		return false
	}
	if f.ChiSquaredMax != 0 && !(p.ReducedChiSquared < f.ChiSquaredMax) {
		return false
	}
	if f.AlbedoMin != 0 && p.AlbedoStrongCO2 < f.AlbedoMin {
		return false
	}
	if f.AlbedoMax != 0 && p.AlbedoStrongCO2 > f.AlbedoMax {
		return false
	}
	if f.SurfacePressureMin != 0 && p.SurfacePressure < f.SurfacePressureMin {
		return false
	}
	if f.SurfacePressureMax != 0 && p.SurfacePressure > f.SurfacePressureMax {
		return false
	}
	flags := f.OutcomeFlags
	if flags == nil {
		flags = []int{1, 2}
	}
	for _, fl := range flags {
		if p.OutcomeFlag == fl {
			return true
		}
	}
	return false
}

// Filter partitions the dataset into the points that pass the quality
// filter and those that fail it. Smoothed columns are not carried over;
// they are recomputed on the filtered set when needed.
func (d *Dataset) Filter(f QualityFilter) (kept, failed *Dataset) {
	kept = &Dataset{Mode: d.Mode}
	failed = &Dataset{Mode: d.Mode}
	for i := range d.Points {
		if f.Pass(&d.Points[i]) {
			kept.Points = append(kept.Points, d.Points[i])
		} else {
			failed.Points = append(failed.Points, d.Points[i])
		}
	}
	return kept, failed
}

// PlumeCenterOffset returns the wind-basis position of the point with
// the maximum unit-emission model enhancement relative to origin. The
// plume center can sit away from the source when the soundings sample
// the plume off-axis, so classification distances are measured from
// this offset rather than from the source itself.
func (d *Dataset) PlumeCenterOffset(b *WindBasis, origin geom.Point, u, a float64) (x, y float64) {
	var best float64
	for i := range d.Points {
		xi, yi := b.CoordToWindBasis(origin, d.Points[i].Location)
		v := Enhancement(xi, yi, u, 1, a, 0)
		if i == 0 || v > best {
			best = v
			x, y = xi, yi
		}
	}
	return x, y
}

// SignSensorZenith assigns signs to the sensor zenith angles of a glint
// dataset: positive for forward scatter and negative for back scatter.
// The scatter direction is inferred from the solar azimuth at the point
// of closest approach to the plume center. Nadir datasets are left
// unchanged, since the sensor zenith displacement there is negligible.
// This runs once during dataset preparation, before classification.
func (d *Dataset) SignSensorZenith(b *WindBasis, origin geom.Point, u, a float64) error {
	if d.Mode != ModeGlint {
		return nil
	}
	if len(d.Points) == 0 {
		return fmt.Errorf("pointsource: cannot sign zenith angles of an empty dataset")
	}
	var best float64
	k := 0
	for i := range d.Points {
		xi, yi := b.CoordToWindBasis(origin, d.Points[i].Location)
		v := Enhancement(xi, yi, u, 1, a, 0)
		if i == 0 || v > best {
			best = v
			k = i
		}
	}
	solarLocation, err := AzimuthSign(d.Points[k].SolarAzimuth)
	if err != nil {
		return err
	}
	const sensorLocation = 1
	scatter := float64(-1 * sensorLocation * solarLocation)
	for i := range d.Points {
		d.Points[i].SensorZenith *= scatter
	}
	return nil
}

// An ObservationProvider supplies the observation dataset for an
// overpass. Implementations decode satellite retrieval files and are
// outside this package.
type ObservationProvider interface {
	Observations(o *Overpass) (*Dataset, error)
}
