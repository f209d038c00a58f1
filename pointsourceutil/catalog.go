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

package pointsourceutil

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/ctessum/unit"
	"github.com/spatialmodel/pointsource"
)

// catalogData is the TOML representation of a source and overpass
// catalog.
type catalogData struct {
	Source   []sourceData   `toml:"source"`
	Overpass []overpassData `toml:"overpass"`
}

type sourceData struct {
	Name        string  `toml:"name"`
	Description string  `toml:"description"`
	Lon         float64 `toml:"lon"`
	Lat         float64 `toml:"lat"`

	// Height is the stack height [m].
	Height float64 `toml:"height"`

	// Optional stack parameters for plume-rise estimation.
	StackDiameter    float64 `toml:"stack_diameter"`    // [m]
	StackTemperature float64 `toml:"stack_temperature"` // [K]
	StackVelocity    float64 `toml:"stack_velocity"`    // [m/s]

	// Emissions is the reported annual emission rate [t/yr].
	Emissions float64 `toml:"emissions"`

	// Secondary lists the names of sources whose plumes overlap this
	// one.
	Secondary []string `toml:"secondary"`
}

type overpassData struct {
	Source           string              `toml:"source"`
	Time             time.Time           `toml:"time"`
	SurfaceWindSpeed float64             `toml:"surface_wind_speed"` // [m/s]
	CloudFraction    float64             `toml:"cloud_fraction"`     // [0-1]
	AElevated        float64             `toml:"a_elevated"`
	Mode             string              `toml:"mode"` // "nadir" or "glint"
	Winds            map[string]windData `toml:"winds"`
	Point            []pointData         `toml:"point"`
}

type windData struct {
	U      float64 `toml:"u"` // eastward [m/s]
	V      float64 `toml:"v"` // northward [m/s]
	Height float64 `toml:"height"`
}

type pointData struct {
	ID        int64   `toml:"id"`
	Lon       float64 `toml:"lon"`
	Lat       float64 `toml:"lat"`
	Row       int     `toml:"row"`
	Footprint int     `toml:"footprint"`

	XCO2Retrieved float64 `toml:"xco2_retrieved"`
	XCO2Partial   float64 `toml:"xco2_partial"`
	XCO2Corrected float64 `toml:"xco2_corrected"`
	XCO2S31       float64 `toml:"xco2_s31"`

	K               float64 `toml:"k"`
	XCO2Uncertainty float64 `toml:"xco2_uncertainty"`

	SNRStrongCO2      float64 `toml:"snr_strong_co2"`
	ReducedChiSquared float64 `toml:"reduced_chi_squared"`
	AlbedoStrongCO2   float64 `toml:"albedo_strong_co2"`
	SurfacePressure   float64 `toml:"surface_pressure"`
	OutcomeFlag       int     `toml:"outcome_flag"`

	SolarZenith  float64 `toml:"solar_zenith"`
	SolarAzimuth float64 `toml:"solar_azimuth"`
	SensorZenith float64 `toml:"sensor_zenith"`
}

// ReadCatalog reads a TOML catalog of emission sources and satellite
// overpasses from the file at path. Secondary-source references are
// resolved by name, so a source's secondaries must appear in the same
// catalog.
func ReadCatalog(path string) (*pointsource.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pointsource: opening catalog: %v", err)
	}
	defer f.Close()
	return readCatalog(f)
}

func readCatalog(r io.Reader) (*pointsource.Catalog, error) {
	var d catalogData
	if _, err := toml.DecodeReader(r, &d); err != nil {
		return nil, fmt.Errorf("pointsource: decoding catalog: %v", err)
	}

	cat := &pointsource.Catalog{Sources: make(map[string]*pointsource.Source)}
	for _, sd := range d.Source {
		if sd.Name == "" {
			return nil, fmt.Errorf("pointsource: catalog source with empty name")
		}
		if _, ok := cat.Sources[sd.Name]; ok {
			return nil, fmt.Errorf("pointsource: duplicate catalog source %s", sd.Name)
		}
		s := &pointsource.Source{
			Name:        sd.Name,
			Description: sd.Description,
			Location:    geom.Point{X: sd.Lon, Y: sd.Lat},
			Height:      sd.Height,
			Emissions:   pointsource.TonnesPerYear(sd.Emissions),
		}
		if sd.StackDiameter > 0 {
			s.StackDiameter = unit.New(sd.StackDiameter, unit.Meter)
		}
		if sd.StackTemperature > 0 {
			s.StackTemp = unit.New(sd.StackTemperature, unit.Kelvin)
		}
		if sd.StackVelocity > 0 {
			s.StackVelocity = unit.New(sd.StackVelocity, unit.MeterPerSecond)
		}
		cat.Sources[sd.Name] = s
	}

	// Secondary references can only be resolved once every source
	// exists.
	for _, sd := range d.Source {
		s := cat.Sources[sd.Name]
		for _, name := range sd.Secondary {
			sec, err := cat.Source(name)
			if err != nil {
				return nil, fmt.Errorf("pointsource: secondary of %s: %v", sd.Name, err)
			}
			s.Secondary = append(s.Secondary, sec)
		}
	}

	for _, od := range d.Overpass {
		src, err := cat.Source(od.Source)
		if err != nil {
			return nil, err
		}
		mode, err := checkObservationMode(od.Mode)
		if err != nil {
			return nil, err
		}
		o := &pointsource.Overpass{
			Source:           src,
			Time:             od.Time,
			Winds:            make(pointsource.WindSet),
			SurfaceWindSpeed: od.SurfaceWindSpeed,
			CloudFraction:    od.CloudFraction,
			AElevated:        od.AElevated,
			Mode:             mode,
		}
		for name, wd := range od.Winds {
			o.Winds[name] = pointsource.NewWind(wd.U, wd.V, wd.Height)
		}
		points := make([]pointsource.ObservationPoint, len(od.Point))
		for i, pd := range od.Point {
			points[i] = pointsource.ObservationPoint{
				ID:                pd.ID,
				Location:          geom.Point{X: pd.Lon, Y: pd.Lat},
				Row:               pd.Row,
				Footprint:         pd.Footprint,
				RetrievedXCO2:     pd.XCO2Retrieved,
				PartialXCO2:       pd.XCO2Partial,
				CorrectedXCO2:     pd.XCO2Corrected,
				S31XCO2:           pd.XCO2S31,
				K:                 pd.K,
				XCO2Uncertainty:   pd.XCO2Uncertainty,
				SNRStrongCO2:      pd.SNRStrongCO2,
				ReducedChiSquared: pd.ReducedChiSquared,
				AlbedoStrongCO2:   pd.AlbedoStrongCO2,
				SurfacePressure:   pd.SurfacePressure,
				OutcomeFlag:       pd.OutcomeFlag,
				SolarZenith:       pd.SolarZenith,
				SolarAzimuth:      pd.SolarAzimuth,
				SensorZenith:      pd.SensorZenith,
			}
		}
		o.Data = pointsource.NewDataset(points, mode)
		cat.Overpasses = append(cat.Overpasses, o)
	}
	return cat, nil
}

// checkObservationMode parses a satellite viewing mode name.
func checkObservationMode(s string) (pointsource.ObservationMode, error) {
	switch strings.ToLower(s) {
	case "nadir", "":
		return pointsource.ModeNadir, nil
	case "glint":
		return pointsource.ModeGlint, nil
	}
	return 0, fmt.Errorf("pointsource: invalid observation mode '%s'; "+
		"options are 'nadir' and 'glint'", s)
}

// FindOverpass returns the catalog overpass matching key, which may be
// either a source name (when that source has exactly one cataloged
// overpass) or the full 'source yyyy-mm-dd hh:mm:ss' form printed by
// Overpass.String.
func FindOverpass(cat *pointsource.Catalog, key string) (*pointsource.Overpass, error) {
	if key == "" {
		return nil, fmt.Errorf("pointsource: no overpass requested")
	}
	var matches []*pointsource.Overpass
	for _, o := range cat.Overpasses {
		if o.String() == key {
			return o, nil
		}
		if o.Source.Name == key {
			matches = append(matches, o)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("pointsource: no overpass matching %s in catalog", key)
	case 1:
		return matches[0], nil
	}
	return nil, fmt.Errorf("pointsource: %d overpasses match %s; "+
		"use the 'source yyyy-mm-dd hh:mm:ss' form", len(matches), key)
}
