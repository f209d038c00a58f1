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
	"math"
	"reflect"
	"testing"

	"github.com/spatialmodel/pointsource"
)

func TestCheckEmissionUnits(t *testing.T) {
	tests := []struct {
		s    string
		want pointsource.EmissionUnits
	}{
		{"g/s", pointsource.GramPerSecond},
		{"kg/s", pointsource.KilogramPerSecond},
		{"t/yr", pointsource.TonnePerYear},
		{"Mt/yr", pointsource.MegatonnePerYear},
	}
	for _, test := range tests {
		u, err := checkEmissionUnits(test.s)
		if err != nil {
			t.Fatal(err)
		}
		if u != test.want {
			t.Errorf("%s: got %v, want %v", test.s, u, test.want)
		}
	}
	if _, err := checkEmissionUnits("lb/day"); err == nil {
		t.Error("expected an error for unknown units")
	}
}

func TestCheckBiasCorrection(t *testing.T) {
	tests := []struct {
		s    string
		want pointsource.BiasCorrection
	}{
		{"retrieved", pointsource.BiasRetrieved},
		{"partial", pointsource.BiasPartial},
		{"corrected", pointsource.BiasCorrected},
		{"S31", pointsource.BiasS31},
		{"s31", pointsource.BiasS31},
		{"Corrected", pointsource.BiasCorrected},
	}
	for _, test := range tests {
		c, err := checkBiasCorrection(test.s)
		if err != nil {
			t.Fatal(err)
		}
		if c != test.want {
			t.Errorf("%s: got %v, want %v", test.s, c, test.want)
		}
	}
	if _, err := checkBiasCorrection("raw"); err == nil {
		t.Error("expected an error for an unknown correction")
	}
}

func TestCheckTrackSign(t *testing.T) {
	s, err := checkTrackSign("y")
	if err != nil {
		t.Fatal(err)
	}
	if s != pointsource.SignCrossWind {
		t.Errorf("y: got %v", s)
	}
	if s, err = checkTrackSign("X"); err != nil {
		t.Fatal(err)
	}
	if s != pointsource.SignAlongWind {
		t.Errorf("x: got %v", s)
	}
	if _, err := checkTrackSign("z"); err == nil {
		t.Error("expected an error for an unknown axis")
	}
}

// The configuration defaults reproduce the library defaults.
func TestModelOptionsDefaults(t *testing.T) {
	cat := &pointsource.Catalog{Sources: make(map[string]*pointsource.Source)}
	opts, err := ModelOptions(Cfg, cat)
	if err != nil {
		t.Fatal(err)
	}
	def := pointsource.DefaultOptions()
	if opts.Plume != def.Plume {
		t.Errorf("plume thresholds: got %+v, want %+v", opts.Plume, def.Plume)
	}
	if opts.Background != def.Background {
		t.Errorf("background thresholds: got %+v, want %+v", opts.Background, def.Background)
	}
	if !reflect.DeepEqual(opts.Quality.OutcomeFlags, []int{1, 2}) {
		t.Errorf("outcome flags: got %v", opts.Quality.OutcomeFlags)
	}
	if opts.Variant != def.Variant {
		t.Errorf("variant: got %+v, want %+v", opts.Variant, def.Variant)
	}
	if opts.OutputUnits != pointsource.TonnePerYear {
		t.Errorf("output units: got %v", opts.OutputUnits)
	}
	if !opts.SurfaceStability || !opts.SZAAdjust || opts.Weighted || opts.UseSecondary {
		t.Errorf("flags: got stability %v sza %v weighted %v secondary %v",
			opts.SurfaceStability, opts.SZAAdjust, opts.Weighted, opts.UseSecondary)
	}
	if !math.IsNaN(opts.BackgroundAverage) {
		t.Errorf("background average: got %g, want NaN", opts.BackgroundAverage)
	}
	if opts.Secondary != nil || opts.FixedSecondary != nil {
		t.Error("secondary source lists should default to nil")
	}
}

func TestModelOptionsSecondary(t *testing.T) {
	cfg := Cfg
	cfg.Set("Secondary", []string{"b"})
	cfg.Set("FixedSecondary", []string{"c"})
	defer func() {
		cfg.Set("Secondary", []string{})
		cfg.Set("FixedSecondary", []string{})
	}()

	cat := &pointsource.Catalog{Sources: map[string]*pointsource.Source{
		"b": {Name: "b"},
		"c": {Name: "c"},
	}}
	opts, err := ModelOptions(cfg, cat)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Secondary) != 1 || opts.Secondary[0].Name != "b" {
		t.Errorf("secondary: got %v", opts.Secondary)
	}
	if len(opts.FixedSecondary) != 1 || opts.FixedSecondary[0].Name != "c" {
		t.Errorf("fixed secondary: got %v", opts.FixedSecondary)
	}

	// Unknown names are rejected.
	cfg.Set("Secondary", []string{"nowhere"})
	if _, err := ModelOptions(cfg, cat); err == nil {
		t.Error("expected an error for an unknown secondary source")
	}
}

func TestSolvedNames(t *testing.T) {
	b := &pointsource.Source{Name: "b"}
	o := &pointsource.Overpass{
		Source: &pointsource.Source{Name: "a", Secondary: []*pointsource.Source{b}},
	}

	opts := pointsource.DefaultOptions()
	if got := solvedNames(o, opts); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("default: got %v", got)
	}

	opts.UseSecondary = true
	if got := solvedNames(o, opts); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("catalog secondary: got %v", got)
	}

	// An explicit list overrides the catalog's secondaries.
	opts.Secondary = []*pointsource.Source{{Name: "c"}}
	if got := solvedNames(o, opts); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("explicit secondary: got %v", got)
	}
}
