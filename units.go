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

	"github.com/ctessum/unit"
)

// emissionRate is the dimension set of an emission rate (mass/time,
// SI base kg/s).
var emissionRate = unit.Dimensions{
	unit.MassDim: 1,
	unit.TimeDim: -1,
}

const secondsPerYear = 365.25 * 24 * 3600

// KilogramsPerSecond returns an emission rate of v kg/s.
func KilogramsPerSecond(v float64) *unit.Unit {
	return unit.New(v, emissionRate)
}

// GramsPerSecond returns an emission rate of v g/s. The plume model
// works natively in g/s.
func GramsPerSecond(v float64) *unit.Unit {
	return unit.New(v/1000, emissionRate)
}

// TonnesPerYear returns an emission rate of v metric tons per year,
// the units emission inventories typically report.
func TonnesPerYear(v float64) *unit.Unit {
	return unit.New(v*1000/secondsPerYear, emissionRate)
}

// EmissionUnits selects the units emission-rate results are reported in.
type EmissionUnits int

const (
	GramPerSecond EmissionUnits = iota
	KilogramPerSecond
	TonnePerYear
	MegatonnePerYear
)

func (u EmissionUnits) String() string {
	switch u {
	case GramPerSecond:
		return "g/s"
	case KilogramPerSecond:
		return "kg/s"
	case TonnePerYear:
		return "t/yr"
	case MegatonnePerYear:
		return "Mt/yr"
	}
	return "unknown"
}

// factor returns the multiplier converting a kg/s value into u.
func (u EmissionUnits) factor() (float64, error) {
	switch u {
	case GramPerSecond:
		return 1000, nil
	case KilogramPerSecond:
		return 1, nil
	case TonnePerYear:
		return secondsPerYear / 1000, nil
	case MegatonnePerYear:
		return secondsPerYear / 1000 / 1e6, nil
	}
	return 0, fmt.Errorf("pointsource: unknown emission units %d", int(u))
}

// EmissionRateValue returns the value of emission rate r expressed in
// units u. It is an error if r does not have emission-rate dimensions.
func EmissionRateValue(r *unit.Unit, u EmissionUnits) (float64, error) {
	if !r.Dimensions().Matches(emissionRate) {
		return 0, fmt.Errorf("pointsource: expected emission-rate units (kg/s); got %v", r.Dimensions())
	}
	f, err := u.factor()
	if err != nil {
		return 0, err
	}
	return r.Value() * f, nil
}

// gramsPerSecondValue returns the value of emission rate r in the g/s
// units the forward model works in.
func gramsPerSecondValue(r *unit.Unit) (float64, error) {
	return EmissionRateValue(r, GramPerSecond)
}
