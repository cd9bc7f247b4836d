// Package scenario holds the economic assumptions a forecast runs
// under: inflation, investment returns and management fees, indexed by
// calendar year.
package scenario

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Series is a year-indexed sequence of rates. Years between specified
// entries carry the most recent earlier value forward; years before
// the first entry use the first entry.
type Series struct {
	values map[int]decimal.Decimal
	years  []int // sorted keys of values
}

// Constant returns a series with the same rate for every year.
func Constant(rate decimal.Decimal) Series {
	return Varying(map[int]decimal.Decimal{0: rate})
}

// Varying returns a series from explicit {year: rate} pairs.
func Varying(values map[int]decimal.Decimal) Series {
	years := make([]int, 0, len(values))
	for year := range values {
		years = append(years, year)
	}
	sort.Ints(years)
	copied := make(map[int]decimal.Decimal, len(values))
	for year, rate := range values {
		copied[year] = rate
	}
	return Series{values: copied, years: years}
}

// At returns the rate in effect for the given year.
func (s Series) At(year int) decimal.Decimal {
	if len(s.years) == 0 {
		return decimal.Zero
	}
	nearest := s.years[0]
	for _, y := range s.years {
		if y > year {
			break
		}
		nearest = y
	}
	return s.values[nearest]
}

// Scenario bundles the rate series a forecast consults each year.
type Scenario struct {
	initialYear    int
	inflation      Series
	stockReturn    Series
	bondReturn     Series
	managementFees Series
}

func New(initialYear int, inflation, stockReturn, bondReturn, managementFees Series) *Scenario {
	return &Scenario{
		initialYear:    initialYear,
		inflation:      inflation,
		stockReturn:    stockReturn,
		bondReturn:     bondReturn,
		managementFees: managementFees,
	}
}

func (s *Scenario) InitialYear() int { return s.initialYear }

func (s *Scenario) Inflation(year int) decimal.Decimal      { return s.inflation.At(year) }
func (s *Scenario) StockReturn(year int) decimal.Decimal    { return s.stockReturn.At(year) }
func (s *Scenario) BondReturn(year int) decimal.Decimal     { return s.bondReturn.At(year) }
func (s *Scenario) ManagementFees(year int) decimal.Decimal { return s.managementFees.At(year) }

// AccumulationFactor is the cumulative inflation over [fromYear,
// toYear): the product of (1 + inflation) for each intervening year.
// When toYear precedes fromYear the factor is inverted.
func (s *Scenario) AccumulationFactor(fromYear, toYear int) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	if fromYear <= toYear {
		for year := fromYear; year < toYear; year++ {
			factor = factor.Mul(decimal.NewFromInt(1).Add(s.Inflation(year)))
		}
		return factor
	}
	for year := toYear; year < fromYear; year++ {
		factor = factor.Mul(decimal.NewFromInt(1).Add(s.Inflation(year)))
	}
	return decimal.NewFromInt(1).Div(factor)
}

// InflationAdjust re-expresses a baseYear value in targetYear dollars.
func (s *Scenario) InflationAdjust(value decimal.Decimal, baseYear, targetYear int) decimal.Decimal {
	return value.Mul(s.AccumulationFactor(baseYear, targetYear))
}
