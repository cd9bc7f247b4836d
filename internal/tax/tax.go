// Package tax computes annual income-tax liability under a single
// progressive bracket schedule with a personal deduction and
// nonrefundable credits. Bracket thresholds and the deduction are
// defined for a base year and indexed to inflation.
package tax

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"nestegg/internal/scenario"
)

// Bracket is one rung of the schedule: income above Threshold is taxed
// at Rate, up to the next bracket's threshold.
type Bracket struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Tax is a progressive tax schedule. The zero value is unusable; build
// with New.
type Tax struct {
	brackets  []Bracket // ascending by threshold; first threshold is 0
	deduction decimal.Decimal
	credit    decimal.Decimal // rate applied to credit amounts
	baseYear  int
	scenario  *scenario.Scenario
}

// New builds a schedule from brackets expressed in baseYear dollars.
// The lowest bracket must start at zero. Credits are applied at
// creditRate, conventionally the lowest bracket's rate.
func New(brackets []Bracket, personalDeduction, creditRate decimal.Decimal, baseYear int, sc *scenario.Scenario) (*Tax, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("tax schedule needs at least one bracket")
	}
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})
	if !sorted[0].Threshold.IsZero() {
		return nil, fmt.Errorf("lowest tax bracket must start at zero, got %s", sorted[0].Threshold)
	}
	return &Tax{
		brackets:  sorted,
		deduction: personalDeduction,
		credit:    creditRate,
		baseYear:  baseYear,
		scenario:  sc,
	}, nil
}

// bracketsFor returns the schedule with thresholds indexed to year.
func (t *Tax) bracketsFor(year int) []Bracket {
	factor := t.scenario.AccumulationFactor(t.baseYear, year)
	adjusted := make([]Bracket, len(t.brackets))
	for i, b := range t.brackets {
		adjusted[i] = Bracket{Threshold: b.Threshold.Mul(factor), Rate: b.Rate}
	}
	return adjusted
}

// PersonalDeduction is the inflation-indexed deduction for year.
func (t *Tax) PersonalDeduction(year int) decimal.Decimal {
	return t.deduction.Mul(t.scenario.AccumulationFactor(t.baseYear, year))
}

// MarginalRate is the rate applied to the last dollar of the given
// taxable income in year.
func (t *Tax) MarginalRate(taxableIncome decimal.Decimal, year int) decimal.Decimal {
	brackets := t.bracketsFor(year)
	rate := brackets[0].Rate
	for _, b := range brackets {
		if taxableIncome.GreaterThan(b.Threshold) {
			rate = b.Rate
		}
	}
	return rate
}

// Owed is the total tax liability on income for year, after the
// personal deduction, any extra deduction, and nonrefundable credits
// applied at the credit rate. Never negative.
func (t *Tax) Owed(income decimal.Decimal, year int, deduction, credit decimal.Decimal) decimal.Decimal {
	taxable := income.Sub(t.PersonalDeduction(year)).Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	brackets := t.bracketsFor(year)
	owed := decimal.Zero
	for i, b := range brackets {
		if taxable.LessThanOrEqual(b.Threshold) {
			break
		}
		top := taxable
		if i+1 < len(brackets) && brackets[i+1].Threshold.LessThan(taxable) {
			top = brackets[i+1].Threshold
		}
		owed = owed.Add(top.Sub(b.Threshold).Mul(b.Rate))
	}

	owed = owed.Sub(credit.Mul(t.credit))
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}
