package ledger

import (
	"github.com/shopspring/decimal"
)

// Person is an income earner in the household.
type Person struct {
	name           string
	birthYear      int
	retirementYear int
	grossIncome    decimal.Decimal
	raiseRate      decimal.Decimal
}

// NewPerson creates a person earning grossIncome in the current year,
// raised by raiseRate annually until retirementYear.
func NewPerson(name string, birthYear, retirementYear int, grossIncome, raiseRate decimal.Decimal) *Person {
	return &Person{
		name:           name,
		birthYear:      birthYear,
		retirementYear: retirementYear,
		grossIncome:    grossIncome,
		raiseRate:      raiseRate,
	}
}

func (p *Person) Name() string                 { return p.name }
func (p *Person) BirthYear() int               { return p.birthYear }
func (p *Person) RetirementYear() int          { return p.retirementYear }
func (p *Person) GrossIncome() decimal.Decimal { return p.grossIncome }

// Age in the given calendar year.
func (p *Person) Age(year int) int {
	return year - p.birthYear
}

// Retired reports whether the person has retired by the given year.
// Income stops in the year after retirementYear.
func (p *Person) Retired(year int) bool {
	return year > p.retirementYear
}

// Income is the gross income earned in the given year: the current
// gross income while working, zero after retirement.
func (p *Person) Income(year int) decimal.Decimal {
	if p.Retired(year) {
		return decimal.Zero
	}
	return p.grossIncome
}

// NextYear returns the person with next year's raise applied. The
// receiver is unchanged.
func (p *Person) NextYear() *Person {
	next := *p
	next.grossIncome = p.grossIncome.Add(p.grossIncome.Mul(p.raiseRate))
	return &next
}
