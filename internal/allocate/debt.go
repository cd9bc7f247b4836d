package allocate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Debt is a leaf account carrying interest. Balance is negative while
// money is owed; MinInflow is the minimum payment, MaxInflow whatever
// pays the balance off.
type Debt interface {
	Account
	Rate() decimal.Decimal
}

// DebtStrategy orders debts into an ordered priority description for
// the traversal. Earlier debts receive excess payments first.
type DebtStrategy func(debts []Debt) []any

// Strategy names accepted by PayDebts and config.
const (
	StrategyAvalanche = "avalanche"
	StrategySnowball  = "snowball"
)

// AvalanchePriority orders debts by interest rate, highest first, so
// excess payments go to the most expensive debt. Ties keep input order.
func AvalanchePriority(debts []Debt) []any {
	ordered := make([]Debt, len(debts))
	copy(ordered, debts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rate().GreaterThan(ordered[j].Rate())
	})
	return asSources(ordered)
}

// SnowballPriority orders debts by outstanding balance, smallest first,
// so small debts are retired early. Ties keep input order.
func SnowballPriority(debts []Debt) []any {
	ordered := make([]Debt, len(debts))
	copy(ordered, debts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Balance().Abs().LessThan(ordered[j].Balance().Abs())
	})
	return asSources(ordered)
}

func asSources(debts []Debt) []any {
	sources := make([]any, len(debts))
	for i, d := range debts {
		sources[i] = d
	}
	return sources
}

// debtStrategies maps strategy names to their orderings. A registry
// rather than a switch so callers can add custom orderings.
var debtStrategies = map[string]DebtStrategy{
	StrategyAvalanche: AvalanchePriority,
	StrategySnowball:  SnowballPriority,
}

// GetDebtStrategy returns the ordering registered under name.
func GetDebtStrategy(name string) (DebtStrategy, error) {
	strategy, ok := debtStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown debt strategy: %s", name)
	}
	return strategy, nil
}

// RegisterDebtStrategy registers a custom ordering under name,
// replacing any existing registration.
func RegisterDebtStrategy(name string, strategy DebtStrategy) {
	debtStrategies[name] = strategy
}

// PayDebts splits the available payment across debts ordered by the
// named strategy. Every debt's minimum payment is assigned before any
// excess is allocated; when the available amount cannot cover all
// minimums, higher-priority debts are paid first.
func PayDebts(debts []Debt, available decimal.Decimal, strategy string) (Result, error) {
	order, err := GetDebtStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return Traverse(order(debts), available, true)
}
