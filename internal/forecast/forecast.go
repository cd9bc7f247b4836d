package forecast

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"nestegg/internal/allocate"
	"nestegg/internal/core"
	"nestegg/internal/ledger"
	"nestegg/internal/log"
)

// YearSnapshot records the household's position at the end of one
// simulated year. Balances are keyed by account name; debt balances
// are negative.
type YearSnapshot struct {
	Year           int                        `json:"year"`
	GrossIncome    decimal.Decimal            `json:"gross_income"`
	Taxes          decimal.Decimal            `json:"taxes"`
	LivingExpenses decimal.Decimal            `json:"living_expenses"`
	Available      decimal.Decimal            `json:"available"`
	Balances       map[string]decimal.Decimal `json:"balances"`
	NetWorth       decimal.Decimal            `json:"net_worth"`
}

// Result is a completed forecast.
type Result struct {
	PlanName string         `json:"plan_name"`
	Years    []YearSnapshot `json:"years"`
}

// FinalNetWorth is the net worth at the end of the last simulated year.
func (r *Result) FinalNetWorth() decimal.Decimal {
	if len(r.Years) == 0 {
		return decimal.Zero
	}
	return r.Years[len(r.Years)-1].NetWorth
}

// transactor is how the forecast pushes engine output back into an
// account. Both ledger account types implement it.
type transactor interface {
	AddTransaction(at core.Timing, amount decimal.Decimal) error
}

// Forecast advances one plan a year at a time.
type Forecast struct {
	plan   *Plan
	logger *log.Logger
}

func New(plan *Plan, logger *log.Logger) *Forecast {
	return &Forecast{plan: plan, logger: logger.WithComponent("forecast")}
}

// Run simulates every year of the plan. The plan's accounts and people
// are advanced in place; the plan must not be reused for another run.
func (f *Forecast) Run(ctx context.Context) (*Result, error) {
	plan := f.plan
	result := &Result{PlanName: plan.Name}

	people := append([]*ledger.Person(nil), plan.People...)
	savings := append([]*ledger.SavingsAccount(nil), plan.Savings...)
	debts := append([]*ledger.Debt(nil), plan.Debts...)

	strategy := plan.DebtStrategy
	if strategy == "" {
		strategy = allocate.StrategyAvalanche
	}
	orderDebts, err := allocate.GetDebtStrategy(strategy)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", plan.Name, err)
	}

	for i := 0; i < plan.Years; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		year := plan.StartYear + i

		gross := decimal.Zero
		for _, p := range people {
			gross = gross.Add(p.Income(year))
		}
		taxes := plan.Tax.Owed(gross, year, decimal.Zero, decimal.Zero)
		expenses := plan.Scenario.InflationAdjust(plan.LivingExpenses, plan.StartYear, year)
		available := gross.Sub(taxes).Sub(expenses)

		allocated, err := f.allocateYear(savings, debts, orderDebts, available, plan.Weights)
		if err != nil {
			return nil, fmt.Errorf("plan %q, year %d: %w", plan.Name, year, err)
		}
		if err := applyTransactions(allocated); err != nil {
			return nil, fmt.Errorf("plan %q, year %d: %w", plan.Name, year, err)
		}

		for j, account := range savings {
			savings[j] = account.NextYear()
		}
		for j, debt := range debts {
			debts[j] = debt.NextYear()
		}
		for j, person := range people {
			people[j] = person.NextYear()
		}

		snapshot := YearSnapshot{
			Year:           year,
			GrossIncome:    gross,
			Taxes:          taxes,
			LivingExpenses: expenses,
			Available:      available,
			Balances:       make(map[string]decimal.Decimal, len(savings)+len(debts)),
		}
		for _, account := range savings {
			snapshot.Balances[account.Name()] = account.Balance()
			snapshot.NetWorth = snapshot.NetWorth.Add(account.Balance())
		}
		for _, debt := range debts {
			snapshot.Balances[debt.Name()] = debt.Balance()
			snapshot.NetWorth = snapshot.NetWorth.Add(debt.Balance())
		}
		result.Years = append(result.Years, snapshot)

		f.logger.Debug("simulated year",
			"plan", plan.Name,
			"year", year,
			"available", available.StringFixed(2),
			"net_worth", snapshot.NetWorth.StringFixed(2))
	}

	f.logger.Info("forecast complete",
		"plan", plan.Name,
		"years", plan.Years,
		"final_net_worth", result.FinalNetWorth().StringFixed(2))
	return result, nil
}

// allocateYear routes the year's surplus or shortfall through the
// engine. Surplus flows to debts (minimums first, in strategy order)
// and then to savings by weight; a shortfall is withdrawn from savings
// by weight.
func (f *Forecast) allocateYear(
	savings []*ledger.SavingsAccount,
	debts []*ledger.Debt,
	orderDebts allocate.DebtStrategy,
	available decimal.Decimal,
	weights []decimal.Decimal,
) (allocate.Result, error) {
	weighted := make(allocate.Weighted, len(savings))
	for i, account := range savings {
		weighted[i] = allocate.Entry{Source: account, Weight: weights[i]}
	}

	if available.IsNegative() || len(debts) == 0 {
		return allocate.Traverse(weighted, available, false)
	}

	asDebts := make([]allocate.Debt, len(debts))
	for i, d := range debts {
		asDebts[i] = d
	}
	tree := []any{orderDebts(asDebts), weighted}
	return allocate.Traverse(tree, available, true)
}

func applyTransactions(allocated allocate.Result) error {
	for account, byTiming := range allocated {
		target, ok := account.(transactor)
		if !ok {
			return fmt.Errorf("account %T cannot record transactions", account)
		}
		for at, amount := range byTiming {
			if amount.IsZero() {
				continue
			}
			if err := target.AddTransaction(at, amount); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunAll forecasts independent plans concurrently. Plans share no
// state, so each gets its own goroutine; the first error cancels the
// rest. Results are returned in plan order.
func RunAll(ctx context.Context, plans []*Plan, logger *log.Logger) ([]*Result, error) {
	group, ctx := errgroup.WithContext(ctx)
	results := make([]*Result, len(plans))
	for i, plan := range plans {
		group.Go(func() error {
			result, err := New(plan, logger).Run(ctx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
