// Package ledger models the household's financial entities: savings
// accounts, debts and people. Accounts satisfy the allocation engine's
// leaf capability and track the transactions recorded against them
// within a simulated year; NextYear applies growth and produces the
// following year's account.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// SavingsAccount is a balance growing at an annual rate. Contributions
// may be capped by contribution room; withdrawals are limited to the
// current balance.
type SavingsAccount struct {
	name         string
	balance      decimal.Decimal
	rate         decimal.Decimal
	room         core.Limit
	timing       core.Timing
	transactions map[core.Timing]decimal.Decimal
}

// NewSavingsAccount creates an account with an opening balance and an
// annual growth rate (0.05 means 5%). Transactions default to year-end.
func NewSavingsAccount(name string, balance, rate decimal.Decimal) *SavingsAccount {
	return &SavingsAccount{
		name:         name,
		balance:      balance,
		rate:         rate,
		room:         core.Unbounded(),
		timing:       core.TimingEnd,
		transactions: make(map[core.Timing]decimal.Decimal),
	}
}

// SetContributionRoom caps this year's total contributions.
func (a *SavingsAccount) SetContributionRoom(room decimal.Decimal) {
	a.room = core.Bound(room)
}

// SetDefaultTiming changes when unscheduled transactions occur.
func (a *SavingsAccount) SetDefaultTiming(at core.Timing) {
	a.timing = at
}

func (a *SavingsAccount) Name() string             { return a.name }
func (a *SavingsAccount) Balance() decimal.Decimal { return a.balance }
func (a *SavingsAccount) Rate() decimal.Decimal    { return a.rate }
func (a *SavingsAccount) DefaultTiming() core.Timing {
	return a.timing
}

// Transactions returns this year's recorded transactions by timing.
func (a *SavingsAccount) Transactions() map[core.Timing]decimal.Decimal {
	return a.transactions
}

func (a *SavingsAccount) MinInflow(_ core.Timing) core.Limit { return core.Unbounded() }

// MaxInflow is the contribution room left after this year's recorded
// inflows, or unbounded when no room cap is set.
func (a *SavingsAccount) MaxInflow(_ core.Timing) core.Limit {
	room, bounded := a.room.Value()
	if !bounded {
		return core.Unbounded()
	}
	return core.Bound(room.Sub(inflows(a.transactions)))
}

func (a *SavingsAccount) MinOutflow(_ core.Timing) core.Limit { return core.Unbounded() }

// MaxOutflow is whatever the account currently holds, net of this
// year's recorded transactions.
func (a *SavingsAccount) MaxOutflow(_ core.Timing) core.Limit {
	return core.Bound(a.balance.Add(netTransactions(a.transactions)))
}

// AddTransaction records a signed transaction at the given timing.
// Positive amounts are contributions, negative are withdrawals.
func (a *SavingsAccount) AddTransaction(at core.Timing, amount decimal.Decimal) error {
	if err := at.Validate(); err != nil {
		return fmt.Errorf("savings account %s: %w", a.name, err)
	}
	a.transactions[at] = a.transactions[at].Add(amount)
	return nil
}

// NextYear returns the account as it stands at the start of the
// following year: the opening balance grown a full year, plus each
// transaction grown from its timing (simple within-year interest).
// The receiver is unchanged.
func (a *SavingsAccount) NextYear() *SavingsAccount {
	next := *a
	next.balance = grow(a.balance, a.rate, a.transactions)
	next.transactions = make(map[core.Timing]decimal.Decimal)
	return &next
}

// grow advances a balance one year at rate, compounding each recorded
// transaction for the fraction of the year it was present.
func grow(balance, rate decimal.Decimal, transactions map[core.Timing]decimal.Decimal) decimal.Decimal {
	next := balance.Add(balance.Mul(rate))
	for at, amount := range transactions {
		held := decimal.NewFromFloat(1 - float64(at))
		next = next.Add(amount).Add(amount.Mul(rate).Mul(held))
	}
	return next
}

func inflows(transactions map[core.Timing]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range transactions {
		if amount.IsPositive() {
			total = total.Add(amount)
		}
	}
	return total
}

func netTransactions(transactions map[core.Timing]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range transactions {
		total = total.Add(amount)
	}
	return total
}
