package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Debt is an account with a negative balance accruing interest.
// Payments are inflows; withdrawals are not permitted. The minimum
// payment must be made each year, and an optional accelerated-payment
// cap bounds how much extra may be paid on top of it.
type Debt struct {
	name         string
	balance      decimal.Decimal
	rate         decimal.Decimal
	minimum      decimal.Decimal
	accelerated  core.Limit
	timing       core.Timing
	transactions map[core.Timing]decimal.Decimal
}

// NewDebt creates a debt owing the given amount at an annual interest
// rate. The amount may be passed as a positive figure; the balance is
// held negative either way. Extra payments are unlimited by default.
func NewDebt(name string, owed, rate, minimumPayment decimal.Decimal) *Debt {
	if owed.IsPositive() {
		owed = owed.Neg()
	}
	return &Debt{
		name:         name,
		balance:      owed,
		rate:         rate,
		minimum:      minimumPayment,
		accelerated:  core.Unbounded(),
		timing:       core.TimingEnd,
		transactions: make(map[core.Timing]decimal.Decimal),
	}
}

// SetAcceleratedPayment caps payments above the minimum. Zero makes
// the debt non-accelerated: only the minimum payment is ever made.
func (d *Debt) SetAcceleratedPayment(max decimal.Decimal) {
	d.accelerated = core.Bound(max)
}

func (d *Debt) Name() string               { return d.name }
func (d *Debt) Balance() decimal.Decimal   { return d.balance }
func (d *Debt) Rate() decimal.Decimal      { return d.rate }
func (d *Debt) DefaultTiming() core.Timing { return d.timing }

// Transactions returns this year's recorded payments by timing.
func (d *Debt) Transactions() map[core.Timing]decimal.Decimal {
	return d.transactions
}

// remainingOwed is what is left to pay off after this year's recorded
// payments, never negative.
func (d *Debt) remainingOwed() decimal.Decimal {
	owed := d.balance.Neg().Sub(netTransactions(d.transactions))
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}

// MinInflow is the minimum payment, or the payoff amount when that is
// smaller; a nearly settled debt never demands more than it owes.
func (d *Debt) MinInflow(_ core.Timing) core.Limit {
	owed := d.remainingOwed()
	if owed.LessThan(d.minimum) {
		return core.Bound(owed)
	}
	return core.Bound(d.minimum)
}

// MaxInflow is the payoff amount, further capped by the accelerated
// payment allowance above the minimum.
func (d *Debt) MaxInflow(_ core.Timing) core.Limit {
	payoff := core.Bound(d.remainingOwed())
	if allowance, bounded := d.accelerated.Value(); bounded {
		return payoff.Tighten(core.Bound(d.minimum.Add(allowance)))
	}
	return payoff
}

func (d *Debt) MinOutflow(_ core.Timing) core.Limit { return core.Unbounded() }

// MaxOutflow is zero: money cannot be drawn from a debt.
func (d *Debt) MaxOutflow(_ core.Timing) core.Limit {
	return core.Bound(decimal.Zero)
}

// AddTransaction records a payment at the given timing.
func (d *Debt) AddTransaction(at core.Timing, amount decimal.Decimal) error {
	if err := at.Validate(); err != nil {
		return fmt.Errorf("debt %s: %w", d.name, err)
	}
	d.transactions[at] = d.transactions[at].Add(amount)
	return nil
}

// NextYear returns the debt as it stands at the start of the following
// year, with interest accrued on the (negative) balance and payments
// credited from their timings. The receiver is unchanged.
func (d *Debt) NextYear() *Debt {
	next := *d
	next.balance = grow(d.balance, d.rate, d.transactions)
	if next.balance.IsPositive() {
		// Overpayment does not turn a debt into savings.
		next.balance = decimal.Zero
	}
	next.transactions = make(map[core.Timing]decimal.Decimal)
	return &next
}
