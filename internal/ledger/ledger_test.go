package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"nestegg/internal/allocate"
	"nestegg/internal/core"
)

// Accounts must satisfy the allocation engine's leaf capability.
var (
	_ allocate.Account = (*SavingsAccount)(nil)
	_ allocate.Debt    = (*Debt)(nil)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSavingsAccount_NextYear(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		rate    string
		txs     map[core.Timing]string
		want    string
	}{
		{
			name:    "growth only",
			balance: "100",
			rate:    "0.05",
			want:    "105",
		},
		{
			name:    "start-of-year contribution grows a full year",
			balance: "100",
			rate:    "0.05",
			txs:     map[core.Timing]string{core.TimingStart: "100"},
			want:    "210",
		},
		{
			name:    "year-end contribution earns nothing",
			balance: "100",
			rate:    "0.05",
			txs:     map[core.Timing]string{core.TimingEnd: "100"},
			want:    "205",
		},
		{
			name:    "mid-year withdrawal loses half a year of growth",
			balance: "100",
			rate:    "0.10",
			txs:     map[core.Timing]string{core.TimingMidYear: "-40"},
			want:    "68", // 110 - 40 - 40*0.10*0.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := NewSavingsAccount("test", d(tt.balance), d(tt.rate))
			for at, amount := range tt.txs {
				if err := account.AddTransaction(at, d(amount)); err != nil {
					t.Fatalf("AddTransaction error = %v", err)
				}
			}
			next := account.NextYear()
			if !next.Balance().Equal(d(tt.want)) {
				t.Errorf("NextYear balance = %s, want %s", next.Balance(), tt.want)
			}
			if !account.Balance().Equal(d(tt.balance)) {
				t.Errorf("receiver balance changed to %s", account.Balance())
			}
			if len(next.Transactions()) != 0 {
				t.Error("next year should start with no transactions")
			}
		})
	}
}

func TestSavingsAccount_ContributionRoom(t *testing.T) {
	account := NewSavingsAccount("rrsp", d("1000"), d("0.05"))
	account.SetContributionRoom(d("500"))

	if got, _ := account.MaxInflow(core.TimingEnd).Value(); !got.Equal(d("500")) {
		t.Errorf("MaxInflow = %s, want 500", got)
	}

	if err := account.AddTransaction(core.TimingStart, d("300")); err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}
	if got, _ := account.MaxInflow(core.TimingEnd).Value(); !got.Equal(d("200")) {
		t.Errorf("MaxInflow after 300 contributed = %s, want 200", got)
	}
}

func TestSavingsAccount_MaxOutflow(t *testing.T) {
	account := NewSavingsAccount("chequing", d("250"), decimal.Zero)
	if got, _ := account.MaxOutflow(core.TimingEnd).Value(); !got.Equal(d("250")) {
		t.Errorf("MaxOutflow = %s, want the balance", got)
	}

	if err := account.AddTransaction(core.TimingMidYear, d("-100")); err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}
	if got, _ := account.MaxOutflow(core.TimingEnd).Value(); !got.Equal(d("150")) {
		t.Errorf("MaxOutflow after withdrawal = %s, want 150", got)
	}
}

func TestDebt_Limits(t *testing.T) {
	debt := NewDebt("loan", d("1000"), d("0.08"), d("120"))

	if !debt.Balance().Equal(d("-1000")) {
		t.Errorf("balance = %s, debts must carry negative balances", debt.Balance())
	}
	if got, _ := debt.MinInflow(core.TimingEnd).Value(); !got.Equal(d("120")) {
		t.Errorf("MinInflow = %s, want the minimum payment", got)
	}
	if got, _ := debt.MaxInflow(core.TimingEnd).Value(); !got.Equal(d("1000")) {
		t.Errorf("MaxInflow = %s, want the payoff amount", got)
	}
	if got, _ := debt.MaxOutflow(core.TimingEnd).Value(); !got.IsZero() {
		t.Errorf("MaxOutflow = %s, want 0", got)
	}
}

func TestDebt_NearlySettled(t *testing.T) {
	debt := NewDebt("loan", d("50"), decimal.Zero, d("120"))

	// The minimum payment never exceeds what is owed.
	if got, _ := debt.MinInflow(core.TimingEnd).Value(); !got.Equal(d("50")) {
		t.Errorf("MinInflow = %s, want the remaining 50", got)
	}
}

func TestDebt_AcceleratedPaymentCap(t *testing.T) {
	debt := NewDebt("mortgage", d("100000"), d("0.04"), d("500"))
	debt.SetAcceleratedPayment(d("200"))

	if got, _ := debt.MaxInflow(core.TimingEnd).Value(); !got.Equal(d("700")) {
		t.Errorf("MaxInflow = %s, want minimum plus accelerated cap (700)", got)
	}
}

func TestDebt_NextYear(t *testing.T) {
	debt := NewDebt("loan", d("1000"), d("0.10"), d("100"))
	if err := debt.AddTransaction(core.TimingEnd, d("300")); err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}

	// -1000 grows to -1100, the year-end payment credits 300.
	next := debt.NextYear()
	if !next.Balance().Equal(d("-800")) {
		t.Errorf("NextYear balance = %s, want -800", next.Balance())
	}
}

func TestDebt_NextYearClampsOverpayment(t *testing.T) {
	debt := NewDebt("loan", d("100"), decimal.Zero, d("10"))
	if err := debt.AddTransaction(core.TimingEnd, d("150")); err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}
	if got := debt.NextYear().Balance(); !got.IsZero() {
		t.Errorf("overpaid debt balance = %s, want 0", got)
	}
}

func TestPerson(t *testing.T) {
	person := NewPerson("ada", 1990, 2055, d("80000"), d("0.03"))

	if got := person.Age(2026); got != 36 {
		t.Errorf("Age(2026) = %d, want 36", got)
	}
	if person.Retired(2055) {
		t.Error("should still be working in the retirement year")
	}
	if !person.Retired(2056) {
		t.Error("should be retired the year after retirementYear")
	}
	if got := person.Income(2056); !got.IsZero() {
		t.Errorf("retired income = %s, want 0", got)
	}

	next := person.NextYear()
	if !next.GrossIncome().Equal(d("82400")) {
		t.Errorf("income after raise = %s, want 82400", next.GrossIncome())
	}
	if !person.GrossIncome().Equal(d("80000")) {
		t.Error("receiver income should be unchanged")
	}
}
