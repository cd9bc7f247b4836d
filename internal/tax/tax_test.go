package tax

import (
	"testing"

	"github.com/shopspring/decimal"

	"nestegg/internal/scenario"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSchedule(t *testing.T, inflation string) *Tax {
	t.Helper()
	sc := scenario.New(2026,
		scenario.Constant(d(inflation)),
		scenario.Constant(decimal.Zero),
		scenario.Constant(decimal.Zero),
		scenario.Constant(decimal.Zero))
	schedule, err := New([]Bracket{
		{Threshold: d("0"), Rate: d("0.10")},
		{Threshold: d("50000"), Rate: d("0.20")},
		{Threshold: d("100000"), Rate: d("0.30")},
	}, d("10000"), d("0.10"), 2026, sc)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	return schedule
}

func TestNew_RejectsBadSchedules(t *testing.T) {
	sc := scenario.New(2026, scenario.Constant(decimal.Zero), scenario.Constant(decimal.Zero),
		scenario.Constant(decimal.Zero), scenario.Constant(decimal.Zero))

	if _, err := New(nil, decimal.Zero, decimal.Zero, 2026, sc); err == nil {
		t.Error("expected error for empty schedule")
	}
	if _, err := New([]Bracket{{Threshold: d("100"), Rate: d("0.1")}}, decimal.Zero, decimal.Zero, 2026, sc); err == nil {
		t.Error("expected error when lowest bracket does not start at zero")
	}
}

func TestOwed(t *testing.T) {
	schedule := testSchedule(t, "0")

	tests := []struct {
		name   string
		income string
		want   string
	}{
		{"below deduction", "8000", "0"},
		// 60000 - 10000 deduction = 50000 taxable, all in the 10% band
		{"first bracket only", "60000", "5000"},
		// 90000 - 10000 = 80000: 50000*0.10 + 30000*0.20
		{"spans two brackets", "90000", "11000"},
		// 160000 - 10000 = 150000: 5000 + 10000 + 50000*0.30
		{"top bracket", "160000", "30000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.Owed(d(tt.income), 2026, decimal.Zero, decimal.Zero)
			if !got.Equal(d(tt.want)) {
				t.Errorf("Owed(%s) = %s, want %s", tt.income, got, tt.want)
			}
		})
	}
}

func TestOwed_CreditsAreNonrefundable(t *testing.T) {
	schedule := testSchedule(t, "0")

	// 20000 - 10000 = 10000 taxable -> 1000 owed; a 50000 credit at
	// the 10% rate would wipe out 5000, but tax never goes negative.
	got := schedule.Owed(d("20000"), 2026, decimal.Zero, d("50000"))
	if !got.IsZero() {
		t.Errorf("Owed with oversized credit = %s, want 0", got)
	}
}

func TestOwed_BracketsIndexToInflation(t *testing.T) {
	schedule := testSchedule(t, "0.10")

	// In 2027 every threshold and the deduction are 10% higher, so
	// 66000 of income is (66000 - 11000) = 55000 taxable, all within
	// the first bracket's new 55000 width.
	got := schedule.Owed(d("66000"), 2027, decimal.Zero, decimal.Zero)
	if !got.Equal(d("5500")) {
		t.Errorf("Owed(66000, 2027) = %s, want 5500", got)
	}
}

func TestMarginalRate(t *testing.T) {
	schedule := testSchedule(t, "0")

	if got := schedule.MarginalRate(d("30000"), 2026); !got.Equal(d("0.10")) {
		t.Errorf("MarginalRate(30000) = %s, want 0.10", got)
	}
	if got := schedule.MarginalRate(d("120000"), 2026); !got.Equal(d("0.30")) {
		t.Errorf("MarginalRate(120000) = %s, want 0.30", got)
	}
}
