package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"nestegg/internal/forecast"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testResult() *forecast.Result {
	d := decimal.RequireFromString
	return &forecast.Result{
		PlanName: "household",
		Years: []forecast.YearSnapshot{
			{
				Year:           2026,
				GrossIncome:    d("100000"),
				Taxes:          d("22000.50"),
				LivingExpenses: d("40000"),
				Available:      d("37999.50"),
				NetWorth:       d("37999.50"),
				Balances: map[string]decimal.Decimal{
					"invest": d("47999.50"),
					"loan":   d("-10000"),
				},
			},
			{
				Year:           2027,
				GrossIncome:    d("103000"),
				Taxes:          d("23000"),
				LivingExpenses: d("40800"),
				Available:      d("39200"),
				NetWorth:       d("80000"),
				Balances: map[string]decimal.Decimal{
					"invest": d("80000"),
					"loan":   d("0"),
				},
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	runID, err := repo.SaveRun(ctx, testResult(), "avalanche")
	if err != nil {
		t.Fatalf("SaveRun error = %v", err)
	}

	run, err := repo.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun error = %v", err)
	}
	if run.PlanName != "household" || run.DebtStrategy != "avalanche" {
		t.Errorf("run = %+v", run)
	}
	if !run.FinalNetWorth.Equal(decimal.RequireFromString("80000")) {
		t.Errorf("final net worth = %s, want 80000", run.FinalNetWorth)
	}
	if run.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestGetSnapshots(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	runID, err := repo.SaveRun(ctx, testResult(), "avalanche")
	if err != nil {
		t.Fatalf("SaveRun error = %v", err)
	}

	snapshots, err := repo.GetSnapshots(ctx, runID)
	if err != nil {
		t.Fatalf("GetSnapshots error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	first := snapshots[0]
	if first.Year != 2026 {
		t.Errorf("first snapshot year = %d, want 2026", first.Year)
	}
	// Decimals survive the round trip exactly.
	if !first.Taxes.Equal(decimal.RequireFromString("22000.50")) {
		t.Errorf("taxes = %s, want 22000.50", first.Taxes)
	}
	if !first.Balances["loan"].Equal(decimal.RequireFromString("-10000")) {
		t.Errorf("loan balance = %s, want -10000", first.Balances["loan"])
	}
}

func TestListRuns(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	if _, err := repo.SaveRun(ctx, testResult(), "avalanche"); err != nil {
		t.Fatalf("SaveRun error = %v", err)
	}
	second := testResult()
	second.PlanName = "other"
	if _, err := repo.SaveRun(ctx, second, "snowball"); err != nil {
		t.Fatalf("SaveRun error = %v", err)
	}

	runs, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].PlanName != "other" {
		t.Errorf("first listed run = %q, want other", runs[0].PlanName)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	repo := testRepository(t)
	if _, err := repo.GetRun(context.Background(), 12345); err == nil {
		t.Error("expected error for missing run")
	}
}
