package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nestegg/internal/amqp"
	"nestegg/internal/log"
	"nestegg/internal/storage"
)

const testPlan = `{
	"name": "worker-test",
	"start_year": 2026,
	"years": 3,
	"living_expenses": "30000",
	"people": [
		{"name": "ada", "birth_year": 1990, "retirement_year": 2055,
		 "gross_income": "80000", "raise_rate": "0"}
	],
	"accounts": [
		{"name": "invest", "balance": "0", "rate": "0", "weight": "1"}
	],
	"debts": [
		{"name": "loan", "balance": "20000", "rate": "0", "minimum_payment": "5000"}
	]
}`

func TestHandleRunRequest(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(planPath, []byte(testPlan), 0644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	repo, err := storage.NewRepository(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewRepository error = %v", err)
	}
	defer repo.Close()

	// No AMQP client needed: events are disabled and the request is
	// handled directly rather than consumed from a queue.
	w := NewForecastWorker(repo, nil, log.New(log.DefaultConfig()), "avalanche", false)

	msg := &amqp.RunRequestMessage{PlanPath: planPath, DebtStrategy: "snowball"}
	if err := w.HandleRunRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleRunRequest error = %v", err)
	}

	runs, err := repo.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].PlanName != "worker-test" {
		t.Errorf("run plan = %q, want worker-test", runs[0].PlanName)
	}
	// The message's strategy wins over the worker default.
	if runs[0].DebtStrategy != "snowball" {
		t.Errorf("run strategy = %q, want snowball", runs[0].DebtStrategy)
	}

	snapshots, err := repo.GetSnapshots(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("GetSnapshots error = %v", err)
	}
	if len(snapshots) != 3 {
		t.Errorf("got %d snapshots, want 3", len(snapshots))
	}
}

func TestHandleRunRequest_MissingPlan(t *testing.T) {
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository error = %v", err)
	}
	defer repo.Close()

	w := NewForecastWorker(repo, nil, log.New(log.DefaultConfig()), "avalanche", false)
	msg := &amqp.RunRequestMessage{PlanPath: "/does/not/exist.json"}
	if err := w.HandleRunRequest(context.Background(), msg); err == nil {
		t.Error("expected error for missing plan file")
	}
}
