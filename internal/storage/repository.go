// Package storage persists forecast runs and their per-year snapshots
// to SQLite. Monetary values are stored as decimal strings so nothing
// is lost to float conversion.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"nestegg/internal/forecast"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Run is a persisted forecast run header.
type Run struct {
	ID            int64
	PlanName      string
	DebtStrategy  string
	FinalNetWorth decimal.Decimal
	CreatedAt     time.Time
}

// SaveRun persists a completed forecast with all of its yearly
// snapshots in one transaction and returns the new run's id.
func (r *Repository) SaveRun(ctx context.Context, result *forecast.Result, debtStrategy string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO forecast_runs (plan_name, debt_strategy, final_net_worth, created_at)
		 VALUES (?, ?, ?, ?)`,
		result.PlanName, debtStrategy, result.FinalNetWorth().String(), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, snapshot := range result.Years {
		balances, err := json.Marshal(snapshot.Balances)
		if err != nil {
			return 0, fmt.Errorf("marshal balances for year %d: %w", snapshot.Year, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO yearly_snapshots
			 (run_id, year, gross_income, taxes, living_expenses, available, net_worth, balances)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, snapshot.Year,
			snapshot.GrossIncome.String(), snapshot.Taxes.String(),
			snapshot.LivingExpenses.String(), snapshot.Available.String(),
			snapshot.NetWorth.String(), string(balances))
		if err != nil {
			return 0, fmt.Errorf("insert snapshot for year %d: %w", snapshot.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Forecast run saved",
		"run_id", runID,
		"plan", result.PlanName,
		"years", len(result.Years))
	return runID, nil
}

// GetRun loads a run header by id.
func (r *Repository) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, plan_name, debt_strategy, final_net_worth, created_at
		 FROM forecast_runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_name, debt_strategy, final_net_worth, created_at
		 FROM forecast_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetSnapshots loads a run's yearly snapshots in year order.
func (r *Repository) GetSnapshots(ctx context.Context, runID int64) ([]forecast.YearSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, gross_income, taxes, living_expenses, available, net_worth, balances
		 FROM yearly_snapshots WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, fmt.Errorf("get snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []forecast.YearSnapshot
	for rows.Next() {
		var (
			snapshot forecast.YearSnapshot
			gross    string
			taxes    string
			expenses string
			avail    string
			netWorth string
			balances string
		)
		if err := rows.Scan(&snapshot.Year, &gross, &taxes, &expenses, &avail, &netWorth, &balances); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if snapshot.GrossIncome, err = decimal.NewFromString(gross); err != nil {
			return nil, fmt.Errorf("parse gross income: %w", err)
		}
		if snapshot.Taxes, err = decimal.NewFromString(taxes); err != nil {
			return nil, fmt.Errorf("parse taxes: %w", err)
		}
		if snapshot.LivingExpenses, err = decimal.NewFromString(expenses); err != nil {
			return nil, fmt.Errorf("parse living expenses: %w", err)
		}
		if snapshot.Available, err = decimal.NewFromString(avail); err != nil {
			return nil, fmt.Errorf("parse available: %w", err)
		}
		if snapshot.NetWorth, err = decimal.NewFromString(netWorth); err != nil {
			return nil, fmt.Errorf("parse net worth: %w", err)
		}
		if err := json.Unmarshal([]byte(balances), &snapshot.Balances); err != nil {
			return nil, fmt.Errorf("parse balances: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		netWorth  string
		createdAt int64
	)
	if err := row.Scan(&run.ID, &run.PlanName, &run.DebtStrategy, &netWorth, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %w", err)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.FinalNetWorth, err = decimal.NewFromString(netWorth); err != nil {
		return nil, fmt.Errorf("parse final net worth: %w", err)
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &run, nil
}
