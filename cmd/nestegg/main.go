package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"nestegg/internal/amqp"
	"nestegg/internal/config"
	"nestegg/internal/core"
	"nestegg/internal/forecast"
	"nestegg/internal/log"
	"nestegg/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting nestegg")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Run until finished or interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	planPath := cfg.PlanPath
	if len(os.Args) > 1 {
		planPath = os.Args[1]
	}

	plan, err := forecast.LoadPlan(planPath)
	if err != nil {
		logger.Error("Failed to load plan", "error", err, "path", planPath)
		os.Exit(1)
	}
	if plan.DebtStrategy == "" {
		plan.DebtStrategy = cfg.DebtStrategy
	}

	result, err := forecast.New(plan, logger).Run(ctx)
	if err != nil {
		logger.Error("Forecast failed", "error", err, "plan", plan.Name)
		os.Exit(1)
	}

	printSummary(result)

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	runID, err := repo.SaveRun(ctx, result, plan.DebtStrategy)
	if err != nil {
		logger.Error("Failed to save run", "error", err)
		os.Exit(1)
	}
	logger.Info("Run saved", "run_id", runID, "plan", result.PlanName)

	if cfg.PublishEvents {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		event := amqp.NewRunCompletedMessage(runID, result.PlanName, result.FinalNetWorth().String())
		if err := client.PublishRunCompleted(ctx, event); err != nil {
			logger.Error("Failed to publish run-completed event", "error", err, "run_id", runID)
			os.Exit(1)
		}
	}
}

func printSummary(result *forecast.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "plan: %s\n", result.PlanName)
	fmt.Fprintln(w, "YEAR\tGROSS\tTAXES\tEXPENSES\tAVAILABLE\tNET WORTH")
	for _, year := range result.Years {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			year.Year,
			core.FormatAmount(year.GrossIncome),
			core.FormatAmount(year.Taxes),
			core.FormatAmount(year.LivingExpenses),
			core.FormatAmount(year.Available),
			core.FormatAmount(year.NetWorth))
	}
	w.Flush()

	if len(result.Years) == 0 {
		return
	}
	final := result.Years[len(result.Years)-1]
	names := make([]string, 0, len(final.Balances))
	for name := range final.Balances {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("\nfinal balances (%d):\n", final.Year)
	for _, name := range names {
		fmt.Printf("  %-20s %s\n", name, core.FormatAmount(final.Balances[name]))
	}
}
