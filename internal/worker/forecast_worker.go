package worker

import (
	"context"
	"fmt"
	"log/slog"

	"nestegg/internal/amqp"
	"nestegg/internal/forecast"
	"nestegg/internal/log"
	"nestegg/internal/storage"
)

// ForecastWorker consumes forecast requests from AMQP, runs each plan
// and persists the result. When events are enabled, a run-completed
// message is published for each saved run.
type ForecastWorker struct {
	storage       *storage.Repository
	client        *amqp.Client
	logger        *log.Logger
	defaultOrder  string
	publishEvents bool
}

func NewForecastWorker(repo *storage.Repository, client *amqp.Client, logger *log.Logger, defaultOrder string, publishEvents bool) *ForecastWorker {
	return &ForecastWorker{
		storage:       repo,
		client:        client,
		logger:        logger.WithComponent(log.ComponentWorker),
		defaultOrder:  defaultOrder,
		publishEvents: publishEvents,
	}
}

// Run consumes forecast requests until the context is cancelled.
func (w *ForecastWorker) Run(ctx context.Context) error {
	return w.client.ConsumeRunRequests(ctx, func(msg *amqp.RunRequestMessage) error {
		return w.HandleRunRequest(ctx, msg)
	})
}

// HandleRunRequest processes a single forecast request: load the plan,
// simulate it, persist the result. Returning an error requeues the
// message.
func (w *ForecastWorker) HandleRunRequest(ctx context.Context, msg *amqp.RunRequestMessage) error {
	slog.InfoContext(ctx, "Processing forecast request",
		"plan_path", msg.PlanPath,
		"debt_strategy", msg.DebtStrategy)

	plan, err := forecast.LoadPlan(msg.PlanPath)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	strategy := msg.DebtStrategy
	if strategy == "" {
		strategy = w.defaultOrder
	}
	plan.DebtStrategy = strategy

	result, err := forecast.New(plan, w.logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("run forecast: %w", err)
	}

	runID, err := w.storage.SaveRun(ctx, result, strategy)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	w.logger.InfoContext(ctx, "forecast request complete",
		log.FieldPlan, result.PlanName,
		log.FieldRunID, runID,
		log.FieldNetWorth, result.FinalNetWorth().StringFixed(2))

	if w.publishEvents {
		event := amqp.NewRunCompletedMessage(runID, result.PlanName, result.FinalNetWorth().String())
		if err := w.client.PublishRunCompleted(ctx, event); err != nil {
			// The run is saved; a lost event is not worth a requeue.
			w.logger.ErrorContext(ctx, "failed to publish run-completed event",
				log.FieldError, err,
				log.FieldRunID, runID)
		}
	}

	return nil
}
