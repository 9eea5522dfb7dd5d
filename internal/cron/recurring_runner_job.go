package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/payflow-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

const defaultRecurringBatch = 50

// RecurringRunnerJobParams configure the due-installment runner.
type RecurringRunnerJobParams struct {
	Logger   *logger.Logger
	Payments payments.Service
	Batch    int
}

// NewRecurringRunnerJob builds the job that settles due installments on
// behalf of their payers, one installment per schedule per cycle.
func NewRecurringRunnerJob(params RecurringRunnerJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultRecurringBatch
	}
	return &recurringRunnerJob{
		logg:     params.Logger,
		payments: params.Payments,
		batch:    batch,
	}, nil
}

type recurringRunnerJob struct {
	logg     *logger.Logger
	payments payments.Service
	batch    int
}

func (j *recurringRunnerJob) Name() string { return "recurring-runner" }

func (j *recurringRunnerJob) Run(ctx context.Context) error {
	due, err := j.payments.DueSchedules(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	var errs error
	executed := 0
	for _, schedule := range due {
		receipt, err := j.payments.ExecuteSchedule(ctx, schedule.Payer, schedule.ID)
		if err != nil {
			// An underfunded payer should not block the rest of the batch.
			logCtx := j.logg.WithField(ctx, "schedule_id", schedule.ID)
			j.logg.Error(logCtx, "schedule execution failed", err)
			if !pkgerrors.IsCode(err, pkgerrors.CodeTransferFailed) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		executed++
		if !receipt.Active {
			logCtx := j.logg.WithField(ctx, "schedule_id", schedule.ID)
			j.logg.Info(logCtx, "schedule finished")
		}
	}
	if executed > 0 {
		logCtx := j.logg.WithField(ctx, "installments_settled", executed)
		j.logg.Info(logCtx, "recurring run complete")
	}
	return errs
}
