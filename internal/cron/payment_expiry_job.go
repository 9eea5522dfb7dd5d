package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

const defaultExpirySweepBatch = 100

type requestExpirer interface {
	ExpireStaleRequests(ctx context.Context, limit int) (int, error)
}

// PaymentExpiryJobParams configure the request expiry sweep.
type PaymentExpiryJobParams struct {
	Logger   *logger.Logger
	Payments requestExpirer
	Batch    int
}

// NewPaymentExpiryJob builds the job that flips stale pending requests to
// expired. It is the only writer of that transition.
func NewPaymentExpiryJob(params PaymentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultExpirySweepBatch
	}
	return &paymentExpiryJob{
		logg:     params.Logger,
		payments: params.Payments,
		batch:    batch,
	}, nil
}

type paymentExpiryJob struct {
	logg     *logger.Logger
	payments requestExpirer
	batch    int
}

func (j *paymentExpiryJob) Name() string { return "payment-expiry" }

func (j *paymentExpiryJob) Run(ctx context.Context) error {
	total := 0
	for {
		expired, err := j.payments.ExpireStaleRequests(ctx, j.batch)
		if err != nil {
			return fmt.Errorf("expire stale requests: %w", err)
		}
		total += expired
		if expired < j.batch {
			break
		}
	}
	if total > 0 {
		logCtx := j.logg.WithField(ctx, "requests_expired", total)
		j.logg.Info(logCtx, "expiry sweep complete")
	}
	return nil
}
