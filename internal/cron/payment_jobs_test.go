package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type fakeExpirer struct {
	batches []int
	calls   int
}

func (f *fakeExpirer) ExpireStaleRequests(_ context.Context, limit int) (int, error) {
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	n := f.batches[f.calls]
	f.calls++
	if n > limit {
		n = limit
	}
	return n, nil
}

func TestPaymentExpiryJobDrainsFullBatches(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	expirer := &fakeExpirer{batches: []int{10, 10, 3}}
	job, err := NewPaymentExpiryJob(PaymentExpiryJobParams{
		Logger:   logg,
		Payments: expirer,
		Batch:    10,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if expirer.calls != 3 {
		t.Fatalf("expected 3 sweep calls, got %d", expirer.calls)
	}
}

type fakeSchedulePayments struct {
	payments.Service
	due      []models.RecurringSchedule
	executed []uint64
	fail     map[uint64]error
}

func (f *fakeSchedulePayments) DueSchedules(context.Context, int) ([]models.RecurringSchedule, error) {
	return f.due, nil
}

func (f *fakeSchedulePayments) ExecuteSchedule(_ context.Context, actor uuid.UUID, id uint64) (*payments.ScheduleReceipt, error) {
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	f.executed = append(f.executed, id)
	return &payments.ScheduleReceipt{Active: true}, nil
}

func TestRecurringRunnerSkipsUnderfundedPayers(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	payer := uuid.New()
	svc := &fakeSchedulePayments{
		due: []models.RecurringSchedule{
			{ID: 1, Payer: payer},
			{ID: 2, Payer: payer},
			{ID: 3, Payer: payer},
		},
		fail: map[uint64]error{
			2: pkgerrors.New(pkgerrors.CodeTransferFailed, "insufficient funds"),
		},
	}
	job, err := NewRecurringRunnerJob(RecurringRunnerJobParams{
		Logger:   logg,
		Payments: svc,
		Batch:    50,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("transfer failures must not fail the run: %v", err)
	}
	if len(svc.executed) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(svc.executed))
	}
}

func TestRecurringRunnerPropagatesUnexpectedErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	svc := &fakeSchedulePayments{
		due:  []models.RecurringSchedule{{ID: 7, Payer: uuid.New()}},
		fail: map[uint64]error{7: errors.New("connection reset")},
	}
	job, err := NewRecurringRunnerJob(RecurringRunnerJobParams{
		Logger:   logg,
		Payments: svc,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}
