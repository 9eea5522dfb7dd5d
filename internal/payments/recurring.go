package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/internal/fees"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/outbox"
	"github.com/angelmondragon/payflow-backend/pkg/outbox/payloads"
)

// ScheduleInput sets up a repeating obligation from the caller to the
// recipient. A zero StartAt means the first installment is due immediately.
type ScheduleInput struct {
	Recipient         uuid.UUID
	AmountCents       int64
	Frequency         time.Duration
	TotalInstallments int
	StartAt           time.Time
}

func (s *service) SetupSchedule(ctx context.Context, actor uuid.UUID, input ScheduleInput) (*models.RecurringSchedule, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.Frequency <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSchedule, "frequency must be positive")
	}
	if input.TotalInstallments <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSchedule, "installment count must be positive")
	}

	var schedule *models.RecurringSchedule
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}
		if err := fees.CheckAmount(input.AmountCents, settings.MinAmountCents, settings.MaxAmountCents); err != nil {
			return err
		}
		if err := checkRecipient(actor, input.Recipient); err != nil {
			return err
		}

		now := s.clock()
		prof := s.profiles.WithTx(tx)
		if _, err := prof.Ensure(ctx, actor, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure payer profile")
		}
		if _, err := prof.Ensure(ctx, input.Recipient, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure recipient profile")
		}

		id, err := s.sequences.Next(tx, models.SequenceSchedule)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate schedule id")
		}

		start := input.StartAt
		if start.IsZero() {
			start = now
		}
		schedule = &models.RecurringSchedule{
			ID:                id,
			Payer:             actor,
			Recipient:         input.Recipient,
			AmountCents:       input.AmountCents,
			Frequency:         input.Frequency,
			NextPaymentAt:     start,
			TotalInstallments: input.TotalInstallments,
			Active:            true,
		}
		if err := s.repo.WithTx(tx).CreateSchedule(ctx, schedule); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist schedule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// ExecuteSchedule settles exactly one due installment and advances the
// cursor by one frequency step. There is no catch-up: a schedule that
// missed several periods needs one call per missed installment.
func (s *service) ExecuteSchedule(ctx context.Context, actor uuid.UUID, scheduleID uint64) (*ScheduleReceipt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var result *ScheduleReceipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		schedule, err := repo.FindSchedule(ctx, scheduleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
		}
		if schedule == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		if !schedule.Active || schedule.CompletedInstallments >= schedule.TotalInstallments {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "schedule has no remaining installments")
		}
		now := s.clock()
		if now.Before(schedule.NextPaymentAt) {
			return pkgerrors.New(pkgerrors.CodeExpired, "installment not yet due").
				WithDetails(map[string]any{"next_payment_at": schedule.NextPaymentAt})
		}

		plan := transferPlan{
			source:      schedule.Payer,
			sender:      schedule.Payer,
			recipient:   schedule.Recipient,
			amountCents: schedule.AmountCents,
			mode:        enums.PaymentModeScheduled,
		}
		receipt, err := s.settle(ctx, tx, settings, plan)
		if err != nil {
			return err
		}

		schedule.NextPaymentAt = schedule.NextPaymentAt.Add(schedule.Frequency)
		schedule.CompletedInstallments++
		schedule.Active = schedule.CompletedInstallments < schedule.TotalInstallments
		if err := repo.SaveSchedule(ctx, schedule); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save schedule")
		}

		if err := s.outbox.Emit(ctx, tx, s.settledEvent(actor, receipt, plan, 0)); err != nil {
			return err
		}
		if !schedule.Active {
			event := outbox.DomainEvent{
				EventType:     enums.EventScheduleFinished,
				AggregateType: enums.AggregateRecurringSchedule,
				AggregateID:   schedule.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{AccountID: actor},
				Data: payloads.ScheduleFinishedEvent{
					ScheduleID:   schedule.ID,
					Installments: schedule.CompletedInstallments,
					FinishedAt:   now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		result = &ScheduleReceipt{
			Receipt:               *receipt,
			CompletedInstallments: schedule.CompletedInstallments,
			Active:                schedule.Active,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DueSchedules lists active schedules whose next installment is due. The
// recurring runner executes each one on behalf of its payer.
func (s *service) DueSchedules(ctx context.Context, limit int) ([]models.RecurringSchedule, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListDueSchedules(ctx, s.clock(), limit)
}
