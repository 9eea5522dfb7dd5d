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

// CreateRequestInput describes a deferred payment offer from the caller to
// the recipient. The recipient settles it with CompleteRequest.
type CreateRequestInput struct {
	Recipient   uuid.UUID
	AmountCents int64
	Memo        string
	TTL         time.Duration
}

// InstantInput describes a one-shot settlement with no pending phase.
type InstantInput struct {
	Recipient   uuid.UUID
	AmountCents int64
	Memo        string
}

func (s *service) CreateRequest(ctx context.Context, actor uuid.UUID, input CreateRequestInput) (*models.PaymentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.TTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ttl must be positive")
	}

	var request *models.PaymentRequest
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
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure sender profile")
		}
		if _, err := prof.Ensure(ctx, input.Recipient, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure recipient profile")
		}

		id, err := s.sequences.Next(tx, models.SequencePayment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate payment id")
		}

		request = &models.PaymentRequest{
			ID:          id,
			Sender:      actor,
			Recipient:   input.Recipient,
			AmountCents: input.AmountCents,
			Memo:        input.Memo,
			Mode:        enums.PaymentModeInstant,
			Status:      enums.PaymentStatusPending,
			ExpiresAt:   now.Add(input.TTL),
		}
		if err := s.repo.WithTx(tx).CreateRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment request")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRequested,
			AggregateType: enums.AggregatePaymentRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{AccountID: actor},
			Data: payloads.PaymentRequestedEvent{
				PaymentID:   request.ID,
				Sender:      request.Sender,
				Recipient:   request.Recipient,
				AmountCents: request.AmountCents,
				Mode:        request.Mode,
				ExpiresAt:   request.ExpiresAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *service) CompleteRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*Receipt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		request, err := repo.FindRequest(ctx, paymentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment request")
		}
		if request == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
		}
		if request.Mode == enums.PaymentModeEscrow {
			return pkgerrors.New(pkgerrors.CodeValidation, "escrow payments settle through release")
		}
		if actor != request.Recipient {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the recipient can complete a request")
		}
		if request.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "payment request is already terminal").
				WithDetails(map[string]any{"status": request.Status})
		}
		now := s.clock()
		if !now.Before(request.ExpiresAt) {
			return pkgerrors.New(pkgerrors.CodeExpired, "payment request expired")
		}

		plan := transferPlan{
			source:      request.Sender,
			sender:      request.Sender,
			recipient:   request.Recipient,
			amountCents: request.AmountCents,
			mode:        request.Mode,
		}
		receipt, err = s.settle(ctx, tx, settings, plan)
		if err != nil {
			return err
		}

		request.Status = enums.PaymentStatusCompleted
		request.CompletedAt = &now
		if err := repo.SaveRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment request")
		}

		return s.outbox.Emit(ctx, tx, s.settledEvent(actor, receipt, plan, request.ID))
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) PayInstant(ctx context.Context, actor uuid.UUID, input InstantInput) (*Receipt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var receipt *Receipt
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

		plan := transferPlan{
			source:      actor,
			sender:      actor,
			recipient:   input.Recipient,
			amountCents: input.AmountCents,
			mode:        enums.PaymentModeInstant,
		}
		receipt, err = s.settle(ctx, tx, settings, plan)
		if err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, s.settledEvent(actor, receipt, plan, 0))
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// CancelRequest voids a pending request. Only the sender can cancel; a
// cancelled escrow refunds the locked funds unless a dispute is open.
func (s *service) CancelRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*models.PaymentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var request *models.PaymentRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		request, err = repo.FindRequest(ctx, paymentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment request")
		}
		if request == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
		}
		if actor != request.Sender {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the sender can cancel a request")
		}
		if request.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "payment request is already terminal").
				WithDetails(map[string]any{"status": request.Status})
		}

		var refunded int64
		if request.Mode == enums.PaymentModeEscrow {
			detail, err := repo.FindEscrow(ctx, request.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load escrow detail")
			}
			if detail == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "escrow detail missing")
			}
			if detail.Disputed {
				return pkgerrors.New(pkgerrors.CodeDisputeActive, "escrow is under dispute")
			}
			if detail.LockedCents > 0 {
				if err := s.treasury.Transfer(tx, settings.CustodyAccount, request.Sender, detail.LockedCents); err != nil {
					return err
				}
				refunded = detail.LockedCents
				detail.LockedCents = 0
				if err := repo.SaveEscrow(ctx, detail); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save escrow detail")
				}
			}
		}

		now := s.clock()
		request.Status = enums.PaymentStatusCancelled
		if err := repo.SaveRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment request")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCancelled,
			AggregateType: enums.AggregatePaymentRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{AccountID: actor},
			Data: payloads.PaymentCancelledEvent{
				PaymentID:     request.ID,
				CancelledBy:   actor,
				RefundedCents: refunded,
				CancelledAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ExpireStaleRequests flips pending non-escrow requests past their expiry to
// expired. It is the only writer of that transition and runs from the sweep
// job, so a request that misses a sweep still fails CompleteRequest on the
// time check.
func (s *service) ExpireStaleRequests(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	expired := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.clock()
		rows, err := repo.ListExpiredPending(ctx, now, limit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired requests")
		}
		for i := range rows {
			request := rows[i]
			request.Status = enums.PaymentStatusExpired
			if err := repo.SaveRequest(ctx, &request); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save expired request")
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventPaymentExpired,
				AggregateType: enums.AggregatePaymentRequest,
				AggregateID:   request.ID,
				Version:       1,
				Data: payloads.PaymentExpiredEvent{
					PaymentID: request.ID,
					ExpiredAt: now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
