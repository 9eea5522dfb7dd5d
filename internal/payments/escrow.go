package payments

import (
	"context"
	"strings"
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

// CreateEscrowInput opens an arbitrated payment. The gross amount is locked
// into platform custody immediately; the fee is taken at release.
type CreateEscrowInput struct {
	Recipient     uuid.UUID
	Arbiter       uuid.UUID
	AmountCents   int64
	Condition     string
	DisputeWindow time.Duration
	Memo          string
}

func (s *service) CreateEscrow(ctx context.Context, actor uuid.UUID, input CreateEscrowInput) (*models.PaymentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.DisputeWindow <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute window must be positive")
	}
	if strings.TrimSpace(input.Condition) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release condition is required")
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
		if input.Arbiter == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "arbiter is required")
		}
		if input.Arbiter == actor {
			return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "sender cannot arbitrate their own escrow")
		}

		now := s.clock()
		prof := s.profiles.WithTx(tx)
		if _, err := prof.Ensure(ctx, actor, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure sender profile")
		}
		if _, err := prof.Ensure(ctx, input.Recipient, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure recipient profile")
		}

		// Locking the gross amount up front keeps escrowed value
		// collateralized for the whole pending window.
		if err := s.treasury.Transfer(tx, actor, settings.CustodyAccount, input.AmountCents); err != nil {
			return err
		}

		id, err := s.sequences.Next(tx, models.SequencePayment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate payment id")
		}

		deadline := now.Add(input.DisputeWindow)
		request = &models.PaymentRequest{
			ID:          id,
			Sender:      actor,
			Recipient:   input.Recipient,
			AmountCents: input.AmountCents,
			Memo:        input.Memo,
			Mode:        enums.PaymentModeEscrow,
			Status:      enums.PaymentStatusPending,
			ExpiresAt:   deadline,
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment request")
		}
		detail := &models.EscrowDetail{
			PaymentID:        id,
			Arbiter:          input.Arbiter,
			ReleaseCondition: input.Condition,
			DisputeDeadline:  deadline,
			LockedCents:      input.AmountCents,
		}
		if err := repo.CreateEscrow(ctx, detail); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist escrow detail")
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

func (s *service) ReleaseEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64) (*Receipt, error) {
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
		request, detail, err := s.loadEscrow(ctx, repo, paymentID)
		if err != nil {
			return err
		}
		if actor != request.Sender && actor != request.Recipient && actor != detail.Arbiter {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a party to this escrow")
		}
		if request.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "escrow is already terminal").
				WithDetails(map[string]any{"status": request.Status})
		}
		if detail.Disputed {
			return pkgerrors.New(pkgerrors.CodeDisputeActive, "escrow is under dispute")
		}

		// Custody holds exactly the locked gross, covering net plus fee.
		plan := transferPlan{
			source:      settings.CustodyAccount,
			sender:      request.Sender,
			recipient:   request.Recipient,
			amountCents: request.AmountCents,
			mode:        enums.PaymentModeEscrow,
		}
		receipt, err = s.settle(ctx, tx, settings, plan)
		if err != nil {
			return err
		}

		now := s.clock()
		request.Status = enums.PaymentStatusCompleted
		request.CompletedAt = &now
		if err := repo.SaveRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment request")
		}
		detail.LockedCents = 0
		if err := repo.SaveEscrow(ctx, detail); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save escrow detail")
		}

		return s.outbox.Emit(ctx, tx, s.settledEvent(actor, receipt, plan, request.ID))
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// DisputeEscrow freezes release until an out-of-band resolution. Only the
// sender or recipient may dispute; the arbiter cannot open one.
func (s *service) DisputeEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64, reason string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.guard(ctx, tx); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		request, detail, err := s.loadEscrow(ctx, repo, paymentID)
		if err != nil {
			return err
		}
		if actor != request.Sender && actor != request.Recipient {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the sender or recipient can dispute")
		}
		if request.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "escrow is already terminal").
				WithDetails(map[string]any{"status": request.Status})
		}
		if detail.Disputed {
			return pkgerrors.New(pkgerrors.CodeDisputeActive, "escrow is already disputed")
		}

		now := s.clock()
		detail.Disputed = true
		detail.DisputedAt = &now
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			detail.DisputeReason = &trimmed
		}
		if err := repo.SaveEscrow(ctx, detail); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save escrow detail")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEscrowDisputed,
			AggregateType: enums.AggregatePaymentRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{AccountID: actor},
			Data: payloads.EscrowDisputedEvent{
				PaymentID:  request.ID,
				DisputedBy: actor,
				Reason:     strings.TrimSpace(reason),
				DisputedAt: now,
			},
		})
	})
}

func (s *service) loadEscrow(ctx context.Context, repo Repository, paymentID uint64) (*models.PaymentRequest, *models.EscrowDetail, error) {
	request, err := repo.FindRequest(ctx, paymentID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment request")
	}
	if request == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
	}
	if request.Mode != enums.PaymentModeEscrow {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "payment is not an escrow")
	}
	detail, err := repo.FindEscrow(ctx, paymentID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load escrow detail")
	}
	if detail == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeDependency, "escrow detail missing")
	}
	return request, detail, nil
}
