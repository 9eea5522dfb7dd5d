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

// GroupInput opens a bill split. Every participant owes the floor share of
// the total; a non-divisible remainder is deliberately never collected.
type GroupInput struct {
	TotalCents     int64
	Participants   []uuid.UUID
	DeadlineOffset time.Duration
}

func (s *service) CreateGroup(ctx context.Context, actor uuid.UUID, input GroupInput) (*models.PaymentGroup, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.DeadlineOffset <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline offset must be positive")
	}
	count := len(input.Participants)
	if count < 1 || count > models.MaxGroupParticipants {
		return nil, pkgerrors.New(pkgerrors.CodeGroupFull, "participant count must be between 1 and 10").
			WithDetails(map[string]int{"count": count, "max": models.MaxGroupParticipants})
	}
	seen := make(map[uuid.UUID]struct{}, count)
	for _, participant := range input.Participants {
		if participant == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidRecipient, "participant id is required")
		}
		if _, dup := seen[participant]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate participant").
				WithDetails(map[string]string{"participant": participant.String()})
		}
		seen[participant] = struct{}{}
	}

	var group *models.PaymentGroup
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}
		if err := fees.CheckAmount(input.TotalCents, settings.MinAmountCents, settings.MaxAmountCents); err != nil {
			return err
		}

		now := s.clock()
		prof := s.profiles.WithTx(tx)
		if _, err := prof.Ensure(ctx, actor, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure creator profile")
		}
		for _, participant := range input.Participants {
			if _, err := prof.Ensure(ctx, participant, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure participant profile")
			}
		}

		id, err := s.sequences.Next(tx, models.SequenceGroup)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate group id")
		}

		owed := input.TotalCents / int64(count)
		group = &models.PaymentGroup{
			ID:               id,
			Creator:          actor,
			TotalCents:       input.TotalCents,
			ParticipantCount: count,
			Deadline:         now.Add(input.DeadlineOffset),
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateGroup(ctx, group); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist group")
		}
		rows := make([]models.GroupParticipant, 0, count)
		for _, participant := range input.Participants {
			rows = append(rows, models.GroupParticipant{
				GroupID:   id,
				AccountID: participant,
				OwedCents: owed,
			})
		}
		if err := repo.CreateParticipants(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist participants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *service) PayGroupShare(ctx context.Context, actor uuid.UUID, groupID uint64) (*GroupReceipt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var result *GroupReceipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		settings, err := s.guard(ctx, tx)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		group, err := repo.FindGroup(ctx, groupID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
		}
		if group == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment group not found")
		}
		participant, err := repo.FindParticipant(ctx, groupID, actor)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		if participant == nil {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a group participant")
		}
		if participant.Paid {
			return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "share already paid")
		}
		now := s.clock()
		if !now.Before(group.Deadline) {
			return pkgerrors.New(pkgerrors.CodeExpired, "group deadline passed")
		}

		plan := transferPlan{
			source:      actor,
			sender:      actor,
			recipient:   group.Creator,
			amountCents: participant.OwedCents,
			mode:        enums.PaymentModeGroup,
		}
		receipt, err := s.settle(ctx, tx, settings, plan)
		if err != nil {
			return err
		}

		participant.PaidCents = participant.OwedCents
		participant.Paid = true
		participant.PaidAt = &now
		if err := repo.SaveParticipant(ctx, participant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save participant")
		}

		group.PaidCents += participant.OwedCents
		completedNow := !group.Completed && group.PaidCents >= group.TotalCents
		if completedNow {
			group.Completed = true
		}
		if err := repo.SaveGroup(ctx, group); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save group")
		}

		if err := s.outbox.Emit(ctx, tx, s.settledEvent(actor, receipt, plan, 0)); err != nil {
			return err
		}
		if completedNow {
			event := outbox.DomainEvent{
				EventType:     enums.EventGroupCompleted,
				AggregateType: enums.AggregatePaymentGroup,
				AggregateID:   group.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{AccountID: actor},
				Data: payloads.GroupCompletedEvent{
					GroupID:     group.ID,
					TotalCents:  group.TotalCents,
					PaidCents:   group.PaidCents,
					CompletedAt: now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		result = &GroupReceipt{
			Receipt:        *receipt,
			GroupCompleted: group.Completed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
