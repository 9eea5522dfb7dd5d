package payments

import (
	"context"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
)

// Read-only lookups. A miss returns nil, never an error.

func (s *service) GetRequest(ctx context.Context, id uint64) (*models.PaymentRequest, error) {
	return s.repo.FindRequest(ctx, id)
}

func (s *service) GetEscrow(ctx context.Context, paymentID uint64) (*models.EscrowDetail, error) {
	return s.repo.FindEscrow(ctx, paymentID)
}

func (s *service) GetSchedule(ctx context.Context, id uint64) (*models.RecurringSchedule, error) {
	return s.repo.FindSchedule(ctx, id)
}

func (s *service) GetGroup(ctx context.Context, id uint64) (*models.PaymentGroup, []models.GroupParticipant, error) {
	group, err := s.repo.FindGroup(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, nil
	}
	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return group, participants, nil
}
