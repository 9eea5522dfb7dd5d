package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type groupCreateRequest struct {
	TotalCents            int64    `json:"total_cents" validate:"required,gt=0"`
	Participants          []string `json:"participants" validate:"required,min=1,dive,uuid4"`
	DeadlineOffsetSeconds int64    `json:"deadline_offset_seconds" validate:"required,gt=0"`
}

func (p groupCreateRequest) toInput() (payments.GroupInput, error) {
	participants := make([]uuid.UUID, 0, len(p.Participants))
	for _, raw := range p.Participants {
		id, err := uuid.Parse(raw)
		if err != nil {
			return payments.GroupInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid participant")
		}
		participants = append(participants, id)
	}
	return payments.GroupInput{
		TotalCents:     p.TotalCents,
		Participants:   participants,
		DeadlineOffset: time.Duration(p.DeadlineOffsetSeconds) * time.Second,
	}, nil
}

// GroupCreate opens a bill split owed to the caller.
func GroupCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload groupCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateGroup(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, groupResponseFromModel(created, nil))
	}
}

// GroupPayShare settles the caller's share to the group creator.
func GroupPayShare(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, err := pathID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PayGroupShare(r.Context(), actor, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type groupParticipantResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	OwedCents int64      `json:"owed_cents"`
	PaidCents int64      `json:"paid_cents"`
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

type groupResponse struct {
	ID               uint64                     `json:"id"`
	Creator          uuid.UUID                  `json:"creator"`
	TotalCents       int64                      `json:"total_cents"`
	PaidCents        int64                      `json:"paid_cents"`
	ParticipantCount int                        `json:"participant_count"`
	Deadline         time.Time                  `json:"deadline"`
	Completed        bool                       `json:"completed"`
	CreatedAt        time.Time                  `json:"created_at"`
	Participants     []groupParticipantResponse `json:"participants,omitempty"`
}

func groupResponseFromModel(m *models.PaymentGroup, participants []models.GroupParticipant) *groupResponse {
	if m == nil {
		return nil
	}
	resp := &groupResponse{
		ID:               m.ID,
		Creator:          m.Creator,
		TotalCents:       m.TotalCents,
		PaidCents:        m.PaidCents,
		ParticipantCount: m.ParticipantCount,
		Deadline:         m.Deadline,
		Completed:        m.Completed,
		CreatedAt:        m.CreatedAt,
	}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, groupParticipantResponse{
			AccountID: p.AccountID,
			OwedCents: p.OwedCents,
			PaidCents: p.PaidCents,
			Paid:      p.Paid,
			PaidAt:    p.PaidAt,
		})
	}
	return resp
}
