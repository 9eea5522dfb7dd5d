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

type scheduleCreateRequest struct {
	Recipient         string     `json:"recipient" validate:"required,uuid4"`
	AmountCents       int64      `json:"amount_cents" validate:"required,gt=0"`
	FrequencySeconds  int64      `json:"frequency_seconds" validate:"required,gt=0"`
	TotalInstallments int        `json:"total_installments" validate:"required,gt=0"`
	StartAt           *time.Time `json:"start_at"`
}

func (p scheduleCreateRequest) toInput() (payments.ScheduleInput, error) {
	recipient, err := uuid.Parse(p.Recipient)
	if err != nil {
		return payments.ScheduleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipient")
	}
	input := payments.ScheduleInput{
		Recipient:         recipient,
		AmountCents:       p.AmountCents,
		Frequency:         time.Duration(p.FrequencySeconds) * time.Second,
		TotalInstallments: p.TotalInstallments,
	}
	if p.StartAt != nil {
		input.StartAt = *p.StartAt
	}
	return input, nil
}

// ScheduleCreate registers a recurring payment plan for the caller.
func ScheduleCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload scheduleCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.SetupSchedule(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, scheduleResponseFromModel(created))
	}
}

// ScheduleExecute settles the next due installment immediately.
func ScheduleExecute(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		scheduleID, err := pathID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.ExecuteSchedule(r.Context(), actor, scheduleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type scheduleResponse struct {
	ID                    uint64    `json:"id"`
	Payer                 uuid.UUID `json:"payer"`
	Recipient             uuid.UUID `json:"recipient"`
	AmountCents           int64     `json:"amount_cents"`
	FrequencySeconds      int64     `json:"frequency_seconds"`
	NextPaymentAt         time.Time `json:"next_payment_at"`
	TotalInstallments     int       `json:"total_installments"`
	CompletedInstallments int       `json:"completed_installments"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"created_at"`
}

func scheduleResponseFromModel(m *models.RecurringSchedule) *scheduleResponse {
	if m == nil {
		return nil
	}
	return &scheduleResponse{
		ID:                    m.ID,
		Payer:                 m.Payer,
		Recipient:             m.Recipient,
		AmountCents:           m.AmountCents,
		FrequencySeconds:      int64(m.Frequency / time.Second),
		NextPaymentAt:         m.NextPaymentAt,
		TotalInstallments:     m.TotalInstallments,
		CompletedInstallments: m.CompletedInstallments,
		Active:                m.Active,
		CreatedAt:             m.CreatedAt,
	}
}
