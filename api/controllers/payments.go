package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type createRequestRequest struct {
	Recipient   string `json:"recipient" validate:"required,uuid4"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Memo        string `json:"memo" validate:"max=512"`
	TTLSeconds  int64  `json:"ttl_seconds" validate:"required,gt=0"`
}

func (p createRequestRequest) toInput() (payments.CreateRequestInput, error) {
	recipient, err := uuid.Parse(p.Recipient)
	if err != nil {
		return payments.CreateRequestInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipient")
	}
	return payments.CreateRequestInput{
		Recipient:   recipient,
		AmountCents: p.AmountCents,
		Memo:        validators.SanitizeString(p.Memo, 512),
		TTL:         time.Duration(p.TTLSeconds) * time.Second,
	}, nil
}

// PaymentRequestCreate opens a pending payment request against the caller.
func PaymentRequestCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload createRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateRequest(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentRequestResponseFromModel(created))
	}
}

// PaymentRequestComplete settles a pending request. Only the recipient may pay.
func PaymentRequestComplete(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		paymentID, err := pathID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.CompleteRequest(r.Context(), actor, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// PaymentRequestCancel voids a pending request. Only the sender may cancel.
func PaymentRequestCancel(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		paymentID, err := pathID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cancelled, err := svc.CancelRequest(r.Context(), actor, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentRequestResponseFromModel(cancelled))
	}
}

type instantRequest struct {
	Recipient   string `json:"recipient" validate:"required,uuid4"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Memo        string `json:"memo" validate:"max=512"`
}

func (p instantRequest) toInput() (payments.InstantInput, error) {
	recipient, err := uuid.Parse(p.Recipient)
	if err != nil {
		return payments.InstantInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipient")
	}
	return payments.InstantInput{
		Recipient:   recipient,
		AmountCents: p.AmountCents,
		Memo:        validators.SanitizeString(p.Memo, 512),
	}, nil
}

// PaymentInstant settles sender to recipient in one shot, no pending phase.
func PaymentInstant(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload instantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PayInstant(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type paymentRequestResponse struct {
	ID          uint64              `json:"id"`
	Sender      uuid.UUID           `json:"sender"`
	Recipient   uuid.UUID           `json:"recipient"`
	AmountCents int64               `json:"amount_cents"`
	Memo        string              `json:"memo,omitempty"`
	Mode        enums.PaymentMode   `json:"mode"`
	Status      enums.PaymentStatus `json:"status"`
	ExpiresAt   time.Time           `json:"expires_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func paymentRequestResponseFromModel(m *models.PaymentRequest) *paymentRequestResponse {
	if m == nil {
		return nil
	}
	return &paymentRequestResponse{
		ID:          m.ID,
		Sender:      m.Sender,
		Recipient:   m.Recipient,
		AmountCents: m.AmountCents,
		Memo:        m.Memo,
		Mode:        m.Mode,
		Status:      m.Status,
		ExpiresAt:   m.ExpiresAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
}
