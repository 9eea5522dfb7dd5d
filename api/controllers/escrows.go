package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type escrowCreateRequest struct {
	Recipient            string `json:"recipient" validate:"required,uuid4"`
	Arbiter              string `json:"arbiter" validate:"required,uuid4"`
	AmountCents          int64  `json:"amount_cents" validate:"required,gt=0"`
	Condition            string `json:"condition" validate:"required,max=1024"`
	DisputeWindowSeconds int64  `json:"dispute_window_seconds" validate:"required,gt=0"`
	Memo                 string `json:"memo" validate:"max=512"`
}

func (p escrowCreateRequest) toInput() (payments.CreateEscrowInput, error) {
	recipient, err := uuid.Parse(p.Recipient)
	if err != nil {
		return payments.CreateEscrowInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipient")
	}
	arbiter, err := uuid.Parse(p.Arbiter)
	if err != nil {
		return payments.CreateEscrowInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid arbiter")
	}
	return payments.CreateEscrowInput{
		Recipient:     recipient,
		Arbiter:       arbiter,
		AmountCents:   p.AmountCents,
		Condition:     validators.SanitizeString(p.Condition, 1024),
		DisputeWindow: time.Duration(p.DisputeWindowSeconds) * time.Second,
		Memo:          validators.SanitizeString(p.Memo, 512),
	}, nil
}

// EscrowCreate locks the gross amount into custody and opens an escrow.
func EscrowCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload escrowCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateEscrow(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentRequestResponseFromModel(created))
	}
}

// EscrowRelease settles the locked funds to the recipient. Sender, recipient
// or arbiter may release; an open dispute blocks it.
func EscrowRelease(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		receipt, err := svc.ReleaseEscrow(r.Context(), actor, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type escrowDisputeRequest struct {
	Reason string `json:"reason" validate:"required,max=1024"`
}

// EscrowDispute flags the escrow and freezes release until resolution.
func EscrowDispute(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload escrowDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DisputeEscrow(r.Context(), actor, paymentID, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payment_id": paymentID, "disputed": true})
	}
}
