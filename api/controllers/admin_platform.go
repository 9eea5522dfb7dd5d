package controllers

import (
	"net/http"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	"github.com/angelmondragon/payflow-backend/internal/platform"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type feeUpdateRequest struct {
	RateBps int64 `json:"rate_bps" validate:"gte=0"`
}

// AdminUpdateFee changes the platform fee rate. Owner only.
func AdminUpdateFee(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload feeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateFeeRate(r.Context(), actor, payload.RateBps); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"rate_bps": payload.RateBps})
	}
}

type limitsUpdateRequest struct {
	MinAmountCents int64 `json:"min_amount_cents" validate:"required,gt=0"`
	MaxAmountCents int64 `json:"max_amount_cents" validate:"required,gt=0"`
}

// AdminUpdateLimits changes the per-transfer amount bounds. Owner only.
func AdminUpdateLimits(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload limitsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateLimits(r.Context(), actor, payload.MinAmountCents, payload.MaxAmountCents); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{
			"min_amount_cents": payload.MinAmountCents,
			"max_amount_cents": payload.MaxAmountCents,
		})
	}
}

// AdminPause halts every mutating payment operation. Owner only.
func AdminPause(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Pause(r.Context(), actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"paused": true})
	}
}

// AdminUnpause resumes payment processing. Owner only.
func AdminUnpause(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unpause(r.Context(), actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"paused": false})
	}
}
