package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	pkgauth "github.com/angelmondragon/payflow-backend/pkg/auth"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
)

type tokenRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid4"`
}

// DevTokenMint issues an access token for an arbitrary account. Wired only
// outside production; real deployments front this API with an identity
// provider that mints the same claims.
func DevTokenMint(cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, err := uuid.Parse(payload.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account_id"))
			return
		}

		token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{AccountID: accountID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"access_token": token,
			"expires_in":   int64(cfg.AccessTokenTTL().Seconds()),
		})
	}
}
