package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	jwt.RegisteredClaims
}
