package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Roles are deliberately absent: privileges are re-read on every call.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	AccessID string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// AccessID returns the session identifier carried in the jti claim.
func (c *AccessTokenClaims) AccessID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
