package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in an auth token. RegisteredClaims.ID
// carries the token id used for revocation on logout.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}
