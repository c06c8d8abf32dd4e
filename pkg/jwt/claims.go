package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT custom claims for control API callers
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
