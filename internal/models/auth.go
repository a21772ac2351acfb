package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries identity propagated by the campus identity service. This
// service only verifies tokens, it never issues end-user credentials.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
