package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusflow/timetable-api/internal/models"
	"github.com/campusflow/timetable-api/pkg/config"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
)

// AuthService verifies access tokens issued by the campus identity provider.
// The API does not mint tokens itself.
type AuthService struct {
	secret []byte
}

func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{secret: []byte(cfg.Secret)}
}

// ValidateToken parses and verifies an HS256 token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "UNAUTHORIZED", 401, "invalid token")
	}
	if !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}

	return claims, nil
}
