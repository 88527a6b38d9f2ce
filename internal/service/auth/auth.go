package auth

import (
	"context"

	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"
)

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
}

func NewAuthService(l logger.Log, manager *JWTManager) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
	}
}

// Authenticate turns a bearer token into the caller identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	claims, err := s.jwtManager.AccessClaims(token)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: claims.UserID, Roles: claims.Roles}, nil
}
