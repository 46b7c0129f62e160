package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// AuthService validates credentials against the provisioned user set.
type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Authenticate returns the user matching the username/secret pair. An unknown
// username and a wrong password collapse into the same AUTH_FAILURE error so
// the response never reveals which half was wrong. The comparison is an
// exact match against the stored secret.
func (s *AuthService) Authenticate(ctx context.Context, username, secret string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password != secret {
		return nil, models.NewAuthFailureError()
	}
	return user, nil
}
