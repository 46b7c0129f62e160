package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestAuthenticateSuccess(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := NewAuthService(userRepo)

	stored := &models.User{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin}
	userRepo.On("GetByUsername", mock.Anything, "admin").Return(stored, nil)

	user, err := svc.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	userRepo.AssertExpectations(t)
}

func TestAuthenticateFailureIsUniform(t *testing.T) {
	stored := &models.User{ID: 2, Username: "user", Password: "user123", Role: models.RoleMember}

	tests := []struct {
		name     string
		username string
		secret   string
		found    *models.User
	}{
		{name: "unknown username", username: "ghost", secret: "user123", found: nil},
		{name: "wrong password", username: "user", secret: "wrong", found: stored},
		{name: "empty password", username: "user", secret: "", found: stored},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(mockUserRepository)
			svc := NewAuthService(userRepo)
			userRepo.On("GetByUsername", mock.Anything, tt.username).Return(tt.found, nil)

			user, err := svc.Authenticate(context.Background(), tt.username, tt.secret)
			assert.Nil(t, user)
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeAuthFailure, appErr.Code)
			messages = append(messages, appErr.Message)
		})
	}

	// Unknown user and wrong password produce the identical message.
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestAuthenticateExactMatch(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := NewAuthService(userRepo)

	stored := &models.User{ID: 2, Username: "user", Password: "user123", Role: models.RoleMember}
	userRepo.On("GetByUsername", mock.Anything, "user").Return(stored, nil)

	// A prefix of the real secret is not enough.
	_, err := svc.Authenticate(context.Background(), "user", "user12")
	require.Error(t, err)
}
