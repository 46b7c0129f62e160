package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/models"
)

func TestCanDeletePost(t *testing.T) {
	post := &models.Post{ID: 1, Title: "t", Content: "c", Author: "alice"}

	tests := []struct {
		name     string
		identity *models.SessionIdentity
		expected bool
	}{
		{
			name:     "nil identity denied",
			identity: nil,
			expected: false,
		},
		{
			name:     "owner allowed",
			identity: &models.SessionIdentity{UserID: 1, Username: "alice", Role: models.RoleMember},
			expected: true,
		},
		{
			name:     "non-owner member denied",
			identity: &models.SessionIdentity{UserID: 2, Username: "bob", Role: models.RoleMember},
			expected: false,
		},
		{
			name:     "admin allowed on any post",
			identity: &models.SessionIdentity{UserID: 3, Username: "root", Role: models.RoleAdmin},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanDeletePost(tt.identity, post))
		})
	}
}

func TestCanDeletePostNilPost(t *testing.T) {
	admin := &models.SessionIdentity{UserID: 1, Username: "root", Role: models.RoleAdmin}
	assert.False(t, CanDeletePost(admin, nil))
}

func TestCanCreatePost(t *testing.T) {
	assert.False(t, CanCreatePost(nil))
	assert.True(t, CanCreatePost(&models.SessionIdentity{UserID: 1, Username: "alice", Role: models.RoleMember}))
}

func TestCanUpload(t *testing.T) {
	assert.False(t, CanUpload(nil))
	assert.True(t, CanUpload(&models.SessionIdentity{UserID: 1, Username: "alice", Role: models.RoleMember}))
}
