// Package policy contains the pure authorization decisions. Functions here
// have no side effects and touch no shared state; callers resolve the
// identity and load the resource first.
package policy

import "inkwell/internal/models"

// CanDeletePost reports whether the identity may delete the post: the
// original author or any admin.
func CanDeletePost(identity *models.SessionIdentity, post *models.Post) bool {
	if identity == nil || post == nil {
		return false
	}
	return identity.IsAdmin() || identity.Username == post.Author
}

// CanCreatePost reports whether the identity may create posts. Any
// authenticated user qualifies; the role is irrelevant.
func CanCreatePost(identity *models.SessionIdentity) bool {
	return identity != nil
}

// CanUpload reports whether the identity may upload assets. Same rule as post
// creation.
func CanUpload(identity *models.SessionIdentity) bool {
	return identity != nil
}
