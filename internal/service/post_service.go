// Package service implements the application's operations over the
// repositories, including validation, sanitization, and authorization.
package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type PostService struct {
	contentRepo repository.ContentRepository
}

type CreatePostInput struct {
	Identity *models.SessionIdentity
	Title    string
	Content  string
}

type DeletePostInput struct {
	Identity *models.SessionIdentity
	PostID   uint
}

func NewPostService(contentRepo repository.ContentRepository) *PostService {
	return &PostService{contentRepo: contentRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !policy.CanCreatePost(in.Identity) {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post := &models.Post{
		Title:   in.Title,
		Content: validation.SanitizeContent(in.Content),
		Author:  in.Identity.Username,
	}
	if err := s.contentRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.contentRepo.ListPosts(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.contentRepo.GetPost(ctx, id)
}

// DeletePost removes the post and its comments. An unknown post yields
// NOT_FOUND before any ownership check, so probing a missing ID never reveals
// whether deletion would have been permitted.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.contentRepo.GetPost(ctx, in.PostID)
	if err != nil {
		return err
	}

	if !policy.CanDeletePost(in.Identity, post) {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.contentRepo.DeletePost(ctx, in.PostID)
}
