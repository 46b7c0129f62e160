package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type CommentService struct {
	contentRepo repository.ContentRepository
}

type CreateCommentInput struct {
	// Identity is nil for anonymous commenters.
	Identity *models.SessionIdentity
	PostID   uint
	Content  string
}

func NewCommentService(contentRepo repository.ContentRepository) *CommentService {
	return &CommentService{contentRepo: contentRepo}
}

// CreateComment stores a comment on the given post. The post is not required
// to exist; a comment on an unknown post ID is accepted and simply never
// listed under a live post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	author := models.AnonymousAuthor
	if in.Identity != nil {
		author = in.Identity.Username
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		Content: validation.SanitizeContent(in.Content),
		Author:  author,
	}
	if err := s.contentRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.contentRepo.ListComments(ctx, postID)
}
