// Package seed provisions the fixed user set and starter content.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// Users returns the fixed provisioning set. There is no signup path; these
// are the only accounts for the lifetime of the process.
func Users() []models.User {
	return []models.User{
		{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin},
		{ID: 2, Username: "user", Password: "user123", Role: models.RoleMember},
	}
}

// Content inserts the welcome post and its first comment.
func Content(ctx context.Context, content repository.ContentRepository) error {
	post := &models.Post{
		Title:   "Welcome to the blog",
		Content: "This is the first post on the blog",
		Author:  "admin",
	}
	if err := content.CreatePost(ctx, post); err != nil {
		return fmt.Errorf("seed welcome post: %w", err)
	}

	comment := &models.Comment{
		PostID:  post.ID,
		Content: "Great post!",
		Author:  "user",
	}
	if err := content.CreateComment(ctx, comment); err != nil {
		return fmt.Errorf("seed welcome comment: %w", err)
	}

	return nil
}

// DemoContent fills the content store with generated posts and comments for
// local development. Authors rotate through the provisioned users; roughly a
// third of comments are anonymous.
func DemoContent(ctx context.Context, content repository.ContentRepository, postCount int) error {
	users := Users()

	for i := 0; i < postCount; i++ {
		author := users[i%len(users)].Username
		post := &models.Post{
			Title:   gofakeit.Sentence(5),
			Content: gofakeit.Paragraph(1, 3, 12, " "),
			Author:  author,
		}
		if err := content.CreatePost(ctx, post); err != nil {
			return fmt.Errorf("seed demo post: %w", err)
		}

		commentCount := gofakeit.Number(0, 4)
		for j := 0; j < commentCount; j++ {
			commentAuthor := models.AnonymousAuthor
			if gofakeit.Number(0, 2) > 0 {
				commentAuthor = users[gofakeit.Number(0, len(users)-1)].Username
			}
			comment := &models.Comment{
				PostID:  post.ID,
				Content: gofakeit.Sentence(8),
				Author:  commentAuthor,
			}
			if err := content.CreateComment(ctx, comment); err != nil {
				return fmt.Errorf("seed demo comment: %w", err)
			}
		}
	}

	return nil
}
