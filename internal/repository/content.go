package repository

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// ContentRepository defines post and comment data access methods. Posts and
// comments live behind one lock so that deleting a post and its comments is a
// single atomic step: no reader ever sees the post gone while its comments
// remain, or the reverse.
type ContentRepository interface {
	// CreatePost stores the post, assigning the next post ID and the creation
	// timestamp.
	CreatePost(ctx context.Context, post *models.Post) error
	// GetPost returns the post with the given ID.
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	// ListPosts returns all posts in creation order.
	ListPosts(ctx context.Context) ([]*models.Post, error)
	// DeletePost removes the post and every comment referencing it.
	DeletePost(ctx context.Context, id uint) error
	// CreateComment stores the comment, assigning the next comment ID and the
	// creation timestamp. The referenced post is not required to exist.
	CreateComment(ctx context.Context, comment *models.Comment) error
	// ListComments returns the comments for the given post in creation order.
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
}

type memoryContentRepository struct {
	mu       sync.RWMutex
	posts    []models.Post
	comments []models.Comment

	// ID counters only ever advance. IDs freed by deletion are never handed
	// out again, even when the highest-numbered post is deleted.
	nextPostID    uint
	nextCommentID uint

	postLog    *observability.StoreLogger
	commentLog *observability.StoreLogger
}

// NewMemoryContentRepository creates an empty ContentRepository.
func NewMemoryContentRepository() ContentRepository {
	return &memoryContentRepository{
		nextPostID:    1,
		nextCommentID: 1,
		postLog:       observability.NewStoreLogger("posts"),
		commentLog:    observability.NewStoreLogger("comments"),
	}
}

func (r *memoryContentRepository) CreatePost(ctx context.Context, post *models.Post) error {
	ctx, span := observability.TraceStoreMethod(ctx, "CreatePost", "posts")
	defer span.End()

	r.mu.Lock()
	post.ID = r.nextPostID
	r.nextPostID++
	post.CreatedAt = time.Now().UTC()
	r.posts = append(r.posts, *post)
	r.mu.Unlock()

	r.postLog.LogCreate(ctx, map[string]interface{}{
		"post_id": post.ID,
		"author":  post.Author,
	})
	return nil
}

func (r *memoryContentRepository) GetPost(_ context.Context, id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			p := r.posts[i]
			return &p, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *memoryContentRepository) ListPosts(_ context.Context) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Post, 0, len(r.posts))
	for i := range r.posts {
		p := r.posts[i]
		out = append(out, &p)
	}
	return out, nil
}

func (r *memoryContentRepository) DeletePost(ctx context.Context, id uint) error {
	ctx, span := observability.TraceStoreMethod(ctx, "DeletePost", "posts")
	defer span.End()

	r.mu.Lock()
	idx := -1
	for i := range r.posts {
		if r.posts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return models.NewNotFoundError("Post", id)
	}

	r.posts = append(r.posts[:idx], r.posts[idx+1:]...)

	removed := 0
	kept := r.comments[:0]
	for i := range r.comments {
		if r.comments[i].PostID == id {
			removed++
			continue
		}
		kept = append(kept, r.comments[i])
	}
	r.comments = kept
	r.mu.Unlock()

	r.postLog.LogDelete(ctx, map[string]interface{}{
		"post_id":          id,
		"comments_removed": removed,
	})
	return nil
}

func (r *memoryContentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.TraceStoreMethod(ctx, "CreateComment", "comments")
	defer span.End()

	r.mu.Lock()
	comment.ID = r.nextCommentID
	r.nextCommentID++
	comment.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, *comment)
	r.mu.Unlock()

	r.commentLog.LogCreate(ctx, map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"author":     comment.Author,
	})
	return nil
}

func (r *memoryContentRepository) ListComments(_ context.Context, postID uint) ([]*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Comment, 0)
	for i := range r.comments {
		if r.comments[i].PostID == postID {
			c := r.comments[i]
			out = append(out, &c)
		}
	}
	return out, nil
}
