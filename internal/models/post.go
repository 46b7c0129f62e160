package models

import "time"

// Post represents a blog post. Author is the creator's username captured at
// creation time and is immutable afterwards. Content is stored already
// sanitized (no raw '<' or '>').
type Post struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"date"`
}

// AnonymousAuthor is the author label used for comments created without a
// session.
const AnonymousAuthor = "anonymous"

// Comment represents a comment on a post. IDs are assigned from a single
// counter across all posts. PostID is not validated against an existing post
// at creation time; comments are removed together with their parent post.
type Comment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"date"`
}
