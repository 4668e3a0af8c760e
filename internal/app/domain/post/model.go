package post

import (
	"time"

	"github.com/pulse-social/pulse/internal/app/domain/user"
)

// Post is a short text update, optionally referencing an image by URL.
// Posts are immutable once created.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Like marks that a user liked a post. At most one exists per (post, user).
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only reply to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// View is a post enriched with author display fields and viewer-relative
// aggregates. It is computed at read time, never stored.
type View struct {
	Post
	Author        user.Public `json:"user"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	ViewerLiked   bool        `json:"user_has_liked"`
}
