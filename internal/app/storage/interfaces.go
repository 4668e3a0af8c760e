// Package storage defines the persistence contracts for the service.
package storage

import (
	"context"
	"errors"

	"github.com/pulse-social/pulse/internal/app/domain/post"
	"github.com/pulse-social/pulse/internal/app/domain/user"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a uniqueness constraint rejects a write.
var ErrConflict = errors.New("conflict")

// UserStore persists user records. Email uniqueness is enforced here, not in
// the service layer.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PostStore persists posts and comments.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id string) (post.Post, error)
	CreateComment(ctx context.Context, c post.Comment) (post.Comment, error)
}

// FeedStore computes viewer-relative feed projections and owns the like
// toggle. Both operations are single consistent reads/writes: ListFeed never
// observes partial aggregates, and ToggleLike is atomic with respect to the
// one-like-per-(post,user) constraint.
type FeedStore interface {
	ListFeed(ctx context.Context, viewerID string) ([]post.View, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
}
