// Package feed implements the post feed: creation, likes, comments, and the
// viewer-relative aggregation.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulse-social/pulse/internal/app/domain/post"
	"github.com/pulse-social/pulse/internal/app/metrics"
	"github.com/pulse-social/pulse/internal/app/storage"
	"github.com/pulse-social/pulse/pkg/logger"
)

// ErrValidation marks rejected caller input. Handlers translate it to a 400;
// anything else is an internal failure.
var ErrValidation = errors.New("invalid input")

// Service manages posts and their aggregates.
type Service struct {
	posts storage.PostStore
	feed  storage.FeedStore
	log   *logger.Logger
}

// New constructs a feed service.
func New(posts storage.PostStore, feed storage.FeedStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("feed")
	}
	return &Service{posts: posts, feed: feed, log: log}
}

// List returns every post, newest first, enriched with author fields and the
// viewer's like state. The store guarantees one consistent snapshot.
func (s *Service) List(ctx context.Context, viewerID string) ([]post.View, error) {
	return s.feed.ListFeed(ctx, viewerID)
}

// CreatePost validates and persists a new post.
func (s *Service) CreatePost(ctx context.Context, userID, content, imageURL string) (post.Post, error) {
	if strings.TrimSpace(content) == "" {
		return post.Post{}, fmt.Errorf("content is required: %w", ErrValidation)
	}

	created, err := s.posts.CreatePost(ctx, post.Post{
		UserID:   userID,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		return post.Post{}, fmt.Errorf("create post: %w", err)
	}

	metrics.RecordPostCreated()
	s.log.WithField("post_id", created.ID).
		WithField("user_id", userID).
		Info("post created")
	return created, nil
}

// ToggleLike flips the viewer's like on a post and reports the new state.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	liked, err := s.feed.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	metrics.RecordLikeToggle(liked)
	s.log.WithField("post_id", postID).
		WithField("user_id", userID).
		WithField("liked", liked).
		Debug("like toggled")
	return liked, nil
}

// AddComment validates and appends a comment to a post.
func (s *Service) AddComment(ctx context.Context, userID, postID, content string) (post.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return post.Comment{}, fmt.Errorf("content is required: %w", ErrValidation)
	}

	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return post.Comment{}, err
	}

	created, err := s.posts.CreateComment(ctx, post.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return post.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	metrics.RecordCommentCreated()
	s.log.WithField("comment_id", created.ID).
		WithField("post_id", postID).
		Info("comment added")
	return created, nil
}
