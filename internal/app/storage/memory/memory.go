package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-social/pulse/internal/app/domain/post"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	posts        map[string]post.Post
	likes        map[string]post.Like // keyed by postID + "\x00" + userID
	comments     map[string][]post.Comment
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.FeedStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		posts:        make(map[string]post.Post),
		likes:        make(map[string]post.Like),
		comments:     make(map[string][]post.Comment),
	}
}

func likeKey(postID, userID string) string {
	return postID + "\x00" + userID
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByEmail[u.Email]; taken {
		return user.User{}, storage.ErrConflict
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}

	// Identity fields are immutable through this path.
	u.Email = existing.Email
	u.CreatedAt = existing.CreatedAt

	s.users[u.ID] = u
	return u, nil
}

// DeleteUser removes a user and cascades through their posts, likes, and
// comments, including likes and comments left by others on deleted posts.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(s.users, id)
	delete(s.usersByEmail, u.Email)

	for postID, p := range s.posts {
		if p.UserID == id {
			delete(s.posts, postID)
			delete(s.comments, postID)
			for key, like := range s.likes {
				if like.PostID == postID {
					delete(s.likes, key)
				}
			}
		}
	}

	for key, like := range s.likes {
		if like.UserID == id {
			delete(s.likes, key)
		}
	}
	for postID, comments := range s.comments {
		kept := comments[:0]
		for _, c := range comments {
			if c.UserID != id {
				kept = append(kept, c)
			}
		}
		s.comments[postID] = kept
	}
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return post.Post{}, storage.ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) GetPost(_ context.Context, id string) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateComment(_ context.Context, c post.Comment) (post.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[c.PostID]; !ok {
		return post.Comment{}, storage.ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	s.comments[c.PostID] = append(s.comments[c.PostID], c)
	return c, nil
}

// FeedStore implementation ----------------------------------------------------

// ListFeed builds the whole feed under one read lock, so counts and the
// viewer-liked flag always reflect a single consistent state.
func (s *Store) ListFeed(_ context.Context, viewerID string) ([]post.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likeCounts := make(map[string]int, len(s.posts))
	for _, like := range s.likes {
		likeCounts[like.PostID]++
	}

	views := make([]post.View, 0, len(s.posts))
	for _, p := range s.posts {
		_, viewerLiked := s.likes[likeKey(p.ID, viewerID)]
		views = append(views, post.View{
			Post:          p,
			Author:        s.users[p.UserID].Public(),
			LikesCount:    likeCounts[p.ID],
			CommentsCount: len(s.comments[p.ID]),
			ViewerLiked:   viewerLiked,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

func (s *Store) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return false, storage.ErrNotFound
	}

	key := likeKey(postID, userID)
	if _, liked := s.likes[key]; liked {
		delete(s.likes, key)
		return false, nil
	}

	s.likes[key] = post.Like{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (s *Store) CountLikes(_ context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, like := range s.likes {
		if like.PostID == postID {
			count++
		}
	}
	return count, nil
}
