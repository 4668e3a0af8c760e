package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pulse-social/pulse/internal/app/domain/post"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL. Uniqueness
// and referential integrity are delegated to the schema; constraint
// violations surface as the storage sentinel errors.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.FeedStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return storage.ErrConflict
		case pgForeignKeyViolation:
			return storage.ErrNotFound
		}
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, bio, location, profile_picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Bio, u.Location, toNullString(u.ProfilePicture), u.CreatedAt)
	if err != nil {
		return user.User{}, mapError(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, bio, location, profile_picture, created_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, bio, location, profile_picture, created_at
		FROM users
		WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var (
		u       user.User
		picture sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.Location, &picture, &u.CreatedAt); err != nil {
		return user.User{}, mapError(err)
	}
	u.ProfilePicture = picture.String
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, bio = $3, location = $4, profile_picture = $5
		WHERE id = $1
	`, u.ID, u.Name, u.Bio, u.Location, toNullString(u.ProfilePicture))
	if err != nil {
		return user.User{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, user_id, content, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.UserID, p.Content, toNullString(p.ImageURL), p.CreatedAt)
	if err != nil {
		return post.Post{}, mapError(err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, content, image_url, created_at
		FROM posts
		WHERE id = $1
	`, id)

	var (
		p        post.Post
		imageURL sql.NullString
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &imageURL, &p.CreatedAt); err != nil {
		return post.Post{}, mapError(err)
	}
	p.ImageURL = imageURL.String
	return p, nil
}

func (s *Store) CreateComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.PostID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return post.Comment{}, mapError(err)
	}
	return c, nil
}

// --- FeedStore --------------------------------------------------------------

// ListFeed joins posts with their aggregate counts and the viewer's like
// state in one query, so every row reflects the same snapshot.
func (s *Store) ListFeed(ctx context.Context, viewerID string) ([]post.View, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.id, p.user_id, p.content, p.image_url, p.created_at,
			u.id, u.name, u.bio, u.profile_picture,
			COALESCE(l.likes_count, 0),
			COALESCE(c.comments_count, 0),
			ul.user_id IS NOT NULL
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS likes_count
			FROM likes
			GROUP BY post_id
		) l ON p.id = l.post_id
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS comments_count
			FROM comments
			GROUP BY post_id
		) c ON p.id = c.post_id
		LEFT JOIN (
			SELECT post_id, user_id
			FROM likes
			WHERE user_id = $1
		) ul ON p.id = ul.post_id
		ORDER BY p.created_at DESC, p.id DESC
	`, viewerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	views := make([]post.View, 0)
	for rows.Next() {
		var (
			v              post.View
			imageURL       sql.NullString
			profilePicture sql.NullString
		)
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Content, &imageURL, &v.CreatedAt,
			&v.Author.ID, &v.Author.Name, &v.Author.Bio, &profilePicture,
			&v.LikesCount, &v.CommentsCount, &v.ViewerLiked,
		); err != nil {
			return nil, mapError(err)
		}
		v.ImageURL = imageURL.String
		v.Author.ProfilePicture = profilePicture.String
		views = append(views, v)
	}
	return views, rows.Err()
}

// ToggleLike inserts or removes the (post, user) like row inside one
// transaction. The unique constraint is the authority: a concurrent insert of
// the same pair resolves to a no-op removal on the losing side.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, mapError(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO likes (id, post_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, uuid.NewString(), postID, userID, time.Now().UTC())
	if err != nil {
		return false, mapError(err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	liked := inserted == 1
	if !liked {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM likes WHERE post_id = $1 AND user_id = $2
		`, postID, userID); err != nil {
			return false, mapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, mapError(err)
	}
	return liked, nil
}

func (s *Store) CountLikes(ctx context.Context, postID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM likes WHERE post_id = $1
	`, postID).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
