// Package accounts implements registration, credential verification, and
// profile management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulse-social/pulse/internal/app/auth"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/metrics"
	"github.com/pulse-social/pulse/internal/app/storage"
	"github.com/pulse-social/pulse/pkg/logger"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// The two cases are indistinguishable to callers on purpose.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("user already exists")

// ErrValidation marks rejected caller input. Handlers translate it to a 400;
// anything else is an internal failure.
var ErrValidation = errors.New("invalid input")

// Service manages user records and credentials.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs an accounts service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Register hashes the password and persists a new user. The store's email
// uniqueness constraint decides conflicts; a losing concurrent registration
// surfaces as ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password, name string) (user.User, error) {
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(name) == "" {
		return user.User{}, fmt.Errorf("email, password, and name are required: %w", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordRegistration()
	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Login verifies credentials. Unknown email and wrong password collapse into
// the same ErrInvalidCredentials outcome.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// UpdateProfile applies a partial profile mutation. A nil field keeps the
// stored value; a non-nil empty string clears the field.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return user.User{}, fmt.Errorf("name cannot be empty: %w", ErrValidation)
		}
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Location != nil {
		u.Location = *update.Location
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	s.log.WithField("user_id", userID).Info("profile updated")
	return updated, nil
}
