// Package app wires the domain services together.
package app

import (
	"fmt"

	"github.com/pulse-social/pulse/internal/app/auth"
	"github.com/pulse-social/pulse/internal/app/services/accounts"
	"github.com/pulse-social/pulse/internal/app/services/feed"
	"github.com/pulse-social/pulse/internal/app/storage"
	"github.com/pulse-social/pulse/internal/app/storage/memory"
	"github.com/pulse-social/pulse/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users storage.UserStore
	Posts storage.PostStore
	Feed  storage.FeedStore
}

// Application ties domain services together.
type Application struct {
	log *logger.Logger

	Accounts *accounts.Service
	Feed     *feed.Service
	Tokens   *auth.TokenIssuer
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, tokens *auth.TokenIssuer, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Feed == nil {
		stores.Feed = mem
	}

	return &Application{
		log:      log,
		Accounts: accounts.New(stores.Users, log),
		Feed:     feed.New(stores.Posts, stores.Feed, log),
		Tokens:   tokens,
	}, nil
}
