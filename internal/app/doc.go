// Package app composes the domain services into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and service wiring
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Accounts and profile projections
//	│   └── post/           # Posts, likes, comments, feed views
//	├── storage/            # Store interfaces and implementations
//	│   ├── interfaces.go   # UserStore, PostStore, FeedStore
//	│   ├── memory/         # In-memory implementation for tests and dev
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic (accounts, feed)
//	├── httpapi/            # HTTP handlers, routing, and middleware
//	├── auth/               # Token issuance and password hashing
//	├── metrics/            # Prometheus collectors
//	└── runtime/            # Config loading and server lifecycle
//
// Domain models carry no business logic; services own validation and
// coordination; httpapi owns request and response shapes. Storage
// implementations satisfy the interfaces in storage/interfaces.go and are
// interchangeable.
package app
