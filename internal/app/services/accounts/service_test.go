package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/pulse-social/pulse/internal/app/auth"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/storage/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice@x.com", "secret", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("server-assigned fields missing: %+v", created)
	}
	if created.PasswordHash == "secret" || created.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
	if !auth.CheckPassword(created.PasswordHash, "secret") {
		t.Fatalf("stored hash does not verify")
	}

	u, err := svc.Login(ctx, "alice@x.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != created.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@x.com", "secret", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice@x.com", "other", "Imposter"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	for _, tc := range []struct {
		email, password, name string
	}{
		{"", "secret", "Alice"},
		{"alice@x.com", "", "Alice"},
		{"alice@x.com", "secret", ""},
		{"   ", "secret", "Alice"},
		{"alice@x.com", "secret", "   "},
	} {
		if _, err := svc.Register(ctx, tc.email, tc.password, tc.name); !errors.Is(err, ErrValidation) {
			t.Fatalf("Register(%+v) = %v, want ErrValidation", tc, err)
		}
	}
}

func TestLoginUniformFailure(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@x.com", "secret", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown email and wrong password must be the same error value.
	_, unknownErr := svc.Login(ctx, "nobody@x.com", "secret")
	_, wrongErr := svc.Login(ctx, "alice@x.com", "wrong")
	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected uniform ErrInvalidCredentials, got %v and %v", unknownErr, wrongErr)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice@x.com", "secret", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	bio := "hello"
	updated, err := svc.UpdateProfile(ctx, created.ID, user.ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != "hello" || updated.Name != "Alice" {
		t.Fatalf("partial update touched the wrong fields: %+v", updated)
	}

	// An explicit empty string clears the field; an absent field keeps it.
	empty := ""
	location := "Berlin"
	updated, err = svc.UpdateProfile(ctx, created.ID, user.ProfileUpdate{Bio: &empty, Location: &location})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != "" || updated.Location != "Berlin" || updated.Name != "Alice" {
		t.Fatalf("explicit empty string not honoured: %+v", updated)
	}

	if _, err := svc.UpdateProfile(ctx, created.ID, user.ProfileUpdate{Name: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name: got %v, want ErrValidation", err)
	}
}
