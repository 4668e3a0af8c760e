package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pulse-social/pulse/internal/app/domain/post"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/storage"
)

func TestCreateUserEmailConflict(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Imposter"}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	u, err := store.GetUserByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.Name != "Alice" {
		t.Fatalf("second registration overwrote the first: %q", u.Name)
	}
}

func TestFeedAggregation(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Alice"})
	bob, _ := store.CreateUser(ctx, user.User{Email: "bob@x.com", Name: "Bob"})

	first, err := store.CreatePost(ctx, post.Post{UserID: alice.ID, Content: "first"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	second, err := store.CreatePost(ctx, post.Post{UserID: bob.ID, Content: "second"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := store.ToggleLike(ctx, first.ID, bob.ID); err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if _, err := store.CreateComment(ctx, post.Comment{PostID: first.ID, UserID: bob.ID, Content: "nice"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	views, err := store.ListFeed(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list feed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(views))
	}

	// Newest first, id as the stable tie-break.
	if views[0].CreatedAt.Before(views[1].CreatedAt) {
		t.Fatalf("feed not in descending creation order")
	}
	if views[0].CreatedAt.Equal(views[1].CreatedAt) && views[0].ID < views[1].ID {
		t.Fatalf("tie-break order not stable")
	}
	for _, v := range views {
		switch v.ID {
		case first.ID:
			if v.LikesCount != 1 || v.CommentsCount != 1 {
				t.Fatalf("first post aggregates: likes=%d comments=%d", v.LikesCount, v.CommentsCount)
			}
			if v.ViewerLiked {
				t.Fatalf("alice has not liked her own post")
			}
			if v.Author.Name != "Alice" {
				t.Fatalf("author fields missing: %+v", v.Author)
			}
		case second.ID:
			if v.LikesCount != 0 || v.CommentsCount != 0 || v.ViewerLiked {
				t.Fatalf("fresh post must report zero aggregates: %+v", v)
			}
		}
	}

	bobViews, err := store.ListFeed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list feed as bob: %v", err)
	}
	for _, v := range bobViews {
		if v.ID == first.ID && !v.ViewerLiked {
			t.Fatalf("bob's like not reflected in his feed")
		}
	}
}

func TestToggleLike(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Alice"})
	p, _ := store.CreatePost(ctx, post.Post{UserID: alice.ID, Content: "hi"})

	liked, err := store.ToggleLike(ctx, p.ID, alice.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle: liked=%v err=%v", liked, err)
	}
	liked, err = store.ToggleLike(ctx, p.ID, alice.ID)
	if err != nil || liked {
		t.Fatalf("second toggle: liked=%v err=%v", liked, err)
	}

	if _, err := store.ToggleLike(ctx, "nope", alice.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown post, got %v", err)
	}
}

func TestToggleLikeConcurrent(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Alice"})
	p, _ := store.CreatePost(ctx, post.Post{UserID: alice.ID, Content: "hi"})

	const toggles = 100
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ToggleLike(ctx, p.ID, alice.ID); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	// An even number of toggles must land back on zero likes, and never more
	// than one row existed for the pair.
	count, err := store.CountLikes(ctx, p.ID)
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 likes after %d toggles, got %d", toggles, count)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{Email: "alice@x.com", Name: "Alice"})
	bob, _ := store.CreateUser(ctx, user.User{Email: "bob@x.com", Name: "Bob"})

	alicePost, _ := store.CreatePost(ctx, post.Post{UserID: alice.ID, Content: "mine"})
	bobPost, _ := store.CreatePost(ctx, post.Post{UserID: bob.ID, Content: "bobs"})

	// Cross-likes and cross-comments in both directions.
	_, _ = store.ToggleLike(ctx, alicePost.ID, bob.ID)
	_, _ = store.ToggleLike(ctx, bobPost.ID, alice.ID)
	_, _ = store.CreateComment(ctx, post.Comment{PostID: alicePost.ID, UserID: bob.ID, Content: "hey"})
	_, _ = store.CreateComment(ctx, post.Comment{PostID: bobPost.ID, UserID: alice.ID, Content: "yo"})

	if err := store.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := store.GetUser(ctx, alice.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if _, err := store.GetPost(ctx, alicePost.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("alice's post survived the cascade")
	}

	views, err := store.ListFeed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list feed: %v", err)
	}
	if len(views) != 1 || views[0].ID != bobPost.ID {
		t.Fatalf("expected only bob's post to remain, got %d entries", len(views))
	}
	// Alice's like and comment on bob's post are gone too.
	if views[0].LikesCount != 0 || views[0].CommentsCount != 0 {
		t.Fatalf("cascade left orphaned aggregates: %+v", views[0])
	}
}
