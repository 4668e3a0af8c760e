package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	app "github.com/pulse-social/pulse/internal/app"
	"github.com/pulse-social/pulse/internal/app/auth"
)

func TestRateLimiterThrottles(t *testing.T) {
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	application, err := app.New(app.Stores{}, tokens, nil)
	if err != nil {
		t.Fatalf("application: %v", err)
	}
	srv := httptest.NewServer(NewHandler(application, Config{
		AuthRateLimit: 1,
		AuthRateBurst: 2,
	}, nil))
	t.Cleanup(srv.Close)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, body := doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "wrong",
		})
		statuses = append(statuses, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests && body["error"] != "Too many requests" {
			t.Fatalf("throttled body = %v", body)
		}
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("statuses = %v, want third call throttled", statuses)
	}

	// Health stays reachable while auth is throttled.
	resp, _ := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestLimiterKeyedByClient(t *testing.T) {
	rl := newRateLimiter(rate.Limit(1), 1, nil)
	if !rl.limiterFor("10.0.0.1").Allow() {
		t.Fatal("first request for client should pass")
	}
	if rl.limiterFor("10.0.0.1").Allow() {
		t.Fatal("second request for same client should be throttled")
	}
	if !rl.limiterFor("10.0.0.2").Allow() {
		t.Fatal("other clients are unaffected")
	}
}
