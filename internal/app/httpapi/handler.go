// Package httpapi exposes the REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	app "github.com/pulse-social/pulse/internal/app"
	"github.com/pulse-social/pulse/internal/app/domain/user"
	"github.com/pulse-social/pulse/internal/app/metrics"
	"github.com/pulse-social/pulse/internal/app/services/accounts"
	"github.com/pulse-social/pulse/internal/app/services/feed"
	"github.com/pulse-social/pulse/internal/app/storage"
	"github.com/pulse-social/pulse/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app            *app.Application
	log            *logger.Logger
	requestTimeout time.Duration
}

// Config tunes handler behaviour.
type Config struct {
	// RequestTimeout bounds store work per request. Zero disables it.
	RequestTimeout time.Duration
	// AuthRateLimit is the per-client request rate for the auth endpoints,
	// in requests per second. Zero disables rate limiting.
	AuthRateLimit int
	// AuthRateBurst is the burst allowance for AuthRateLimit.
	AuthRateBurst int
}

// NewHandler returns a router exposing the REST API.
func NewHandler(application *app.Application, cfg Config, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log, requestTimeout: cfg.RequestTimeout}

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(metrics.InstrumentHandler)
	r.Use(h.timeoutMiddleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	public := r.NewRoute().Subrouter()
	if cfg.AuthRateLimit > 0 {
		limiter := newRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, log)
		public.Use(limiter.middleware)
	}
	public.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(h.requireAuth)
	protected.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", h.updateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	protected.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{postID}/like", h.toggleLike).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{postID}/comments", h.addComment).Methods(http.MethodPost)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}

// --- Auth endpoints ----------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.Name == "" {
		jsonError(w, "All fields are required", http.StatusBadRequest)
		return
	}

	u, err := h.app.Accounts.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			jsonError(w, "User already exists", http.StatusBadRequest)
		case errors.Is(err, accounts.ErrValidation):
			jsonError(w, "All fields are required", http.StatusBadRequest)
		default:
			h.serverError(w, r, err)
		}
		return
	}

	token, err := h.app.Tokens.Issue(u.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  u,
		"token": token,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		jsonError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	u, err := h.app.Accounts.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			jsonError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.serverError(w, r, err)
		return
	}

	token, err := h.app.Tokens.Issue(u.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  u,
		"token": token,
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}

	var payload user.ProfileUpdate
	if err := decodeJSON(r.Body, &payload); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.app.Accounts.UpdateProfile(r.Context(), u.ID, payload)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			jsonError(w, "User not found", http.StatusForbidden)
		case errors.Is(err, accounts.ErrValidation):
			jsonError(w, "Name cannot be empty", http.StatusBadRequest)
		default:
			h.serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

// --- Post endpoints ----------------------------------------------------------

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}

	views, err := h.app.Feed.List(r.Context(), u.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Content == "" {
		jsonError(w, "Content is required", http.StatusBadRequest)
		return
	}

	p, err := h.app.Feed.CreatePost(r.Context(), u.ID, payload.Content, payload.ImageURL)
	if err != nil {
		if errors.Is(err, feed.ErrValidation) {
			jsonError(w, "Content is required", http.StatusBadRequest)
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}
	postID := mux.Vars(r)["postID"]

	liked, err := h.app.Feed.ToggleLike(r.Context(), u.ID, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, "Post not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *handler) addComment(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		jsonError(w, "Access token required", http.StatusUnauthorized)
		return
	}
	postID := mux.Vars(r)["postID"]

	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Content == "" {
		jsonError(w, "Content is required", http.StatusBadRequest)
		return
	}

	c, err := h.app.Feed.AddComment(r.Context(), u.ID, postID, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			jsonError(w, "Post not found", http.StatusNotFound)
		case errors.Is(err, feed.ErrValidation):
			jsonError(w, "Content is required", http.StatusBadRequest)
		default:
			h.serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// --- Helpers -----------------------------------------------------------------

// serverError hides the cause from the client and logs it.
func (h *handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).
		WithField("path", r.URL.Path).
		WithField("method", r.Method).
		Error("request failed")
	jsonError(w, "Internal server error", http.StatusInternalServerError)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
