package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Desoltijfl/checador-demo/internal/config"
	"github.com/Desoltijfl/checador-demo/internal/logging"
	"github.com/Desoltijfl/checador-demo/internal/metrics"
	"github.com/Desoltijfl/checador-demo/internal/model"
	"github.com/Desoltijfl/checador-demo/web"
)

// Credentials is the credential store the handlers and the auth gate depend on.
type Credentials interface {
	Register(ctx context.Context, email, password, name string) (model.User, error)
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, bool)
}

// EventLog is the check event store.
type EventLog interface {
	Record(ctx context.Context, userID int64, kind model.CheckKind, device string, location *string) (model.CheckEvent, error)
	Query(ctx context.Context, userID int64, from, to *time.Time) []model.CheckEvent
}

// Tokens issues and verifies session tokens.
type Tokens interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}

type Server struct {
	cfg     config.Config
	users   Credentials
	events  EventLog
	tokens  Tokens
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewServer(cfg config.Config, users Credentials, events EventLog, tokens Tokens, logger *slog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:     cfg,
		users:   users,
		events:  events,
		tokens:  tokens,
		log:     logger,
		metrics: m,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, s.requestIDMiddleware, s.accessLogMiddleware, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/", web.IndexHandler())
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/api/checkin", s.handleCheckIn)
	r.With(s.authMiddleware).Get("/api/checks", s.handleListChecks)

	if s.cfg.SeedEnabled {
		r.Get("/seed", s.handleSeed)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Auth

type userKey struct{}

const (
	errMissingAuth   = "Missing Authorization header"
	errMalformedAuth = "Malformed Authorization header"
	errInvalidToken  = "Invalid token"
	errExpiredToken  = "Token expired"
	errUnknownUser   = "User not found"
)

// authMiddleware admits a request only with "Authorization: Bearer <token>" where the
// token verifies and still maps to a known user. That user is stored in the context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, errMissingAuth)
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			writeError(w, http.StatusUnauthorized, errMalformedAuth)
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			msg := errInvalidToken
			if isExpired(err) {
				msg = errExpiredToken
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		user, ok := s.users.FindByID(r.Context(), userID)
		if !ok {
			writeError(w, http.StatusUnauthorized, errUnknownUser)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey{}).(model.User)
	return user, ok
}

// Utilities

// bearerToken accepts exactly two space-separated parts with the literal "Bearer" scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
