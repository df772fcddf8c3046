package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Desoltijfl/checador-demo/internal/auth"
	"github.com/Desoltijfl/checador-demo/internal/model"
	"github.com/Desoltijfl/checador-demo/internal/repository"
)

const (
	seedEmail    = "demo@empresa.test"
	seedPassword = "demo1234"
	seedName     = "Usuario Demo"

	eventTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type checkInRequest struct {
	Type     string  `json:"type"`
	Device   string  `json:"device"`
	Location *string `json:"location"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type eventResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Device    string  `json:"device"`
	Location  *string `json:"location"`
}

type seedResponse struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Note     string `json:"note,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.UserRegistered()
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, repository.ErrInvalidInput.Error())
		return
	}
	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			s.metrics.LoginAttempt(false)
		}
		s.writeDomainError(w, r, err)
		return
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.LoginAttempt(true)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errUnknownUser)
		return
	}
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind := model.CheckKind(req.Type)
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, repository.ErrInvalidKind.Error())
		return
	}
	event, err := s.events.Record(r.Context(), user.ID, kind, model.ResolveDevice(req.Device, r.UserAgent()), req.Location)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.CheckRecorded(string(event.Type))
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errUnknownUser)
		return
	}
	query := r.URL.Query()
	from := parseTimeBound(query.Get("from"))
	to := parseTimeBound(query.Get("to"))

	events := s.events.Query(r.Context(), user.ID, from, to)
	resp := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	_, err := s.users.Register(r.Context(), seedEmail, seedPassword, seedName)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		writeJSON(w, http.StatusOK, seedResponse{Email: seedEmail, Note: "already exists"})
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.UserRegistered()
	writeJSON(w, http.StatusOK, seedResponse{Email: seedEmail, Password: seedPassword})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidInput), errors.Is(err, repository.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, errUnknownUser)
	default:
		s.log.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isExpired(err error) bool {
	return errors.Is(err, auth.ErrExpiredToken)
}

var timeBoundLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimeBound returns nil for an empty or unparseable value. Inputs without a zone are UTC.
func parseTimeBound(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timeBoundLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func toUserResponse(user model.User) userResponse {
	return userResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}

func toEventResponse(event model.CheckEvent) eventResponse {
	return eventResponse{
		ID:        event.ID,
		UserID:    event.UserID,
		Type:      string(event.Type),
		Timestamp: event.Timestamp.UTC().Format(eventTimeLayout),
		Device:    event.Device,
		Location:  event.Location,
	}
}
