package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/auth"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
)

// UserRoster defines the roster lookup needed by auth handlers.
// Satisfied by *store.Store; narrow interface for testability.
type UserRoster interface {
	ListUsers() []domain.User
}

// AuthHandler handles PIN authentication endpoints.
type AuthHandler struct {
	roster    UserRoster
	audit     *audit.Log
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(roster UserRoster, auditLog *audit.Log, jwtSecret string) *AuthHandler {
	return &AuthHandler{roster: roster, audit: auditLog, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// RegisterProtectedRoutes registers auth endpoints that need a valid token.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
}

// --- Request / Response types ---

type loginRequest struct {
	Pin string `json:"pin"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// --- Handlers ---

// Login authenticates a staff member by PIN alone. PINs are unique across
// the roster, so the scan doubles as the identity lookup.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin is required"})
		return
	}

	var user *domain.User
	for _, u := range h.roster.ListUsers() {
		if bcrypt.CompareHashAndPassword([]byte(u.HashedPIN), []byte(req.Pin)) == nil {
			uc := u
			user = &uc
			break
		}
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Name, user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.audit.Append(user.Actor(), enum.ActionStaffLogin, user.Name+" logged in", enum.SeverityLow)

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		User:        userResponse{ID: user.ID, Name: user.Name, Role: user.Role},
	})
}

// Logout only leaves an audit trail; tokens expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	h.audit.Append(actor, enum.ActionStaffLogout, actor.Name+" logged out", enum.SeverityLow)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeServiceError maps domain errors onto HTTP statuses. Unknown errors
// are treated as internal.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrModifierNotFound),
		errors.Is(err, service.ErrCatalogNotFound),
		errors.Is(err, service.ErrPendingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrOrderLocked),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotPaid):
		status = http.StatusConflict
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrInvalidStation),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrNameRequired):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidManagerPIN):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
