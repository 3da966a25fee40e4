package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/auth"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/handler"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
)

const testSecret = "test-secret"

// --- Mock roster ---

type mockRoster struct {
	users []domain.User
}

func (m *mockRoster) ListUsers() []domain.User { return m.users }

func (m *mockRoster) addUser(t *testing.T, name, role, pin string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	u := domain.User{ID: uuid.New(), Name: name, Role: role, HashedPIN: string(hash)}
	m.users = append(m.users, u)
	return u
}

func authToken(t *testing.T, u domain.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, u.ID, u.Name, u.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// --- Tests ---

func TestLoginSuccess(t *testing.T) {
	roster := &mockRoster{}
	user := roster.addUser(t, "John Cashier", enum.UserRoleCashier, "3333")
	log := audit.NewLog()

	h := handler.NewAuthHandler(roster, log, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body, _ := json.Marshal(map[string]string{"pin": "3333"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID   uuid.UUID `json:"id"`
			Name string    `json:"name"`
			Role string    `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.User.ID != user.ID || resp.User.Role != enum.UserRoleCashier {
		t.Errorf("user = %+v, want %s/%s", resp.User, user.ID, enum.UserRoleCashier)
	}

	claims, err := auth.ValidateToken(testSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if claims.Name != "John Cashier" {
		t.Errorf("claims name = %s", claims.Name)
	}

	entries := log.List()
	if len(entries) != 1 || entries[0].Action != enum.ActionStaffLogin {
		t.Errorf("audit = %+v, want one STAFF_LOGIN entry", entries)
	}
}

func TestLoginWrongPIN(t *testing.T) {
	roster := &mockRoster{}
	roster.addUser(t, "John Cashier", enum.UserRoleCashier, "3333")
	log := audit.NewLog()

	h := handler.NewAuthHandler(roster, log, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body, _ := json.Marshal(map[string]string{"pin": "0000"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(log.List()) != 0 {
		t.Error("failed login must not audit STAFF_LOGIN")
	}
}

func TestLoginMissingPIN(t *testing.T) {
	h := handler.NewAuthHandler(&mockRoster{}, audit.NewLog(), testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogoutAudits(t *testing.T) {
	roster := &mockRoster{}
	user := roster.addUser(t, "Sarah Manager", enum.UserRoleManager, "2222")
	log := audit.NewLog()

	h := handler.NewAuthHandler(roster, log, testSecret)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		h.RegisterProtectedRoutes(r)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, user))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	entries := log.List()
	if len(entries) != 1 || entries[0].Action != enum.ActionStaffLogout {
		t.Errorf("audit = %+v, want one STAFF_LOGOUT entry", entries)
	}
	if entries[0].UserName != "Sarah Manager" {
		t.Errorf("audit user = %s", entries[0].UserName)
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	h := handler.NewAuthHandler(&mockRoster{}, audit.NewLog(), testSecret)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		h.RegisterProtectedRoutes(r)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
