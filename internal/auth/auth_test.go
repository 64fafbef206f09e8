package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// --- mock lookup ---

type mockIdentityLookup struct {
	users map[uuid.UUID]*Identity
}

func (m *mockIdentityLookup) LookupIdentity(ctx context.Context, id uuid.UUID) (*Identity, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUnknownSubject
	}
	return u, nil
}

func newTestManager(now time.Time) *TokenManager {
	m := NewTokenManager([]byte("test-secret"), "taskboard", time.Hour)
	m.now = func() time.Time { return now }
	return m
}

// --- TokenManager tests ---

func TestTokenManager_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(now)
	u := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	token, expiresAt, err := m.Issue(u)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), expiresAt)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	id, _ := claims.UserID()
	if id != u.ID {
		t.Errorf("expected subject %s, got %s", u.ID, id)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role admin, got %q", claims.Role)
	}
	if claims.Issuer != "taskboard" {
		t.Errorf("expected issuer taskboard, got %q", claims.Issuer)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(now)
	token, _, err := m.Issue(&model.User{ID: uuid.New(), Role: model.RoleMember})
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := m.Parse(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenManager_Invalid(t *testing.T) {
	now := time.Now()
	m := newTestManager(now)
	other := NewTokenManager([]byte("other-secret"), "taskboard", time.Hour)
	foreign, _, _ := other.Issue(&model.User{ID: uuid.New()})

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "taskboard",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong signature", foreign},
		{"bad subject", badSubject},
		{"wrong issuer", wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

// --- Context helpers tests ---

func TestIdentityContext_RoundTrip(t *testing.T) {
	id := &Identity{ID: uuid.New(), Username: "alice", Role: model.RoleMember}
	ctx := ContextWithIdentity(context.Background(), id)
	got := IdentityFromContext(ctx)
	if got == nil || got.ID != id.ID {
		t.Fatalf("expected identity %v from context, got %+v", id.ID, got)
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("expected nil from empty context, got %+v", got)
	}
}

// --- Middleware tests ---

func TestAuthenticatorRequired(t *testing.T) {
	now := time.Now()
	m := newTestManager(now)

	alice := &Identity{ID: uuid.New(), Username: "alice", Role: model.RoleMember}
	lookup := &mockIdentityLookup{users: map[uuid.UUID]*Identity{alice.ID: alice}}
	a := NewAuthenticator(m, lookup)

	var outcomes []string
	a.OnOutcome(func(o string) { outcomes = append(outcomes, o) })

	valid, _, _ := m.Issue(&model.User{ID: alice.ID, Role: alice.Role})
	deleted, _, _ := m.Issue(&model.User{ID: uuid.New(), Role: model.RoleMember})
	expiredMgr := newTestManager(now.Add(-3 * time.Hour))
	expired, _, _ := expiredMgr.Issue(&model.User{ID: alice.ID})

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			t.Error("expected identity in context inside handler")
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		authHeader  string
		wantStatus  int
		wantOutcome string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "success"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "success"},
		{"missing header", "", http.StatusUnauthorized, "missing"},
		{"wrong scheme", "Token " + valid, http.StatusUnprocessableEntity, "malformed"},
		{"bearer only", "Bearer", http.StatusUnprocessableEntity, "malformed"},
		{"undecodable", "Bearer abc.def.ghi", http.StatusUnprocessableEntity, "invalid"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "expired"},
		{"deleted subject", "Bearer " + deleted, http.StatusUnauthorized, "unknown_subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes = nil
			req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			a.Required(okHandler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if len(outcomes) != 1 || outcomes[0] != tt.wantOutcome {
				t.Errorf("expected outcome %q, got %v", tt.wantOutcome, outcomes)
			}
			if tt.wantStatus != http.StatusOK {
				assertJSONError(t, rr)
			}
		})
	}
}

func TestAuthenticatorOptional(t *testing.T) {
	m := newTestManager(time.Now())
	a := NewAuthenticator(m, &mockIdentityLookup{users: map[uuid.UUID]*Identity{}})

	var sawIdentity bool
	h := a.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawIdentity = IdentityFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rr.Code != http.StatusOK || sawIdentity {
		t.Errorf("anonymous request: status %d, identity %v", rr.Code, sawIdentity)
	}

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad token on optional route: expected 422, got %d", rr.Code)
	}
}

// --- Policy tests ---

func TestPolicy(t *testing.T) {
	admin := &Identity{ID: uuid.New(), Role: model.RoleAdmin}
	alice := &Identity{ID: uuid.New(), Role: model.RoleMember}
	bob := uuid.New()

	tests := []struct {
		name      string
		err       error
		forbidden bool
	}{
		{"self edit", CanUpdateUser(alice, alice.ID, false), false},
		{"self role change", CanUpdateUser(alice, alice.ID, true), true},
		{"edit other", CanUpdateUser(alice, bob, false), true},
		{"admin edits other role", CanUpdateUser(admin, bob, true), false},
		{"anonymous edit", CanUpdateUser(nil, bob, false), true},
		{"member delete", CanDeleteUser(alice), true},
		{"admin delete", CanDeleteUser(admin), false},
		{"anonymous delete", CanDeleteUser(nil), true},
		{"signup member", CanAssignRole(nil, model.RoleMember), false},
		{"signup admin", CanAssignRole(nil, model.RoleAdmin), true},
		{"member creates admin", CanAssignRole(alice, model.RoleAdmin), true},
		{"admin creates admin", CanAssignRole(admin, model.RoleAdmin), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrForbidden); got != tt.forbidden {
				t.Errorf("forbidden = %v, want %v (err %v)", got, tt.forbidden, tt.err)
			}
		})
	}
}

// assertJSONError checks that the response body contains the error envelope.
func assertJSONError(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()

	ct := rr.Header().Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == "" || resp.Message == "" {
		t.Errorf("expected error code and message, got %+v", resp)
	}
}
