package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/auth"
	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "courierdesk-test"}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, role enums.MemberRole, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), time.Hour, auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsTokenFromOtherIssuer(t *testing.T) {
	other := config.JWTConfig{Secret: "secret", Issuer: "someone-else"}
	token := mintTestToken(t, other, enums.MemberRoleAdmin, uuid.New())

	handler := Auth(testJWTConfig(), nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token := mintTestToken(t, cfg, enums.MemberRoleCourier, userID)

	var captured struct {
		user   string
		role   string
		parsed uuid.UUID
		ok     bool
	}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.parsed, captured.ok = UserUUIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if captured.role != string(enums.MemberRoleCourier) {
		t.Fatalf("expected role courier got %s", captured.role)
	}
	if !captured.ok || captured.parsed != userID {
		t.Fatalf("expected parsed user id %s got %s (ok=%v)", userID, captured.parsed, captured.ok)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.MemberRoleAdmin, nil)(okHandler())

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin", string(enums.MemberRoleAdmin), http.StatusOK},
		{"merchant", string(enums.MemberRoleMerchant), http.StatusForbidden},
		{"missing", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.role != "" {
			req = req.WithContext(WithRole(req.Context(), tt.role))
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}

func TestUserUUIDFromContextRejectsGarbage(t *testing.T) {
	if _, ok := UserUUIDFromContext(context.Background()); ok {
		t.Fatalf("expected no user on empty context")
	}
	if _, ok := UserUUIDFromContext(WithUserID(context.Background(), "not-a-uuid")); ok {
		t.Fatalf("expected malformed user id to be rejected")
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id echoed got %q", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}
