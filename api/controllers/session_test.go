package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/api/middleware"
	"github.com/redreserve/redreserve-backend/pkg/auth"
	"github.com/redreserve/redreserve-backend/pkg/auth/session"
	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

type stubSessionTokenManager struct {
	lastRevokedID      string
	lastRevokedRefresh string
	lastRotated        string
	rotateSession      session.Session
	rotateToken        string
	rotateErr          error
	revokeErr          error
}

func (s *stubSessionTokenManager) Rotate(ctx context.Context, refreshToken string) (session.Session, string, error) {
	s.lastRotated = refreshToken
	return s.rotateSession, s.rotateToken, s.rotateErr
}

func (s *stubSessionTokenManager) Revoke(ctx context.Context, accessID, refreshToken string) error {
	s.lastRevokedID = accessID
	s.lastRevokedRefresh = refreshToken
	return s.revokeErr
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "redreserve", ExpirationMinutes: 10}
}

func TestAuthLogoutRevokesAndClearsCookies(t *testing.T) {
	manager := &stubSessionTokenManager{}
	handler := AuthLogout(manager, testCookieOptions(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-1"})
	req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.New(), enums.AccountRoleUser, "access-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRevokedID != "access-1" || manager.lastRevokedRefresh != "refresh-1" {
		t.Fatalf("unexpected revoke args %+v", manager)
	}
	for _, name := range []string{"accessToken", RefreshTokenCookie} {
		c, ok := cookieValue(rec, name)
		if !ok || c.MaxAge >= 0 || c.Value != "" {
			t.Fatalf("expected %s cleared, got %+v", name, c)
		}
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "User logged out successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestAuthLogoutWithoutIdentity(t *testing.T) {
	manager := &stubSessionTokenManager{}
	handler := AuthLogout(manager, testCookieOptions(), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if manager.lastRevokedID != "" {
		t.Fatalf("expected no revoke")
	}
}

func TestAuthRefreshFromBody(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	manager := &stubSessionTokenManager{
		rotateSession: session.Session{AccessID: "new-jti", UserID: userID, Role: enums.AccountRoleUser},
		rotateToken:   "new-refresh",
	}
	handler := AuthRefresh(manager, cfg, testCookieOptions(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", bytes.NewBufferString(`{"refreshToken":"old-refresh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if manager.lastRotated != "old-refresh" {
		t.Fatalf("expected rotate of old-refresh got %q", manager.lastRotated)
	}

	var envelope struct {
		Data refreshResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "new-refresh" {
		t.Fatalf("expected refresh token new-refresh got %s", envelope.Data.RefreshToken)
	}
	claims, err := auth.ParseAccessToken(cfg, envelope.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.ID != "new-jti" || claims.UserID != userID || claims.Role != enums.AccountRoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if c, ok := cookieValue(rec, "accessToken"); !ok || c.Value != envelope.Data.AccessToken {
		t.Fatalf("expected access cookie to match body token")
	}
}

func TestAuthRefreshPrefersCookie(t *testing.T) {
	manager := &stubSessionTokenManager{
		rotateSession: session.Session{AccessID: "jti", UserID: uuid.New(), Role: enums.AccountRoleAdmin},
		rotateToken:   "next",
	}
	handler := AuthRefresh(manager, testJWTConfig(), testCookieOptions(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-refresh"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRotated != "cookie-refresh" {
		t.Fatalf("expected cookie token rotated got %q", manager.lastRotated)
	}
}

func TestAuthRefreshMissingToken(t *testing.T) {
	handler := AuthRefresh(&stubSessionTokenManager{}, testJWTConfig(), testCookieOptions(), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthRefreshInvalidToken(t *testing.T) {
	manager := &stubSessionTokenManager{rotateErr: session.ErrInvalidRefreshToken}
	handler := AuthRefresh(manager, testJWTConfig(), testCookieOptions(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", bytes.NewBufferString(`{"refreshToken":"stale"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "Invalid refresh token" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}
