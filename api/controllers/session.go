package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redreserve/redreserve-backend/api/middleware"
	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	pkgAuth "github.com/redreserve/redreserve-backend/pkg/auth"
	"github.com/redreserve/redreserve-backend/pkg/auth/session"
	"github.com/redreserve/redreserve-backend/pkg/config"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

type sessionTokenRotator interface {
	Rotate(ctx context.Context, refreshToken string) (session.Session, string, error)
	Revoke(ctx context.Context, accessID, refreshToken string) error
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthLogout revokes the session behind the presented access token and clears the cookies.
func AuthLogout(manager sessionTokenRotator, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized request"))
			return
		}

		if err := manager.Revoke(r.Context(), accessID, refreshTokenFromCookie(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
			return
		}

		clearSessionCookies(w, cookies)
		responses.WriteSuccess(w, "User logged out successfully", map[string]any{})
	}
}

// AuthRefresh rotates the refresh token and issues a new access token.
func AuthRefresh(manager sessionTokenRotator, cfg config.JWTConfig, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		provided := strings.TrimSpace(refreshTokenFromCookie(r))
		if provided == "" && r.ContentLength != 0 {
			var body refreshRequest
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			provided = strings.TrimSpace(body.RefreshToken)
		}
		if provided == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unauthorized request"))
			return
		}

		sess, newRefreshToken, err := manager.Rotate(r.Context(), provided)
		if err != nil {
			if errors.Is(err, session.ErrInvalidRefreshToken) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid refresh token"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session"))
			return
		}

		payload := pkgAuth.AccessTokenPayload{
			UserID: sess.UserID,
			Role:   sess.Role,
			JTI:    sess.AccessID,
		}

		now := time.Now().UTC()
		accessToken, err := pkgAuth.MintAccessToken(cfg, now, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt"))
			return
		}

		setSessionCookies(w, cookies, accessToken, newRefreshToken)
		responses.WriteSuccess(w, "Access token refreshed successfully", refreshResponse{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
		})
	}
}
