package controllers

import (
	"context"
	"net/http"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	"github.com/redreserve/redreserve-backend/internal/auth"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

type loginFunc func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)

// AuthLogin signs in any account and sets the session cookies.
func AuthLogin(svc auth.Service, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return loginHandler(nil, "", cookies, logg)
	}
	return loginHandler(svc.Login, "User logged in successfully", cookies, logg)
}

// AdminAuthLogin signs in admin accounts only.
func AdminAuthLogin(svc auth.Service, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return loginHandler(nil, "", cookies, logg)
	}
	return loginHandler(svc.AdminLogin, "Admin login successful", cookies, logg)
}

func loginHandler(login loginFunc, message string, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if login == nil {
			responses.WriteError(r.Context(), logg, w, authServiceUnavailable())
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cookies, result.AccessToken, result.RefreshToken)
		responses.WriteSuccess(w, message, result)
	}
}

func authServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
}
