package controllers

import (
	"net/http"
	"time"

	"github.com/redreserve/redreserve-backend/api/middleware"
	"github.com/redreserve/redreserve-backend/pkg/config"
)

const RefreshTokenCookie = "refreshToken"

// CookieOptions controls how the session cookies are written.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewCookieOptions derives cookie behavior from the runtime config.
func NewCookieOptions(cfg *config.Config) CookieOptions {
	if cfg == nil {
		return CookieOptions{}
	}
	return CookieOptions{
		Secure:     cfg.App.IsProd(),
		AccessTTL:  cfg.JWT.AccessTokenTTL(),
		RefreshTTL: cfg.JWT.RefreshTokenTTL(),
	}
}

func setSessionCookies(w http.ResponseWriter, opts CookieOptions, accessToken, refreshToken string) {
	http.SetCookie(w, opts.cookie(middleware.AccessTokenCookie, accessToken, opts.AccessTTL))
	if refreshToken != "" {
		http.SetCookie(w, opts.cookie(RefreshTokenCookie, refreshToken, opts.RefreshTTL))
	}
}

func clearSessionCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := opts.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (o CookieOptions) cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

func refreshTokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
