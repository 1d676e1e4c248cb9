package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redreserve/redreserve-backend/api/responses"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/redis"
)

const maxPeekBody = 64 << 10

// AuthRateLimitPolicy throttles one unauthenticated surface by client IP and by
// the hashed email found in the JSON body. A zero limit disables that counter.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// throttle is one fixed-window check against the shared limiter.
type throttle struct {
	limiter redis.RateLimiter
	logg    *logger.Logger
	window  time.Duration
	event   string
	message string
}

// allow reports whether the request may proceed, writing the error envelope when it may not.
func (t throttle) allow(ctx context.Context, w http.ResponseWriter, scope string, limit int) bool {
	allowed, count, err := t.limiter.FixedWindowAllow(ctx, scope, int64(limit), t.window)
	if err != nil {
		responses.WriteError(ctx, t.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if allowed {
		return true
	}
	if t.logg != nil {
		t.logg.Warn(t.logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(t.window.Seconds()),
		}), t.event)
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(t.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, t.message))
	return false
}

// AuthRateLimit applies policy to login and registration style endpoints.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter redis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}
		t := throttle{
			limiter: limiter,
			logg:    logg,
			window:  policy.window,
			event:   "auth.rate_limit.blocked",
			message: "Too many attempts. Please try again later.",
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); policy.ipLimit > 0 && ip != "" {
				if !t.allow(ctx, w, policy.name+":ip:"+ip, policy.ipLimit) {
					return
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
					return
				}
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

				if email := emailFromBody(body); email != "" {
					if !t.allow(ctx, w, policy.name+":email:"+hashValue(email), policy.emailLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AssistantRateLimit throttles AI endpoints per caller, falling back to the client IP.
func AssistantRateLimit(window time.Duration, limit int, limiter redis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if window <= 0 || limit <= 0 || limiter == nil {
			return next
		}
		t := throttle{
			limiter: limiter,
			logg:    logg,
			window:  window,
			event:   "assistant.rate_limit.blocked",
			message: "Too many assistant requests. Please retry shortly.",
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := "assistant:ip:" + clientIP(r)
			if caller := CallerFromContext(r.Context()); caller.Authenticated() {
				scope = "assistant:user:" + caller.UserID.String()
			}
			if t.allow(r.Context(), w, scope, limit) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
