package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	redisclient "github.com/redreserve/redreserve-backend/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
	RefreshSessionKey(tokenHash string) string
}

// Session is the server-side record behind a refresh token.
type Session struct {
	AccessID string            `json:"accessId"`
	UserID   uuid.UUID         `json:"userId"`
	Role     enums.AccountRole `json:"role"`
}

// Manager pairs access-token ids with opaque refresh tokens stored in Redis.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := cfg.AccessTokenTTL(); ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// TTL returns the refresh session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue opens a session for the account and returns the new access id and refresh token.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID, role enums.AccountRole) (Session, string, error) {
	if userID == uuid.Nil {
		return Session{}, "", fmt.Errorf("user id is required")
	}
	sess := Session{AccessID: NewAccessID(), UserID: userID, Role: role}
	token, err := generateRefreshToken()
	if err != nil {
		return Session{}, "", err
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, "", fmt.Errorf("encoding session: %w", err)
	}
	hash := hashToken(token)
	if err := m.store.Set(ctx, m.keyer.RefreshSessionKey(hash), string(payload), m.ttl); err != nil {
		return Session{}, "", err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(sess.AccessID), hash, m.ttl); err != nil {
		return Session{}, "", err
	}
	return sess, token, nil
}

// Rotate exchanges a refresh token for a fresh session, invalidating the old pair.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (Session, string, error) {
	current, err := m.lookup(ctx, refreshToken)
	if err != nil {
		return Session{}, "", err
	}
	next, token, err := m.Issue(ctx, current.UserID, current.Role)
	if err != nil {
		return Session{}, "", err
	}
	if err := m.store.Del(ctx, m.keyer.RefreshSessionKey(hashToken(refreshToken)), m.keyer.AccessSessionKey(current.AccessID)); err != nil {
		return Session{}, "", err
	}
	return next, token, nil
}

// Revoke removes the session identified by accessID and, when known, its refresh token.
func (m *Manager) Revoke(ctx context.Context, accessID, refreshToken string) error {
	keys := make([]string, 0, 3)
	if id := strings.TrimSpace(accessID); id != "" {
		key := m.keyer.AccessSessionKey(id)
		keys = append(keys, key)
		if hash, err := m.store.Get(ctx, key); err == nil && hash != "" {
			keys = append(keys, m.keyer.RefreshSessionKey(hash))
		}
	}
	if token := strings.TrimSpace(refreshToken); token != "" {
		if sess, err := m.lookup(ctx, token); err == nil {
			keys = append(keys, m.keyer.AccessSessionKey(sess.AccessID))
		}
		keys = append(keys, m.keyer.RefreshSessionKey(hashToken(token)))
	}
	if len(keys) == 0 {
		return fmt.Errorf("access id or refresh token is required")
	}
	return m.store.Del(ctx, keys...)
}

// HasSession reports whether the access id still maps to a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Manager) lookup(ctx context.Context, refreshToken string) (Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, ErrInvalidRefreshToken
	}
	raw, err := m.store.Get(ctx, m.keyer.RefreshSessionKey(hashToken(refreshToken)))
	if err != nil {
		return Session{}, wrapNotFound(err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.UserID == uuid.Nil {
		return Session{}, ErrInvalidRefreshToken
	}
	return sess, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
