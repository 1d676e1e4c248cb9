package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

type identityKey struct{}

// identity is what Auth stores after verifying a token. Role stays a raw string so
// CallerFromContext remains the single place that classifies it.
type identity struct {
	userID   uuid.UUID
	role     string
	accessID string
}

func identityFromContext(ctx context.Context) (identity, bool) {
	if ctx == nil {
		return identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(identity)
	return id, ok
}

// AccessIDFromContext returns the jti of the verified access token.
func AccessIDFromContext(ctx context.Context) string {
	id, _ := identityFromContext(ctx)
	return id.accessID
}

// WithIdentity injects a verified identity into the context.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.AccountRole, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, role: string(role), accessID: accessID})
}
