package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

// CallerKind classifies who is making a request.
type CallerKind int

const (
	CallerAnonymous CallerKind = iota
	CallerUser
	CallerAdmin
)

func (k CallerKind) String() string {
	switch k {
	case CallerUser:
		return "user"
	case CallerAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Caller is the identity seen by the access gate.
type Caller struct {
	Kind   CallerKind
	UserID uuid.UUID
	Role   enums.AccountRole
}

func (c Caller) Authenticated() bool {
	return c.Kind != CallerAnonymous
}

func (c Caller) IsAdmin() bool {
	return c.Kind == CallerAdmin
}

// CallerFromContext classifies the identity placed by Auth. Unparseable identities are anonymous.
func CallerFromContext(ctx context.Context) Caller {
	id, ok := identityFromContext(ctx)
	if !ok || id.userID == uuid.Nil {
		return Caller{Kind: CallerAnonymous}
	}
	role, err := enums.ParseAccountRole(id.role)
	if err != nil {
		return Caller{Kind: CallerAnonymous}
	}
	kind := CallerUser
	if role == enums.AccountRoleAdmin {
		kind = CallerAdmin
	}
	return Caller{Kind: kind, UserID: id.userID, Role: role}
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CallerFromContext(r.Context()).Authenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized request"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			switch {
			case !caller.Authenticated():
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized request"))
				return
			case !caller.IsAdmin():
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Forbidden Access"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
