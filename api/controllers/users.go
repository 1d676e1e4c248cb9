package controllers

import (
	"context"
	"net/http"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

type userLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// AdminUserList returns every account without credential material.
func AdminUserList(repo userLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list users"))
			return
		}

		responses.WriteSuccess(w, "All users", users.FromModels(rows))
	}
}
