package controllers

import (
	"net/http"

	"github.com/redreserve/redreserve-backend/api/middleware"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

// requireCaller resolves the verified identity; owner ids never come from the payload.
func requireCaller(r *http.Request) (middleware.Caller, error) {
	caller := middleware.CallerFromContext(r.Context())
	if !caller.Authenticated() {
		return caller, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized request")
	}
	return caller, nil
}
