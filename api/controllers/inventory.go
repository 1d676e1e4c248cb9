package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	"github.com/redreserve/redreserve-backend/internal/inventory"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

const (
	defaultAdjustmentLimit = 50
	maxAdjustmentLimit     = 200
)

func inventoryServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable")
}

// InventoryList returns every ledger record ordered by blood group.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, inventoryServiceUnavailable())
			return
		}

		records, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Inventory list", records)
	}
}

// InventorySet overwrites the unit count of a blood group, creating the record if absent.
// On PUT /inventory/{id} the path segment stands in for a missing bloodGroup.
func InventorySet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, inventoryServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventory.SetRequest
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.BloodGroup == "" {
			body.BloodGroup = pathBloodGroup(r)
		}
		if err := validators.ValidateStruct(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Set(r.Context(), caller.UserID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Inventory updated", record)
	}
}

func AdminInventoryAdjustments(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, inventoryServiceUnavailable())
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultAdjustmentLimit, 1, maxAdjustmentLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := validators.QueryString(r, "bloodGroup")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListAdjustments(r.Context(), group, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Inventory adjustments", rows)
	}
}

func pathBloodGroup(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}
