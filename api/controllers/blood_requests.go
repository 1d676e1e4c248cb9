package controllers

import (
	"net/http"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	"github.com/redreserve/redreserve-backend/internal/bloodrequests"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

func bloodRequestServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "blood request service unavailable")
}

// BloodRequestCreate files a pending request for blood units.
func BloodRequestCreate(svc bloodrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, bloodRequestServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bloodrequests.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), caller.UserID, caller.Role, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Blood request created", request)
	}
}

// BloodRequestListMine returns the requests filed by the caller.
func BloodRequestListMine(svc bloodrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, bloodRequestServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMine(r.Context(), caller.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "My blood requests", rows)
	}
}

func AdminBloodRequestList(svc bloodrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, bloodRequestServiceUnavailable())
			return
		}

		rows, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "All blood requests", rows)
	}
}

// AdminBloodRequestApprove approves a pending request and debits the ledger when stock allows.
func AdminBloodRequestApprove(svc bloodrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, bloodRequestServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Approve(r.Context(), caller.UserID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Blood request approved", result)
	}
}

func AdminBloodRequestReject(svc bloodrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, bloodRequestServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), caller.UserID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Blood request rejected", request)
	}
}
