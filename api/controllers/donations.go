package controllers

import (
	"net/http"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	"github.com/redreserve/redreserve-backend/internal/donations"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

func donationServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable")
}

// DonationCreate books a pending donation pledge for the caller.
func DonationCreate(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, donationServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body donations.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Create(r.Context(), caller.UserID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Donation appointment booked successfully", donation)
	}
}

// DonationListMine returns the caller's own pledges.
func DonationListMine(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, donationServiceUnavailable())
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

		responses.WriteSuccess(w, "My donation appointments", rows)
	}
}

func AdminDonationList(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, donationServiceUnavailable())
			return
		}

		rows, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "All donation appointments", rows)
	}
}

// AdminDonationApprove approves a pending pledge and credits the ledger.
func AdminDonationApprove(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, donationServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := validators.ParseUUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Approve(r.Context(), caller.UserID, donationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Donation approved and inventory updated", result)
	}
}

func AdminDonationReject(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, donationServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := validators.ParseUUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Reject(r.Context(), caller.UserID, donationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Donation rejected", donation)
	}
}
