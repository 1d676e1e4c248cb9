package controllers

import (
	"net/http"

	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/api/validators"
	"github.com/redreserve/redreserve-backend/internal/assistant"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

func assistantServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "assistant service unavailable")
}

// AssistantAsk answers a blood-donation question for the caller.
func AssistantAsk(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, assistantServiceUnavailable())
			return
		}

		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assistant.AskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := caller.UserID
		answer, err := svc.Ask(r.Context(), &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "AI response generated successfully", answer)
	}
}

func AssistantBloodRequestAutofill(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, assistantServiceUnavailable())
			return
		}

		var body assistant.AutofillRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.AutofillBloodRequest(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Blood request draft generated", draft)
	}
}

func AssistantDonationAutofill(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, assistantServiceUnavailable())
			return
		}

		var body assistant.AutofillRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.AutofillDonation(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Donation draft generated", draft)
	}
}
