package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redreserve/redreserve-backend/api/controllers"
	"github.com/redreserve/redreserve-backend/api/middleware"
	"github.com/redreserve/redreserve-backend/api/responses"
	"github.com/redreserve/redreserve-backend/internal/assistant"
	"github.com/redreserve/redreserve-backend/internal/auth"
	"github.com/redreserve/redreserve-backend/internal/bloodrequests"
	"github.com/redreserve/redreserve-backend/internal/donations"
	"github.com/redreserve/redreserve-backend/internal/inventory"
	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/auth/session"
	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, refreshToken string) (session.Session, string, error)
	Revoke(ctx context.Context, accessID, refreshToken string) error
}

type userLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// Dependencies carries everything the HTTP surface needs.
// Nil services surface as 500 envelopes on their routes.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimiter redis.RateLimiter
	Replays     redis.ReplayStore
	Sessions    sessionManager
	Metrics     http.Handler
	HTTPMetrics middleware.RequestObserver

	Auth          auth.Service
	Register      auth.RegisterService
	Users         userLister
	Inventory     inventory.Service
	Donations     donations.Service
	BloodRequests bloodrequests.Service
	Assistant     assistant.Service
}

var _ userLister = (*users.Repository)(nil)

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeMethod, "method not allowed"))
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	cookies := controllers.NewCookieOptions(cfg)
	authenticate := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotent := middleware.Idempotency(deps.Replays, cfg.Redis.IdempotencyTTL, logg)
	assistantLimit := middleware.AssistantRateLimit(cfg.Assistant.RateWindow, cfg.Assistant.RateLimit, deps.RateLimiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}, logg))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, cookies, logg))
			r.Post("/refresh-token", controllers.AuthRefresh(deps.Sessions, cfg.JWT, cookies, logg))
			r.With(authenticate, middleware.RequireAuthenticated(logg)).Post("/logout", controllers.AuthLogout(deps.Sessions, cookies, logg))
		})

		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/admin/login", controllers.AdminAuthLogin(deps.Auth, cookies, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAuthenticated(logg))

			r.Route("/donations", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.DonationCreate(deps.Donations, logg))
				r.Get("/me", controllers.DonationListMine(deps.Donations, logg))
			})

			r.Route("/blood-requests", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.BloodRequestCreate(deps.BloodRequests, logg))
				r.Get("/me", controllers.BloodRequestListMine(deps.BloodRequests, logg))
			})

			r.Route("/ai", func(r chi.Router) {
				r.Use(assistantLimit)
				r.Post("/ask-blood-assistant", controllers.AssistantAsk(deps.Assistant, logg))
				r.Post("/blood-request-autofill", controllers.AssistantBloodRequestAutofill(deps.Assistant, logg))
				r.Post("/donation-autofill", controllers.AssistantDonationAutofill(deps.Assistant, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin(logg))

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.InventoryList(deps.Inventory, logg))
				r.Put("/", controllers.InventorySet(deps.Inventory, logg))
				r.Put("/{id}", controllers.InventorySet(deps.Inventory, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Post("/logout", controllers.AuthLogout(deps.Sessions, cookies, logg))
				r.Get("/users", controllers.AdminUserList(deps.Users, logg))
				r.Get("/inventory/adjustments", controllers.AdminInventoryAdjustments(deps.Inventory, logg))

				r.Get("/donations", controllers.AdminDonationList(deps.Donations, logg))
				r.Patch("/donations/{donationId}/approve", controllers.AdminDonationApprove(deps.Donations, logg))
				r.Patch("/donations/{donationId}/reject", controllers.AdminDonationReject(deps.Donations, logg))

				r.Get("/blood-requests", controllers.AdminBloodRequestList(deps.BloodRequests, logg))
				r.Patch("/blood-requests/{requestId}/approve", controllers.AdminBloodRequestApprove(deps.BloodRequests, logg))
				r.Patch("/blood-requests/{requestId}/reject", controllers.AdminBloodRequestReject(deps.BloodRequests, logg))
			})
		})
	})

	return r
}
