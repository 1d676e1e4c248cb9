package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/internal/bloodrequests"
	"github.com/redreserve/redreserve-backend/internal/donations"
	"github.com/redreserve/redreserve-backend/internal/inventory"
	pkgAuth "github.com/redreserve/redreserve-backend/pkg/auth"
	"github.com/redreserve/redreserve-backend/pkg/auth/session"
	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/db"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/metrics"
	"github.com/redreserve/redreserve-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessionManager struct {
	revoked map[string]bool
}

func (s stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return !s.revoked[accessID], nil
}

func (stubSessionManager) Rotate(ctx context.Context, refreshToken string) (session.Session, string, error) {
	return session.Session{}, "", session.ErrInvalidRefreshToken
}

func (stubSessionManager) Revoke(ctx context.Context, accessID, refreshToken string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func newTestRouter(cfg *config.Config, deps Dependencies) http.Handler {
	if deps.Sessions == nil {
		deps.Sessions = stubSessionManager{}
	}
	if deps.DB == nil {
		deps.DB = stubPinger{}
	}
	if deps.Redis == nil {
		deps.Redis = stubPinger{}
	}
	return NewRouter(cfg, testLogger(), deps)
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID, role enums.AccountRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, types.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env types.Envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope for %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})

	rec, env := do(t, router, http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if env.Success || env.StatusCode != http.StatusNotFound || env.Message != "Route not found" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestCORSPreflightAllowsFrontendWithCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{FrontendURL: "http://localhost:5173/"}
	router := newTestRouter(cfg, Dependencies{})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected frontend origin to be allowed, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}

	other := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	other.Header.Set("Origin", "http://evil.example")
	other.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, other)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected origin allowed")
	}
}

func TestUserRoutesRequireAuthentication(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})

	for _, path := range []string{"/api/donations/me", "/api/blood-requests/me"} {
		rec, env := do(t, router, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
		if env.Message != "Unauthorized request" {
			t.Fatalf("%s: unexpected message %q", path, env.Message)
		}
	}
}

func TestAdminRoutesGate(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, Dependencies{})
	userToken := buildToken(t, cfg, uuid.New(), enums.AccountRoleUser)
	adminToken := buildToken(t, cfg, uuid.New(), enums.AccountRoleAdmin)
	id := uuid.NewString()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/inventory"},
		{http.MethodPut, "/api/inventory"},
		{http.MethodGet, "/api/admin/donations"},
		{http.MethodPatch, "/api/admin/donations/" + id + "/approve"},
		{http.MethodPatch, "/api/admin/donations/" + id + "/reject"},
		{http.MethodGet, "/api/admin/blood-requests"},
		{http.MethodPatch, "/api/admin/blood-requests/" + id + "/approve"},
		{http.MethodPatch, "/api/admin/blood-requests/" + id + "/reject"},
		{http.MethodGet, "/api/admin/users"},
	}
	for _, tc := range cases {
		rec, _ := do(t, router, tc.method, tc.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s anonymous: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
		rec, env := do(t, router, tc.method, tc.path, userToken, "")
		if rec.Code != http.StatusForbidden || env.Message != "Forbidden Access" {
			t.Fatalf("%s %s user: expected 403 got %d (%q)", tc.method, tc.path, rec.Code, env.Message)
		}
		// admin passes the gate and reaches the nil service
		rec, _ = do(t, router, tc.method, tc.path, adminToken, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s admin: expected handler response got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRevokedSessionRejected(t *testing.T) {
	cfg := testConfig()
	accessID := session.NewAccessID()
	router := newTestRouter(cfg, Dependencies{Sessions: stubSessionManager{revoked: map[string]bool{accessID: true}}})

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.AccountRoleUser,
		JTI:    accessID,
	})
	require.NoError(t, err)

	rec, _ := do(t, router, http.MethodGet, "/api/donations/me", token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutTokenIsBadRequest(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})
	rec, env := do(t, router, http.MethodPost, "/api/auth/refresh-token", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unauthorized request", env.Message)
}

func TestHealthReadyReportsDependencies(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{Redis: stubPinger{err: fmt.Errorf("down")}})

	rec, _ := do(t, router, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, router, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.False(t, env.Success)
}

type stack struct {
	router   http.Handler
	conn     *gorm.DB
	user     models.User
	admin    models.User
	registry *prometheus.Registry
}

func newStack(t *testing.T) stack {
	t.Helper()
	cfg := testConfig()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.DonationPledge{},
		&models.BloodRequest{},
		&models.InventoryRecord{},
		&models.InventoryAdjustment{},
	))

	user := models.User{Name: "Uma User", Email: "uma@example.com", PasswordHash: "h", Role: enums.AccountRoleUser}
	admin := models.User{Name: "Ada Admin", Email: "ada@example.com", PasswordHash: "h", Role: enums.AccountRoleAdmin}
	require.NoError(t, conn.Create(&user).Error)
	require.NoError(t, conn.Create(&admin).Error)

	client := db.NewFromConn(conn)
	registry := prometheus.NewRegistry()
	workflow := metrics.NewWorkflowMetrics(registry)

	inv, err := inventory.NewService(inventory.ServiceParams{DB: conn, Tx: client, Metrics: workflow})
	require.NoError(t, err)
	don, err := donations.NewService(donations.ServiceParams{DB: conn, Tx: client, Metrics: workflow})
	require.NoError(t, err)
	req, err := bloodrequests.NewService(bloodrequests.ServiceParams{DB: conn, Tx: client, Metrics: workflow})
	require.NoError(t, err)

	router := newTestRouter(cfg, Dependencies{
		DB:            client,
		Inventory:     inv,
		Donations:     don,
		BloodRequests: req,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
	})
	return stack{router: router, conn: conn, user: user, admin: admin, registry: registry}
}

func dataField(t *testing.T, env types.Envelope, path ...string) any {
	t.Helper()
	var cur any = env.Data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		require.True(t, ok, "expected object at %s", key)
		cur = m[key]
	}
	return cur
}

func TestRequestApprovalMovesStockEndToEnd(t *testing.T) {
	s := newStack(t)
	cfg := testConfig()
	userToken := buildToken(t, cfg, s.user.ID, s.user.Role)
	adminToken := buildToken(t, cfg, s.admin.ID, s.admin.Role)

	rec, _ := do(t, s.router, http.MethodPut, "/api/inventory", adminToken, `{"bloodGroup":"O-","unitsAvailable":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := `{"bloodGroup":"O-","unitsRequested":3,"urgency":"urgent","reason":"surgery","hospitalName":"City General","contactNumber":"555-0100"}`
	rec, env := do(t, s.router, http.MethodPost, "/api/blood-requests", userToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := dataField(t, env, "id").(string)
	require.Equal(t, s.user.ID.String(), dataField(t, env, "requesterId"))
	require.Equal(t, "pending", dataField(t, env, "status"))

	rec, env = do(t, s.router, http.MethodPatch, "/api/admin/blood-requests/"+requestID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "approved", dataField(t, env, "request", "status"))
	require.Equal(t, float64(2), dataField(t, env, "inventory", "unitsAvailable"))

	rec, env = do(t, s.router, http.MethodPatch, "/api/admin/blood-requests/"+requestID+"/approve", adminToken, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Request already processed", env.Message)

	rec, env = do(t, s.router, http.MethodGet, "/api/inventory", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	require.Equal(t, float64(2), rows[0].(map[string]any)["unitsAvailable"])

	rec, env = do(t, s.router, http.MethodGet, "/api/blood-requests/me", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data.([]any), 1)

	metricsRec, _ := do(t, s.router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.Contains(t, metricsRec.Body.String(), "approval_decisions_total")
	require.Contains(t, metricsRec.Body.String(), `http_requests_total{method="POST",route=`)
}

func TestDonationApprovalCreditsStockEndToEnd(t *testing.T) {
	s := newStack(t)
	cfg := testConfig()
	userToken := buildToken(t, cfg, s.user.ID, s.user.Role)
	adminToken := buildToken(t, cfg, s.admin.ID, s.admin.Role)

	rec, env := do(t, s.router, http.MethodPost, "/api/donations", userToken, `{"bloodGroup":"A+","appointmentDate":"2026-11-20"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	donationID := dataField(t, env, "id").(string)

	rec, env = do(t, s.router, http.MethodPatch, "/api/admin/donations/"+donationID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Donation approved and inventory updated", env.Message)
	require.Equal(t, float64(1), dataField(t, env, "inventory", "unitsAvailable"))

	rec, env = do(t, s.router, http.MethodGet, "/api/admin/donations", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	donor := rows[0].(map[string]any)["donor"].(map[string]any)
	require.Equal(t, "uma@example.com", donor["email"])

	rec, env = do(t, s.router, http.MethodGet, "/api/admin/inventory/adjustments?bloodGroup=A%2B", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	journal := env.Data.([]any)
	require.Len(t, journal, 1)
	require.Equal(t, "donation_approved", journal[0].(map[string]any)["kind"])
}

func TestInsufficientStockLeavesRequestPending(t *testing.T) {
	s := newStack(t)
	cfg := testConfig()
	userToken := buildToken(t, cfg, s.user.ID, s.user.Role)
	adminToken := buildToken(t, cfg, s.admin.ID, s.admin.Role)

	rec, _ := do(t, s.router, http.MethodPut, "/api/inventory/B%2B", adminToken, `{"units":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := `{"bloodGroup":"B+","unitsRequested":4,"reason":"trauma","hospitalName":"North","contactNumber":"555-0111"}`
	rec, env := do(t, s.router, http.MethodPost, "/api/blood-requests", userToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := dataField(t, env, "id").(string)

	rec, env = do(t, s.router, http.MethodPatch, "/api/admin/blood-requests/"+requestID+"/approve", adminToken, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Insufficient stock", env.Message)

	var stored models.BloodRequest
	require.NoError(t, s.conn.First(&stored, "id = ?", requestID).Error)
	require.Equal(t, enums.ApprovalStatusPending, stored.Status)
}
