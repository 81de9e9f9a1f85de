package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/internal/auth"
	"github.com/jobtracker/jobtracker-backend/internal/users"
	pkgAuth "github.com/jobtracker/jobtracker-backend/pkg/auth"
	"github.com/jobtracker/jobtracker-backend/pkg/config"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
	"github.com/jobtracker/jobtracker-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return accessID != "revoked", nil
}

type stubAuthService struct {
	refreshedFor string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (s *stubAuthService) Refresh(ctx context.Context, userID uuid.UUID, accessID, refreshToken string) (*auth.TokenPair, error) {
	s.refreshedFor = accessID
	return &auth.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.ProfileDTO, error) {
	return &users.ProfileDTO{ID: userID}, nil
}

type stubApplications struct {
	mu      sync.Mutex
	created int
	listFor uuid.UUID
}

func (s *stubApplications) Create(ctx context.Context, ownerID uuid.UUID, input applications.CreateInput) (*applications.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return &applications.Application{ID: uuid.New(), UserID: ownerID, Company: input.Company, Position: input.Position}, nil
}

func (s *stubApplications) Update(ctx context.Context, ownerID, id uuid.UUID, input applications.UpdateInput) (*applications.Application, error) {
	return &applications.Application{ID: id, UserID: ownerID}, nil
}

func (s *stubApplications) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return nil
}

func (s *stubApplications) Get(ctx context.Context, ownerID, id uuid.UUID) (*applications.Application, error) {
	return &applications.Application{ID: id, UserID: ownerID}, nil
}

func (s *stubApplications) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]applications.Application, error) {
	s.mu.Lock()
	s.listFor = ownerID
	s.mu.Unlock()
	return []applications.Application{}, nil
}

func (s *stubApplications) Subscribe(ctx context.Context, ownerID uuid.UUID) (*applications.Subscription, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubApplications) Summary(ctx context.Context, ownerID uuid.UUID) (applications.Summary, error) {
	return applications.Summary{}, nil
}

// memoryStore is an in-process stand-in for the redis helpers.
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (m *memoryStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryStore) RateLimitKey(scope string) string {
	return "rate_limit:" + scope
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", CORSOrigins: "*"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginIPLimit:    2,
			LoginEmailLimit: 10,
		},
	}
}

type testRouter struct {
	handler http.Handler
	auth    *stubAuthService
	apps    *stubApplications
}

func newTestRouter(t *testing.T) testRouter {
	t.Helper()
	reg := prometheus.NewRegistry()
	tr := testRouter{auth: &stubAuthService{}, apps: &stubApplications{}}
	tr.handler = NewRouter(Params{
		Config:       testConfig(),
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:           stubPinger{},
		Redis:        stubPinger{},
		Store:        newMemoryStore(),
		Sessions:     stubSessions{},
		Auth:         tr.auth,
		Applications: tr.apps,
		HTTPMetrics:  metrics.NewHTTPMetrics(reg),
		Gatherer:     reg,
	})
	return tr
}

func buildToken(t *testing.T, userID uuid.UUID, accessID string, now time.Time) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, now, pkgAuth.AccessTokenPayload{UserID: userID, AccessID: accessID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	tr := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if rec := serve(tr.handler, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestMetricsRouteExportsHTTPMetrics(t *testing.T) {
	tr := newTestRouter(t)
	serve(tr.handler, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := serve(tr.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected route label in metrics output")
	}
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	tr := newTestRouter(t)
	for _, path := range []string{"/api/v1/applications", "/api/v1/dashboard", "/api/v1/admin/users", "/api/v1/auth/me"} {
		rec := serve(tr.handler, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestPrivateRoutesRejectRevokedSession(t *testing.T) {
	tr := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, uuid.New(), "revoked", time.Now()))
	if rec := serve(tr.handler, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestApplicationsListWithToken(t *testing.T) {
	tr := newTestRouter(t)
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications?status=all", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, userID, "access-1", time.Now()))

	rec := serve(tr.handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if tr.apps.listFor != userID {
		t.Fatalf("expected list for %s got %s", userID, tr.apps.listFor)
	}
}

func TestCreateApplicationRequiresIdempotencyKey(t *testing.T) {
	tr := newTestRouter(t)
	token := buildToken(t, uuid.New(), "access-1", time.Now())
	body := `{"company":"Acme","position":"Engineer"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := serve(tr.handler, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without key got %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/applications", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "create-1")
		if rec := serve(tr.handler, req); rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if tr.apps.created != 1 {
		t.Fatalf("expected a single create, got %d", tr.apps.created)
	}
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	tr := newTestRouter(t)
	token := buildToken(t, uuid.New(), "old-access", time.Now().Add(-3*time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`))
	req.Header.Set("Authorization", "Bearer "+token)

	rec := serve(tr.handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if tr.auth.refreshedFor != "old-access" {
		t.Fatalf("expected refresh for old-access, got %q", tr.auth.refreshedFor)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	tr := newTestRouter(t)
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"x"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		last = serve(tr.handler, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding the ip limit, got %d", last)
	}
}
