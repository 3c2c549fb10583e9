package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api"
	"github.com/feedgate/feedgate/internal/api/handler"
	mw "github.com/feedgate/feedgate/internal/api/middleware"
	"github.com/feedgate/feedgate/internal/cache"
	"github.com/feedgate/feedgate/internal/store"
	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- stub key store: one known key ---

type stubKeyStore struct {
	digest   string
	identity *models.KeyIdentity
}

func (s *stubKeyStore) GetKeyIdentityByDigest(_ context.Context, digest string) (*models.KeyIdentity, error) {
	if s.identity != nil && digest == s.digest {
		return s.identity, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubKeyStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

// --- stub cache: in-memory, counts window hits ---

type stubCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits map[string]int64
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string][]byte{}, hits: map[string]int64{}}
}

func (c *stubCache) Ping(_ context.Context) error { return nil }

func (c *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *stubCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[key]++
	return c.hits[key], nil
}

func (c *stubCache) CountSlidingWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[key]++
	return c.hits[key], nil
}

var _ cache.Cache = (*stubCache)(nil)

// --- response/usage stubs for the ingest handler ---

type stubResponseStore struct{ created int }

func (s *stubResponseStore) CreateResponse(_ context.Context, _ *models.Response) error {
	s.created++
	return nil
}

func (s *stubResponseStore) ListResponses(_ context.Context, _ store.ResponseFilter) ([]*models.Response, int, error) {
	return nil, 0, nil
}

type stubUsage struct{}

func (s *stubUsage) Increment(_ context.Context, _ uuid.UUID) error { return nil }

// --- fixture ---

type routerFixture struct {
	router    http.Handler
	plaintext string
	responses *stubResponseStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	plaintext, digest, displayPrefix, err := admission.GenerateKey(false)
	require.NoError(t, err)

	keys := &stubKeyStore{
		digest: digest,
		identity: &models.KeyIdentity{
			KeyID:          uuid.New(),
			OrganizationID: uuid.New(),
			ProjectID:      uuid.New(),
			KeyPrefix:      displayPrefix,
			Plan:           "FREE",
		},
	}
	c := newStubCache()
	responses := &stubResponseStore{}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-token"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := admission.NewAuthenticator(keys, admission.NewIdentityCache(time.Minute, 16))
	router := api.NewRouter(api.Dependencies{
		Auth:           mw.NewAuth(auth),
		IngestLimit:    mw.NewRateLimit(admission.NewLimiter(c), "ingest"),
		ReadLimit:      mw.NewRateLimit(admission.NewLimiter(c), "read"),
		AdminLimit:     mw.NewFixedLimit(c, "admin", 30, time.Minute),
		Idempotency:    mw.NewIdempotency(admission.NewGuard(c)),
		PublicHost:     "app.feedgate.dev",
		AdminTokenHash: string(adminHash),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
		SubmitResponse: handler.NewSubmitResponseHandler(responses, &stubUsage{}),
		ListResponses:  handler.NewListResponsesHandler(responses),
	})

	return &routerFixture{router: router, plaintext: plaintext, responses: responses}
}

func (f *routerFixture) ingest(body string, set func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/responses", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+f.plaintext)
	req.Header.Set("Idempotency-Key", "router-test-key")
	if set != nil {
		set(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// --- router tests ---

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	f := newRouterFixture(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/responses"},
		{"GET", "/api/v1/responses"},
		{"GET", "/api/v1/usage"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_API_KEY", errObj["code"])
		})
	}
}

func TestRouter_AdminEndpoints_RequireAdminToken(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/admin/keys", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_IngestFlow_EndToEnd(t *testing.T) {
	f := newRouterFixture(t)

	w := f.ingest(`{"rating":5,"comment":"great"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.responses.created)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
}

func TestRouter_IngestFlow_ReplayReturnsCachedResponse(t *testing.T) {
	f := newRouterFixture(t)

	first := f.ingest(`{"rating":5}`, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.ingest(`{"rating":5}`, nil)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	// Handler ran once.
	assert.Equal(t, 1, f.responses.created)
}

func TestRouter_IngestFlow_MissingIdempotencyKey(t *testing.T) {
	f := newRouterFixture(t)

	w := f.ingest(`{"rating":5}`, func(r *http.Request) {
		r.Header.Del("Idempotency-Key")
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_DashboardRead_RequiresSameOrigin(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+f.plaintext)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_DashboardRead_SameOriginAllowed(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/responses", nil)
	req.Header.Set("Authorization", "Bearer "+f.plaintext)
	req.Header.Set("Origin", "https://app.feedgate.dev")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
