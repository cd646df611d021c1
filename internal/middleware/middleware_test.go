package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"MyFinance/config"
	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/user"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[ulid.ULID]*user.User

func (f fakeUsers) GetByID(_ context.Context, id ulid.ULID) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, appErrors.ErrUserNotFound
	}
	return u, nil
}

func newTestJwt(t *testing.T, users fakeUsers) *JwtService {
	t.Helper()
	j, err := NewJwtService(config.JWTConfig{Secret: "test-secret", Issuer: "my-finance", TTL: time.Hour}, users)
	require.NoError(t, err)
	return j
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	code, _ := body["error"].(string)
	return code
}

func TestJwtService_GenerateAndParse(t *testing.T) {
	u := &user.User{Id: pkg.GenerateULIDObject(), Username: "alice", IsActive: true}
	j := newTestJwt(t, fakeUsers{u.Id: u})

	token, expiresAt, err := j.GenerateToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := j.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.Id.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestJwtService_RejectsForeignSignature(t *testing.T) {
	u := &user.User{Id: pkg.GenerateULIDObject(), Username: "alice", IsActive: true}
	other, err := NewJwtService(config.JWTConfig{Secret: "another-secret", Issuer: "my-finance"}, fakeUsers{})
	require.NoError(t, err)
	token, _, err := other.GenerateToken(u)
	require.NoError(t, err)

	_, err = newTestJwt(t, fakeUsers{u.Id: u}).ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAuthMiddleware(t *testing.T) {
	active := &user.User{Id: pkg.GenerateULIDObject(), Username: "alice", IsActive: true}
	inactive := &user.User{Id: pkg.GenerateULIDObject(), Username: "bob", IsActive: false}
	j := newTestJwt(t, fakeUsers{active.Id: active, inactive.Id: inactive})

	activeToken, _, err := j.GenerateToken(active)
	require.NoError(t, err)
	inactiveToken, _, err := j.GenerateToken(inactive)
	require.NoError(t, err)
	ghostToken, _, err := j.GenerateToken(&user.User{Id: pkg.GenerateULIDObject(), Username: "ghost"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + activeToken, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + activeToken, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
		{name: "inactive user", header: "Bearer " + inactiveToken, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", header: "Bearer " + ghostToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", AuthMiddleware(j), func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(ContextUserID)+"|"+c.GetString(ContextUsername))
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, active.Id.String()+"|alice", rec.Body.String())
			} else {
				assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimitByUser_Rejects(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.GET("/x", func(c *gin.Context) { c.Set(ContextUserID, "user-1") }, RateLimitByUser(rl), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(t, second))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*contracts.IdempotentResponse
	pending map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		entries: make(map[string]*contracts.IdempotentResponse),
		pending: make(map[string]bool),
	}
}

func (m *memoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[key] || m.entries[key] != nil {
		return false, nil
	}
	m.pending[key] = true
	return true, nil
}

func (m *memoryIdempotencyStore) Load(_ context.Context, key string) (*contracts.IdempotentResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp, ok := m.entries[key]; ok {
		return resp, true, nil
	}
	return nil, m.pending[key], nil
}

func (m *memoryIdempotencyStore) Complete(_ context.Context, key string, resp *contracts.IdempotentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key)
	m.entries[key] = resp
	return nil
}

func (m *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key)
	return nil
}

func TestIdempotency_ReplaysCompletedRequest(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0

	router := gin.New()
	router.POST("/transactions", func(c *gin.Context) { c.Set(ContextUserID, "user-1") }, Idempotency(store), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := newMemoryIdempotencyStore()
	_, err := store.Reserve(context.Background(), ":POST:/pots:key-2")
	require.NoError(t, err)

	router := gin.New()
	router.POST("/pots", Idempotency(store), func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/pots", nil)
	req.Header.Set(IdempotencyHeader, "key-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", errorCode(t, rec))
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0

	router := gin.New()
	router.POST("/pots", Idempotency(store), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pots", nil)
		req.Header.Set(IdempotencyHeader, "key-3")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/pots", Idempotency(store), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("handler failed")
		}
		c.Status(http.StatusCreated)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pots", nil)
		req.Header.Set(IdempotencyHeader, "key-4")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{http.StatusInternalServerError, http.StatusCreated}, codes)
	assert.Empty(t, store.pending)
	assert.NotNil(t, store.entries[":POST:/pots:key-4"])
}

func TestIdempotency_SkipsWithoutKeyOrStore(t *testing.T) {
	calls := 0
	router := gin.New()
	router.POST("/a", Idempotency(nil), func(c *gin.Context) { calls++ })
	router.POST("/b", Idempotency(newMemoryIdempotencyStore()), func(c *gin.Context) { calls++ })

	for _, path := range []string{"/a", "/a", "/b", "/b"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if path == "/a" {
			req.Header.Set(IdempotencyHeader, "k")
		}
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 4, calls)
}
