package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/config"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// newPlantStack wires a /v1 group the same way the server does: JWTAuth
// first, then the rate limiter and the response cache, so both middlewares
// see "user_id" in the context when they build their keys.
func newPlantStack(rdb *redis.Client, rl config.RateLimitConfig, cc config.CacheConfig) *echo.Echo {
	e := echo.New()
	auth := e.Group("/v1")
	auth.Use(JWTAuth(testSecret))
	auth.Use(NewTokenBucket(rl, rdb))
	auth.Use(NewRedisCache(cc, rdb))
	auth.GET("/plants", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "owner": userID(c)})
	})
	return e
}

func cacheCfg() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "user_route_query",
		Prefix:      "cache",
	}
}

func rateCfg(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user",
		Prefix:         "rl",
	}
}

func doGet(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/plants", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResponseCacheIsScopedPerUser(t *testing.T) {
	e := newPlantStack(testRedis(t), rateCfg(100), cacheCfg())
	tokA := signToken(t, "user-a")
	tokB := signToken(t, "user-b")

	// User A primes the cache, then hits it.
	rec := doGet(e, tokA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.Contains(t, rec.Body.String(), "user-a")

	rec = doGet(e, tokA)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	require.Contains(t, rec.Body.String(), "user-a")

	// User B's first request must miss and get their own body, not the
	// entry user A just warmed.
	rec = doGet(e, tokB)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.Contains(t, rec.Body.String(), "user-b")
	require.NotContains(t, rec.Body.String(), "user-a")
}

func TestWarmCacheDoesNotBypassAuth(t *testing.T) {
	e := newPlantStack(testRedis(t), rateCfg(100), cacheCfg())
	tok := signToken(t, "user-a")

	require.Equal(t, http.StatusOK, doGet(e, tok).Code)

	// With the cache warm, a request without a token must still be
	// rejected by JWTAuth instead of served from the cache.
	rec := doGet(e, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotContains(t, rec.Body.String(), "user-a")

	// Same for a garbage token.
	rec = doGet(e, "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotContains(t, rec.Body.String(), "user-a")
}

func TestRateLimitBucketsArePerUser(t *testing.T) {
	// Cache disabled so every request reaches the limiter's handler chain
	// the same way.
	cc := cacheCfg()
	cc.Enabled = false
	e := newPlantStack(testRedis(t), rateCfg(2), cc)
	tokA := signToken(t, "user-a")
	tokB := signToken(t, "user-b")

	// User A drains their own bucket.
	require.Equal(t, http.StatusOK, doGet(e, tokA).Code)
	require.Equal(t, http.StatusOK, doGet(e, tokA).Code)
	rec := doGet(e, tokA)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// User B's bucket is untouched by A's burst.
	require.Equal(t, http.StatusOK, doGet(e, tokB).Code)
}
