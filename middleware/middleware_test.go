package middleware

import (
	"lifeline/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitSkipsSOSIntake(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimitMiddleware(client, 2, time.Minute))
	r.POST("/create-sos", okHandler)
	r.GET("/all-emergency", okHandler)

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodGet, "/all-emergency", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, http.MethodGet, "/all-emergency", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	for i := 0; i < 5; i++ {
		w := serve(r, http.MethodPost, "/create-sos", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitWithoutRedisAllowsAll(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(nil, 1, time.Minute))
	r.GET("/all-emergency", okHandler)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/all-emergency", nil).Code)
	}
}

func TestAdminGuard(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	guard := NewAdminGuard(jwtService)

	r := gin.New()
	r.PATCH("/emergency/:emergencyId/status", guard.RequireOperator(), func(c *gin.Context) {
		c.String(http.StatusOK, GetOperatorID(c))
	})

	w := serve(r, http.MethodPatch, "/emergency/x/status", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, err := jwtService.GenerateToken("u-1", "u@example.com", "user")
	require.NoError(t, err)
	w = serve(r, http.MethodPatch, "/emergency/x/status", http.Header{"Authorization": {"Bearer " + userToken}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	opToken, err := jwtService.GenerateToken("op-1", "op@example.com", utils.RoleOperator)
	require.NoError(t, err)
	w = serve(r, http.MethodPatch, "/emergency/x/status", http.Header{"Authorization": {"Bearer " + opToken}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "op-1", w.Body.String())

	w = serve(r, http.MethodPatch, "/emergency/x/status?token="+opToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGuardDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/ws/triage", NewAdminGuard(nil).RequireOperator(), okHandler)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ws/triage", nil).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(NewCORSConfig([]string{"http://localhost:3000"})))
	r.GET("/all-emergency", okHandler)

	w := serve(r, http.MethodGet, "/all-emergency", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/all-emergency", http.Header{"Origin": {"http://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/all-emergency", http.Header{
		"Origin":                        {"http://localhost:3000"},
		"Access-Control-Request-Method": {"PATCH"},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(DefaultLoggerMiddleware("test"), NewErrorHandler("test", nil).Handle())
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}
