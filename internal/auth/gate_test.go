package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AI2HU/bookapp/internal/config"
	"github.com/AI2HU/bookapp/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Username:      "admin",
		Password:      "password",
		MaxFailures:   3,
		FailureRefill: time.Hour,
	}
}

// setupRouter returns a router whose only route records whether it ran
func setupRouter(gate *Gate, reached *bool) *gin.Engine {
	router := gin.New()
	group := router.Group("/book_app", gate.Middleware())
	group.GET("/:id", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string, setAuth func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/book_app/1", nil)
	req.RemoteAddr = remoteAddr
	if setAuth != nil {
		setAuth(req)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func withCredentials(username, password string) func(*http.Request) {
	return func(r *http.Request) {
		r.SetBasicAuth(username, password)
	}
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Detail
}

func TestGate_ValidCredentials(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(testAuthConfig()), &reached)

	rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "password"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, reached)
}

func TestGate_MissingHeader(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(testAuthConfig()), &reached)

	rr := doRequest(router, "192.0.2.1:1234", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Basic", rr.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Not authenticated", decodeDetail(t, rr))
	assert.False(t, reached)
}

func TestGate_WrongCredentials(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"wrong password", withCredentials("admin", "wrong")},
		{"wrong username", withCredentials("root", "password")},
		{"both wrong", withCredentials("x", "y")},
		{"empty pair", withCredentials("", "")},
		{"password prefix", withCredentials("admin", "pass")},
		{"not basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			router := setupRouter(NewGate(testAuthConfig()), &reached)

			rr := doRequest(router, "192.0.2.1:1234", tt.setup)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Basic", rr.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "Unauthorized", decodeDetail(t, rr))
			assert.False(t, reached)
		})
	}
}

func TestGate_PasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testAuthConfig()
	cfg.PasswordHash = string(hash)
	gate := NewGate(cfg)

	assert.True(t, gate.Verify("admin", "s3cret"))
	assert.False(t, gate.Verify("admin", "password"), "plain password is ignored once a hash is set")
	assert.False(t, gate.Verify("other", "s3cret"))
}

func TestGate_ThrottlesRepeatedFailures(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(testAuthConfig()), &reached)

	for i := 0; i < 3; i++ {
		rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
		require.Equal(t, http.StatusUnauthorized, rr.Code, "attempt %d", i+1)
	}

	// Bucket is empty: further wrong pairs are refused without a check
	rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.False(t, reached)

	// Other clients are unaffected
	rr = doRequest(router, "198.51.100.7:1234", withCredentials("admin", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGate_ValidCredentialsPassWhileThrottled(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(testAuthConfig()), &reached)

	for i := 0; i < 5; i++ {
		doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
	}
	rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = doRequest(router, "192.0.2.1:1234", withCredentials("admin", "password"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, reached)

	// Success resets the bucket
	rr = doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGate_DefaultConfigNeverThrottles(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(config.DefaultConfig().Auth), &reached)

	for i := 0; i < 50; i++ {
		rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
		require.Equal(t, http.StatusUnauthorized, rr.Code, "attempt %d", i+1)
	}
	rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "password"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, reached)
}

func TestGate_SuccessClearsFailures(t *testing.T) {
	var reached bool
	router := setupRouter(NewGate(testAuthConfig()), &reached)

	for round := 0; round < 3; round++ {
		for i := 0; i < 2; i++ {
			rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		}
		rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "password"))
		require.Equal(t, http.StatusOK, rr.Code, "round %d", round)
	}
}

func TestGate_ThrottlingDisabled(t *testing.T) {
	cfg := testAuthConfig()
	cfg.MaxFailures = 0

	var reached bool
	router := setupRouter(NewGate(cfg), &reached)

	for i := 0; i < 20; i++ {
		rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "wrong"))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := doRequest(router, "192.0.2.1:1234", withCredentials("admin", "password"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("password")))

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
