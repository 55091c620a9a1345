package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/AI2HU/bookapp/internal/config"
	"github.com/AI2HU/bookapp/internal/logger"
	"github.com/AI2HU/bookapp/internal/models"
)

const (
	// Challenge is sent with every 401
	Challenge = "Basic"

	detailNotAuthenticated = "Not authenticated"
	detailUnauthorized     = "Unauthorized"
	detailTooManyAttempts  = "Too many failed authentication attempts"

	// maxTrackedClients bounds the failure table before idle entries are pruned
	maxTrackedClients = 4096
)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash
var ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")

// Gate checks HTTP Basic credentials against the configured pair and
// throttles clients that keep failing.
type Gate struct {
	username     []byte
	password     []byte
	passwordHash []byte

	burst  int
	refill time.Duration

	mu       sync.Mutex
	failures map[string]*rate.Limiter
}

// NewGate creates a credential gate from the auth configuration
func NewGate(cfg config.AuthConfig) *Gate {
	return &Gate{
		username:     []byte(cfg.Username),
		password:     []byte(cfg.Password),
		passwordHash: []byte(cfg.PasswordHash),
		burst:        cfg.MaxFailures,
		refill:       cfg.FailureRefill,
		failures:     make(map[string]*rate.Limiter),
	}
}

// Middleware rejects the request before any handler runs unless it
// carries the configured credentials.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if c.GetHeader("Authorization") == "" {
			reject(c, detailNotAuthenticated)
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || !g.Verify(username, password) {
			// A valid pair always passes; only further failures are refused
			if g.throttled(ip) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Detail: detailTooManyAttempts})
				return
			}
			g.recordFailure(ip)
			logger.Warning("Rejected credentials from %s on %s %s", ip, c.Request.Method, c.FullPath())
			reject(c, detailUnauthorized)
			return
		}

		g.recordSuccess(ip)
		c.Next()
	}
}

func reject(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", Challenge)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Detail: detail})
}

// Verify reports whether the pair matches. Both fields are always compared.
func (g *Gate) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), g.username) == 1

	var passOK bool
	if len(g.passwordHash) > 0 {
		passOK = bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), g.password) == 1
	}

	return userOK && passOK
}

func (g *Gate) throttled(ip string) bool {
	if g.burst <= 0 {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	limiter, ok := g.failures[ip]
	return ok && limiter.Tokens() < 1
}

func (g *Gate) recordFailure(ip string) {
	if g.burst <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	limiter, ok := g.failures[ip]
	if !ok {
		if len(g.failures) >= maxTrackedClients {
			g.prune()
		}
		limiter = rate.NewLimiter(rate.Every(g.refill), g.burst)
		g.failures[ip] = limiter
	}
	limiter.Allow()
}

func (g *Gate) recordSuccess(ip string) {
	if g.burst <= 0 {
		return
	}

	g.mu.Lock()
	delete(g.failures, ip)
	g.mu.Unlock()
}

// prune drops clients whose bucket has fully refilled. Caller holds mu.
func (g *Gate) prune() {
	for ip, limiter := range g.failures {
		if limiter.Tokens() >= float64(g.burst) {
			delete(g.failures, ip)
		}
	}
}

// HashPassword creates a bcrypt hash usable as auth.password_hash
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
