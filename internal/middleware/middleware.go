package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/models"
	"golang.org/x/time/rate"
)

const (
	RequestIDKey = "request_id"
	UserKey      = "user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request; 5xx responses are logged at error level.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		requestID, _ := c.Get(RequestIDKey)
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := CurrentClaims(c); ok {
			attrs = append(attrs, "identity", claims.Identity(), "role", claims.GetSafeRole())
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP Request", attrs...)
			return
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler logs errors attached with c.Error and hides their details
// from the client.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get(RequestIDKey)

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// AuthMiddleware verifies the bearer token (or access_token cookie) and
// stores the claims under UserKey.
func AuthMiddleware(verifier *helpers.TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("missing bearer token"))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			requestID, _ := c.Get(RequestIDKey)
			logger.Info("Token rejected", "request_id", requestID, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("invalid or expired token"))
			return
		}

		c.Set(UserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}

// CurrentClaims returns the verified claims set by AuthMiddleware.
func CurrentClaims(c *gin.Context) (*helpers.CustomClaims, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*helpers.CustomClaims)
	return claims, ok
}

// limiterIdleTTL is how long a caller's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// callerLimiters keeps one token bucket per caller and drops buckets that
// have been idle for longer than idle. Sweeps run on access, at most once
// per idle period.
type callerLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	entries   map[string]*callerLimiter
	lastSweep time.Time
}

func newCallerLimiters(limit rate.Limit, burst int, idle time.Duration) *callerLimiters {
	return &callerLimiters{
		limit:   limit,
		burst:   burst,
		idle:    idle,
		entries: make(map[string]*callerLimiter),
	}
}

func (l *callerLimiters) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) >= l.idle {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &callerLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *callerLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RateLimit throttles requests per caller: the verified identity when there
// is one, the client IP otherwise.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	limiters := newCallerLimiters(limit, burst, limiterIdleTTL)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := CurrentClaims(c); ok {
			key = "id:" + claims.Identity()
		}
		if !limiters.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse("too many redemption attempts, slow down"))
			return
		}
		c.Next()
	}
}
