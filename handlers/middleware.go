package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	ctxUserID = "userID"
	ctxClaims = "claims"

	headerRequestID = "X-Request-ID"
)

var (
	allowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	allowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID}
)

func corsMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = allowMethods
	config.AllowHeaders = allowHeaders
	config.ExposeHeaders = []string{headerRequestID}
	config.OptionsResponseStatusCode = http.StatusOK
	return cors.New(config)
}

// corsFallback covers requests without an Origin header, which the cors
// middleware passes through untouched: it still sets the permissive headers
// and ends every OPTIONS request with a bare 200.
func corsFallback() gin.HandlerFunc {
	methods := strings.Join(allowMethods, ", ")
	headers := strings.Join(allowHeaders, ", ")
	return func(c *gin.Context) {
		if c.GetHeader("Origin") == "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request and tags it with a request id.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		if claims := currentClaims(c); claims != nil {
			event = event.Uint("user_id", claims.ID)
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery turns a panic into a 500 JSON response.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// AuthMiddleware protects routes. The token comes from the Authorization
// header or, for WebSocket upgrades, the token query parameter.
func AuthMiddleware(svc *services.AuthService, log zerolog.Logger, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}
		if token == "" && allowQuery {
			token = c.Query("token")
		}

		claims, err := svc.Authenticate(token)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.Set(ctxUserID, claims.ID)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. An empty
// header is valid and yields no token.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

func currentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdle = 10 * time.Minute

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		clients:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > limiterIdle {
		for key, e := range l.clients {
			if now.Sub(e.lastSeen) > limiterIdle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.clients[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// RateLimit answers 429 once a client IP exceeds perSecond requests with the
// given burst. A non-positive rate disables limiting.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newIPLimiter(perSecond, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
