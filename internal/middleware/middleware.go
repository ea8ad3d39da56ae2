package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"race-weekend-api/internal/apperr"
	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/ratelimit"
	"race-weekend-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

// RequestID tags every request with a UUID, echoed in the X-Request-ID
// header, the error body, and the context logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(apperr.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Recovery catches panics and reports them as the canonical 500 body
// without leaking internals.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error(c.Request.Context(), "Panic recovered", "panic", recovered)
		apperr.Write(c, apperr.Internal())
	})
}

// UserLoader resolves a user id from a verified token to a live account.
type UserLoader func(ctx context.Context, id int64) (*models.User, error)

// Auth resolves the bearer token to a principal and stores it on the
// request. Missing header, bad scheme, failed verification, unknown
// user, and unknown role all collapse to 401 unauthorized; expired vs
// malformed tokens differ only in internal diagnostics.
func Auth(secret string, loadUser UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		auth := c.GetHeader("Authorization")
		const prefix = "bearer "
		if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
			apperr.Write(c, apperr.Unauthorized("Missing bearer token."))
			return
		}
		tokenStr := strings.TrimSpace(auth[len(prefix):])

		p, err := identity.VerifyToken(secret, tokenStr)
		if err != nil {
			if err == identity.ErrTokenExpired {
				logger.Debug(ctx, "Token expired")
				apperr.Write(c, apperr.Unauthorized("Token expired."))
				return
			}
			logger.Debug(ctx, "Token verification failed", "error", err)
			apperr.Write(c, apperr.Unauthorized("Invalid token."))
			return
		}

		user, err := loadUser(ctx, p.ID)
		if err != nil {
			apperr.Write(c, apperr.Internal())
			return
		}
		if user == nil {
			apperr.Write(c, apperr.Unauthorized("User not found."))
			return
		}
		role, ok := identity.ParseRole(user.Role)
		if !ok {
			logger.Warn(ctx, "User row carries unknown role", "user_id", user.ID, "role", user.Role)
			apperr.Write(c, apperr.Unauthorized("Invalid token."))
			return
		}

		c.Set(principalKey, identity.Principal{ID: user.ID, Role: role})
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved by Auth. Handlers fetch
// it once and pass it explicitly from there on.
func PrincipalFrom(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

// RateLimit enforces the fixed-window limit keyed by the resolved
// principal, or by client address when anonymous. Quota headers are set
// on every response; denials add Retry-After and stop the request
// before any further processing.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := identity.AnonymousRateKey(c.ClientIP())
		if p, ok := PrincipalFrom(c); ok {
			key = p.RateKey()
		}

		now := time.Now()
		res, err := limiter.Check(ctx, key, now)
		if err != nil {
			logger.Error(ctx, "Rate limit check failed", "error", err, "key", key)
			apperr.Write(c, apperr.Internal())
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(res.RetryAfter(now), 10))
			apperr.Write(c, apperr.RateLimited())
			return
		}
		c.Next()
	}
}
