package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceIDKey    = "traceId"
	userIDKey     = "userId"
	TraceIDHeader = "X-Trace-Id"
)

// Trace assigns every request a trace id, reusing the caller's when sent.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

func traceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

func RequestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"traceId", traceID(c),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			l.Warn(c.Request.Context(), "request", args...)
			return
		}
		l.Info(c.Request.Context(), "request", args...)
	}
}

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "Authorization required", nil)
			return
		}

		userID, err := a.Authenticate(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
