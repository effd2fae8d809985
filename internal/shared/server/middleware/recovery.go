package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope and counts it per
// route. http.ErrAbortHandler is re-raised so net/http can drop the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			metrics.IncHTTPPanic(route)
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"route":      route,
				"method":     c.Request.Method,
				"error":      rec,
				"stack":      string(debug.Stack()),
			})

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
			c.Abort()
		}()
		c.Next()
	}
}
