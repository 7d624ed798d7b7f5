package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/server/auth"
)

// bearerAuth resolves the Authorization header into a request principal.
// A missing, malformed, or unverifiable token leaves the request anonymous;
// it is the resolvers that decide which operations need an identity.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if ok && token != "" {
			if principal, err := s.sessions.Verify(token); err == nil {
				ctx := auth.WithPrincipal(c.Request.Context(), principal)
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// requestLogger tags every request with a random id, echoed in the
// X-Request-Id response header so a client report can be matched to the
// server log line.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id, err := common.MakeRandHexString(8)
		if err == nil {
			c.Header("X-Request-Id", id)
		}

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
