package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// authMiddleware gates every route behind a static bearer token comparison.
// tokenSource resolves the expected token fresh per request so rotations
// apply without a restart. No token configured means the deployment is
// locked shut rather than open.
func authMiddleware(tokenSource func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if header == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing Bearer Token"})
			return
		}

		expected := tokenSource()
		supplied := strings.TrimSpace(parts[1])
		if expected == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid Token"})
			return
		}

		c.Next()
	}
}
