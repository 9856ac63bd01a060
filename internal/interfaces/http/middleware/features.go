// internal/interfaces/http/middleware/features.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/branchops-backend/internal/pkg/license"
)

// RequireFeature rejects requests to routes whose feature is switched off
// for this deployment
func RequireFeature(gate license.Gate, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.Enabled(feature) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "This feature is not enabled",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
