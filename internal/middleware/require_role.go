package middleware

import (
	"net/http"

	"storefront/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireRole laisse passer les rôles listés. Simple comparaison de chaîne.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(CtxRole))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
	}
}
