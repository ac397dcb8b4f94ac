package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"

	"github.com/gin-gonic/gin"
)

// Clés posées dans le contexte gin par AuthRequired
const (
	CtxUserID       = "user_id"
	CtxEmail        = "email"
	CtxRole         = "role"
	CtxTokenID      = "token_id"
	CtxTokenExpires = "token_expires"
)

// AuthRequired accepte un header "Authorization: Bearer" ou, à défaut, le cookie de session.
// Token absent, invalide, expiré ou révoqué : 401.
func AuthRequired(tokens *auth.TokenMaker, blacklist *cache.TokenBlacklist, sessions *auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && c.GetHeader("Authorization") != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			return
		}
		if !ok && sessions != nil {
			tokenString, ok = sessions.Token(c.Request)
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			return
		}

		claims, err := tokens.Verify(tokenString)
		if errors.Is(err, auth.ErrExpiredToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expiré"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			return
		}

		if blacklist != nil && blacklist.IsRevoked(c.Request.Context(), claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token révoqué"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, string(claims.Role))
		c.Set(CtxTokenID, claims.ID)
		c.Set(CtxTokenExpires, claims.ExpiresAt.Time)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// TokenExpires retourne l'expiration du token de la requête courante
func TokenExpires(c *gin.Context) time.Time {
	if v, ok := c.Get(CtxTokenExpires); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
