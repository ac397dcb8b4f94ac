package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	LoginMaxAttempts = 5
	CartMaxAdds      = 20
	APIMaxRequests   = 100

	LoginCooldown = 15 * time.Minute
	CartWindow    = time.Minute
	APIWindow     = time.Minute

	// loginBodyLimit borne le corps lu avant le handler de connexion
	loginBodyLimit = 64 << 10
)

// LoginRateLimit bloque un email après LoginMaxAttempts échecs pendant LoginCooldown
func LoginRateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, loginBodyLimit))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Requête invalide"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(input.Email)
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if ttl, blocked := limiter.Blocked(ctx, cooldownKey); blocked {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		attempts, _ := limiter.Count(ctx, key)
		if attempts >= LoginMaxAttempts {
			_ = limiter.Block(ctx, cooldownKey, LoginCooldown)
			_ = limiter.Reset(ctx, key)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n, _ := limiter.Hit(ctx, key, LoginCooldown)
			if remaining := LoginMaxAttempts - n; remaining > 0 {
				c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			}
		case http.StatusOK:
			_ = limiter.Reset(ctx, key, cooldownKey)
		}
	}
}

// CartRateLimit limite les ajouts au panier par utilisateur
func CartRateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.Next()
			return
		}

		n, err := limiter.Hit(c.Request.Context(), "cart_add:"+userID, CartWindow)
		if err == nil && n > CartMaxAdds {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop d'ajouts au panier. Ralentissez un peu",
				"retry_after": int(CartWindow.Seconds()),
			})
			return
		}
		c.Next()
	}
}

// APIRateLimit limite le nombre de requêtes par IP
func APIRateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := limiter.Hit(c.Request.Context(), "api_requests:"+c.ClientIP(), APIWindow)
		if err != nil {
			c.Next()
			return
		}
		if n > APIMaxRequests {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": int(APIWindow.Seconds()),
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(APIMaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(APIMaxRequests-n, 10))
		c.Next()
	}
}
