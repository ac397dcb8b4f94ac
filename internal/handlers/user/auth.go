package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	users       repository.UserRepository
	tokens      *auth.TokenMaker
	blacklist   *cache.TokenBlacklist
	sessions    *auth.SessionStore
	frontendURL string
	log         zerolog.Logger
}

func NewAuthHandler(users repository.UserRepository, tokens *auth.TokenMaker, blacklist *cache.TokenBlacklist,
	sessions *auth.SessionStore, frontendURL string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:       users,
		tokens:      tokens,
		blacklist:   blacklist,
		sessions:    sessions,
		frontendURL: frontendURL,
		log:         log,
	}
}

func userPayload(u models.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role}
}

// issueSession signe un token, le pose dans le cookie de session et le renvoie au client
func (h *AuthHandler) issueSession(c *gin.Context, status int, user models.User) {
	token, claims, err := h.tokens.Create(user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("❌ Erreur création token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création session"})
		return
	}
	expires := claims.ExpiresAt.Time
	if err := h.sessions.Save(c.Writer, c.Request, token, expires); err != nil {
		h.log.Warn().Err(err).Msg("⚠️ Cookie de session non enregistré")
	}

	c.JSON(status, gin.H{
		"accessToken": token,
		"expires":     expires.UTC().Format(time.RFC3339),
		"user":        userPayload(user),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string      `json:"name"`
		Email    string      `json:"email" binding:"required,email"`
		Password string      `json:"password" binding:"required,min=8"`
		Role     models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	// l'inscription ne peut pas créer d'administrateur
	role := input.Role
	switch role {
	case "":
		role = models.RoleBuyer
	case models.RoleBuyer, models.RoleSeller:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{
		Email:    strings.TrimSpace(input.Email),
		Name:     strings.TrimSpace(input.Name),
		Password: hash,
		Role:     role,
		Provider: "local",
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
			return
		}
		h.log.Error().Err(err).Msg("❌ Erreur création utilisateur")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	h.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("👤 Nouvel utilisateur")
	h.issueSession(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.TrimSpace(input.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error().Err(err).Msg("❌ Erreur lecture utilisateur")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	// compte OAuth sans mot de passe : même réponse qu'un mauvais mot de passe
	if user == nil || user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("⚠️ Hash de mot de passe illisible")
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	h.issueSession(c, http.StatusOK, *user)
}

// Logout révoque le token courant jusqu'à son expiration et efface le cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID := c.GetString(middleware.CtxTokenID)
	if err := h.blacklist.Revoke(c.Request.Context(), tokenID, middleware.TokenExpires(c)); err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur révocation token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur déconnexion"})
		return
	}
	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		h.log.Warn().Err(err).Msg("⚠️ Cookie de session non effacé")
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session retourne la session du cookie, ou {} sans session valide
func (h *AuthHandler) Session(c *gin.Context) {
	token, ok := h.sessions.Token(c.Request)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	claims, err := h.tokens.Verify(token)
	if err != nil || h.blacklist.IsRevoked(c.Request.Context(), claims.ID) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expires":     claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		"user":        userPayload(*user),
	})
}
