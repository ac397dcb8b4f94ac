package user

import (
	"errors"
	"net/http"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

func withProvider(c *gin.Context) (string, bool) {
	provider := c.Param("provider")
	if _, err := goth.GetProvider(provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return "", false
	}
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	return provider, true
}

func (h *AuthHandler) BeginOAuth(c *gin.Context) {
	if _, ok := withProvider(c); !ok {
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// OAuthCallback retrouve ou crée le compte puis renvoie vers le frontend avec le cookie de session
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider, ok := withProvider(c)
	if !ok {
		return
	}

	gu, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", provider).Msg("⚠️ Échec OAuth")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification refusée"})
		return
	}

	user, err := h.findOrCreateOAuthUser(c, provider, gu)
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("❌ Erreur compte OAuth")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, claims, err := h.tokens.Create(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création session"})
		return
	}
	if err := h.sessions.Save(c.Writer, c.Request, token, claims.ExpiresAt.Time); err != nil {
		h.log.Warn().Err(err).Msg("⚠️ Cookie de session non enregistré")
	}
	c.Redirect(http.StatusFound, h.frontendURL)
}

func (h *AuthHandler) findOrCreateOAuthUser(c *gin.Context, provider string, gu goth.User) (*models.User, error) {
	ctx := c.Request.Context()

	user, err := h.users.GetByProvider(ctx, provider, gu.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// un compte local avec le même email est réutilisé
	if gu.Email != "" {
		user, err = h.users.GetByEmail(ctx, gu.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	user = &models.User{
		Email:      gu.Email,
		Name:       gu.Name,
		Role:       models.RoleBuyer,
		Provider:   provider,
		ProviderID: gu.UserID,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
