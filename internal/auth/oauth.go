package auth

import (
	"errors"
	"net/http"

	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"
)

type OAuthConfig struct {
	BaseURL              string
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
}

func callbackURL(baseURL, provider string) string {
	return baseURL + "/api/auth/oauth/" + provider + "/callback"
}

// SetupOAuth enregistre les providers configurés et retourne leurs noms
func SetupOAuth(cfg OAuthConfig, sessions *SessionStore, log zerolog.Logger) []string {
	gothic.Store = sessions.Store()
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider non spécifié")
	}

	var providers []goth.Provider
	var names []string

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, google.New(cfg.GoogleClientID, cfg.GoogleClientSecret,
			callbackURL(cfg.BaseURL, "google"), "email", "profile"))
		names = append(names, "google")
	}
	if cfg.FacebookClientID != "" && cfg.FacebookClientSecret != "" {
		providers = append(providers, facebook.New(cfg.FacebookClientID, cfg.FacebookClientSecret,
			callbackURL(cfg.BaseURL, "facebook"), "email"))
		names = append(names, "facebook")
	}

	if len(providers) == 0 {
		log.Warn().Msg("⚠️ Aucun provider OAuth configuré")
		return nil
	}

	goth.UseProviders(providers...)
	log.Info().Strs("providers", names).Msg("✅ OAuth initialisé")
	return names
}
