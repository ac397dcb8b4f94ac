package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenBlacklist révoque des tokens d'accès avant leur expiration (logout)
type TokenBlacklist struct {
	store Store
	log   zerolog.Logger
}

func NewTokenBlacklist(store Store, log zerolog.Logger) *TokenBlacklist {
	return &TokenBlacklist{store: store, log: log}
}

func blacklistKey(tokenID string) string {
	return "blacklist:" + tokenID
}

// Revoke garde l'identifiant jusqu'à l'expiration naturelle du token
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.store.Set(ctx, blacklistKey(tokenID), "revoked", ttl)
}

// IsRevoked considère le token valide si le cache ne répond pas
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) bool {
	revoked, err := b.store.Exists(ctx, blacklistKey(tokenID))
	if err != nil {
		b.log.Warn().Err(err).Msg("⚠️ Erreur vérification blacklist")
		return false
	}
	return revoked
}
