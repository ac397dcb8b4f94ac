package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logger"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ Configuration invalide:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if !envLoaded {
		log.Info().Msg("ℹ️ Aucun fichier .env trouvé, utilisation des variables système")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Impossible de démarrer le serveur")
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Serveur arrêté sur erreur")
		a.Close()
		os.Exit(1)
	}
}
