package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"storefront/internal/logger"
	"storefront/pkg/client"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg = viper.New()
	log zerolog.Logger
)

// rootCmd est la commande de base du client storefront
var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Client en ligne de commande de la boutique",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if cfg.GetBool("verbose") {
			level = "debug"
		}
		log = logger.NewWithWriter(cmd.ErrOrStderr(), level, true)
	},
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "storefront", "session.json")
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "URL de l'API (ou STOREFRONT_SERVER)")
	rootCmd.PersistentFlags().String("session", defaultSessionPath(), "Fichier de session (ou STOREFRONT_SESSION)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Logs détaillés")

	for _, name := range []string{"server", "session", "verbose"} {
		_ = cfg.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	cfg.SetEnvPrefix("STOREFRONT")
	cfg.AutomaticEnv()

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(productsCmd, cartCmd, checkoutCmd, ordersCmd)
}

// newClient construit le client à partir du fichier de session
func newClient(cmd *cobra.Command) (*client.Client, error) {
	sessions, err := client.LoadFileSession(cfg.GetString("session"))
	if err != nil {
		return nil, err
	}
	stderr := cmd.ErrOrStderr()
	return client.New(cfg.GetString("server"), sessions, log,
		client.WithLoginRedirect(func(reason string) {
			fmt.Fprintf(stderr, "Connexion requise (%s) : lancez \"storefront login\"\n", reason)
		}),
	), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
