package main

import (
	"fmt"

	"storefront/pkg/client"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Ouvre une session et l'enregistre localement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		s, err := c.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connecté : %s (%s), session valable jusqu'au %s\n",
			s.User.Email, s.User.Role, s.Expires.Local().Format("02/01/2006 15:04"))
		return nil
	},
}

var registerRole, registerName string

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Crée un compte acheteur ou vendeur",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		s, err := c.Register(cmd.Context(), client.RegisterInput{
			Name:     registerName,
			Email:    args[0],
			Password: args[1],
			Role:     registerRole,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Compte créé : %s (%s)\n", s.User.Email, s.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Révoque le token et supprime la session locale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Affiche la session enregistrée",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		s := c.Session()
		if s.Expired() {
			fmt.Fprintf(cmd.OutOrStdout(), "Session expirée pour %s\n", s.User.Email)
			return nil
		}
		if !s.Valid() {
			fmt.Fprintln(cmd.OutOrStdout(), "Aucune session")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) id=%s\n", s.User.Email, s.User.Role, s.User.ID)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerRole, "role", "BUYER", "BUYER ou SELLER")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Nom affiché")
}
