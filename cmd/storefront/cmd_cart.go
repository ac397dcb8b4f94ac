package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"storefront/pkg/client"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Affiche le panier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		printCart(cmd.OutOrStdout(), c.Cart)
		return nil
	},
}

// loadedCart construit le client et charge le panier serveur
func loadedCart(cmd *cobra.Command) (*client.Client, error) {
	c, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	if err := c.Cart.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}

var cartSize, cartColor string

var cartAddCmd = &cobra.Command{
	Use:   "add <productId>",
	Short: "Ajoute une unité du produit au panier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		p, err := c.Product(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := c.Cart.Add(cmd.Context(), p.AsNewItem(cartSize, cartColor)); err != nil {
			return err
		}
		printCart(cmd.OutOrStdout(), c.Cart)
		return nil
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <lineId> <quantity>",
	Short: "Change la quantité d'une ligne (0 la supprime)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantité invalide: %q", args[1])
		}
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		if err := c.Cart.UpdateQuantity(cmd.Context(), args[0], quantity); err != nil {
			return err
		}
		printCart(cmd.OutOrStdout(), c.Cart)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "rm <lineId>...",
	Short: "Supprime des lignes du panier",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		g, ctx := errgroup.WithContext(cmd.Context())
		for _, id := range args {
			g.Go(func() error { return c.Cart.Remove(ctx, id) })
		}
		err = g.Wait()
		printCart(cmd.OutOrStdout(), c.Cart)
		return err
	},
}

var cartWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Affiche le panier à chaque changement (autres appareils compris)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printCart(out, c.Cart)
		c.Cart.OnChange(func([]client.CartItem) { printCart(out, c.Cart) })

		err = c.Cart.Watch(cmd.Context())
		if cmd.Context().Err() != nil {
			return nil
		}
		return err
	},
}

func printCart(out io.Writer, cart *client.CartStore) {
	items := cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "Panier vide")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LIGNE\tPRODUIT\tTAILLE\tCOULEUR\tPRIX\tQTÉ")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\n", item.ID, item.Name, item.Size, item.Color, item.Price, item.Quantity)
	}
	fmt.Fprintf(w, "\t\t\t\tTotal %.2f\t%d\n", cart.TotalPrice(), cart.TotalItems())
	w.Flush()
}

func init() {
	cartAddCmd.Flags().StringVar(&cartSize, "size", "", "Taille")
	cartAddCmd.Flags().StringVar(&cartColor, "color", "", "Couleur")
	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd, cartWatchCmd)
}
