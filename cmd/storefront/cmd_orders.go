package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"storefront/pkg/client"

	"github.com/spf13/cobra"
)

var checkoutForm client.CheckoutForm

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Passe commande avec le contenu du panier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCart(cmd)
		if err != nil {
			return err
		}
		if c.Cart.TotalItems() == 0 {
			return fmt.Errorf("panier vide")
		}
		order, err := c.Checkout(cmd.Context(), checkoutForm)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Commande %s enregistrée, total %.2f\n", order.ID, order.Total)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Historique des commandes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		orders, err := c.Orders(cmd.Context())
		if err != nil {
			return err
		}
		printOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

var qrOutput string

var orderQRCmd = &cobra.Command{
	Use:   "qr <orderId>",
	Short: "Enregistre le QR code de retrait d'une commande",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		png, err := c.PickupQR(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(qrOutput, png, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "QR code écrit dans %s\n", qrOutput)
		return nil
	},
}

func printOrders(out io.Writer, orders []client.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(out, "Aucune commande")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMANDE\tDATE\tLIVRAISON\tARTICLES\tTOTAL")
	for _, o := range orders {
		n := 0
		for _, item := range o.Items {
			n += item.Quantity
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n", o.ID, o.CreatedAt.Local().Format("02/01/2006 15:04"), o.DeliveryMethod, n, o.Total)
	}
	w.Flush()
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&checkoutForm.FirstName, "first-name", "", "Prénom")
	f.StringVar(&checkoutForm.LastName, "last-name", "", "Nom")
	f.StringVar(&checkoutForm.Email, "email", "", "Email")
	f.StringVar(&checkoutForm.Phone, "phone", "", "Téléphone")
	f.StringVar(&checkoutForm.Address, "address", "", "Adresse (livraison)")
	f.StringVar(&checkoutForm.Comment, "comment", "", "Commentaire")
	f.StringVar(&checkoutForm.DeliveryMethod, "delivery", "courier", "courier ou pickup")
	f.StringVar(&checkoutForm.PaymentMethod, "payment", "card", "card ou cash")
	for _, name := range []string{"first-name", "last-name", "email", "phone"} {
		_ = checkoutCmd.MarkFlagRequired(name)
	}

	orderQRCmd.Flags().StringVarP(&qrOutput, "output", "o", "pickup-qr.png", "Fichier PNG")
	ordersCmd.AddCommand(orderQRCmd)
}
