package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"storefront/pkg/client"

	"github.com/spf13/cobra"
)

var productFlags struct {
	search     string
	categories []string
	size       string
	minPrice   float64
	maxPrice   float64
	sort       string
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Parcourt le catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		q := client.ProductQuery{
			Search:     productFlags.search,
			Categories: productFlags.categories,
			Size:       productFlags.size,
			Sort:       productFlags.sort,
		}
		if cmd.Flags().Changed("min-price") {
			q.MinPrice = &productFlags.minPrice
		}
		if cmd.Flags().Changed("max-price") {
			q.MaxPrice = &productFlags.maxPrice
		}

		products, err := c.Products(cmd.Context(), q)
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

var productCreate client.ProductInput

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Met un produit en vente (vendeur, admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		p, err := c.CreateProduct(cmd.Context(), productCreate)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Produit créé : %s\n", p.ID)
		return nil
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Supprime un de ses produits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Produit supprimé")
		return nil
	},
}

var productMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Liste les produits du vendeur connecté",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		products, err := c.SellerProducts(cmd.Context())
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

func printProducts(out io.Writer, products []client.Product) {
	if len(products) == 0 {
		fmt.Fprintln(out, "Aucun produit")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOM\tCATÉGORIE\tPRIX\tSTOCK\tTAILLES\tCOULEURS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%s\t%s\n",
			p.ID, p.Name, p.Category, p.Price, p.Stock,
			strings.Join(p.Sizes, ","), strings.Join(p.Colors, ","))
	}
	w.Flush()
}

func init() {
	f := productsCmd.Flags()
	f.StringVarP(&productFlags.search, "search", "s", "", "Texte recherché")
	f.StringSliceVarP(&productFlags.categories, "category", "c", nil, "Catégories (répétable)")
	f.StringVar(&productFlags.size, "size", "", "Taille disponible")
	f.Float64Var(&productFlags.minPrice, "min-price", 0, "Prix minimum")
	f.Float64Var(&productFlags.maxPrice, "max-price", 0, "Prix maximum")
	f.StringVar(&productFlags.sort, "sort", "", "Tri : newest, price-asc, price-desc, name-asc, name-desc")

	cf := productCreateCmd.Flags()
	cf.StringVar(&productCreate.Name, "name", "", "Nom")
	cf.StringVar(&productCreate.Description, "description", "", "Description")
	cf.Float64Var(&productCreate.Price, "price", 0, "Prix")
	cf.StringVar(&productCreate.Category, "category", "", "Catégorie")
	cf.IntVar(&productCreate.Stock, "stock", 0, "Stock")
	cf.StringSliceVar(&productCreate.Sizes, "sizes", nil, "Tailles proposées")
	cf.StringSliceVar(&productCreate.Colors, "colors", nil, "Couleurs proposées")
	cf.StringSliceVar(&productCreate.Images, "images", nil, "URLs des images")
	for _, name := range []string{"name", "description", "price", "category"} {
		_ = productCreateCmd.MarkFlagRequired(name)
	}

	productsCmd.AddCommand(productCreateCmd, productDeleteCmd, productMineCmd)
}
