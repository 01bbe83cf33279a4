package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kalaasutra/storefront/internal/client"
	"github.com/kalaasutra/storefront/internal/importer"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/spf13/cobra"
)

// exportPageSize matches the largest page the API serves
const exportPageSize = 100

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsGetCmd(a),
		newProductsCreateCmd(a),
		newProductsUpdateCmd(a),
		newProductsDeleteCmd(a),
		newProductsImportCmd(a),
		newProductsExportCmd(a),
	)
	return cmd
}

func newProductsListCmd(a *app) *cobra.Command {
	var opts client.ProductListOptions
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			products, err := a.client.Products.List(ctx, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), products)
			}
			return printProducts(cmd.OutOrStdout(), products)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "Only list this category")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "Products to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum products to return (server default 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printProducts(w io.Writer, products []models.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Category, p.Price)
	}
	return tw.Flush()
}

func newProductsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get PRODUCT_ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			p, err := a.client.Products.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newProductsCreateCmd(a *app) *cobra.Command {
	var row importer.ProductRow

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := row.Validate(); err != nil {
				return err
			}

			ctx, cancel := a.commandContext()
			defer cancel()

			p, err := a.client.Products.Create(ctx, row.ProductCreate())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&row.Name, "name", "", "Product name (required)")
	cmd.Flags().StringVar(&row.Category, "category", "", "Category, e.g. keychains (required)")
	cmd.Flags().Float64Var(&row.Price, "price", 0, "Price in rupees")
	cmd.Flags().StringVar(&row.Description, "description", "", "Description")
	cmd.Flags().StringVar(&row.ModelURL, "model-url", "", "3D model URL")
	cmd.Flags().StringVar(&row.Font, "font", "", "Default template font")
	cmd.Flags().StringVar(&row.Color, "color", "", "Default template color")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newProductsUpdateCmd(a *app) *cobra.Command {
	var (
		name, category, description, modelURL string
		price                                 float64
	)

	cmd := &cobra.Command{
		Use:   "update PRODUCT_ID",
		Short: "Change fields of a product (admin)",
		Long:  "Only the flags given are sent; other fields keep their values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.ProductUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("category") {
				update.Category = &category
			}
			if flags.Changed("price") {
				update.Price = &price
			}
			if flags.Changed("description") {
				update.Description = &description
			}
			if flags.Changed("model-url") {
				update.ModelURL = &modelURL
			}
			if update.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}

			ctx, cancel := a.commandContext()
			defer cancel()

			p, err := a.client.Products.Update(ctx, args[0], update)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().Float64Var(&price, "price", 0, "New price")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&modelURL, "model-url", "", "New 3D model URL")
	return cmd
}

func newProductsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PRODUCT_ID",
		Short: "Delete a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			if err := a.client.Products.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		},
	}
}

func newProductsImportCmd(a *app) *cobra.Command {
	var region string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import SOURCE...",
		Short: "Create products from CSV files (admin)",
		Long: `Create one product per CSV row. A source is a local path, an http(s)
URL or s3://bucket/key; names ending in .gz are decompressed.

Columns: name, category, price, description, model_url, font, color.
Invalid rows are reported and skipped; the remaining rows still import.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			loader := importer.NewLoader(importer.WithRegion(region))
			rows, err := loader.LoadAll(ctx, args)
			if err != nil {
				return err
			}
			a.logger.Debug("loaded rows", "sources", len(args), "rows", len(rows))

			if dryRun {
				invalid := 0
				for i, row := range rows {
					if err := row.Validate(); err != nil {
						invalid++
						loc := row.Location()
						if loc == "" {
							loc = fmt.Sprintf("row %d", i+1)
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", loc, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d invalid\n", len(rows), invalid)
				return nil
			}

			res, err := importer.Import(ctx, a.client.Products, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d products, %d failed\n", res.Created, res.Failed)
			if err != nil {
				return fmt.Errorf("import incomplete:\n%w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region for s3:// sources")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate rows without creating products")
	return cmd
}

func newProductsExportCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Write the catalog to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			var all []models.Product
			for skip := 0; ; skip += exportPageSize {
				page, err := a.client.Products.List(ctx, client.ProductListOptions{
					Category: category,
					Skip:     skip,
					Limit:    exportPageSize,
				})
				if err != nil {
					return err
				}
				all = append(all, page...)
				if len(page) < exportPageSize {
					break
				}
			}

			if err := importer.Export(args[0], all); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(all), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only export this category")
	return cmd
}
