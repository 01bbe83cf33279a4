package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Place and track orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(a),
		newOrdersGetCmd(a),
		newOrdersCreateCmd(a),
		newOrdersUpdateCmd(a),
	)
	return cmd
}

func newOrdersListCmd(a *app) *cobra.Command {
	var skip, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			orders, err := a.client.Orders.List(ctx, skip, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), orders)
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Orders to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum orders to return (server default 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printOrders(w io.Writer, orders []models.Order) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPAYMENT\tITEMS\tTOTAL\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%s\n",
			o.ID, o.Status, o.PaymentStatus, len(o.Items), o.TotalAmount, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newOrdersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			o, err := a.client.Orders.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), o)
		},
	}
}

// parseItem reads PRODUCT_ID[:QUANTITY]
func parseItem(s string) (models.OrderItem, error) {
	id, qty, found := strings.Cut(s, ":")
	item := models.OrderItem{ProductID: strings.TrimSpace(id), Quantity: 1}
	if item.ProductID == "" {
		return item, fmt.Errorf("invalid item %q: missing product id", s)
	}
	if found {
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			return item, fmt.Errorf("invalid item %q: quantity must be a positive integer", s)
		}
		item.Quantity = n
	}
	return item, nil
}

func newOrdersCreateCmd(a *app) *cobra.Command {
	var (
		items []string
		req   models.OrderRequest
		text  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place an order",
		Long: `Place an order. Give each line as --item PRODUCT_ID[:QUANTITY].
Prices are taken from the catalog by the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range items {
				item, err := parseItem(s)
				if err != nil {
					return err
				}
				if text != "" {
					item.Customization = &models.Customization{Text: text}
				}
				req.Items = append(req.Items, item)
			}

			ctx, cancel := a.commandContext()
			defer cancel()

			o, err := a.client.Orders.Create(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), o)
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "Order line PRODUCT_ID[:QUANTITY] (repeatable)")
	cmd.Flags().StringVar(&req.ShippingAddress, "address", "", "Shipping address (required)")
	cmd.Flags().StringVar(&req.ContactNumber, "phone", "", "Contact number (required)")
	cmd.Flags().StringVar(&text, "text", "", "Personalization text for every item")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newOrdersUpdateCmd(a *app) *cobra.Command {
	var status, tracking string

	cmd := &cobra.Command{
		Use:   "update ORDER_ID",
		Short: "Change an order's status or tracking number (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.OrderUpdate
			if cmd.Flags().Changed("status") {
				s := models.OrderStatus(status)
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				update.Status = &s
			}
			if cmd.Flags().Changed("tracking") {
				update.TrackingNumber = &tracking
			}
			if update.Status == nil && update.TrackingNumber == nil {
				return fmt.Errorf("nothing to update: pass --status or --tracking")
			}

			ctx, cancel := a.commandContext()
			defer cancel()

			o, err := a.client.Orders.Update(ctx, args[0], update)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), o)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, confirmed, in_production, shipped, delivered or cancelled")
	cmd.Flags().StringVar(&tracking, "tracking", "", "Tracking number")
	return cmd
}
