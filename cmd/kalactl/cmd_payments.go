package main

import (
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newPaymentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"payment"},
		Short:   "Create and verify order payments",
	}
	cmd.AddCommand(
		newPaymentsCreateCmd(a),
		newPaymentsVerifyCmd(a),
		newPaymentsGetCmd(a),
	)
	return cmd
}

func newPaymentsCreateCmd(a *app) *cobra.Command {
	var amount float64
	var currency string

	cmd := &cobra.Command{
		Use:   "create ORDER_ID",
		Short: "Open a payment for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			p, err := a.client.Payments.Create(ctx, args[0], amount, currency)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount in rupees (required)")
	cmd.Flags().StringVar(&currency, "currency", models.DefaultCurrency, "Currency code")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentsVerifyCmd(a *app) *cobra.Command {
	var v models.PaymentVerification

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm a checkout signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			res, err := a.client.Payments.Verify(ctx, v.RazorpayOrderID, v.RazorpayPaymentID, v.RazorpaySignature)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&v.RazorpayOrderID, "razorpay-order-id", "", "Razorpay order id, e.g. order_<ORDER_ID> (required)")
	cmd.Flags().StringVar(&v.RazorpayPaymentID, "payment-id", "", "Razorpay payment id (required)")
	cmd.Flags().StringVar(&v.RazorpaySignature, "signature", "", "Checkout signature (required)")
	_ = cmd.MarkFlagRequired("razorpay-order-id")
	_ = cmd.MarkFlagRequired("payment-id")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func newPaymentsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Show the payment recorded for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext()
			defer cancel()

			p, err := a.client.Payments.GetForOrder(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}
