// Command kalactl manages a Kalaasutra store from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kalaasutra/storefront/internal/client"
	"github.com/kalaasutra/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

// app holds the global flags and the objects built from them
type app struct {
	apiURL    string
	tokenFile string
	timeout   time.Duration
	verbose   bool

	logger *slog.Logger
	tokens *client.FileTokenStore
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	defaultURL := os.Getenv("KALAASUTRA_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	defaultTokenFile, err := client.DefaultTokenPath()
	if err != nil {
		defaultTokenFile = ".kalaasutra-token"
	}

	rootCmd := &cobra.Command{
		Use:   "kalactl",
		Short: "Manage a Kalaasutra store",
		Long: `kalactl talks to the Kalaasutra API.

Log in once with 'kalactl login'; the token is kept in the token file and
sent with every later command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			a.logger = logger.NewWithWriter(cmd.ErrOrStderr(), level)
			a.tokens = client.NewFileTokenStore(a.tokenFile)

			c, err := client.New(a.apiURL, client.WithTokenStore(a.tokens))
			if err != nil {
				return err
			}
			a.client = c
			a.logger.Debug("using api", "url", c.BaseURL(), "token_file", a.tokenFile)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", defaultURL, "API base URL (or set KALAASUTRA_API_URL)")
	rootCmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", defaultTokenFile, "Where the access token is stored")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newProductsCmd(a),
		newOrdersCmd(a),
		newPaymentsCmd(a),
	)
	return rootCmd
}

// commandContext returns a context bounded by --timeout and cancelled on SIGINT/SIGTERM
func (a *app) commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// printJSON writes v indented
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
