package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Long: `Log in with email and password. The token is written atomically to
--token-file and used by every later command.

The password is read from --password, then KALAASUTRA_PASSWORD, then stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("KALAASUTRA_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			ctx, cancel := a.commandContext()
			defer cancel()

			token, err := a.client.Auth.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := a.tokens.Save(token.AccessToken); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req models.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = models.Role(role)

			ctx, cancel := a.commandContext()
			defer cancel()

			user, err := a.client.Auth.Register(ctx, req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password (required)")
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&role, "role", "", "Role: user, employee or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
