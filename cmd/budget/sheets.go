package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/config"
	"github.com/Veraticus/budget-buddy/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets integration",
	}

	cmd.AddCommand(sheetsAuthCmd())

	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var clientID, clientSecret, callback string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This opens a local callback server, prints a URL to visit, and stores the
resulting token. Add the printed refresh token to sheets.refresh_token in
your config to use it with "budget export --sheets".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clientID == "" {
				clientID = viper.GetString("sheets.client_id")
			}
			if clientSecret == "" {
				clientSecret = viper.GetString("sheets.client_secret")
			}
			if clientID == "" || clientSecret == "" {
				return common.NewUserError(
					"OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret",
					common.ErrMissingConfig,
				)
			}

			tokenFile := config.TokenPath(viper.GetViper())
			slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: callback,
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if token.RefreshToken == "" {
				return errors.New("authentication succeeded but no refresh token was returned")
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.FormatSuccess("Authenticated with Google Sheets"))
			_, err = fmt.Fprintf(out, "  Refresh token: %s\n  Token file: %s\n", token.RefreshToken, tokenFile)
			return err
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().StringVar(&callback, "callback-addr", sheets.DefaultCallbackAddr, "local address for the OAuth2 redirect")

	return cmd
}
