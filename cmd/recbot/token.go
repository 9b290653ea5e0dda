package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aoe2league/recbot/internal/creds"
)

func tokenCmd() *cobra.Command {
	var (
		clientPath string
		tokenPath  string
		scopes     []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Run the OAuth console flow and write the token file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := creds.LoadClientConfig(clientPath, scopes)
			if err != nil {
				return err
			}

			// Refresh in place when the existing token still carries a
			// refresh token; otherwise run the interactive flow.
			if existing, err := creds.Load(tokenPath); err == nil && existing.RefreshToken != "" {
				provider := creds.NewProvider(cmd.Context(), cfg, existing)
				refreshed, err := provider.Current()
				if err == nil {
					if err := creds.Save(tokenPath, refreshed); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed: %s\n", tokenPath)
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Refresh failed (%v), falling back to the authorization flow.\n", err)
			}

			token, err := creds.Authorize(cmd.Context(), cfg, os.Stdin, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := creds.Save(tokenPath, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved: %s\n", tokenPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientPath, "credentials", "credentials.json", "path to the OAuth client credentials file")
	cmd.Flags().StringVar(&tokenPath, "token", "token.json", "path to write the token file")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{"https://www.googleapis.com/auth/spreadsheets"}, "OAuth scopes to request")
	return cmd
}
