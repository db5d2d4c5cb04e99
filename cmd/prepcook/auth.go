package main

import (
	"fmt"
	"time"

	"github.com/cguess/prepcook/internal/auth"
	"github.com/spf13/cobra"
)

func newAuthCmd(root *rootOptions) *cobra.Command {
	var (
		noBrowser bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Docs and store the token",
		Long: `Run the OAuth consent flow for the client in credentials.json and save
the resulting token, so later exports run without a browser.

A consent URL is printed and, unless --no-browser is given, opened in the
default browser. The redirect is received on a loopback port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), root.verbose)

			flow := &auth.LoopbackFlow{Out: cmd.ErrOrStderr(), Timeout: timeout}
			if !noBrowser {
				flow.OpenBrowser = openBrowser
			}
			p := &auth.FileProvider{
				CredentialsFile: cfg.CredentialsFile,
				TokenFile:       cfg.TokenFile,
				Scopes:          cfg.Scopes,
				Flow:            flow,
				Log:             log,
			}

			tok, err := p.Authorize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved in %s", cfg.TokenFile)
			if !tok.Expiry.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), " (access token expires %s)", tok.Expiry.Format(time.RFC3339))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print the consent URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the browser redirect")
	return cmd
}
