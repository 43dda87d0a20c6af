// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/client"
	"github.com/pdiddy/paper-search/internal/session"
	"github.com/pdiddy/paper-search/internal/webui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Serve the search form",
	Long: `UI serves the browser search form. Each browser gets its own
session; submitting the form sends the prompt to the query API
(client.endpoint) and the page shows the results once they arrive.`,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().String("addr", "", "listen address (default: ui.addr)")
	uiCmd.Flags().String("endpoint", "", "query API URL (default: client.endpoint)")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"ui.addr":         "addr",
		"client.endpoint": "endpoint",
	}); err != nil {
		return err
	}
	cfg := loadConfig()

	c := client.New(cfg.Client)
	newSession := func() *session.Session {
		return session.New(c, cfg.Client.TopK, logger)
	}

	logger.Info().Str("endpoint", cfg.Client.Endpoint).Msg("query API")
	return webui.New(newSession, logger).Run(cmd.Context(), cfg.UI.Addr)
}
