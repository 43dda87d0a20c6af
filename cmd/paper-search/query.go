// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/client"
	"github.com/pdiddy/paper-search/internal/session"
)

var queryCmd = &cobra.Command{
	Use:   "query <prompt...>",
	Short: "Search papers from the terminal",
	Long: `Query sends the prompt to the query API and prints the results
as a numbered list (or JSON with --json). A blank prompt does nothing.

Examples:
  paper-search query transformers for protein folding
  paper-search query --top-k 10 --json graph neural networks`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("top-k", 0, "number of results (default: client.top_k)")
	queryCmd.Flags().String("endpoint", "", "query API URL (default: client.endpoint)")
	queryCmd.Flags().Bool("json", false, "print results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"client.endpoint": "endpoint"}); err != nil {
		return err
	}
	cfg := loadConfig()
	if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
		cfg.Client.TopK = k
	}

	s := session.New(client.New(cfg.Client), cfg.Client.TopK, logger)
	s.SetPrompt(strings.Join(args, " "))
	if err := s.Submit(cmd.Context()); err != nil {
		st := s.State()
		return errors.New(st.Error)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return session.FormatJSON(s.State(), out)
	}
	session.FormatText(s.State(), out)
	return nil
}
