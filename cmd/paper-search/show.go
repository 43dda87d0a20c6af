// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/internal/store"
	"github.com/pdiddy/paper-search/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <id...>",
	Short: "Print stored papers by arXiv ID",
	Long: `Show looks up papers in the store by ID (with version suffix, e.g.
1706.03762v7) and prints them as YAML in the order given. Unknown IDs
are reported as an error after the known ones are printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("db", "", "SQLite database path (default: store.path)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	found, err := st.Get(cmd.Context(), args)
	if err != nil {
		return err
	}

	var (
		papers  []types.Paper
		missing []string
	)
	for _, id := range args {
		p, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		papers = append(papers, p)
	}

	if len(papers) > 0 {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(papers); err != nil {
			return fmt.Errorf("encoding papers: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("not found: %s", strings.Join(missing, ", "))
	}
	return nil
}
