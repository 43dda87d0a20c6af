// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/store"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index from the paper store",
	Long: `Index reads every paper from the SQLite store and rebuilds the
full-text index over titles and abstracts. An existing index at the
target path is replaced. A manifest recording the paper count and build
time is written next to the index.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("db", "", "SQLite database path (default: store.path)")
	indexCmd.Flags().String("out", "", "index directory (default: index.path)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Index.Path = out
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	papers, err := st.All(cmd.Context())
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		return fmt.Errorf("no papers in %s; run fetch first", cfg.Store.Path)
	}

	ix, err := index.Build(cmd.Context(), cfg.Index.Path, papers)
	if err != nil {
		return err
	}
	defer ix.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Built index with %d papers at %s\n", len(papers), cfg.Index.Path)
	return nil
}
