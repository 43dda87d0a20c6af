// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers as YAML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("db", "", "SQLite database path (default: store.path)")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	return st.Export(cmd.Context(), w)
}
