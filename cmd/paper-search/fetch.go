// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/arxiv"
	"github.com/pdiddy/paper-search/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest paper metadata from arXiv into the local store",
	Long: `Fetch pages through the arXiv search API and saves each paper's
metadata (id, title, authors, abstract, publication date, URL) into the
SQLite store. Papers already present are skipped, so a fetch can be
re-run to top up an existing store.

A page that keeps failing after the configured attempts is logged and
skipped; the run continues with the next page.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", arxiv.DefaultQuery, "arXiv search terms")
	fetchCmd.Flags().Int("total", arxiv.DefaultTotal, "number of papers to request")
	fetchCmd.Flags().Int("batch-size", arxiv.DefaultBatchSize, "papers per request")
	fetchCmd.Flags().Duration("delay", arxiv.DefaultDelay, "pause between requests")
	fetchCmd.Flags().String("db", "", "SQLite database path (default: store.path)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"fetch.query":      "query",
		"fetch.total":      "total",
		"fetch.batch_size": "batch-size",
		"fetch.delay":      "delay",
	}); err != nil {
		return err
	}
	cfg := loadConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	h := &arxiv.Harvester{
		Client: &http.Client{Timeout: cfg.Fetch.Timeout},
		Sink:   st,
	}

	logger.Info().
		Str("query", cfg.Fetch.Query).
		Int("total", cfg.Fetch.Total).
		Str("db", cfg.Store.Path).
		Msg("fetching papers")

	sum, err := h.Harvest(cmd.Context(), cfg.Fetch, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	if sum.Batches > 0 && sum.FailedBatches == sum.Batches {
		return fmt.Errorf("all %d batches failed", sum.Batches)
	}
	return nil
}
