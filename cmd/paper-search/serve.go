// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/api"
	"github.com/pdiddy/paper-search/internal/index"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over the retrieval index",
	Long: `Serve opens the index built by "index" and answers
POST /query/ with {"prompt": "...", "top_k": N}. The response is
{"results": [{"title", "abstract", "url", "score"}, ...]}, best first.

Also exposes /healthz and Prometheus metrics on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().String("index", "", "index directory (default: index.path)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"server.addr": "addr"}); err != nil {
		return err
	}
	cfg := loadConfig()
	if p, _ := cmd.Flags().GetString("index"); p != "" {
		cfg.Index.Path = p
	}

	ix, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Count()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.Info().Uint64("papers", n).Str("index", cfg.Index.Path).Msg("index loaded")
	logManifest(cfg.Index.Path, n)

	srv := api.New(ix, cfg.Server, reg, logger)
	return srv.Run(cmd.Context(), cfg.Server.Addr)
}

// logManifest reports how the index was built and warns when the manifest
// disagrees with the index it sits next to.
func logManifest(path string, docs uint64) {
	m, err := index.ReadManifest(path)
	if err != nil {
		logger.Warn().Err(err).Msg("index manifest unavailable")
		return
	}
	logger.Info().
		Time("built_at", m.BuiltAt).
		Str("analyzer", m.Analyzer).
		Uint64("count", m.Count).
		Msg("index manifest")
	if m.Count != docs {
		logger.Warn().Uint64("manifest", m.Count).Uint64("index", docs).Msg("manifest count does not match index")
	}
}
