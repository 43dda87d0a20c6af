// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/api"
	"github.com/pdiddy/paper-search/internal/arxiv"
	"github.com/pdiddy/paper-search/internal/client"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/secrets"
	"github.com/pdiddy/paper-search/internal/store"
	"github.com/pdiddy/paper-search/internal/webui"
	"github.com/pdiddy/paper-search/pkg/types"
)

const defaultClientTimeout = 30 * time.Second

func setDefaults() {
	viper.SetDefault("client.endpoint", client.DefaultEndpoint)
	viper.SetDefault("client.top_k", types.DefaultTopK)
	viper.SetDefault("client.timeout", defaultClientTimeout)

	viper.SetDefault("fetch.query", arxiv.DefaultQuery)
	viper.SetDefault("fetch.total", arxiv.DefaultTotal)
	viper.SetDefault("fetch.batch_size", arxiv.DefaultBatchSize)
	viper.SetDefault("fetch.delay", arxiv.DefaultDelay)
	viper.SetDefault("fetch.attempts", arxiv.DefaultAttempts)
	viper.SetDefault("fetch.retry_delay", arxiv.DefaultRetryDelay)
	viper.SetDefault("fetch.timeout", arxiv.DefaultTimeout)

	viper.SetDefault("store.path", store.DefaultPath)
	viper.SetDefault("index.path", index.DefaultPath)

	viper.SetDefault("server.addr", api.DefaultAddr)
	viper.SetDefault("server.allowed_origins", api.DefaultAllowedOrigins)
	viper.SetDefault("server.max_top_k", api.DefaultMaxTopK)

	viper.SetDefault("ui.addr", webui.DefaultAddr)
}

// bindFlags binds the named flags of cmd to config keys. Called from RunE
// so commands sharing a key do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig assembles the component configurations from viper.
func loadConfig() types.Config {
	userAgent := secrets.UserAgent(defaultUserAgent, loadedSecrets)

	return types.Config{
		Client: types.ClientConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("client.timeout"),
				UserAgent: defaultUserAgent,
			},
			Endpoint: viper.GetString("client.endpoint"),
			TopK:     viper.GetInt("client.top_k"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: userAgent,
			},
			Query:      viper.GetString("fetch.query"),
			Total:      viper.GetInt("fetch.total"),
			BatchSize:  viper.GetInt("fetch.batch_size"),
			Delay:      viper.GetDuration("fetch.delay"),
			Attempts:   viper.GetInt("fetch.attempts"),
			RetryDelay: viper.GetDuration("fetch.retry_delay"),
		},
		Store: types.StoreConfig{Path: viper.GetString("store.path")},
		Index: types.IndexConfig{Path: viper.GetString("index.path")},
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
			MaxTopK:        viper.GetInt("server.max_top_k"),
		},
		UI: types.UIConfig{Addr: viper.GetString("ui.addr")},
	}
}
