// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/session"
	"github.com/pdiddy/paper-search/internal/store"
	"github.com/pdiddy/paper-search/pkg/types"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, newLogger(tt.level, "json").GetLevel())
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "paper-search dev\n", out)
}

func TestQueryCommand(t *testing.T) {
	var got types.QueryRequest
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.QueryResponse{Results: []types.ResultItem{
			{Title: "Graph Attention Networks", Abstract: "Attention over graphs.", URL: "http://arxiv.org/abs/1710.10903v3", Score: 3.25},
		}})
	}))
	defer api.Close()

	out, err := execute(t, "query", "--endpoint", api.URL+"/query/", "--top-k", "2", "graph", "attention")
	require.NoError(t, err)

	assert.Equal(t, "graph attention", got.Prompt)
	assert.Equal(t, 2, got.TopK)
	assert.Contains(t, out, "1. Graph Attention Networks")
	assert.Contains(t, out, "http://arxiv.org/abs/1710.10903v3")
	assert.Contains(t, out, "Score: 3.2500")
}

func TestQueryCommandFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer api.Close()

	_, err := execute(t, "query", "--endpoint", api.URL+"/query/", "anything")
	require.Error(t, err)
	assert.Equal(t, session.ErrorMessage, err.Error())
}

func TestIndexAndExportCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "papers.db")

	st, err := store.Open(types.StoreConfig{Path: db})
	require.NoError(t, err)
	_, err = st.Insert(context.Background(), []types.Paper{
		{ID: "1706.03762v7", Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Summary: "The Transformer.", URL: "http://arxiv.org/abs/1706.03762v7"},
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "index", "--db", db, "--out", filepath.Join(dir, "papers.index"))
	require.NoError(t, err)
	assert.Contains(t, out, "Built index with 1 papers")
	assert.FileExists(t, filepath.Join(dir, "papers.index.manifest.yaml"))

	out, err = execute(t, "export", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "1706.03762v7")
}

func TestShowCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "papers.db")
	st, err := store.Open(types.StoreConfig{Path: db})
	require.NoError(t, err)
	_, err = st.Insert(context.Background(), []types.Paper{
		{ID: "1706.03762v7", Title: "Attention Is All You Need"},
		{ID: "1512.03385v1", Title: "Deep Residual Learning"},
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "show", "--db", db, "1512.03385v1", "1706.03762v7")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Deep Residual Learning"), strings.Index(out, "Attention Is All You Need"))

	out, err = execute(t, "show", "--db", db, "1706.03762v7", "0000.00000v1")
	assert.ErrorContains(t, err, "not found: 0000.00000v1")
	assert.Contains(t, out, "Attention Is All You Need")
}

func TestLogManifest(t *testing.T) {
	var buf bytes.Buffer
	old := logger
	logger = zerolog.New(&buf)
	defer func() { logger = old }()

	dir := t.TempDir()
	out := filepath.Join(dir, "papers.index")
	ix, err := index.Build(context.Background(), out, []types.Paper{
		{ID: "1706.03762v7", Title: "Attention Is All You Need", Summary: "The Transformer."},
	})
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	logManifest(out, 1)
	assert.Contains(t, buf.String(), `"message":"index manifest"`)
	assert.NotContains(t, buf.String(), "does not match")

	buf.Reset()
	logManifest(out, 3)
	assert.Contains(t, buf.String(), "manifest count does not match index")

	buf.Reset()
	logManifest(filepath.Join(dir, "missing"), 0)
	assert.Contains(t, buf.String(), "index manifest unavailable")
}

func TestIndexCommandRejectsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "index", "--db", filepath.Join(dir, "empty.db"), "--out", filepath.Join(dir, "idx"))
	assert.ErrorContains(t, err, "run fetch first")
}
