// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "papers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePapers() []types.Paper {
	return []types.Paper{
		{
			ID:        "1706.03762v7",
			Title:     "Attention Is All You Need",
			Authors:   []string{"Ashish Vaswani", "Noam Shazeer"},
			Summary:   "The dominant sequence transduction models are based on recurrent networks.",
			Published: time.Date(2017, 6, 12, 17, 57, 34, 0, time.UTC),
			URL:       "http://arxiv.org/abs/1706.03762v7",
		},
		{
			ID:        "1901.00596v4",
			Title:     "A Comprehensive Survey on Graph Neural Networks",
			Authors:   []string{"Zonghan Wu"},
			Summary:   "Deep learning has revolutionized many machine learning tasks.",
			Published: time.Date(2019, 1, 3, 3, 20, 55, 0, time.UTC),
			URL:       "http://arxiv.org/abs/1901.00596v4",
		},
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	s := testStore(t)
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsertAndAll(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	summary, err := s.Insert(ctx, samplePapers())
	require.NoError(t, err)
	assert.Equal(t, InsertSummary{Inserted: 2}, summary)

	papers, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, samplePapers(), papers)
}

func TestInsertSkipsDuplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, samplePapers()[:1])
	require.NoError(t, err)

	summary, err := s.Insert(ctx, samplePapers())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 0, summary.Failed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertWithoutOptionalFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, []types.Paper{{ID: "2401.00001v1", Title: "Bare"}})
	require.NoError(t, err)

	papers, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Empty(t, papers[0].Authors)
	assert.True(t, papers[0].Published.IsZero())
}

func TestGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, samplePapers())
	require.NoError(t, err)

	got, err := s.Get(ctx, []string{"1901.00596v4", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A Comprehensive Survey on Graph Neural Networks", got["1901.00596v4"].Title)

	empty, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, samplePapers())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))

	var papers []types.Paper
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &papers))
	require.Len(t, papers, 2)
	assert.Equal(t, "1706.03762v7", papers[0].ID)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, papers[0].Authors)
}
