// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds and queries the full-text retrieval index over
// harvested papers. Titles and summaries are analysed with the English
// analyzer; the URL is stored for display only.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultPath is the index directory used when none is configured.
const DefaultPath = "data/papers.index"

const batchSize = 500

// ErrEmptyQuery is returned by Search for a blank prompt.
var ErrEmptyQuery = errors.New("query is empty")

// Index is an open retrieval index.
type Index struct {
	idx bleve.Index
}

// document is the indexed form of a paper.
type document struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

var storedFields = []string{"title", "summary", "url"}

func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName

	url := bleve.NewTextFieldMapping()
	url.Index = false
	url.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("summary", text)
	doc.AddFieldMappingsAt("url", url)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = en.AnalyzerName
	return m
}

// Build indexes papers into a new index at path, replacing any existing
// index there, and writes its manifest. An empty path builds an in-memory
// index without a manifest.
func Build(ctx context.Context, path string, papers []types.Paper) (*Index, error) {
	var (
		idx bleve.Index
		err error
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(newMapping())
	} else {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("removing old index: %w", err)
		}
		idx, err = bleve.New(path, newMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	if err := indexPapers(ctx, idx, papers); err != nil {
		idx.Close()
		return nil, err
	}

	ix := &Index{idx: idx}
	if path != "" {
		count, err := ix.Count()
		if err != nil {
			idx.Close()
			return nil, err
		}
		m := Manifest{Count: count, BuiltAt: time.Now().UTC(), Analyzer: en.AnalyzerName}
		if err := writeManifest(path, m); err != nil {
			idx.Close()
			return nil, err
		}
	}
	return ix, nil
}

func indexPapers(ctx context.Context, idx bleve.Index, papers []types.Paper) error {
	batch := idx.NewBatch()
	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := document{Title: p.Title, Summary: p.Summary, URL: p.URL}
		if err := batch.Index(p.ID, doc); err != nil {
			return fmt.Errorf("indexing paper %s: %w", p.ID, err)
		}
		if batch.Size() >= batchSize || i == len(papers)-1 {
			if err := idx.Batch(batch); err != nil {
				return fmt.Errorf("writing index batch: %w", err)
			}
			batch.Reset()
		}
	}
	return nil
}

// Open opens an existing index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

// Count returns the number of indexed papers.
func (ix *Index) Count() (uint64, error) {
	n, err := ix.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Search returns up to k papers matching prompt, best first. Score is the
// index relevance score (higher is better).
func (ix *Index) Search(ctx context.Context, prompt string, k int) ([]types.ResultItem, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = types.DefaultTopK
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(prompt), k, 0, false)
	req.Fields = storedFields

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	results := make([]types.ResultItem, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, types.ResultItem{
			Title:    field(hit.Fields, "title"),
			Abstract: field(hit.Fields, "summary"),
			URL:      field(hit.Fields, "url"),
			Score:    hit.Score,
		})
	}
	return results, nil
}

func field(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

// Manifest records how an on-disk index was built.
type Manifest struct {
	Count    uint64    `yaml:"count"`
	BuiltAt  time.Time `yaml:"built_at"`
	Analyzer string    `yaml:"analyzer"`
}

// ManifestPath returns the manifest file written alongside the index at path.
func ManifestPath(path string) string {
	return path + ".manifest.yaml"
}

func writeManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(ManifestPath(path), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest of the index at path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(ManifestPath(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
