// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv harvests paper metadata from the arXiv Atom API into a store.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/store"
	"github.com/pdiddy/paper-search/pkg/types"
)

// apiBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Defaults for FetchConfig. Harvest applies all but DefaultDelay and
// DefaultTimeout itself; a zero Delay means no pause between batches.
const (
	DefaultQuery      = "machine learning"
	DefaultTotal      = 30000
	DefaultBatchSize  = 100
	DefaultDelay      = 3 * time.Second
	DefaultAttempts   = 3
	DefaultRetryDelay = 5 * time.Second
	DefaultTimeout    = 10 * time.Second
)

// Sink receives each harvested batch.
type Sink interface {
	Insert(ctx context.Context, papers []types.Paper) (store.InsertSummary, error)
}

// Harvester pages through arXiv search results and saves them to a Sink.
type Harvester struct {
	Client *http.Client
	Sink   Sink
}

// HarvestSummary holds counts from a harvest run.
type HarvestSummary struct {
	Batches       int
	FailedBatches int
	EmptyBatches  int
	Saved         int
	Duplicates    int
	Failed        int
}

// Harvest requests cfg.Total papers in pages of cfg.BatchSize, waiting
// cfg.Delay between pages. A page that still fails after cfg.Attempts
// tries is logged and skipped, as is a page with no entries, which the
// API occasionally returns mid-run. Per-batch progress is written to w.
func (h *Harvester) Harvest(ctx context.Context, cfg types.FetchConfig, w io.Writer) (HarvestSummary, error) {
	cfg = withDefaults(cfg)
	log := zerolog.Ctx(ctx)

	var summary HarvestSummary
	for start := 0; start < cfg.Total; start += cfg.BatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}

		summary.Batches++
		log.Info().Int("start", start).Int("end", start+cfg.BatchSize).Msg("requesting papers")

		papers, err := h.Fetch(ctx, cfg, start, cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			log.Error().Err(err).Int("attempts", cfg.Attempts).Msg("batch failed, skipping")
			fmt.Fprintf(w, "failed  %d-%d: %v\n", start, start+cfg.BatchSize, err)
			summary.FailedBatches++
			continue
		}

		if len(papers) == 0 {
			log.Warn().Int("start", start).Msg("no entries found in the API response")
			fmt.Fprintf(w, "empty   %d-%d: no entries found\n", start, start+cfg.BatchSize)
			summary.EmptyBatches++
			continue
		}

		saved, err := h.Sink.Insert(ctx, papers)
		if err != nil {
			return summary, fmt.Errorf("saving batch %d: %w", start, err)
		}
		summary.Saved += saved.Inserted
		summary.Duplicates += saved.Duplicates
		summary.Failed += saved.Failed
		fmt.Fprintf(w, "saved   %d-%d: %d new papers\n", start, start+cfg.BatchSize, saved.Inserted)
	}

	fmt.Fprintf(w, "\nbatches: %d, failed batches: %d, empty batches: %d, saved: %d, duplicates: %d, failed: %d\n",
		summary.Batches, summary.FailedBatches, summary.EmptyBatches, summary.Saved, summary.Duplicates, summary.Failed)
	return summary, nil
}

// Fetch requests one page of results starting at offset start.
func (h *Harvester) Fetch(ctx context.Context, cfg types.FetchConfig, start, max int) ([]types.Paper, error) {
	cfg = withDefaults(cfg)
	q := buildQuery(cfg.Query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	url := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d", apiBase, q, start, max)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, h.Client, req, cfg.Attempts, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(f.Entries))
	for _, e := range f.Entries {
		if p, ok := e.paper(); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

func withDefaults(cfg types.FetchConfig) types.FetchConfig {
	if strings.TrimSpace(cfg.Query) == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.Total <= 0 {
		cfg.Total = DefaultTotal
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return cfg
}

// buildQuery constructs the search_query parameter matching all fields.
func buildQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []author `xml:"author"`
}

type author struct {
	Name string `xml:"name"`
}

func (e entry) paper() (types.Paper, bool) {
	id := paperID(e.ID)
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:      id,
		Title:   collapse(e.Title),
		Summary: collapse(e.Summary),
		URL:     strings.TrimSpace(e.ID),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.Published = t
	}
	return p, true
}

// paperID returns the part of the entry's <id> URL after "/abs/",
// version suffix included (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func paperID(idURL string) string {
	idURL = strings.TrimSpace(idURL)
	const prefix = "/abs/"
	if idx := strings.LastIndex(idURL, prefix); idx >= 0 {
		return idURL[idx+len(prefix):]
	}
	return idURL
}

// collapse joins the whitespace-separated fields of s with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
