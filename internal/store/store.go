// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists harvested papers in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = "data/arxiv_papers.db"

const authorSep = ", "

// Store manages the papers SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and creates the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT,
		authors TEXT,
		summary TEXT,
		published TEXT,
		url TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// InsertSummary holds counts from one Insert call.
type InsertSummary struct {
	Inserted   int
	Duplicates int
	Failed     int
}

// Insert adds papers in a single transaction. Papers whose ID is already
// stored are skipped and counted as duplicates; a paper that fails to
// insert is logged and counted without aborting the batch.
func (s *Store) Insert(ctx context.Context, papers []types.Paper) (InsertSummary, error) {
	log := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return InsertSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO papers (id, title, authors, summary, published, url)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return InsertSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary InsertSummary
	for _, p := range papers {
		published := ""
		if !p.Published.IsZero() {
			published = p.Published.UTC().Format(time.RFC3339)
		}
		res, err := stmt.ExecContext(ctx,
			p.ID, p.Title, strings.Join(p.Authors, authorSep), p.Summary, published, p.URL)
		if err != nil {
			log.Error().Err(err).Str("paper", p.ID).Msg("failed to save paper")
			summary.Failed++
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Debug().Str("paper", p.ID).Msg("paper already in database, skipping")
			summary.Duplicates++
			continue
		}
		summary.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return InsertSummary{}, fmt.Errorf("committing papers: %w", err)
	}
	return summary, nil
}

// Count returns the number of stored papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// All returns every stored paper in insertion order.
func (s *Store) All(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, summary, published, url FROM papers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// Get returns the stored papers with the given IDs, keyed by ID. Unknown
// IDs are absent from the map.
func (s *Store) Get(ctx context.Context, ids []string) (map[string]types.Paper, error) {
	out := make(map[string]types.Paper, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, summary, published, url FROM papers WHERE id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	papers, err := scanPapers(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range papers {
		out[p.ID] = p
	}
	return out, nil
}

func scanPapers(rows *sql.Rows) ([]types.Paper, error) {
	var papers []types.Paper
	for rows.Next() {
		var (
			p                                     types.Paper
			title, authors, summary, published, u sql.NullString
		)
		if err := rows.Scan(&p.ID, &title, &authors, &summary, &published, &u); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		p.Title = title.String
		p.Summary = summary.String
		p.URL = u.String
		if authors.String != "" {
			p.Authors = strings.Split(authors.String, authorSep)
		}
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			p.Published = t
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Export writes all stored papers to w as a YAML list.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	papers, err := s.All(ctx)
	if err != nil {
		return err
	}
	if papers == nil {
		papers = []types.Paper{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return enc.Close()
}
