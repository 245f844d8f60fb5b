// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists curated papers and their extracted content in a
// SQLite database with an FTS5 full-text index.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
	"github.com/Tatuum/RAG-research-paper-curator/internal/pipeline"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

const dbFile = "curator.db"

// Store manages the curated-paper SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
	log        zerolog.Logger
}

// StoredPaper is a persisted paper with its parsing state.
type StoredPaper struct {
	types.ArxivPaper `yaml:",inline"`

	PDFProcessed bool                 `json:"pdf_processed" yaml:"pdf_processed"`
	ParserUsed   types.ParserType     `json:"parser_used,omitempty" yaml:"parser_used,omitempty"`
	RawText      string               `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	Sections     []types.PaperSection `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// NewStore opens or creates the database at cfg.DataDir/curator.db and
// ensures the schema exists.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		maxResults: maxResults,
		log:        logging.NewLogger("store"),
	}

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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			paper_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			abstract TEXT NOT NULL,
			categories TEXT NOT NULL,
			pdf_url TEXT NOT NULL,
			pdf_processed INTEGER NOT NULL DEFAULT 0,
			parser_used TEXT,
			raw_text TEXT,
			sections TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_processed ON papers(pdf_processed)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, raw_text, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract, raw_text)
				VALUES (new.rowid, new.title, new.abstract, new.raw_text);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, raw_text)
				VALUES('delete', old.rowid, old.title, old.abstract, old.raw_text);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, raw_text)
				VALUES('delete', old.rowid, old.title, old.abstract, old.raw_text);
				INSERT INTO papers_fts(rowid, title, abstract, raw_text)
				VALUES (new.rowid, new.title, new.abstract, new.raw_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// SavePaper upserts one paper and, when content is non-nil, its extracted
// text and sections.
func (s *Store) SavePaper(ctx context.Context, paper types.ArxivPaper, content *types.PDFContent) error {
	authors, err := json.Marshal(paper.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}
	categories, err := json.Marshal(paper.Categories)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}

	var (
		processed  int
		parserUsed sql.NullString
		rawText    sql.NullString
		sections   sql.NullString
	)
	if content != nil {
		processed = 1
		parserUsed = sql.NullString{String: string(content.ParserUsed), Valid: true}
		rawText = sql.NullString{String: content.RawText, Valid: true}
		secJSON, err := json.Marshal(content.Sections)
		if err != nil {
			return fmt.Errorf("marshaling sections: %w", err)
		}
		sections = sql.NullString{String: string(secJSON), Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers
			(paper_id, title, authors, abstract, categories, pdf_url,
			 pdf_processed, parser_used, raw_text, sections, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(paper_id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			abstract = excluded.abstract,
			categories = excluded.categories,
			pdf_url = excluded.pdf_url,
			pdf_processed = excluded.pdf_processed,
			parser_used = excluded.parser_used,
			raw_text = excluded.raw_text,
			sections = excluded.sections,
			updated_at = excluded.updated_at`,
		paper.PaperID, paper.Title, string(authors), paper.Abstract,
		string(categories), paper.PDFURL,
		processed, parserUsed, rawText, sections, now, now)
	if err != nil {
		return fmt.Errorf("saving paper %s: %w", paper.PaperID, err)
	}
	return nil
}

// SaveReport persists every paper from a completed batch, attaching
// extracted content for the parsed ones. It returns the number of papers
// saved; individual save failures are logged and skipped so one bad row
// does not lose the rest of the batch.
func (s *Store) SaveReport(ctx context.Context, papers []types.ArxivPaper, report *pipeline.BatchReport) (int, error) {
	saved := 0
	for _, paper := range papers {
		content := report.ParsedPapers[paper.PaperID]
		if err := s.SavePaper(ctx, paper, content); err != nil {
			s.log.Warn().Str("paper_id", paper.PaperID).Err(err).Msg("skipping unsavable paper")
			continue
		}
		saved++
	}
	s.log.Info().Int("saved", saved).Int("papers", len(papers)).Msg("persisted batch")
	return saved, nil
}

// GetPaper loads one paper by ID. Returns sql.ErrNoRows when absent.
func (s *Store) GetPaper(ctx context.Context, paperID string) (*StoredPaper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT paper_id, title, authors, abstract, categories, pdf_url,
			pdf_processed, parser_used, raw_text, sections
		FROM papers WHERE paper_id = ?`, paperID)
	return scanPaper(row)
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	PaperID string  `json:"paper_id" yaml:"paper_id"`
	Title   string  `json:"title" yaml:"title"`
	Snippet string  `json:"snippet" yaml:"snippet"`
	Rank    float64 `json:"rank" yaml:"rank"`
}

// Search runs an FTS5 query over titles, abstracts, and extracted text,
// returning hits ranked by relevance. A zero limit uses the store default.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.paper_id, p.title,
			snippet(papers_fts, 2, '[', ']', '...', 16),
			papers_fts.rank
		FROM papers_fts
		JOIN papers p ON p.rowid = papers_fts.rowid
		WHERE papers_fts MATCH ?
		ORDER BY papers_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.PaperID, &r.Title, &r.Snippet, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*StoredPaper, error) {
	var (
		p           StoredPaper
		authorsJSON string
		catJSON     string
		processed   int
		parserUsed  sql.NullString
		rawText     sql.NullString
		sections    sql.NullString
	)
	if err := row.Scan(&p.PaperID, &p.Title, &authorsJSON, &p.Abstract, &catJSON,
		&p.PDFURL, &processed, &parserUsed, &rawText, &sections); err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(authorsJSON), &p.Authors)
	json.Unmarshal([]byte(catJSON), &p.Categories)
	p.PDFProcessed = processed != 0
	if parserUsed.Valid {
		p.ParserUsed = types.ParserType(parserUsed.String)
	}
	if rawText.Valid {
		p.RawText = rawText.String
	}
	if sections.Valid {
		json.Unmarshal([]byte(sections.String), &p.Sections)
	}
	return &p, nil
}
