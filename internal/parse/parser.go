// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse validates cached PDFs and extracts structured content
// through a pluggable extraction engine.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// Engine extracts structured content from a PDF. Implementations are
// opaque to the pipeline: engine options (OCR, table structure) are fixed
// at construction and never inspected here.
type Engine interface {
	// Name identifies the engine for provenance.
	Name() types.ParserType

	// Extract reads the PDF at pdfPath and returns its content.
	Extract(pdfPath string) (*types.PDFContent, error)
}

// pdfMagic is the signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

// Parser validates PDFs and delegates extraction to an Engine. Validation
// is deliberately cheap relative to extraction so oversized or broken
// input is rejected before paying the engine's cost.
type Parser struct {
	engine Engine
	cfg    types.ParserConfig
	log    zerolog.Logger
}

// NewParser creates a Parser around the given engine.
func NewParser(engine Engine, cfg types.ParserConfig) *Parser {
	return &Parser{
		engine: engine,
		cfg:    cfg,
		log:    logging.NewLogger("parse"),
	}
}

// Parse validates the PDF at path and extracts its content. The checks
// run in order, each short-circuiting the rest: missing file, empty file,
// size ceiling, page-count ceiling, magic-byte signature. Failures are a
// ValidationError; engine failures or an empty engine result are a
// ParsingError. On success RawText is always populated; Sections may be
// empty when the engine detected no structure.
func (p *Parser) Parse(path string) (*types.PDFContent, error) {
	if err := p.validate(path); err != nil {
		return nil, err
	}

	content, err := p.engine.Extract(path)
	if err != nil {
		return nil, &ParsingError{Path: path, Err: err}
	}
	if content == nil || content.RawText == "" {
		return nil, &ParsingError{Path: path, Err: errors.New("engine returned no usable result")}
	}

	if content.ParserUsed == "" {
		content.ParserUsed = p.engine.Name()
	}

	p.log.Info().Str("path", path).Int("sections", len(content.Sections)).
		Int("raw_text_chars", len(content.RawText)).Msg("parsed PDF")
	return content, nil
}

func (p *Parser) validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Path: path, Reason: "file does not exist"}
	}
	if info.Size() == 0 {
		return &ValidationError{Path: path, Reason: "file is empty"}
	}

	maxBytes := int64(p.cfg.MaxFileSizeMB) << 20
	if maxBytes > 0 && info.Size() > maxBytes {
		return &ValidationError{
			Path:   path,
			Reason: fmt.Sprintf("file size %d exceeds limit of %d MB", info.Size(), p.cfg.MaxFileSizeMB),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("unreadable: %v", err)}
	}

	if p.cfg.MaxPages > 0 {
		if pages := countPages(data); pages > p.cfg.MaxPages {
			return &ValidationError{
				Path:   path,
				Reason: fmt.Sprintf("page count %d exceeds limit of %d", pages, p.cfg.MaxPages),
			}
		}
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return &ValidationError{Path: path, Reason: "missing %PDF signature"}
	}
	return nil
}

// countPages estimates the page count by counting page object markers.
// Zero means the count could not be determined, which passes the ceiling
// check; the engine enforces its own limits during extraction.
func countPages(data []byte) int {
	count := bytes.Count(data, []byte("/Type /Page")) + bytes.Count(data, []byte("/Type/Page"))
	// The markers above also match the page-tree node "/Type /Pages".
	count -= bytes.Count(data, []byte("/Type /Pages")) + bytes.Count(data, []byte("/Type/Pages"))
	if count < 0 {
		return 0
	}
	return count
}
