// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types shared across the curation pipeline.
package types

// ParserType identifies the extraction engine that produced a PDFContent.
type ParserType string

const (
	// ParserDocling is the docling layout-analysis engine.
	ParserDocling ParserType = "docling"
)

// ArxivPaper holds the metadata for one paper as returned by the arXiv
// search API, prior to any PDF download. Values are never mutated after
// the client produces them.
type ArxivPaper struct {
	// PaperID is the arXiv-assigned identifier (e.g. "2301.07041"),
	// with any version suffix stripped.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title with newlines collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract with newlines collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories lists the arXiv category tags (e.g. "cs.AI").
	Categories []string `json:"categories" yaml:"categories"`

	// PDFURL is the HTTPS link to the paper's PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}

// PaperSection is one structural unit detected by the extraction engine.
type PaperSection struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Content is the section body text.
	Content string `json:"content" yaml:"content"`

	// Level is the heading hierarchy level, starting at 1.
	Level int `json:"level" yaml:"level"`
}

// PDFContent holds the structured output of PDF extraction. RawText is
// always populated when extraction succeeds; Sections may be empty when
// the engine could not detect document structure, in which case callers
// fall back to RawText.
type PDFContent struct {
	Sections   []PaperSection `json:"sections" yaml:"sections"`
	RawText    string         `json:"raw_text" yaml:"raw_text"`
	ParserUsed ParserType     `json:"parser_used" yaml:"parser_used"`

	// Metadata carries free-form engine output (page counts, timings).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
