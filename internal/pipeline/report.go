// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// BatchReport aggregates per-paper outcomes for one pipeline run. The
// failure lists preserve completion order, not request order: completion
// order is scheduler-dependent and callers must not rely on it.
type BatchReport struct {
	// PapersFetched is the number of metadata records the batch started with.
	PapersFetched int `json:"papers_fetched" yaml:"papers_fetched"`

	// PDFsDownloaded counts papers whose PDF reached the cache. It includes
	// papers that later failed parsing: always PDFsDownloaded +
	// len(DownloadFailures) == PapersFetched.
	PDFsDownloaded int `json:"pdfs_downloaded" yaml:"pdfs_downloaded"`

	// PDFsParsed counts papers with extracted content.
	PDFsParsed int `json:"pdfs_parsed" yaml:"pdfs_parsed"`

	// ParsedPapers maps paper ID to extracted content for every success.
	ParsedPapers map[string]*types.PDFContent `json:"parsed_papers" yaml:"parsed_papers"`

	// DownloadFailures lists paper IDs whose download failed terminally.
	DownloadFailures []string `json:"download_failures" yaml:"download_failures"`

	// ParseFailures lists paper IDs that downloaded but failed parsing.
	ParseFailures []string `json:"parse_failures" yaml:"parse_failures"`

	// Errors holds one human-readable entry per failure, plus any
	// unexpected per-paper errors. A batch with every paper failed is
	// still a valid, non-error result.
	Errors []string `json:"errors" yaml:"errors"`
}

func newBatchReport(fetched int) *BatchReport {
	return &BatchReport{
		PapersFetched: fetched,
		ParsedPapers:  make(map[string]*types.PDFContent),
	}
}

// HasFailures reports whether any paper failed either stage.
func (r *BatchReport) HasFailures() bool {
	return len(r.DownloadFailures) > 0 || len(r.ParseFailures) > 0
}

// Summary returns a one-line digest of the batch.
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("fetched %d, downloaded %d, parsed %d (download failures: %d, parse failures: %d)",
		r.PapersFetched, r.PDFsDownloaded, r.PDFsParsed,
		len(r.DownloadFailures), len(r.ParseFailures))
}
