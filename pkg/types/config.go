// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArxivConfig holds settings for the arXiv metadata client and the PDF
// download stage.
type ArxivConfig struct {
	// BaseURL is the arXiv query endpoint. Overridable for tests.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PDFCacheDir is the directory where downloaded PDFs are stored,
	// keyed by paper ID.
	PDFCacheDir string `json:"pdf_cache_dir" yaml:"pdf_cache_dir"`

	// RateLimitDelay is the minimum gap between consecutive arXiv
	// requests, measured from the end of the previous call (the arXiv
	// usage policy asks for 3 seconds).
	RateLimitDelay time.Duration `json:"rate_limit_delay" yaml:"rate_limit_delay"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxResults is the default page size for metadata fetches.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SearchCategory is the arXiv category queried by default.
	SearchCategory string `json:"search_category" yaml:"search_category"`

	// DownloadMaxRetries is the number of download attempts per paper.
	DownloadMaxRetries int `json:"download_max_retries" yaml:"download_max_retries"`

	// DownloadRetryDelayBase is the base for the linear retry backoff:
	// retry k waits base*k.
	DownloadRetryDelayBase time.Duration `json:"download_retry_delay_base" yaml:"download_retry_delay_base"`

	// UserAgent is sent with every HTTP request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ParserConfig holds settings for PDF validation and the extraction engine.
type ParserConfig struct {
	// MaxPages rejects PDFs with more pages before extraction.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// MaxFileSizeMB rejects PDFs larger than this before extraction.
	MaxFileSizeMB int `json:"max_file_size_mb" yaml:"max_file_size_mb"`

	// DoOCR enables OCR in the extraction engine. Opaque to the pipeline.
	DoOCR bool `json:"do_ocr" yaml:"do_ocr"`

	// DoTableStructure enables table-structure extraction in the engine.
	// Opaque to the pipeline.
	DoTableStructure bool `json:"do_table_structure" yaml:"do_table_structure"`
}

// PipelineConfig holds the concurrency caps for the batch pipeline.
type PipelineConfig struct {
	// MaxConcurrentDownloads bounds in-flight PDF downloads.
	MaxConcurrentDownloads int `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`

	// MaxConcurrentParsing bounds in-flight PDF extractions. Kept low:
	// extraction is CPU and memory heavy while downloads are I/O bound.
	MaxConcurrentParsing int `json:"max_concurrent_parsing" yaml:"max_concurrent_parsing"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// DataDir is the directory containing the curator database.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default cap on search query results.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all component configurations.
type Config struct {
	Arxiv    ArxivConfig    `json:"arxiv" yaml:"arxiv"`
	Parser   ParserConfig   `json:"parser" yaml:"parser"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Store    StoreConfig    `json:"store" yaml:"store"`
}

// DefaultConfig returns the documented defaults for every component.
func DefaultConfig() Config {
	return Config{
		Arxiv: ArxivConfig{
			BaseURL:                "https://export.arxiv.org/api/query",
			PDFCacheDir:            "data/arxiv_pdfs",
			RateLimitDelay:         3 * time.Second,
			Timeout:                30 * time.Second,
			MaxResults:             15,
			SearchCategory:         "cs.AI",
			DownloadMaxRetries:     3,
			DownloadRetryDelayBase: 5 * time.Second,
			UserAgent:              "paper-curator/0.1",
		},
		Parser: ParserConfig{
			MaxPages:         30,
			MaxFileSizeMB:    20,
			DoOCR:            false,
			DoTableStructure: true,
		},
		Pipeline: PipelineConfig{
			MaxConcurrentDownloads: 5,
			MaxConcurrentParsing:   1,
		},
		Store: StoreConfig{
			DataDir:    "data",
			MaxResults: 20,
		},
	}
}
