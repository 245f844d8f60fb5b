// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the batch fetch-download-parse flow. Each
// paper runs as its own goroutine through two stages gated by independent
// semaphores, so parsing of one paper overlaps with downloads of others.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// MetadataSource provides one page of paper metadata. Implemented by
// arxiv.Client.
type MetadataSource interface {
	FetchPapers(ctx context.Context, start, maxResults int) ([]types.ArxivPaper, error)
}

// Downloader retrieves a paper's PDF to local storage. Implemented by
// fetch.Fetcher.
type Downloader interface {
	Download(ctx context.Context, paper types.ArxivPaper, force bool) (string, error)
}

// ContentParser validates and extracts a downloaded PDF. Implemented by
// parse.Parser.
type ContentParser interface {
	Parse(path string) (*types.PDFContent, error)
}

// Orchestrator runs batches of papers through download and parse stages.
// The two semaphores are the only shared mutable state: downloads are
// I/O bound and get a wider cap than the CPU-heavy parse stage. A paper's
// download slot is always released before its parse slot is requested, so
// the stages cannot deadlock on each other.
type Orchestrator struct {
	source MetadataSource
	fetch  Downloader
	parser ContentParser

	downloadSlots chan struct{}
	parseSlots    chan struct{}

	log zerolog.Logger
}

// NewOrchestrator creates an Orchestrator with the configured stage caps.
// Non-positive caps fall back to 1.
func NewOrchestrator(source MetadataSource, fetch Downloader, parser ContentParser, cfg types.PipelineConfig) *Orchestrator {
	downloads := cfg.MaxConcurrentDownloads
	if downloads <= 0 {
		downloads = 1
	}
	parses := cfg.MaxConcurrentParsing
	if parses <= 0 {
		parses = 1
	}

	return &Orchestrator{
		source:        source,
		fetch:         fetch,
		parser:        parser,
		downloadSlots: make(chan struct{}, downloads),
		parseSlots:    make(chan struct{}, parses),
		log:           logging.NewLogger("pipeline"),
	}
}

// Run fetches one page of metadata and processes every paper. A metadata
// fetch failure aborts the batch before any paper pipeline starts; after
// that point the batch always completes and returns a report, even when
// every paper fails.
func (o *Orchestrator) Run(ctx context.Context, start, maxResults int) (*BatchReport, error) {
	papers, err := o.source.FetchPapers(ctx, start, maxResults)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	return o.RunPapers(ctx, papers), nil
}

// RunPapers processes an already-fetched batch. All paper pipelines run
// concurrently; no paper's failure cancels its siblings, and unexpected
// per-paper errors are stringified into the report instead of
// propagating.
func (o *Orchestrator) RunPapers(ctx context.Context, papers []types.ArxivPaper) *BatchReport {
	report := newBatchReport(len(papers))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	o.log.Info().Int("papers", len(papers)).Msg("starting batch")

	for _, paper := range papers {
		wg.Add(1)
		go func(paper types.ArxivPaper) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					report.Errors = append(report.Errors,
						fmt.Sprintf("unexpected error processing %s: %v", paper.PaperID, r))
					mu.Unlock()
				}
			}()
			o.processPaper(ctx, paper, report, &mu)
		}(paper)
	}

	wg.Wait()
	batchesTotal.Inc()
	o.log.Info().Str("summary", report.Summary()).Msg("batch complete")
	return report
}

// processPaper drives one paper through the two-stage state machine:
// acquire a download slot, download, release, then acquire a parse slot,
// parse, release. A download failure terminates the paper before the
// parse stage; a parse failure never revokes the recorded download
// success.
func (o *Orchestrator) processPaper(ctx context.Context, paper types.ArxivPaper, report *BatchReport, mu *sync.Mutex) {
	path, err := o.downloadStage(ctx, paper)
	if err != nil {
		downloadsTotal.WithLabelValues(resultFailure).Inc()
		o.log.Warn().Str("paper_id", paper.PaperID).Err(err).Msg("download failed")
		o.recordDownloadFailure(report, mu, paper.PaperID, err)
		return
	}
	downloadsTotal.WithLabelValues(resultSuccess).Inc()

	mu.Lock()
	report.PDFsDownloaded++
	mu.Unlock()

	content, err := o.parseStage(ctx, path)
	if err != nil {
		parsesTotal.WithLabelValues(resultFailure).Inc()
		o.log.Warn().Str("paper_id", paper.PaperID).Err(err).Msg("parse failed")
		o.recordParseFailure(report, mu, paper.PaperID, err)
		return
	}
	parsesTotal.WithLabelValues(resultSuccess).Inc()

	mu.Lock()
	report.PDFsParsed++
	report.ParsedPapers[paper.PaperID] = content
	mu.Unlock()
}

// downloadStage runs the download under its semaphore. The deferred
// release guarantees the slot comes back even when the downloader panics.
func (o *Orchestrator) downloadStage(ctx context.Context, paper types.ArxivPaper) (string, error) {
	if err := acquire(ctx, o.downloadSlots); err != nil {
		return "", err
	}
	defer release(o.downloadSlots)

	start := time.Now()
	defer func() {
		stageDurationSeconds.WithLabelValues(stageDownload).Observe(time.Since(start).Seconds())
	}()
	return o.fetch.Download(ctx, paper, false)
}

func (o *Orchestrator) parseStage(ctx context.Context, path string) (*types.PDFContent, error) {
	if err := acquire(ctx, o.parseSlots); err != nil {
		return nil, err
	}
	defer release(o.parseSlots)

	start := time.Now()
	defer func() {
		stageDurationSeconds.WithLabelValues(stageParse).Observe(time.Since(start).Seconds())
	}()
	return o.parser.Parse(path)
}

func (o *Orchestrator) recordDownloadFailure(report *BatchReport, mu *sync.Mutex, paperID string, err error) {
	mu.Lock()
	report.DownloadFailures = append(report.DownloadFailures, paperID)
	report.Errors = append(report.Errors, fmt.Sprintf("Download failed for %s: %v", paperID, err))
	mu.Unlock()
}

func (o *Orchestrator) recordParseFailure(report *BatchReport, mu *sync.Mutex, paperID string, err error) {
	mu.Lock()
	report.ParseFailures = append(report.ParseFailures, paperID)
	report.Errors = append(report.Errors, fmt.Sprintf("Parse failed for %s: %v", paperID, err))
	mu.Unlock()
}

func acquire(ctx context.Context, slots chan struct{}) error {
	select {
	case slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(slots chan struct{}) {
	<-slots
}
