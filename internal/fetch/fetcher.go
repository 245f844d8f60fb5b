// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads paper PDFs into the on-disk cache with bounded
// retries and linear backoff.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/Tatuum/RAG-research-paper-curator/internal/arxiv"
	"github.com/Tatuum/RAG-research-paper-curator/internal/cache"
	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// Fetcher downloads PDFs to the cache. Downloads share the arXiv rate
// limiter with the metadata client: the delay is applied once per attempt
// sequence, before the first network call.
type Fetcher struct {
	cache   *cache.Cache
	http    *http.Client
	limiter *arxiv.Limiter
	cfg     types.ArxivConfig
	log     zerolog.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher writing into c.
func NewFetcher(c *cache.Cache, limiter *arxiv.Limiter, cfg types.ArxivConfig) *Fetcher {
	return &Fetcher{
		cache:   c,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		cfg:     cfg,
		log:     logging.NewLogger("fetch"),
		sleep:   sleepContext,
	}
}

// Download retrieves the paper's PDF into the cache and returns the local
// path. A cached copy is returned immediately with no network call unless
// force is set. Otherwise up to DownloadMaxRetries attempts are made;
// retry k waits DownloadRetryDelayBase*k first. On total failure no
// partial artifact is left at the cache path and the error distinguishes
// timeout exhaustion from other download failures.
func (f *Fetcher) Download(ctx context.Context, paper types.ArxivPaper, force bool) (string, error) {
	if !force && f.cache.Has(paper.PaperID) {
		f.log.Debug().Str("paper_id", paper.PaperID).Msg("cache hit, skipping download")
		return f.cache.PathFor(paper.PaperID), nil
	}

	if paper.PDFURL == "" {
		return "", &DownloadError{PaperID: paper.PaperID, Err: errors.New("paper has no PDF URL")}
	}

	maxRetries := f.cfg.DownloadMaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	defer f.limiter.Mark()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := f.cfg.DownloadRetryDelayBase * time.Duration(attempt-1)
			f.log.Warn().Str("paper_id", paper.PaperID).Int("attempt", attempt).
				Dur("backoff", backoff).Err(lastErr).Msg("retrying download")
			if err := f.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		path, err := f.fetchOnce(ctx, paper)
		if err == nil {
			f.writeMetadata(paper)
			f.log.Info().Str("paper_id", paper.PaperID).Str("path", path).
				Int("attempt", attempt).Msg("downloaded PDF")
			return path, nil
		}
		lastErr = err
	}

	f.removePartial(paper.PaperID)

	if isTimeout(lastErr) {
		return "", &TimeoutExhaustedError{PaperID: paper.PaperID, Attempts: maxRetries, Err: lastErr}
	}
	return "", &DownloadError{PaperID: paper.PaperID, Attempts: maxRetries, Err: lastErr}
}

// fetchOnce performs a single download attempt, streaming the body into
// the cache via its temp-file-then-rename write.
func (f *Fetcher) fetchOnce(ctx context.Context, paper types.ArxivPaper) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, paper.PDFURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, paper.PDFURL)
	}

	return f.cache.Write(paper.PaperID, resp.Body)
}

// writeMetadata records the paper's metadata as a YAML sidecar next to
// the cached PDF. The sidecar is advisory: a write failure is logged but
// never fails the download.
func (f *Fetcher) writeMetadata(paper types.ArxivPaper) {
	data, err := yaml.Marshal(paper)
	if err != nil {
		f.log.Warn().Str("paper_id", paper.PaperID).Err(err).Msg("marshaling metadata sidecar")
		return
	}
	path := f.cache.MetaPathFor(paper.PaperID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.log.Warn().Str("paper_id", paper.PaperID).Err(err).Msg("writing metadata sidecar")
	}
}

// removePartial clears a zero-byte leftover at the cache path so a failed
// download never masquerades as a cached blob.
func (f *Fetcher) removePartial(paperID string) {
	path := f.cache.PathFor(paperID)
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		os.Remove(path)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
