// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/Tatuum/RAG-research-paper-curator/internal/arxiv"
	"github.com/Tatuum/RAG-research-paper-curator/internal/cache"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

const fakePDF = "%PDF-1.4 fake body"

func newTestFetcher(t *testing.T, cfg types.ArxivConfig) (*Fetcher, *cache.Cache, *[]time.Duration) {
	t.Helper()

	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	f := NewFetcher(c, arxiv.NewLimiter(0), cfg)

	var slept []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return f, c, &slept
}

func baseConfig() types.ArxivConfig {
	cfg := types.DefaultConfig().Arxiv
	cfg.Timeout = 2 * time.Second
	cfg.DownloadRetryDelayBase = 5 * time.Second
	cfg.DownloadMaxRetries = 3
	return cfg
}

func paper(url string) types.ArxivPaper {
	return types.ArxivPaper{PaperID: "2301.07041", PDFURL: url}
}

func TestDownloadIdempotence(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, fakePDF)
	}))
	defer ts.Close()

	f, _, _ := newTestFetcher(t, baseConfig())
	p := paper(ts.URL + "/pdf/2301.07041")

	first, err := f.Download(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Second call is a cache hit: same path, zero additional requests.
	second, err := f.Download(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDownloadWritesMetadataSidecar(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, fakePDF)
	}))
	defer ts.Close()

	f, c, _ := newTestFetcher(t, baseConfig())
	p := paper(ts.URL + "/pdf/2301.07041")
	p.Title = "A Paper With Metadata"
	p.Authors = []string{"C. Curator"}

	_, err := f.Download(context.Background(), p, false)
	require.NoError(t, err)

	data, err := os.ReadFile(c.MetaPathFor(p.PaperID))
	require.NoError(t, err)

	var got types.ArxivPaper
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, p.PaperID, got.PaperID)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Authors, got.Authors)
}

func TestDownloadForceBypassesCache(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, fakePDF)
	}))
	defer ts.Close()

	f, _, _ := newTestFetcher(t, baseConfig())
	p := paper(ts.URL + "/pdf/2301.07041")

	_, err := f.Download(context.Background(), p, false)
	require.NoError(t, err)
	_, err = f.Download(context.Background(), p, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, fakePDF)
	}))
	defer ts.Close()

	f, _, slept := newTestFetcher(t, baseConfig())

	path, err := f.Download(context.Background(), paper(ts.URL+"/pdf/x"), false)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// Linear backoff: retry k waits base*k.
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, *slept)
}

func TestDownloadExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	f, _, _ := newTestFetcher(t, baseConfig())

	_, err := f.Download(context.Background(), paper(ts.URL+"/pdf/x"), false)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, 3, dlErr.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownloadTimeoutExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, fakePDF)
	}))
	defer ts.Close()

	cfg := baseConfig()
	cfg.Timeout = 30 * time.Millisecond
	cfg.DownloadMaxRetries = 2
	f, _, _ := newTestFetcher(t, cfg)

	_, err := f.Download(context.Background(), paper(ts.URL+"/pdf/x"), false)

	var toErr *TimeoutExhaustedError
	require.ErrorAs(t, err, &toErr)
	assert.Equal(t, 2, toErr.Attempts)
}

func TestDownloadFailureLeavesNoPartialArtifact(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f, c, _ := newTestFetcher(t, baseConfig())
	p := paper(ts.URL + "/pdf/x")

	// Seed a zero-byte leftover at the target path.
	require.NoError(t, os.WriteFile(c.PathFor(p.PaperID), nil, 0o644))

	_, err := f.Download(context.Background(), p, false)
	require.Error(t, err)

	_, statErr := os.Stat(c.PathFor(p.PaperID))
	assert.True(t, os.IsNotExist(statErr), "partial artifact left at cache path")
}

func TestDownloadNoPDFURL(t *testing.T) {
	f, _, _ := newTestFetcher(t, baseConfig())

	_, err := f.Download(context.Background(), types.ArxivPaper{PaperID: "x"}, false)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
}

func TestDownloadContextCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	f, _, _ := newTestFetcher(t, baseConfig())
	f.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := f.Download(context.Background(), paper(ts.URL+"/pdf/x"), false)
	assert.True(t, errors.Is(err, context.Canceled))
}
