// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Tatuum/RAG-research-paper-curator/internal/arxiv"
	"github.com/Tatuum/RAG-research-paper-curator/internal/cache"
	"github.com/Tatuum/RAG-research-paper-curator/internal/container"
	"github.com/Tatuum/RAG-research-paper-curator/internal/fetch"
	"github.com/Tatuum/RAG-research-paper-curator/internal/parse"
	"github.com/Tatuum/RAG-research-paper-curator/internal/pipeline"
	"github.com/Tatuum/RAG-research-paper-curator/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch a batch of papers and run the download-parse pipeline",
	Long: `Ingest fetches one page of paper metadata from arXiv, downloads each
PDF into the cache, extracts structured content through docling, and
persists the results. Individual paper failures are reported but never
abort the batch.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int("start", 0, "pagination offset into the arXiv result set")
	ingestCmd.Flags().Int("max-results", 0, "papers to fetch (default from config)")
	ingestCmd.Flags().String("category", "", "arXiv category (default from config)")
	ingestCmd.Flags().Bool("no-store", false, "skip persisting results to the database")
	ingestCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address during the run")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	start, _ := cmd.Flags().GetInt("start")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		cfg.Arxiv.SearchCategory = category
	}
	noStore, _ := cmd.Flags().GetBool("no-store")

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			http.ListenAndServe(addr, mux)
		}()
	}

	pdfCache, err := cache.New(cfg.Arxiv.PDFCacheDir)
	if err != nil {
		return err
	}

	rt, err := container.DetectRuntime()
	if err != nil {
		return fmt.Errorf("the docling engine needs a container runtime: %w", err)
	}
	engine, err := parse.NewDoclingEngine(rt, cfg.Parser)
	if err != nil {
		return err
	}

	limiter := arxiv.NewLimiter(cfg.Arxiv.RateLimitDelay)
	client := arxiv.NewClient(cfg.Arxiv, limiter)
	fetcher := fetch.NewFetcher(pdfCache, limiter, cfg.Arxiv)
	parser := parse.NewParser(engine, cfg.Parser)

	orch := pipeline.NewOrchestrator(client, fetcher, parser, cfg.Pipeline)

	ctx := context.Background()
	papers, err := client.FetchPapers(ctx, start, maxResults)
	if err != nil {
		return err
	}
	report := orch.RunPapers(ctx, papers)

	if !noStore {
		db, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.SaveReport(ctx, papers, report); err != nil {
			return err
		}
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	os.Stdout.Write(out)

	if report.HasFailures() {
		return fmt.Errorf("%d paper(s) failed: %s", len(report.DownloadFailures)+len(report.ParseFailures), report.Summary())
	}
	return nil
}
