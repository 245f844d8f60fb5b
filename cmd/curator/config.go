// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// loadConfig returns the documented defaults overridden by any values
// from the config file or CURATOR_* environment variables.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	setString := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	setString("arxiv.base_url", &cfg.Arxiv.BaseURL)
	setString("arxiv.pdf_cache_dir", &cfg.Arxiv.PDFCacheDir)
	setString("arxiv.search_category", &cfg.Arxiv.SearchCategory)
	setString("arxiv.user_agent", &cfg.Arxiv.UserAgent)
	setInt("arxiv.max_results", &cfg.Arxiv.MaxResults)
	setInt("arxiv.download_max_retries", &cfg.Arxiv.DownloadMaxRetries)
	if viper.IsSet("arxiv.rate_limit_delay") {
		cfg.Arxiv.RateLimitDelay = viper.GetDuration("arxiv.rate_limit_delay")
	}
	if viper.IsSet("arxiv.timeout") {
		cfg.Arxiv.Timeout = viper.GetDuration("arxiv.timeout")
	}
	if viper.IsSet("arxiv.download_retry_delay_base") {
		cfg.Arxiv.DownloadRetryDelayBase = viper.GetDuration("arxiv.download_retry_delay_base")
	}

	setInt("parser.max_pages", &cfg.Parser.MaxPages)
	setInt("parser.max_file_size_mb", &cfg.Parser.MaxFileSizeMB)
	if viper.IsSet("parser.do_ocr") {
		cfg.Parser.DoOCR = viper.GetBool("parser.do_ocr")
	}
	if viper.IsSet("parser.do_table_structure") {
		cfg.Parser.DoTableStructure = viper.GetBool("parser.do_table_structure")
	}

	setInt("pipeline.max_concurrent_downloads", &cfg.Pipeline.MaxConcurrentDownloads)
	setInt("pipeline.max_concurrent_parsing", &cfg.Pipeline.MaxConcurrentParsing)

	setString("store.data_dir", &cfg.Store.DataDir)
	setInt("store.max_results", &cfg.Store.MaxResults)

	return cfg
}
