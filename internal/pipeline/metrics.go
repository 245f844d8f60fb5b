// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pipeline stages.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_downloads_total",
		Help: "Total PDF download outcomes by result",
	}, []string{"result"})

	parsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_parses_total",
		Help: "Total PDF parse outcomes by result",
	}, []string{"result"})

	stageDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "curator_stage_duration_seconds",
		Help:    "Duration of pipeline stages per paper",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curator_batches_total",
		Help: "Total completed batch runs",
	})
)

const (
	resultSuccess = "success"
	resultFailure = "failure"

	stageDownload = "download"
	stageParse    = "parse"
)
