// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tatuum/RAG-research-paper-curator/internal/pipeline"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePaper(id string) types.ArxivPaper {
	return types.ArxivPaper{
		PaperID:    id,
		Title:      "Diffusion Models for Molecular Design " + id,
		Authors:    []string{"A. Researcher", "B. Scientist"},
		Abstract:   "We study diffusion models applied to molecule generation.",
		Categories: []string{"cs.AI", "cs.LG"},
		PDFURL:     "https://arxiv.org/pdf/" + id,
	}
}

func sampleContent() *types.PDFContent {
	return &types.PDFContent{
		RawText: "Introduction\n\nDiffusion models have recently dominated generative modeling.",
		Sections: []types.PaperSection{
			{Title: "Introduction", Content: "Diffusion models have recently dominated generative modeling.", Level: 1},
		},
		ParserUsed: types.ParserDocling,
	}
}

func TestSaveAndGetPaper(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	paper := samplePaper("2301.00001")

	require.NoError(t, s.SavePaper(ctx, paper, sampleContent()))

	got, err := s.GetPaper(ctx, paper.PaperID)
	require.NoError(t, err)

	assert.Equal(t, paper.PaperID, got.PaperID)
	assert.Equal(t, paper.Title, got.Title)
	assert.Equal(t, paper.Authors, got.Authors)
	assert.Equal(t, paper.Categories, got.Categories)
	assert.True(t, got.PDFProcessed)
	assert.Equal(t, types.ParserDocling, got.ParserUsed)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Introduction", got.Sections[0].Title)
}

func TestSavePaperWithoutContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePaper(ctx, samplePaper("2301.00002"), nil))

	got, err := s.GetPaper(ctx, "2301.00002")
	require.NoError(t, err)
	assert.False(t, got.PDFProcessed)
	assert.Empty(t, got.RawText)
	assert.Empty(t, got.Sections)
}

func TestSavePaperUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	paper := samplePaper("2301.00003")

	// First pass stores metadata only, second pass attaches content.
	require.NoError(t, s.SavePaper(ctx, paper, nil))
	require.NoError(t, s.SavePaper(ctx, paper, sampleContent()))

	got, err := s.GetPaper(ctx, paper.PaperID)
	require.NoError(t, err)
	assert.True(t, got.PDFProcessed)
	assert.NotEmpty(t, got.RawText)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM papers`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetPaperAbsent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPaper(context.Background(), "9999.99999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSaveReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	papers := []types.ArxivPaper{
		samplePaper("2301.00010"),
		samplePaper("2301.00011"),
		samplePaper("2301.00012"),
	}
	report := &pipeline.BatchReport{
		PapersFetched:  3,
		PDFsDownloaded: 3,
		PDFsParsed:     2,
		ParsedPapers: map[string]*types.PDFContent{
			"2301.00010": sampleContent(),
			"2301.00011": sampleContent(),
		},
		ParseFailures: []string{"2301.00012"},
	}

	saved, err := s.SaveReport(ctx, papers, report)
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	parsed, err := s.GetPaper(ctx, "2301.00010")
	require.NoError(t, err)
	assert.True(t, parsed.PDFProcessed)

	failed, err := s.GetPaper(ctx, "2301.00012")
	require.NoError(t, err)
	assert.False(t, failed.PDFProcessed)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePaper(ctx, samplePaper("2301.00020"), sampleContent()))
	other := samplePaper("2301.00021")
	other.Title = "A Survey of Reinforcement Learning"
	other.Abstract = "Policies, value functions, and exploration."
	require.NoError(t, s.SavePaper(ctx, other, nil))

	results, err := s.Search(ctx, "diffusion", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2301.00020", results[0].PaperID)
	assert.Contains(t, results[0].Snippet, "[")

	results, err = s.Search(ctx, "reinforcement", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2301.00021", results[0].PaperID)
}

func TestSearchAfterUpdateReflectsNewContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	paper := samplePaper("2301.00030")

	require.NoError(t, s.SavePaper(ctx, paper, nil))
	require.NoError(t, s.SavePaper(ctx, paper, sampleContent()))

	// The update trigger reindexes raw_text, so body-only terms match.
	results, err := s.Search(ctx, "generative", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, paper.PaperID, results[0].PaperID)
}

func TestSearchEmptyQuery(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), "", 10)
	assert.Error(t, err)
}
