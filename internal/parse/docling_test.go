// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// fakeRuntime satisfies container.Runtime without an actual container
// engine.
type fakeRuntime struct {
	name       string
	output     string
	runErr     error
	imageErr   error
	gotImage   string
	gotArgs    []string
	inputBytes int
}

func (r *fakeRuntime) Name() string { return r.name }

func (r *fakeRuntime) Available() bool { return true }

func (r *fakeRuntime) ImageExists(string) error { return r.imageErr }

func (r *fakeRuntime) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	r.gotImage = image
	r.gotArgs = args
	in, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}
	r.inputBytes = len(in)
	if r.runErr != nil {
		return r.runErr
	}
	_, err = io.WriteString(stdout, r.output)
	return err
}

const sampleDoclingJSON = `{
	"name": "2301.00001v1",
	"texts": [
		{"label": "title", "text": "Attention Is Not Enough", "level": 0},
		{"label": "text", "text": "We revisit the attention mechanism."},
		{"label": "section_header", "text": "Introduction", "level": 1},
		{"label": "text", "text": "Transformers changed everything."},
		{"label": "text", "text": "  "},
		{"label": "text", "text": "Or did they?"}
	],
	"pages": {"1": {}, "2": {}}
}`

func writeSamplePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nstream bytes"), 0o644))
	return path
}

func TestNewDoclingEngineMissingImage(t *testing.T) {
	rt := &fakeRuntime{name: "docker", imageErr: errors.New("no such image")}
	_, err := NewDoclingEngine(rt, types.ParserConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docling image not available")
}

func TestNewDoclingEngineArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ParserConfig
		want []string
	}{
		{
			name: "defaults",
			cfg:  types.ParserConfig{},
			want: []string{"--from", "pdf", "--to", "json", "--no-ocr"},
		},
		{
			name: "ocr and tables",
			cfg:  types.ParserConfig{DoOCR: true, DoTableStructure: true},
			want: []string{"--from", "pdf", "--to", "json", "--ocr", "--table-structure"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &fakeRuntime{name: "docker", output: sampleDoclingJSON}
			engine, err := NewDoclingEngine(rt, tt.cfg)
			require.NoError(t, err)

			_, err = engine.Extract(writeSamplePDF(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.gotArgs)
		})
	}
}

func TestDoclingExtract(t *testing.T) {
	rt := &fakeRuntime{name: "podman", output: sampleDoclingJSON}
	engine, err := NewDoclingEngine(rt, types.ParserConfig{})
	require.NoError(t, err)

	content, err := engine.Extract(writeSamplePDF(t))
	require.NoError(t, err)

	assert.Equal(t, imageDocling, rt.gotImage)
	assert.Positive(t, rt.inputBytes, "PDF bytes should be piped to the container")

	assert.Equal(t, types.ParserDocling, content.ParserUsed)
	require.Len(t, content.Sections, 2)
	assert.Equal(t, "Attention Is Not Enough", content.Sections[0].Title)
	assert.Equal(t, 1, content.Sections[0].Level)
	assert.Equal(t, "We revisit the attention mechanism.", content.Sections[0].Content)
	assert.Equal(t, "Introduction", content.Sections[1].Title)
	assert.Equal(t, "Transformers changed everything.\n\nOr did they?", content.Sections[1].Content)

	assert.True(t, strings.HasPrefix(content.RawText, "Attention Is Not Enough"))
	assert.NotContains(t, content.RawText, "  \n", "blank fragments are dropped")

	assert.Equal(t, 2, content.Metadata["pages"])
	assert.Equal(t, "2301.00001v1", content.Metadata["document"])
}

func TestDoclingExtractNoHeaders(t *testing.T) {
	doc := `{"name": "scan", "texts": [{"label": "text", "text": "just a blob of text"}], "pages": {}}`
	rt := &fakeRuntime{name: "docker", output: doc}
	engine, err := NewDoclingEngine(rt, types.ParserConfig{})
	require.NoError(t, err)

	content, err := engine.Extract(writeSamplePDF(t))
	require.NoError(t, err)
	assert.Empty(t, content.Sections)
	assert.Equal(t, "just a blob of text", content.RawText)
}

func TestDoclingExtractFailures(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantSub string
	}{
		{
			name:    "container run fails",
			rt:      &fakeRuntime{name: "docker", runErr: fmt.Errorf("exit status 137")},
			wantSub: "extracting",
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{name: "docker", output: ""},
			wantSub: "empty output",
		},
		{
			name:    "malformed JSON",
			rt:      &fakeRuntime{name: "docker", output: "not json at all"},
			wantSub: "decoding docling output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewDoclingEngine(tt.rt, types.ParserConfig{})
			require.NoError(t, err)

			_, err = engine.Extract(writeSamplePDF(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}
