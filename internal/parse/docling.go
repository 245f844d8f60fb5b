// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Tatuum/RAG-research-paper-curator/internal/container"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

const imageDocling = "docling:latest"

// DoclingEngine extracts PDF content by piping the file through the
// docling container image. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type DoclingEngine struct {
	runtime container.Runtime
	args    []string
}

// NewDoclingEngine creates an engine that runs the docling image with the
// given options. It verifies that the image exists locally before
// returning.
func NewDoclingEngine(rt container.Runtime, cfg types.ParserConfig) (*DoclingEngine, error) {
	if err := rt.ImageExists(imageDocling); err != nil {
		return nil, fmt.Errorf("docling image not available in %s: %w", rt.Name(), err)
	}

	args := []string{"--from", "pdf", "--to", "json"}
	if cfg.DoOCR {
		args = append(args, "--ocr")
	} else {
		args = append(args, "--no-ocr")
	}
	if cfg.DoTableStructure {
		args = append(args, "--table-structure")
	}

	return &DoclingEngine{runtime: rt, args: args}, nil
}

// Name identifies the engine.
func (e *DoclingEngine) Name() types.ParserType { return types.ParserDocling }

// Extract pipes the PDF through the docling container and decodes the
// JSON document it emits.
func (e *DoclingEngine) Extract(pdfPath string) (*types.PDFContent, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := e.runtime.Run(imageDocling, e.args, f, &out); err != nil {
		return nil, fmt.Errorf("extracting %s with docling: %w", pdfPath, err)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("docling produced empty output for %s", pdfPath)
	}

	var doc doclingDocument
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("decoding docling output for %s: %w", pdfPath, err)
	}

	return doc.toContent(), nil
}

// doclingDocument mirrors the subset of the docling JSON document the
// curator consumes.
type doclingDocument struct {
	Name  string         `json:"name"`
	Texts []doclingText  `json:"texts"`
	Pages map[string]any `json:"pages"`
}

type doclingText struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// toContent folds the flat text stream into sections split at headers.
// Text before the first header is attributed to an untitled level-1
// section only when headers exist at all; otherwise Sections stays empty
// and callers use RawText.
func (d *doclingDocument) toContent() *types.PDFContent {
	var (
		sections []types.PaperSection
		current  *types.PaperSection
		raw      strings.Builder
	)

	for _, t := range d.Texts {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}

		if raw.Len() > 0 {
			raw.WriteString("\n\n")
		}
		raw.WriteString(text)

		switch t.Label {
		case "title", "section_header":
			if current != nil {
				sections = append(sections, *current)
			}
			level := t.Level
			if level <= 0 {
				level = 1
			}
			current = &types.PaperSection{Title: text, Level: level}
		default:
			if current != nil {
				if current.Content != "" {
					current.Content += "\n\n"
				}
				current.Content += text
			}
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	return &types.PDFContent{
		Sections:   sections,
		RawText:    raw.String(),
		ParserUsed: types.ParserDocling,
		Metadata: map[string]any{
			"pages":    len(d.Pages),
			"document": d.Name,
		},
	}
}
