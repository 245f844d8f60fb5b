// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Tatuum/RAG-research-paper-curator/internal/container"
	"github.com/Tatuum/RAG-research-paper-curator/internal/parse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [pdf files...]",
	Short: "Validate and extract local PDF files",
	Long: `Parse runs the validation checks and the docling engine against local
PDF files, printing the extracted sections as YAML. Useful for inspecting
what the pipeline would store for a given PDF.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("raw", false, "print raw text instead of sections")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF paths")
	}

	cfg := loadConfig()
	raw, _ := cmd.Flags().GetBool("raw")

	rt, err := container.DetectRuntime()
	if err != nil {
		return fmt.Errorf("the docling engine needs a container runtime: %w", err)
	}
	engine, err := parse.NewDoclingEngine(rt, cfg.Parser)
	if err != nil {
		return err
	}
	parser := parse.NewParser(engine, cfg.Parser)

	failed := 0
	for _, path := range args {
		content, err := parser.Parse(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}

		if raw {
			fmt.Println(content.RawText)
			continue
		}
		out, err := yaml.Marshal(content.Sections)
		if err != nil {
			return fmt.Errorf("marshaling sections: %w", err)
		}
		fmt.Printf("# %s (%d sections)\n", path, len(content.Sections))
		os.Stdout.Write(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed parsing", failed)
	}
	return nil
}
