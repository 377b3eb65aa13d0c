// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results writes finished conversions to disk.
//
// Each conversion gets its own directory named after the conversion
// identifier:
//
//	<dir>/<id>/pseudocode.md
//	<dir>/<id>/explanation.md
//	<dir>/<id>/flowchart.svg   (or flowchart.txt when no SVG was produced)
//	<dir>/<id>/result.yaml
package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cobol-lens/pkg/types"
)

const (
	pseudocodeFile  = "pseudocode.md"
	explanationFile = "explanation.md"
	flowchartSVG    = "flowchart.svg"
	flowchartText   = "flowchart.txt"
	summaryFile     = "result.yaml"
)

// Status is the outcome of exporting one conversion.
type Status string

const (
	StatusExported Status = "exported"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Fetcher retrieves a conversion by identifier.
type Fetcher interface {
	FetchResults(ctx context.Context, id string) (types.ConversionResult, error)
}

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Exported int
	Skipped  int
	Failed   int
}

// Total returns the number of conversions processed.
func (r BatchResult) Total() int {
	return r.Exported + r.Skipped + r.Failed
}

// HasFailures reports whether any conversion failed to export.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// summary is the on-disk form of result.yaml.
type summary struct {
	ConversionID string    `yaml:"conversion_id"`
	FetchedAt    time.Time `yaml:"fetched_at"`
	Files        []string  `yaml:"files"`
	FlowchartOK  bool      `yaml:"flowchart_ok"`
}

// Dir returns the directory Export uses for id under base.
func Dir(base, id string) string {
	return filepath.Join(base, safeName(id))
}

// Export writes result under dir. If the conversion was already exported
// it is left untouched and StatusSkipped is returned.
func Export(result types.ConversionResult, dir string, w io.Writer) (Status, error) {
	if result.ID == "" {
		return StatusFailed, fmt.Errorf("conversion result has no id")
	}
	outDir := Dir(dir, result.ID)

	if _, err := os.Stat(filepath.Join(outDir, summaryFile)); err == nil {
		fmt.Fprintf(w, "skipped:  %s (already exists)\n", result.ID)
		return StatusSkipped, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return StatusFailed, fmt.Errorf("creating %s: %w", outDir, err)
	}

	ts := time.Now().UTC()
	files := map[string]string{
		pseudocodeFile:  addFrontmatter(result.ID, "pseudocode", ts, result.Pseudocode),
		explanationFile: addFrontmatter(result.ID, "explanation", ts, result.Explanation),
	}

	flowchart := strings.TrimSpace(result.Flowchart)
	svg := strings.HasPrefix(flowchart, "<svg") || strings.HasPrefix(flowchart, "<?xml")
	switch {
	case svg:
		files[flowchartSVG] = flowchart + "\n"
	case flowchart != "":
		files[flowchartText] = flowchart + "\n"
	}

	// result.yaml goes last: its presence marks a complete export.
	names := make([]string, 0, len(files))
	for _, name := range []string{pseudocodeFile, explanationFile, flowchartSVG, flowchartText} {
		content, ok := files[name]
		if !ok {
			continue
		}
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0o644); err != nil {
			return StatusFailed, fmt.Errorf("writing %s: %w", name, err)
		}
		names = append(names, name)
	}

	data, err := yaml.Marshal(summary{
		ConversionID: result.ID,
		FetchedAt:    ts,
		Files:        names,
		FlowchartOK:  svg,
	})
	if err != nil {
		return StatusFailed, fmt.Errorf("encoding %s: %w", summaryFile, err)
	}
	if err := os.WriteFile(filepath.Join(outDir, summaryFile), data, 0o644); err != nil {
		return StatusFailed, fmt.Errorf("writing %s: %w", summaryFile, err)
	}

	fmt.Fprintf(w, "exported: %s -> %s\n", result.ID, outDir)
	return StatusExported, nil
}

// FetchAndExport retrieves one conversion and writes it under dir.
func FetchAndExport(ctx context.Context, f Fetcher, id, dir string, w io.Writer) (Status, error) {
	if _, err := os.Stat(filepath.Join(Dir(dir, id), summaryFile)); err == nil {
		fmt.Fprintf(w, "skipped:  %s (already exists)\n", id)
		return StatusSkipped, nil
	}
	result, err := f.FetchResults(ctx, id)
	if err != nil {
		return StatusFailed, err
	}
	return Export(result, dir, w)
}

// ExportBatch fetches and writes each conversion in ids, printing
// per-item status to w and returning a summary. It continues after
// individual failures.
func ExportBatch(ctx context.Context, f Fetcher, ids []string, dir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, id := range ids {
		status, err := FetchAndExport(ctx, f, id, dir, w)
		switch status {
		case StatusExported:
			result.Exported++
		case StatusSkipped:
			result.Skipped++
		default:
			fmt.Fprintf(w, "failed:   %s (%v)\n", id, err)
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d exported, %d skipped, %d failed (total: %d)\n",
		result.Exported, result.Skipped, result.Failed, result.Total())
	return result
}

// addFrontmatter prepends YAML frontmatter to a Markdown section.
func addFrontmatter(id, section string, ts time.Time, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "conversion_id: %q\n", id)
	fmt.Fprintf(&b, "section: %q\n", section)
	fmt.Fprintf(&b, "fetched_at: %q\n", ts.Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n")
	return b.String()
}

// safeName keeps an identifier usable as a single path element.
func safeName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.Trim(id, "."))
	if name == "" {
		return "_"
	}
	return name
}
