// Package diff compares the generated boot configuration of two system
// specifications component by component.
package diff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"

	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/pipeline"
	"github.com/cosbuild/composer/internal/resources"
)

// Options configures a comparison.
type Options struct {
	// Resolve is applied to both systems.
	Resolve resources.ResolvePolicy

	// UseColor enables colorized diff output.
	UseColor bool
}

// Result holds the components that differ between two systems, keyed by
// component variable name.
type Result struct {
	Added    []string
	Removed  []string
	Modified []output.ModifiedItem
}

// NewResult creates a new empty Result.
func NewResult() *Result {
	return &Result{
		Added:    make([]string, 0),
		Removed:  make([]string, 0),
		Modified: make([]output.ModifiedItem, 0),
	}
}

// IsEmpty returns true if there are no changes.
func (r *Result) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// Summary returns a summary string of changes.
func (r *Result) Summary() string {
	if r.IsEmpty() {
		return "No changes"
	}

	parts := make([]string, 0, 3)
	if len(r.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(r.Added)))
	}
	if len(r.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(r.Removed)))
	}
	if len(r.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", len(r.Modified)))
	}

	return strings.Join(parts, ", ")
}

// Systems runs the pipeline over both specifications without writing and
// compares the results.
func Systems(ctx context.Context, oldPath, newPath string, opts Options) (*Result, error) {
	p := pipeline.New()

	older, err := p.Run(ctx, pipeline.Options{SystemPath: oldPath, Resolve: opts.Resolve})
	if err != nil {
		return nil, fmt.Errorf("composing %s: %w", oldPath, err)
	}
	newer, err := p.Run(ctx, pipeline.Options{SystemPath: newPath, Resolve: opts.Resolve})
	if err != nil {
		return nil, fmt.Errorf("composing %s: %w", newPath, err)
	}

	return Compare(older, newer, opts.UseColor)
}

// Compare matches components by variable name. Added components are listed
// in the newer system's order, removed and modified ones in the older's.
func Compare(older, newer *pipeline.Result, useColor bool) (*Result, error) {
	result := NewResult()

	for _, f := range older.Files {
		name := f.Component.Name
		match, ok := newer.Lookup(name)
		if !ok {
			result.Removed = append(result.Removed, name)
			continue
		}

		d, err := compareTrees(f.Component.Tree, match.Component.Tree, useColor)
		if err != nil {
			return nil, fmt.Errorf("comparing component %s: %w", name, err)
		}
		if d != "" {
			result.Modified = append(result.Modified, output.ModifiedItem{Name: name, Diff: d})
		}
	}

	for _, f := range newer.Files {
		if _, ok := older.Lookup(f.Component.Name); !ok {
			result.Added = append(result.Added, f.Component.Name)
		}
	}

	output.Debug("systems compared", "summary", result.Summary())
	return result, nil
}

// compareTrees returns the rendered YAML diff of two merged trees, or ""
// when they are equal.
func compareTrees(older, newer []kv.Node, useColor bool) (string, error) {
	olderYAML, err := kv.EncodeYAML(older)
	if err != nil {
		return "", err
	}
	newerYAML, err := kv.EncodeYAML(newer)
	if err != nil {
		return "", err
	}
	if bytes.Equal(olderYAML, newerYAML) {
		return "", nil
	}

	olderInput, err := parseYAMLInput("old", olderYAML)
	if err != nil {
		return "", fmt.Errorf("parsing old YAML: %w", err)
	}
	newerInput, err := parseYAMLInput("new", newerYAML)
	if err != nil {
		return "", fmt.Errorf("parsing new YAML: %w", err)
	}

	report, err := dyff.CompareInputFiles(olderInput, newerInput)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	return renderReport(report, useColor)
}

func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

func renderReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}

	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	// Trailing whitespace varies with the table style.
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
