package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/pipeline"
	"github.com/cosbuild/composer/internal/resources"
)

// PrintComposeError prints a pipeline error in a user-friendly format.
// Invariant violations are listed one per line; structured errors print
// their details; anything else falls back to the key-value log format.
func PrintComposeError(msg string, err error) {
	var verr *resources.ValidationError
	if errors.As(err, &verr) {
		output.Error(fmt.Sprintf("%s: %d invariant violation(s)", msg, len(verr.Violations)))
		for _, v := range verr.Violations {
			output.Error("  " + v.Error())
		}
		return
	}

	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		output.Error(msg)
		output.Print(detail.Error() + "\n")
		return
	}

	output.Error(msg, "error", err)
}

// WriteFileResults writes one status line per written component followed by
// the tree of generated files under outDir.
func WriteFileResults(w io.Writer, result *pipeline.Result, outDir string) {
	files := make(map[string]string, len(result.Files))
	for _, f := range result.Files {
		c := f.Component
		fmt.Fprintln(w, output.FormatComponentLine(c.ID.String(), c.Name, f.Status))

		rel, err := filepath.Rel(outDir, f.Path)
		if err != nil {
			rel = f.Path
		}
		files[rel] = fmt.Sprintf("%d bytes", len(c.Source))
	}

	if tree := output.RenderFileTree(outDir, files); tree != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, tree)
	}
}

// StatusCounts tallies written components by status.
func StatusCounts(result *pipeline.Result) map[string]int {
	counts := make(map[string]int)
	for _, f := range result.Files {
		counts[f.Status]++
	}
	return counts
}
