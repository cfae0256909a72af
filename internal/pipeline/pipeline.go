// Package pipeline runs the composer phases over one system specification:
// load, assign, generate and write.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cosbuild/composer/internal/initargs"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/resources"
	"github.com/cosbuild/composer/internal/system"
)

// Phase names one stage of a run.
type Phase string

const (
	PhaseLoad     Phase = "load"
	PhaseAssign   Phase = "assign"
	PhaseGenerate Phase = "generate"
	PhaseWrite    Phase = "write"
)

// Options configures a run.
type Options struct {
	// SystemPath is the .toml or .cue system specification.
	SystemPath string

	// OutDir receives one directory per component. Empty skips the write
	// phase.
	OutDir string

	// Resolve governs virtual-resource references that name no registered
	// instance.
	Resolve resources.ResolvePolicy
}

// Validate checks the options are usable.
func (o Options) Validate() error {
	if o.SystemPath == "" {
		return fmt.Errorf("system path is required")
	}
	return nil
}

// FileResult describes the output of one component.
type FileResult struct {
	Component *initargs.Parameters

	// Path and Status are set when the write phase ran.
	Path   string
	Status string
}

// Result is the outcome of a successful run.
type Result struct {
	System     *system.System
	Assignment *resources.Result

	// Files holds one entry per component in canonical naming order.
	Files []FileResult
}

// Lookup returns the output of the named component.
func (r *Result) Lookup(name string) (*FileResult, bool) {
	for i := range r.Files {
		if r.Files[i].Component.Name == name {
			return &r.Files[i], true
		}
	}
	return nil, false
}

// Pipeline runs the phases.
type Pipeline interface {
	Run(ctx context.Context, opts Options) (*Result, error)
}

type pipeline struct{}

// New creates a Pipeline.
func New() Pipeline {
	return &pipeline{}
}

// Run executes the pipeline.
//
// Phase sequence:
//  1. LOAD:     system.Load() → *system.System
//  2. ASSIGN:   resources.Assign() → *resources.Result (validates first)
//  3. GENERATE: initargs.Generate() per component
//  4. WRITE:    Parameters.Write() per component, skipped without OutDir
//
// Nothing is written unless every component generated.
func (p *pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Phase 1: LOAD
	sys, err := system.Load(opts.SystemPath)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLoad, Err: err}
	}
	output.Debug("system loaded", "path", opts.SystemPath, "components", len(sys.Components()))

	// Phase 2: ASSIGN
	res, err := resources.Assign(sys, resources.Options{Resolve: opts.Resolve})
	if err != nil {
		return nil, &PhaseError{Phase: PhaseAssign, Err: err}
	}

	// Phase 3: GENERATE
	files := make([]FileResult, 0, len(sys.Components()))
	for _, id := range sys.Components() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		params, err := initargs.Generate(sys, res, id)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseGenerate, Err: componentError(sys, id, err)}
		}
		files = append(files, FileResult{Component: params})
	}

	result := &Result{System: sys, Assignment: res, Files: files}
	if opts.OutDir == "" {
		return result, nil
	}

	// Phase 4: WRITE
	for i := range result.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := &result.Files[i]
		if err := write(f, opts.OutDir); err != nil {
			return nil, &PhaseError{Phase: PhaseWrite, Err: componentError(sys, f.Component.ID, err)}
		}
	}

	return result, nil
}

// write emits one file, leaving it untouched when its content is current.
func write(f *FileResult, dir string) error {
	path := f.Component.Path(dir)

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, []byte(f.Component.Source)):
		f.Path = path
		f.Status = output.StatusUnchanged
		return nil
	case err == nil:
		f.Status = output.StatusUpdated
	case errors.Is(err, fs.ErrNotExist):
		f.Status = output.StatusCreated
	default:
		f.Status = output.StatusUpdated
	}

	written, err := f.Component.Write(dir)
	if err != nil {
		return err
	}
	f.Path = written
	return nil
}

func componentError(facts system.Facts, id system.ComponentID, err error) error {
	ce := &ComponentError{ID: id, Err: err}
	if comp, lookupErr := facts.Component(id); lookupErr == nil {
		ce.Name = comp.Name.Var
	}
	return ce
}
