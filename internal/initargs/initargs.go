// Package initargs merges a component's declared parameters with its
// assigned resources and emits the generated initargs.c for it.
package initargs

import (
	"fmt"
	"os"
	"path/filepath"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/resources"
	"github.com/cosbuild/composer/internal/system"
)

// FileName is the name of the generated file in each component directory.
const FileName = "initargs.c"

// Parameters is the merged boot configuration of one component.
type Parameters struct {
	ID   system.ComponentID
	Name string

	// Tree is the merged top-level list: param, the assigned resources,
	// then compid.
	Tree []kv.Node

	// Source is the generated C code.
	Source string
}

// Merge builds the top-level list for id. It panics if res has no entry
// for id.
func Merge(facts system.Facts, res *resources.Result, id system.ComponentID) ([]kv.Node, error) {
	comp, err := facts.Component(id)
	if err != nil {
		return nil, err
	}

	args := res.Args(id)
	tree := make([]kv.Node, 0, len(args)+2)
	tree = append(tree, kv.Array("param", comp.Params))
	tree = append(tree, args...)
	tree = append(tree, kv.Leaf("compid", id.String()))
	return tree, nil
}

// Generate merges and serializes the parameters of id.
func Generate(facts system.Facts, res *resources.Result, id system.ComponentID) (*Parameters, error) {
	tree, err := Merge(facts, res, id)
	if err != nil {
		return nil, err
	}

	comp, err := facts.Component(id)
	if err != nil {
		return nil, err
	}

	return &Parameters{
		ID:     id,
		Name:   comp.Name.Var,
		Tree:   tree,
		Source: kv.Serialize(kv.Top(tree)),
	}, nil
}

// Path returns where Write puts the file under dir.
func (p *Parameters) Path(dir string) string {
	return filepath.Join(dir, p.Name, FileName)
}

// Write emits the generated source under dir and returns its path.
func (p *Parameters) Write(dir string) (string, error) {
	path := p.Path(dir)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", oerrors.NewIOError(fmt.Sprintf("creating output directory for %s", p.Name), filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(p.Source), 0o644); err != nil {
		return "", oerrors.NewIOError(fmt.Sprintf("writing %s for %s", FileName, p.Name), path, err)
	}

	output.Debug("wrote initargs", "component", p.Name, "path", path, "bytes", len(p.Source))
	return path, nil
}
