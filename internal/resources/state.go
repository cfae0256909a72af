// Package resources assigns boot-time resources to every component of a
// system: capability-table layouts for capability managers, scheduling and
// initialization hierarchies, and virtual-resource bindings.
package resources

import (
	"strconv"

	"github.com/cosbuild/composer/internal/captbl"
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

// ConfigState is the working state of one component while its
// configuration is generated. It is created fresh for each component and
// consumed once by finalize.
type ConfigState struct {
	Table *captbl.Table
	Args  []kv.Node
}

func newConfigState() *ConfigState {
	return &ConfigState{Table: captbl.New()}
}

func (s *ConfigState) push(nodes ...kv.Node) {
	s.Args = append(s.Args, nodes...)
}

// finalize appends captbl_end and returns the accumulated arguments. The
// recorded end precedes the synchronous-invocation capabilities the build
// allocates after this pass.
func (s *ConfigState) finalize() []kv.Node {
	s.push(kv.Leaf("captbl_end", strconv.FormatUint(uint64(s.Table.Frontier()), 10)))
	args := s.Args
	s.Args = nil
	return args
}

// Result maps every component to its finalized configuration.
type Result struct {
	order []system.ComponentID
	args  map[system.ComponentID][]kv.Node
}

func newResult() *Result {
	return &Result{args: make(map[system.ComponentID][]kv.Node)}
}

func (r *Result) set(id system.ComponentID, args []kv.Node) {
	if _, ok := r.args[id]; !ok {
		r.order = append(r.order, id)
	}
	r.args[id] = args
}

// Args returns the configuration of id. Asking for a component that was
// not part of the pass is a programming error and panics.
func (r *Result) Args(id system.ComponentID) []kv.Node {
	args, ok := r.Lookup(id)
	if !ok {
		panic("resources: no configuration for component " + id.String())
	}
	return args
}

// Lookup returns the configuration of id and whether it exists.
func (r *Result) Lookup(id system.ComponentID) ([]kv.Node, bool) {
	args, ok := r.args[id]
	if !ok {
		return nil, false
	}
	out := make([]kv.Node, len(args))
	copy(out, args)
	return out, true
}

// Components returns the configured components in pass order.
func (r *Result) Components() []system.ComponentID {
	out := make([]system.ComponentID, len(r.order))
	copy(out, r.order)
	return out
}
