package resources

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/system"
)

// ResolvePolicy decides what happens to a virtual-resource list parameter
// entry naming an instance that has no id.
type ResolvePolicy int

const (
	// ResolveWarn logs the entry and drops it.
	ResolveWarn ResolvePolicy = iota

	// ResolveStrict rejects the system.
	ResolveStrict
)

func (r ResolvePolicy) String() string {
	switch r {
	case ResolveWarn:
		return "warn"
	case ResolveStrict:
		return "strict"
	default:
		return fmt.Sprintf("policy(%d)", int(r))
	}
}

// ParseResolvePolicy parses "warn" or "strict".
func ParseResolvePolicy(s string) (ResolvePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return ResolveWarn, nil
	case "strict":
		return ResolveStrict, nil
	default:
		return 0, fmt.Errorf("unknown resolve policy %q (valid: warn, strict)", s)
	}
}

// Options configures a resource assignment pass.
type Options struct {
	Resolve ResolvePolicy
}

// generator contributes configuration sections for one component.
type generator func(p *pass, id system.ComponentID, cfg *ConfigState) error

// generators run in this order for every component. Capability managers
// come first because the constructor replicates their tables, and finalize
// must follow every table allocation.
var generators = []struct {
	name string
	run  generator
}{
	{"capmgr", capmgrConfig},
	{"constructor", constructorConfig},
	{"scheduler", schedConfig},
	{"system virtual resource", sysVirtResConfig},
	{"component virtual resource", compVirtResConfig},
}

type pass struct {
	facts system.Facts
	opts  Options
	log   *log.Logger
}

// Assign validates the system and then generates the configuration of every
// component in canonical order. Nothing is generated for an invalid system.
func Assign(facts system.Facts, opts Options) (*Result, error) {
	if err := Validate(facts, opts); err != nil {
		return nil, err
	}

	p := &pass{
		facts: facts,
		opts:  opts,
		log:   output.ComponentLogger("resources"),
	}

	res := newResult()
	for _, id := range facts.Components() {
		args, err := p.configure(id)
		if err != nil {
			return nil, err
		}
		res.set(id, args)
	}

	p.log.Debug("resource assignment complete", "components", len(res.order), "resolve", opts.Resolve)
	return res, nil
}

func (p *pass) configure(id system.ComponentID) ([]kv.Node, error) {
	cfg := newConfigState()
	for _, g := range generators {
		if err := g.run(p, id, cfg); err != nil {
			return nil, fmt.Errorf("%s configuration of component %s: %w", g.name, id, err)
		}
	}
	return cfg.finalize(), nil
}
