package resources

import (
	"fmt"
	"sort"
	"strings"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/system"
)

// ViolationKind classifies a malformed system.
type ViolationKind int

const (
	// SelfClient: a capability manager is its own client.
	SelfClient ViolationKind = iota

	// NestedCapMgr: a capability manager is the client of another one.
	NestedCapMgr

	// MultipleConstructors: a constructor depends on another constructor.
	MultipleConstructors

	// MissingSchedulerParent: a scheduler managed by a capability manager
	// has no scheduler of its own.
	MissingSchedulerParent

	// UnknownComponent: an id handed out by the system has no component.
	UnknownComponent

	// UnregisteredInstance: a served virtual-resource instance has no id.
	UnregisteredInstance

	// UnresolvedReference: a list parameter names an instance with no id.
	// Only reported under ResolveStrict.
	UnresolvedReference
)

var violationNames = map[ViolationKind]string{
	SelfClient:             "self-client",
	NestedCapMgr:           "nested-capmgr",
	MultipleConstructors:   "multiple-constructors",
	MissingSchedulerParent: "missing-scheduler-parent",
	UnknownComponent:       "unknown-component",
	UnregisteredInstance:   "unregistered-instance",
	UnresolvedReference:    "unresolved-reference",
}

func (k ViolationKind) String() string {
	if name, ok := violationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("violation(%d)", int(k))
}

// Violation is one broken invariant.
type Violation struct {
	Kind      ViolationKind
	Component system.ComponentID

	// Client is the offending client, when there is one.
	Client system.ComponentID

	// Ref is the virtual-resource instance involved, when there is one.
	Ref string
}

func (v Violation) Error() string {
	switch v.Kind {
	case SelfClient:
		return fmt.Sprintf("component %s is its own client", v.Component)
	case NestedCapMgr:
		return fmt.Sprintf("capability manager %s has capability manager %s as a client; nested capability managers are not supported", v.Component, v.Client)
	case MultipleConstructors:
		return fmt.Sprintf("constructor %s depends on another constructor; only one constructor is supported", v.Component)
	case MissingSchedulerParent:
		return fmt.Sprintf("scheduler %s, a client of capability manager %s, declares no parent scheduler", v.Client, v.Component)
	case UnknownComponent:
		return fmt.Sprintf("component %s referenced from component %s does not exist", v.Client, v.Component)
	case UnregisteredInstance:
		return fmt.Sprintf("virtual-resource instance %q served by component %s has no id", v.Ref, v.Component)
	case UnresolvedReference:
		return fmt.Sprintf("virtual-resource parameter of component %s references unknown instance %q", v.Component, v.Ref)
	default:
		return fmt.Sprintf("%s in component %s", v.Kind, v.Component)
	}
}

// ValidationError lists every violation found in a system.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid system: " + e.Violations[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid system: %d violations", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return oerrors.ErrValidation
}

// Has reports whether a violation of the given kind was found.
func (e *ValidationError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func violationError(vs ...Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}

// Validate checks every invariant the generators rely on and reports all
// violations at once. It runs before any configuration is generated.
func Validate(facts system.Facts, opts Options) error {
	var vs []Violation

	for _, id := range facts.Components() {
		comp, err := facts.Component(id)
		if err != nil {
			vs = append(vs, Violation{Kind: UnknownComponent, Component: id, Client: id})
			continue
		}

		if facts.ServiceIsA(id, system.ServiceCapMgr) {
			vs = append(vs, capmgrViolations(facts, id)...)
		}
		if facts.ServiceIsA(id, system.ServiceConstructor) {
			vs = append(vs, constructorViolations(facts, id)...)
		}
		vs = append(vs, virtResViolations(facts, comp, opts.Resolve)...)
	}

	return violationError(vs...)
}

// capmgrClients returns the sorted, deduplicated union of the scheduler
// and capability-manager clients of id.
func capmgrClients(facts system.Facts, id system.ComponentID) []system.ComponentID {
	var clients []system.ComponentID
	clients = append(clients, facts.ServiceClients(id, system.ServiceScheduler)...)
	clients = append(clients, facts.ServiceClients(id, system.ServiceCapMgr)...)

	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	out := clients[:0]
	for i, c := range clients {
		if i > 0 && c == clients[i-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func capmgrViolations(facts system.Facts, id system.ComponentID) []Violation {
	var vs []Violation

	for _, c := range capmgrClients(facts, id) {
		if c == id {
			vs = append(vs, Violation{Kind: SelfClient, Component: id, Client: c})
			continue
		}
		if _, err := facts.Component(c); err != nil {
			vs = append(vs, Violation{Kind: UnknownComponent, Component: id, Client: c})
			continue
		}
		if facts.ServiceIsA(c, system.ServiceCapMgr) {
			vs = append(vs, Violation{Kind: NestedCapMgr, Component: id, Client: c})
		}
		if facts.ServiceIsA(c, system.ServiceScheduler) {
			if _, ok := facts.ServiceDependency(c, system.ServiceScheduler); !ok {
				vs = append(vs, Violation{Kind: MissingSchedulerParent, Component: id, Client: c})
			}
		}
	}

	return vs
}

func constructorViolations(facts system.Facts, id system.ComponentID) []Violation {
	var vs []Violation

	if _, ok := facts.ServiceDependency(id, system.ServiceConstructor); ok {
		vs = append(vs, Violation{Kind: MultipleConstructors, Component: id})
	}
	return vs
}

func virtResViolations(facts system.Facts, comp *system.Component, policy ResolvePolicy) []Violation {
	var vs []Violation

	for _, vr := range servedBy(facts, comp) {
		for _, def := range vr.Resources {
			if _, ok := facts.VirtResID(def.Instance); !ok {
				vs = append(vs, Violation{Kind: UnregisteredInstance, Component: comp.ID, Ref: def.Instance})
			}
			if policy != ResolveStrict {
				continue
			}
			for _, p := range def.Params {
				if !p.Value.IsList() {
					continue
				}
				for _, ref := range p.Value.List() {
					if _, ok := facts.VirtResID(ref); !ok {
						vs = append(vs, Violation{Kind: UnresolvedReference, Component: comp.ID, Ref: ref})
					}
				}
			}
		}
	}

	return vs
}
