package system

import (
	"fmt"
	"sort"
	"strconv"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/kv"
)

// DefaultScope is the scope of components that declare none.
const DefaultScope = "global"

// System is the Facts implementation derived from a Spec. Component ids are
// assigned from 1 in declaration order, which is also the canonical naming
// order. Virtual-resource instance ids are assigned from 1 in declaration
// order.
type System struct {
	order      []ComponentID
	components map[ComponentID]*Component
	byName     map[string]ComponentID

	provides map[ComponentID]map[ServiceKind]bool
	deps     map[ComponentID]map[ServiceKind]ComponentID
	clients  map[ComponentID]map[ServiceKind][]ComponentID

	addrspcs []AddressSpace
	virtRes  []VirtualResource
	registry map[string]string
}

var _ Facts = (*System)(nil)

// New derives the system facts from a specification. Dangling references
// and duplicate names are reported as validation errors.
func New(spec *Spec) (*System, error) {
	s := &System{
		components: make(map[ComponentID]*Component),
		byName:     make(map[string]ComponentID),
		provides:   make(map[ComponentID]map[ServiceKind]bool),
		deps:       make(map[ComponentID]map[ServiceKind]ComponentID),
		clients:    make(map[ComponentID]map[ServiceKind][]ComponentID),
		registry:   make(map[string]string),
	}

	// First pass: naming.
	for i, cs := range spec.Components {
		id := ComponentID(i + 1)
		if _, dup := s.byName[cs.Name]; dup {
			return nil, specError(fmt.Sprintf("component %q is declared more than once", cs.Name))
		}
		s.byName[cs.Name] = id
		s.order = append(s.order, id)
	}

	// Second pass: components, service typing and dependencies.
	for _, cs := range spec.Components {
		id := s.byName[cs.Name]
		s.components[id] = newComponent(id, cs)

		s.provides[id] = make(map[ServiceKind]bool)
		for _, p := range cs.Provides {
			kind, err := ParseServiceKind(p)
			if err != nil {
				return nil, specError(fmt.Sprintf("component %q: %v", cs.Name, err))
			}
			s.provides[id][kind] = true
		}

		s.deps[id] = make(map[ServiceKind]ComponentID)
		for _, dep := range []struct {
			kind   ServiceKind
			server string
		}{
			{ServiceScheduler, cs.Scheduler},
			{ServiceCapMgr, cs.CapMgr},
			{ServiceConstructor, cs.Constructor},
		} {
			if dep.server == "" {
				continue
			}
			sid, ok := s.byName[dep.server]
			if !ok {
				return nil, specError(fmt.Sprintf("component %q depends on unknown %s %q", cs.Name, dep.kind, dep.server))
			}
			s.deps[id][dep.kind] = sid
		}
	}

	// Third pass: client lists, built in id order so they come out sorted.
	for _, id := range s.order {
		for _, kind := range ServiceKinds {
			server, ok := s.deps[id][kind]
			if !ok {
				continue
			}
			if !s.provides[server][kind] {
				return nil, specError(fmt.Sprintf("component %q depends on %q for %s, which does not provide it",
					s.components[id].Name.Var, s.components[server].Name.Var, kind))
			}
			if s.clients[server] == nil {
				s.clients[server] = make(map[ServiceKind][]ComponentID)
			}
			s.clients[server][kind] = append(s.clients[server][kind], id)
		}
	}

	if err := s.buildAddressSpaces(spec.AddressSpaces); err != nil {
		return nil, err
	}
	if err := s.buildVirtualResources(spec.VirtualResources); err != nil {
		return nil, err
	}

	return s, nil
}

func newComponent(id ComponentID, cs ComponentSpec) *Component {
	scope := cs.Scope
	if scope == "" {
		scope = DefaultScope
	}

	comp := &Component{
		ID:     id,
		Name:   ComponentName{Scope: scope, Var: cs.Name},
		Source: cs.Source,
	}

	for _, p := range cs.Params {
		comp.Params = append(comp.Params, kv.Leaf(p.Key, p.Value))
	}

	for _, u := range cs.VirtualResources {
		use := VirtResUse{Type: u.Type}
		for _, inst := range u.Instances {
			vi := VirtResInstance{
				Instance: inst.Instance,
				Name:     inst.Name,
				Access:   inst.Access,
			}
			if inst.Associations != nil {
				vi.Associations = make([]Association, 0, len(inst.Associations))
				for _, a := range inst.Associations {
					vi.Associations = append(vi.Associations, Association{Type: a.Type, Instance: a.Instance})
				}
			}
			use.Instances = append(use.Instances, vi)
		}
		comp.VirtRes = append(comp.VirtRes, use)
	}

	return comp
}

func (s *System) buildAddressSpaces(specs []AddressSpaceSpec) error {
	member := make(map[ComponentID]string)

	for _, as := range specs {
		group := AddressSpace{Name: as.Name}
		for _, name := range as.Components {
			id, ok := s.byName[name]
			if !ok {
				return specError(fmt.Sprintf("address space %q names unknown component %q", as.Name, name))
			}
			if other, dup := member[id]; dup {
				return specError(fmt.Sprintf("component %q is in address spaces %q and %q", name, other, as.Name))
			}
			member[id] = as.Name
			group.Components = append(group.Components, id)
		}
		s.addrspcs = append(s.addrspcs, group)
	}

	sort.SliceStable(s.addrspcs, func(i, j int) bool {
		return s.addrspcs[i].Name < s.addrspcs[j].Name
	})
	return nil
}

func (s *System) buildVirtualResources(specs []VirtualResourceSpec) error {
	next := 1

	for _, vs := range specs {
		if _, ok := s.byName[vs.Server]; !ok {
			return specError(fmt.Sprintf("virtual resource %q is served by unknown component %q", vs.Name, vs.Server))
		}

		vr := VirtualResource{Name: vs.Name, Type: vs.Type, Server: vs.Server}
		for _, rs := range vs.Resources {
			if _, dup := s.registry[rs.Instance]; dup {
				return specError(fmt.Sprintf("virtual resource instance %q is declared more than once", rs.Instance))
			}
			s.registry[rs.Instance] = strconv.Itoa(next)
			next++

			params, err := convertParams(vs.Name, rs)
			if err != nil {
				return err
			}
			vr.Resources = append(vr.Resources, VirtResDef{Instance: rs.Instance, Params: params})
		}
		s.virtRes = append(s.virtRes, vr)
	}

	return nil
}

// convertParams turns decoded parameter values into Params sorted by key.
func convertParams(vrName string, rs VirtResDefSpec) ([]Param, error) {
	keys := make([]string, 0, len(rs.Params))
	for k := range rs.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]Param, 0, len(keys))
	for _, k := range keys {
		switch v := rs.Params[k].(type) {
		case string:
			params = append(params, Param{Key: k, Value: StringParam(v)})
		case []string:
			params = append(params, Param{Key: k, Value: ListParam(v...)})
		case []any:
			items := make([]string, 0, len(v))
			for _, e := range v {
				str, ok := e.(string)
				if !ok {
					return nil, specError(fmt.Sprintf("virtual resource %q instance %q: parameter %q has a non-string entry", vrName, rs.Instance, k))
				}
				items = append(items, str)
			}
			params = append(params, Param{Key: k, Value: ListParam(items...)})
		default:
			return nil, specError(fmt.Sprintf("virtual resource %q instance %q: parameter %q must be a string or a list of strings", vrName, rs.Instance, k))
		}
	}
	return params, nil
}

func specError(msg string) error {
	return oerrors.NewValidationError(msg, "", "", "fix the system specification and rerun")
}

// Components implements Facts.
func (s *System) Components() []ComponentID {
	out := make([]ComponentID, len(s.order))
	copy(out, s.order)
	return out
}

// Component implements Facts.
func (s *System) Component(id ComponentID) (*Component, error) {
	c, ok := s.components[id]
	if !ok {
		return nil, oerrors.Wrap(oerrors.ErrNotFound, fmt.Sprintf("component %s", id))
	}
	return c, nil
}

// ComponentID implements Facts.
func (s *System) ComponentID(name string) (ComponentID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// SharedAddressSpaces implements Facts.
func (s *System) SharedAddressSpaces() []AddressSpace {
	return s.addrspcs
}

// ServiceIsA implements Facts.
func (s *System) ServiceIsA(id ComponentID, kind ServiceKind) bool {
	return s.provides[id][kind]
}

// ServiceDependency implements Facts.
func (s *System) ServiceDependency(id ComponentID, kind ServiceKind) (ComponentID, bool) {
	dep, ok := s.deps[id][kind]
	return dep, ok
}

// ServiceClients implements Facts.
func (s *System) ServiceClients(id ComponentID, kind ServiceKind) []ComponentID {
	return s.clients[id][kind]
}

// VirtResID implements Facts.
func (s *System) VirtResID(instance string) (string, bool) {
	id, ok := s.registry[instance]
	return id, ok
}

// VirtualResources implements Facts.
func (s *System) VirtualResources() []VirtualResource {
	return s.virtRes
}
