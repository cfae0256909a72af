// Package system provides the read-only facts about a system that the
// resource assignment pass consumes: component identities, address-space
// groups, service typing and the virtual-resource instance registry.
package system

import (
	"fmt"
	"strconv"

	"github.com/cosbuild/composer/internal/kv"
)

// ComponentID identifies a component instance. IDs are totally ordered and
// round-trip through their decimal string form.
type ComponentID uint32

// String returns the canonical decimal form.
func (id ComponentID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseComponentID parses the canonical form produced by String.
func ParseComponentID(s string) (ComponentID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid component id %q: %w", s, err)
	}
	return ComponentID(v), nil
}

// ServiceKind is a system service a component can provide or depend on.
type ServiceKind int

const (
	// ServiceScheduler executes other components' threads.
	ServiceScheduler ServiceKind = iota

	// ServiceCapMgr holds and delegates capability and page-table
	// capabilities for its clients.
	ServiceCapMgr

	// ServiceConstructor instantiates every other component at boot.
	ServiceConstructor
)

// String returns the name used in system specifications.
func (k ServiceKind) String() string {
	switch k {
	case ServiceScheduler:
		return "scheduler"
	case ServiceCapMgr:
		return "capmgr"
	case ServiceConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("service(%d)", int(k))
	}
}

// ParseServiceKind parses a service name from a system specification.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch s {
	case "scheduler":
		return ServiceScheduler, nil
	case "capmgr":
		return ServiceCapMgr, nil
	case "constructor":
		return ServiceConstructor, nil
	default:
		return 0, fmt.Errorf("unknown service %q (valid: scheduler, capmgr, constructor)", s)
	}
}

// ServiceKinds lists every service kind.
var ServiceKinds = []ServiceKind{ServiceScheduler, ServiceCapMgr, ServiceConstructor}

// ComponentName is the scoped name of a component instance.
type ComponentName struct {
	Scope string
	Var   string
}

// Component is a component instance as declared by the system specification.
type Component struct {
	ID     ComponentID
	Name   ComponentName
	Source string

	// Params are the declared initialization parameters.
	Params []kv.Node

	// VirtRes are the virtual resources this component uses.
	VirtRes []VirtResUse
}

// QualifiedName returns "source.scope.var", used for diagnostics at boot.
func (c *Component) QualifiedName() string {
	return fmt.Sprintf("%s.%s.%s", c.Source, c.Name.Scope, c.Name.Var)
}

// VirtResUse is a component's use of instances of one virtual-resource type.
type VirtResUse struct {
	Type      string
	Instances []VirtResInstance
}

// VirtResInstance is one virtual-resource instance referenced by a component.
type VirtResInstance struct {
	Instance string
	Name     string
	Access   []string

	// Associations is nil when the component declares none.
	Associations []Association
}

// Association links an instance to an instance of another type.
type Association struct {
	Type     string
	Instance string
}

// VirtualResource is a system-level virtual-resource definition served by
// one component.
type VirtualResource struct {
	Name      string
	Type      string
	Server    string
	Resources []VirtResDef
}

// VirtResDef is one instance of a virtual-resource definition.
type VirtResDef struct {
	Instance string

	// Params are sorted by key.
	Params []Param
}

// Param is a virtual-resource parameter.
type Param struct {
	Key   string
	Value ParamValue
}

// ParamValue is either a single string or a list of strings.
type ParamValue struct {
	str    string
	list   []string
	isList bool
}

// StringParam creates a single-string parameter value.
func StringParam(s string) ParamValue {
	return ParamValue{str: s}
}

// ListParam creates a list parameter value.
func ListParam(items ...string) ParamValue {
	return ParamValue{list: append([]string(nil), items...), isList: true}
}

// IsList reports whether the value is a list.
func (v ParamValue) IsList() bool {
	return v.isList
}

// String returns the single-string value.
func (v ParamValue) String() string {
	return v.str
}

// List returns the list value.
func (v ParamValue) List() []string {
	return v.list
}

// AddressSpace is a group of components sharing one address space.
type AddressSpace struct {
	Name       string
	Components []ComponentID
}

// Facts is the read-only view of a system consumed by the resource
// assignment pass.
type Facts interface {
	// Components returns every component id in canonical naming order.
	Components() []ComponentID

	// Component returns the component with the given id. Unknown ids
	// return an error wrapping errors.ErrNotFound.
	Component(id ComponentID) (*Component, error)

	// ComponentID resolves a component variable name.
	ComponentID(name string) (ComponentID, bool)

	// SharedAddressSpaces returns the shared address-space groups sorted
	// by group name.
	SharedAddressSpaces() []AddressSpace

	// ServiceIsA reports whether id provides the service.
	ServiceIsA(id ComponentID, kind ServiceKind) bool

	// ServiceDependency returns the component id depends on for the service.
	ServiceDependency(id ComponentID, kind ServiceKind) (ComponentID, bool)

	// ServiceClients returns, in ascending order, the components that
	// depend on id for the service.
	ServiceClients(id ComponentID, kind ServiceKind) []ComponentID

	// VirtResID resolves a virtual-resource instance name to its id.
	VirtResID(instance string) (string, bool)

	// VirtualResources returns the virtual-resource definitions in
	// declaration order.
	VirtualResources() []VirtualResource
}
