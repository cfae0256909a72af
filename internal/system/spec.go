package system

// Spec is the on-disk system specification. The same structure is decoded
// from TOML (toml tags) and CUE (json tags).
type Spec struct {
	Components       []ComponentSpec       `toml:"components" json:"components" validate:"required,min=1,dive"`
	AddressSpaces    []AddressSpaceSpec    `toml:"address_spaces,omitempty" json:"address_spaces,omitempty" validate:"dive"`
	VirtualResources []VirtualResourceSpec `toml:"virtual_resources,omitempty" json:"virtual_resources,omitempty" validate:"dive"`
}

// ComponentSpec declares one component instance.
type ComponentSpec struct {
	// Name is the component variable name, unique within the system.
	Name string `toml:"name" json:"name" validate:"required"`

	// Scope defaults to "global".
	Scope string `toml:"scope,omitempty" json:"scope,omitempty"`

	// Source is the implementation the component is built from,
	// e.g. "capmgr.simple".
	Source string `toml:"source" json:"source" validate:"required"`

	// Provides lists the services this component implements.
	Provides []string `toml:"provides,omitempty" json:"provides,omitempty" validate:"dive,oneof=scheduler capmgr constructor"`

	// Scheduler, CapMgr and Constructor name the component providing
	// that service to this one.
	Scheduler   string `toml:"scheduler,omitempty" json:"scheduler,omitempty"`
	CapMgr      string `toml:"capmgr,omitempty" json:"capmgr,omitempty"`
	Constructor string `toml:"constructor,omitempty" json:"constructor,omitempty"`

	Params           []ParamSpec      `toml:"params,omitempty" json:"params,omitempty" validate:"dive"`
	VirtualResources []VirtResUseSpec `toml:"virtual_resources,omitempty" json:"virtual_resources,omitempty" validate:"dive"`
}

// ParamSpec is a declared component parameter.
type ParamSpec struct {
	Key   string `toml:"key" json:"key" validate:"required"`
	Value string `toml:"value" json:"value"`
}

// VirtResUseSpec declares a component's use of a virtual-resource type.
type VirtResUseSpec struct {
	Type      string                `toml:"type" json:"type" validate:"required"`
	Instances []VirtResInstanceSpec `toml:"instances" json:"instances,omitempty" validate:"dive"`
}

// VirtResInstanceSpec declares one referenced virtual-resource instance.
type VirtResInstanceSpec struct {
	Instance     string            `toml:"instance" json:"instance" validate:"required"`
	Name         string            `toml:"name" json:"name" validate:"required"`
	Access       []string          `toml:"access,omitempty" json:"access,omitempty"`
	Associations []AssociationSpec `toml:"associations,omitempty" json:"associations,omitempty" validate:"omitempty,dive"`
}

// AssociationSpec links an instance to an instance of another type.
type AssociationSpec struct {
	Type     string `toml:"type" json:"type" validate:"required"`
	Instance string `toml:"instance" json:"instance" validate:"required"`
}

// AddressSpaceSpec groups components sharing one address space.
type AddressSpaceSpec struct {
	Name       string   `toml:"name" json:"name" validate:"required"`
	Components []string `toml:"components" json:"components,omitempty" validate:"required,min=1"`
}

// VirtualResourceSpec is a system-level virtual-resource definition.
type VirtualResourceSpec struct {
	Name      string           `toml:"name" json:"name" validate:"required"`
	Type      string           `toml:"type" json:"type" validate:"required"`
	Server    string           `toml:"server" json:"server" validate:"required"`
	Resources []VirtResDefSpec `toml:"resources" json:"resources,omitempty" validate:"dive"`
}

// VirtResDefSpec is one instance of a virtual-resource definition. Param
// values are strings or lists of strings.
type VirtResDefSpec struct {
	Instance string         `toml:"instance" json:"instance" validate:"required"`
	Params   map[string]any `toml:"params,omitempty" json:"params,omitempty"`
}
