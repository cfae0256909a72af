package resources

import (
	"fmt"

	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

// servedBy returns the virtual-resource definitions whose server is comp,
// in declaration order.
func servedBy(facts system.Facts, comp *system.Component) []system.VirtualResource {
	var out []system.VirtualResource
	for _, vr := range facts.VirtualResources() {
		if vr.Server == comp.Name.Var {
			out = append(out, vr)
		}
	}
	return out
}

// sysVirtResConfig describes, to the server of each virtual resource, every
// instance it serves: its id, its parameters and the components using it.
func sysVirtResConfig(p *pass, id system.ComponentID, cfg *ConfigState) error {
	comp, err := p.facts.Component(id)
	if err != nil {
		return err
	}

	var byType []kv.Node
	for _, vr := range servedBy(p.facts, comp) {
		var instances []kv.Node
		for _, def := range vr.Resources {
			instID, ok := p.facts.VirtResID(def.Instance)
			if !ok {
				return violationError(Violation{Kind: UnregisteredInstance, Component: id, Ref: def.Instance})
			}

			params, err := p.sysParams(id, def)
			if err != nil {
				return err
			}

			clients, err := p.virtResClients(vr.Type, def.Instance)
			if err != nil {
				return err
			}

			instances = append(instances, kv.Array("sub_virt_resource", []kv.Node{
				kv.Leaf("id", instID),
				kv.Array("params", params),
				kv.Array("client", clients),
			}))
		}
		byType = append(byType, kv.Array(vr.Type, instances))
	}

	if len(byType) == 0 {
		return nil
	}
	cfg.push(kv.Array("sys_virt_resources", byType))
	return nil
}

// sysParams resolves the parameters of one served instance. Strings pass
// through; each entry of a list names another instance and becomes a
// reference to its id.
func (p *pass) sysParams(id system.ComponentID, def system.VirtResDef) ([]kv.Node, error) {
	var params []kv.Node

	for _, param := range def.Params {
		if !param.Value.IsList() {
			params = append(params, kv.Leaf(param.Key, param.Value.String()))
			continue
		}

		for _, ref := range param.Value.List() {
			refID, ok := p.facts.VirtResID(ref)
			if !ok {
				if p.opts.Resolve == ResolveStrict {
					return nil, violationError(Violation{Kind: UnresolvedReference, Component: id, Ref: ref})
				}
				p.log.Warn("dropping unresolvable virtual-resource reference",
					"component", id,
					"instance", def.Instance,
					"param", param.Key,
					"ref", ref,
				)
				continue
			}
			params = append(params, kv.Array("sub_sub_virt_resource", []kv.Node{kv.Leaf("id", refID)}))
		}
	}

	return params, nil
}

// virtResClients lists, in canonical order, every component declaring a use
// of the given type and instance.
func (p *pass) virtResClients(vrType, instance string) ([]kv.Node, error) {
	var clients []kv.Node

	for _, cid := range p.facts.Components() {
		comp, err := p.facts.Component(cid)
		if err != nil {
			return nil, err
		}
		for _, use := range comp.VirtRes {
			if use.Type != vrType {
				continue
			}
			for _, inst := range use.Instances {
				if inst.Instance == instance {
					clients = append(clients, kv.Leaf("comp_id", cid.String()))
				}
			}
		}
	}

	return clients, nil
}

// compVirtResConfig describes every virtual-resource instance the component
// itself uses.
func compVirtResConfig(p *pass, id system.ComponentID, cfg *ConfigState) error {
	comp, err := p.facts.Component(id)
	if err != nil {
		return err
	}

	var byType []kv.Node
	for _, use := range comp.VirtRes {
		var instances []kv.Node
		for _, inst := range use.Instances {
			instances = append(instances, kv.Array(inst.Instance, p.instanceArgs(use.Type, inst)))
		}
		byType = append(byType, kv.Array(use.Type, instances))
	}

	if len(byType) == 0 {
		return nil
	}
	cfg.push(kv.Array("comp_virt_resources", byType))
	return nil
}

func (p *pass) instanceArgs(vrType string, inst system.VirtResInstance) []kv.Node {
	var args []kv.Node

	if inst.Associations != nil {
		assocs := make([]kv.Node, 0, len(inst.Associations))
		for _, a := range inst.Associations {
			entry := []kv.Node{kv.Leaf("vr_type", a.Type)}
			if id, ok := p.facts.VirtResID(a.Instance); ok {
				entry = append(entry, kv.Leaf("inst_id", id))
			}
			assocs = append(assocs, kv.Array("_", entry))
		}
		args = append(args, kv.Array("association", assocs))
	}

	if id, ok := p.facts.VirtResID(inst.Instance); ok {
		args = append(args, kv.Leaf("id", id))
	}

	if params := p.instanceParams(vrType, inst.Instance); len(params) > 0 {
		args = append(args, kv.Array("param", params))
	}

	access := make([]kv.Node, 0, len(inst.Access))
	for _, mode := range inst.Access {
		access = append(access, kv.Leaf("access", mode))
	}
	args = append(args, kv.Array("access_list", access))
	args = append(args, kv.Leaf("name", inst.Name))

	return args
}

// instanceParams flattens the system-level parameters of an instance:
// strings pass through and list entries become key_0, key_1, ...
func (p *pass) instanceParams(vrType, instance string) []kv.Node {
	var params []kv.Node

	for _, vr := range p.facts.VirtualResources() {
		if vr.Type != vrType {
			continue
		}
		for _, def := range vr.Resources {
			if def.Instance != instance {
				continue
			}
			for _, param := range def.Params {
				if !param.Value.IsList() {
					params = append(params, kv.Leaf(param.Key, param.Value.String()))
					continue
				}
				for i, v := range param.Value.List() {
					params = append(params, kv.Leaf(fmt.Sprintf("%s_%d", param.Key, i), v))
				}
			}
		}
	}

	return params
}
