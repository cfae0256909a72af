package resources

import (
	"fmt"

	"github.com/cosbuild/composer/internal/captbl"
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

// CapmgrLayout is everything a capability manager is told about its
// clients at boot.
type CapmgrLayout struct {
	// Clients are the managed components in ascending id order.
	Clients []system.ComponentID

	// Table holds three slots per client: its capability table, its page
	// table and its component capability.
	Table *captbl.Table

	// SchedulerHierarchy maps each scheduler client to its parent.
	SchedulerHierarchy []kv.Node

	// InitHierarchy maps every component a scheduler client serves to
	// that scheduler, which authorizes the scheduler to create threads
	// in it.
	InitHierarchy []kv.Node

	// Names maps each client to "source.scope.var".
	Names []kv.Node

	// SharedAddrspc lists every component in a shared address space.
	SharedAddrspc []kv.Node
}

// ComputeCapmgrLayout derives the layout of capability manager id. It only
// reads facts, so the capability manager and the constructor computing it
// independently get identical tables.
func ComputeCapmgrLayout(facts system.Facts, id system.ComponentID) (*CapmgrLayout, error) {
	if !facts.ServiceIsA(id, system.ServiceCapMgr) {
		return nil, fmt.Errorf("component %s is not a capability manager", id)
	}
	if err := violationError(capmgrViolations(facts, id)...); err != nil {
		return nil, err
	}

	layout := &CapmgrLayout{
		Clients:            capmgrClients(facts, id),
		Table:              captbl.New(),
		SchedulerHierarchy: []kv.Node{},
		InitHierarchy:      []kv.Node{},
		Names:              []kv.Node{},
		SharedAddrspc:      []kv.Node{},
	}

	for _, c := range layout.Clients {
		layout.Table.Add(captbl.CapTbl(c))
		layout.Table.Add(captbl.PgTbl(c))
		layout.Table.Add(captbl.Comp(c))

		if facts.ServiceIsA(c, system.ServiceScheduler) {
			parent, _ := facts.ServiceDependency(c, system.ServiceScheduler)
			layout.SchedulerHierarchy = append(layout.SchedulerHierarchy, kv.Leaf(c.String(), parent.String()))
		}

		layout.InitHierarchy = append(layout.InitHierarchy, schedServClients(facts, c)...)

		comp, err := facts.Component(c)
		if err != nil {
			return nil, err
		}
		layout.Names = append(layout.Names, kv.Leaf(c.String(), comp.QualifiedName()))
	}

	for _, group := range facts.SharedAddressSpaces() {
		for _, member := range group.Components {
			layout.SharedAddrspc = append(layout.SharedAddrspc, kv.Leaf("_", member.String()))
		}
	}

	return layout, nil
}

// CaptblNodes renders the table as slot index -> [type, target].
func (l *CapmgrLayout) CaptblNodes() []kv.Node {
	slots := l.Table.Slots()
	nodes := make([]kv.Node, 0, len(slots))
	for _, s := range slots {
		nodes = append(nodes, slotNode(s))
	}
	return nodes
}

// Sections returns the capability manager's configuration sections in
// emission order.
func (l *CapmgrLayout) Sections() []kv.Node {
	return []kv.Node{
		kv.Array("scheduler_hierarchy", l.SchedulerHierarchy),
		kv.Array("init_hierarchy", l.InitHierarchy),
		kv.Array("captbl", l.CaptblNodes()),
		kv.Array("names", l.Names),
		kv.Array("addrspc_shared", l.SharedAddrspc),
	}
}

func slotNode(s captbl.Slot) kv.Node {
	name, target := s.Resource.Info()
	return kv.Array(fmt.Sprint(s.Index), []kv.Node{
		kv.Leaf("type", name),
		kv.Leaf("target", target.String()),
	})
}

// capmgrConfig emits the capability manager sections. The component's
// table becomes the layout's table; this generator runs first, so nothing
// has been allocated in it yet.
func capmgrConfig(p *pass, id system.ComponentID, cfg *ConfigState) error {
	if !p.facts.ServiceIsA(id, system.ServiceCapMgr) {
		return nil
	}

	layout, err := ComputeCapmgrLayout(p.facts, id)
	if err != nil {
		return err
	}

	cfg.Table = layout.Table
	cfg.push(layout.Sections()...)

	p.log.Debug("capability manager configured",
		"component", id,
		"clients", len(layout.Clients),
		"captbl_end", layout.Table.Frontier(),
	)
	return nil
}
