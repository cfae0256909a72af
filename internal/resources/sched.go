package resources

import (
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

const (
	styleSched = "sched"
	styleInit  = "init"
)

// schedConfig emits the execute section: each client with the way the
// scheduler starts it, in reverse discovery order.
func schedConfig(p *pass, id system.ComponentID, cfg *ConfigState) error {
	if !p.facts.ServiceIsA(id, system.ServiceScheduler) {
		return nil
	}

	clients := p.facts.ServiceClients(id, system.ServiceScheduler)
	execute := make([]kv.Node, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		c := clients[i]
		style := styleInit
		if p.facts.ServiceIsA(c, system.ServiceScheduler) {
			style = styleSched
		}
		execute = append(execute, kv.Leaf(c.String(), style))
	}

	cfg.push(kv.Array("execute", execute))
	return nil
}

// schedServClients maps every client of scheduler id to id. It returns
// nothing when id is not a scheduler.
func schedServClients(facts system.Facts, id system.ComponentID) []kv.Node {
	if !facts.ServiceIsA(id, system.ServiceScheduler) {
		return nil
	}

	var grants []kv.Node
	for _, c := range facts.ServiceClients(id, system.ServiceScheduler) {
		grants = append(grants, kv.Leaf(c.String(), id.String()))
	}
	return grants
}
