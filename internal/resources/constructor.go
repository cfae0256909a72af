package resources

import (
	"sort"

	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

// constructorConfig replicates the capability table of every capability
// manager the constructor creates, keyed by the manager's id.
func constructorConfig(p *pass, id system.ComponentID, cfg *ConfigState) error {
	if !p.facts.ServiceIsA(id, system.ServiceConstructor) {
		return nil
	}
	if err := violationError(constructorViolations(p.facts, id)...); err != nil {
		return err
	}

	clients := append([]system.ComponentID(nil), p.facts.ServiceClients(id, system.ServiceConstructor)...)
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	delegations := []kv.Node{}
	for _, c := range clients {
		if !p.facts.ServiceIsA(c, system.ServiceCapMgr) {
			continue
		}

		layout, err := ComputeCapmgrLayout(p.facts, c)
		if err != nil {
			return err
		}
		delegations = append(delegations, kv.Array(c.String(), layout.CaptblNodes()))
	}

	cfg.push(kv.Array("captbl_delegations", delegations))
	p.log.Debug("constructor configured", "component", id, "capmgrs", len(delegations))
	return nil
}
