// Gathering — chopping, foraging, hunting, and farming. Gatherers carry
// what they collect and drop it at the stockpile when their load is full.
package engine

import (
	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/world"
)

// Gather collects one resource at Target every tick. Chop, berries, and
// chicken gathering draw from a depletable node and stop when it runs dry;
// farming never runs out.
type Gather struct {
	Type     agents.GatherType
	Target   world.Position
	Resource economy.ResourceType

	node    *world.Node // nil for farming
	carried float64
	slot    *farmSlot // farming only
}

func (g *Gather) Name() string { return g.Type.String() }

// Carried returns the load not yet delivered to the stockpile.
func (g *Gather) Carried() float64 { return g.carried }

// Node returns the node being harvested, or nil for farming.
func (g *Gather) Node() *world.Node { return g.node }

func (g *Gather) act(s *Simulation, a *Actor) error {
	if a.Position != g.Target {
		return preconditionf("%s %d must stand at %v to %s, is at %v", a.Kind, a.ID, g.Target, g.Name(), a.Position)
	}
	rate := agents.GatherRate(g.Type, a.Kind, s.Upgrades)
	qty := rate
	if g.node != nil {
		qty = g.node.Take(rate)
	}
	if qty == 0 {
		// Someone else emptied the node.
		g.flush(s)
		a.pop()
		return nil
	}

	s.Ledger.RecordIncome(g.Resource, qty)
	g.carried += qty
	if g.carried >= agents.CarryCapacity(a.Kind) {
		g.flush(s)
	}
	if g.node != nil && g.node.Depleted() {
		g.flush(s)
		a.pop()
	}
	return nil
}

func (g *Gather) cancel(s *Simulation, a *Actor) {
	g.flush(s)
}

func (g *Gather) farmSlot() *farmSlot { return g.slot }

func (g *Gather) flush(s *Simulation) {
	if g.carried == 0 {
		return
	}
	s.Ledger.Deposit(g.Resource, g.carried)
	g.carried = 0
}

// nodeKindFor maps a depletable gather type to the node kind it harvests.
func nodeKindFor(g agents.GatherType) (world.NodeKind, economy.ResourceType) {
	switch g {
	case agents.GatherBerries:
		return world.NodeBerries, economy.Food
	case agents.GatherChicken:
		return world.NodeChicken, economy.Food
	default:
		return world.NodeForest, economy.Wood
	}
}

// newNodeGather prepares a depletable gather at the node declared at pos.
func (s *Simulation) newNodeGather(g agents.GatherType, pos world.Position) (*Gather, error) {
	kind, res := nodeKindFor(g)
	n := s.Nodes.At(kind, pos)
	if n == nil {
		return nil, preconditionf("no %s declared at %v", kind, pos)
	}
	return &Gather{Type: g, Target: pos, Resource: res, node: n}, nil
}
