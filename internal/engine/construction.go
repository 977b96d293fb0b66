// Construction — shared foundations, builder-driven progress, and conversion
// of finished foundations into buildings.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/world"
)

// builderExponent gives diminishing returns for crowding a foundation.
const builderExponent = 0.7

// Foundation is a structure under construction. Every builder working on
// the same (kind, position) shares one Foundation.
type Foundation struct {
	Kind     string
	Position world.Position
	Progress float64
	Required float64 // Recipe duration
	Builders int

	lastTick  int // Tick progress was last applied
	converted bool
}

// Rate returns the progress added per tick: builders^0.7.
func (f *Foundation) Rate() float64 {
	return math.Pow(float64(f.Builders), builderExponent)
}

// Converted returns true once the foundation has become a building.
func (f *Foundation) Converted() bool {
	return f.converted
}

// Done returns true once progress has reached the recipe duration.
func (f *Foundation) Done() bool {
	return f.Progress >= f.Required
}

// Foundations returns the live foundations of kind in creation order.
func (s *Simulation) Foundations(kind string) []*Foundation {
	return s.foundations[kind]
}

// FoundationAt returns the live foundation of kind at pos, or nil.
func (s *Simulation) FoundationAt(kind string, pos world.Position) *Foundation {
	for _, f := range s.foundations[kind] {
		if f.Position == pos {
			return f
		}
	}
	return nil
}

// startFoundation lays a new foundation, paying its full cost up front.
func (s *Simulation) startFoundation(kind string, pos world.Position) (*Foundation, error) {
	r, err := s.Recipes.Lookup(kind)
	if err != nil {
		return nil, err
	}
	s.Ledger.Spend(r.Cost, 1)
	f := &Foundation{
		Kind:     kind,
		Position: pos,
		Required: r.Duration,
		lastTick: -1,
	}
	s.foundations[kind] = append(s.foundations[kind], f)
	s.record("build", fmt.Sprintf("foundation %s laid at %v", kind, pos), "kind", kind)
	return f, nil
}

// foundationFor finds the live foundation at (kind, pos) or lays a new one.
func (s *Simulation) foundationFor(kind string, pos world.Position) (*Foundation, error) {
	if f := s.FoundationAt(kind, pos); f != nil {
		return f, nil
	}
	return s.startFoundation(kind, pos)
}

// advance applies one tick of progress to f. Safe to call from every
// builder: progress is applied at most once per tick, and never after
// conversion.
func (s *Simulation) advance(f *Foundation) {
	if f.converted || f.lastTick == s.Time {
		return
	}
	f.lastTick = s.Time
	f.Progress += f.Rate()
}

// convert turns a finished foundation into a building exactly once.
func (s *Simulation) convert(f *Foundation, by *Actor) {
	if f.converted {
		return
	}
	f.converted = true
	s.addBuilding(f.Kind, f.Position)

	list := s.foundations[f.Kind]
	for i, other := range list {
		if other == f {
			s.foundations[f.Kind] = append(list[:i], list[i+1:]...)
			break
		}
	}

	if f.Kind == agents.KindHouse {
		s.Ledger.MaxPop += s.HousePop
	}
	s.record("build", fmt.Sprintf("%s finished %s", by.Kind, f.Kind), "kind", f.Kind, "at", f.Position.String())
	slog.Info("building finished", "kind", f.Kind, "at", f.Position.String(), "time", SimTime(s.Time))
}

// Build works on the foundation of Kind at Target, laying it if needed.
// A repeating Build starts the next foundation at the same spot as soon as
// one finishes.
type Build struct {
	Kind      string
	Target    world.Position
	Repeating bool

	foundation *Foundation
	joined     bool
	slot       *farmSlot // set when building for a farmer
}

func (b *Build) Name() string { return "build " + b.Kind }

// Foundation returns the foundation this action contributes to, if any.
func (b *Build) Foundation() *Foundation { return b.foundation }

func (b *Build) act(s *Simulation, a *Actor) error {
	if a.Position != b.Target {
		return preconditionf("%s %d must stand at %v to build %s, is at %v", a.Kind, a.ID, b.Target, b.Kind, a.Position)
	}
	if !b.joined {
		if b.foundation == nil || b.foundation.converted {
			f, err := s.foundationFor(b.Kind, b.Target)
			if err != nil {
				return fmt.Errorf("build %s: %w", b.Kind, err)
			}
			b.foundation = f
		}
		b.foundation.Builders++
		b.joined = true
	}

	f := b.foundation
	s.advance(f)
	if !f.Done() {
		return nil
	}
	s.convert(f, a)

	if !b.Repeating {
		a.pop()
		return nil
	}
	// Reuse a sibling foundation another builder already started here.
	next, err := s.foundationFor(b.Kind, b.Target)
	if err != nil {
		return fmt.Errorf("build %s: %w", b.Kind, err)
	}
	b.foundation = next
	b.joined = false
	return nil
}

func (b *Build) cancel(s *Simulation, a *Actor) {
	if b.joined && b.foundation != nil && !b.foundation.converted {
		b.foundation.Builders--
	}
}

func (b *Build) farmSlot() *farmSlot { return b.slot }
