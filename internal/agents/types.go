// Package agents provides actor identity, unit and building kinds, and the
// per-kind gathering profile (rates and carry capacity).
package agents

// ActorID is a unique identifier for a unit or building.
type ActorID uint64

// Unit kinds.
const (
	KindMale     = "male"
	KindFemale   = "female"
	KindHorse    = "horse"
	KindElephant = "elephant"
)

// Building kinds the engine gives special meaning to.
const (
	KindCC        = "cc"        // Home base and default drop-site
	KindHouse     = "house"     // Raises the population cap
	KindFarmstead = "farmstead" // Remote farming drop-site
	KindField     = "field"     // Farm plot around a drop-site
	KindBarracks  = "barracks"  // Counted in summaries
)

// GatherType selects the rate table a gatherer uses.
type GatherType uint8

const (
	GatherChop GatherType = iota
	GatherFarm
	GatherBerries
	GatherChicken
)

// String returns the action name used for the gather type.
func (g GatherType) String() string {
	switch g {
	case GatherChop:
		return "chop"
	case GatherFarm:
		return "farm"
	case GatherBerries:
		return "berries"
	case GatherChicken:
		return "chicken"
	default:
		return "gather"
	}
}

// DefaultRoster is the starting army, in roster order.
func DefaultRoster() []string {
	return []string{
		KindHorse,
		KindMale, KindMale, KindMale, KindMale,
		KindFemale, KindFemale, KindFemale, KindFemale,
		KindElephant,
	}
}
