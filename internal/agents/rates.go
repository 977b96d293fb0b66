package agents

// Upgrades reports whether a technology has been researched.
type Upgrades interface {
	Has(tech string) bool
}

// Per-tick gather rates, including walking to and from the drop-site.
const (
	chopRateMale   = 0.63
	chopRateOther  = 0.53
	chopUpgradeMul = 1.25

	farmRate       = 0.43
	farmUpgradeMul = 1.2

	berryRate         = 0.86
	berryRateUpgraded = 1.25

	chickenRate = 3

	fallbackRate = 0.5
)

var (
	chopUpgrades = [...]string{"up_chop1", "up_chop2", "up_chop3"}
	farmUpgrades = [...]string{"up_farm1", "up_farm2", "up_farm3"}
)

// GatherRate returns how much of a resource a unit of kind collects per tick
// with the upgrades researched so far. Upgrade tiers stack multiplicatively.
func GatherRate(g GatherType, kind string, up Upgrades) float64 {
	switch g {
	case GatherChop:
		r := chopRateOther
		if kind == KindMale {
			r = chopRateMale
		}
		for _, tech := range chopUpgrades {
			if up.Has(tech) {
				r *= chopUpgradeMul
			}
		}
		return r
	case GatherFarm:
		r := farmRate
		for _, tech := range farmUpgrades {
			if up.Has(tech) {
				r *= farmUpgradeMul
			}
		}
		return r
	case GatherChicken:
		return chickenRate
	case GatherBerries:
		if up.Has("up_gather") {
			return berryRateUpgraded
		}
		return berryRate
	}
	return fallbackRate
}

// CarryCapacity returns how much a unit of kind carries before it must drop
// its load at the stockpile.
func CarryCapacity(kind string) float64 {
	if kind == KindHorse {
		return 20
	}
	return 10
}
