// Node layout generation using layered simplex noise.
// Used by the `generate` script directive to scatter forests, berry bushes,
// and chickens around the home base instead of declaring each one by hand.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds node generation parameters.
type GenConfig struct {
	Seed       int64
	Radius     int     // Sample positions within this distance of the origin
	Spacing    int     // Grid step between sampled positions
	ClearZone  float64 // No nodes closer than this to the home base
	ForestLvl  float64 // Noise threshold (0.0–1.0) for a forest
	BerryLvl   float64 // Noise threshold for a berry bush
	ChickenLvl float64 // Noise threshold for a chicken pen
}

// DefaultGenConfig returns a layout that gives a typical opening a handful of
// each node kind.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:     40,
		Spacing:    4,
		ClearZone:  8,
		ForestLvl:  0.68,
		BerryLvl:   0.80,
		ChickenLvl: 0.84,
	}
}

// Generate samples the grid and declares nodes in r. Positions are visited
// in a fixed order so the same seed always yields the same registry.
// Returns the number of nodes added.
func Generate(cfg GenConfig, r *Registry) int {
	if cfg.Spacing < 1 {
		cfg.Spacing = 1
	}

	// Independent layers so forests and food do not overlap in lockstep.
	forestNoise := opensimplex.NewNormalized(cfg.Seed)
	berryNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	chickenNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	added := 0
	for x := -cfg.Radius; x <= cfg.Radius; x += cfg.Spacing {
		for y := -cfg.Radius; y <= cfg.Radius; y += cfg.Spacing {
			pos := Pos(float64(x), float64(y))
			d := Distance(pos, Origin)
			if d < cfg.ClearZone || d > float64(cfg.Radius) {
				continue
			}
			fx, fy := float64(x), float64(y)

			if v := octaveNoise(forestNoise, fx, fy, 3, 0.05, 0.5); v > cfg.ForestLvl {
				// Denser noise means a bigger wood line.
				r.Add(NodeForest, pos, roundQty(200+(v-cfg.ForestLvl)*2000))
				added++
				continue
			}
			// Food sources cluster near the base.
			if d > float64(cfg.Radius)/2 {
				continue
			}
			if v := octaveNoise(berryNoise, fx, fy, 2, 0.09, 0.5); v > cfg.BerryLvl {
				r.Add(NodeBerries, pos, 200)
				added++
				continue
			}
			if v := octaveNoise(chickenNoise, fx, fy, 2, 0.11, 0.5); v > cfg.ChickenLvl {
				r.Add(NodeChicken, pos, 100)
				added++
			}
		}
	}
	return added
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func roundQty(q float64) float64 {
	return math.Round(q/10) * 10
}
