// Package economy provides the resource vector, the player ledger, and the
// recipe table that prices every unit, structure, and technology.
package economy

import "fmt"

// ResourceType indexes one of the four stockpiled resources.
type ResourceType uint8

const (
	Food  ResourceType = iota // Farms, berries, chickens
	Wood                      // Forests
	Stone                     // Quarries
	Metal                     // Mines
)

// NumResources is the total number of resource types.
const NumResources = 4

var resourceNames = [NumResources]string{"food", "wood", "stone", "metal"}

// String returns the lowercase resource name.
func (r ResourceType) String() string {
	if int(r) < NumResources {
		return resourceNames[r]
	}
	return fmt.Sprintf("resource(%d)", r)
}

// Resources is a fixed-size vector of signed resource quantities.
// Quantities may dip below zero; the tick driver treats that as a failure.
type Resources [NumResources]float64

// Add adds other scaled by mul to r in place.
func (r *Resources) Add(other Resources, mul float64) {
	for i := range r {
		r[i] += other[i] * mul
	}
}

// Scaled returns r multiplied by mul.
func (r Resources) Scaled(mul float64) Resources {
	for i := range r {
		r[i] *= mul
	}
	return r
}

// Negative returns true if any quantity is below zero.
func (r Resources) Negative() bool {
	for _, q := range r {
		if q < 0 {
			return true
		}
	}
	return false
}

// AtLeast returns true if every quantity in r is >= the matching level.
func (r Resources) AtLeast(levels Resources) bool {
	for i, q := range r {
		if q < levels[i] {
			return false
		}
	}
	return true
}

// String formats the vector the way summaries print it: "300f 300w 300s 300m".
func (r Resources) String() string {
	return fmt.Sprintf("%.0ff %.0fw %.0fs %.0fm", r[Food], r[Wood], r[Stone], r[Metal])
}
