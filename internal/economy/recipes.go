package economy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRecipe is returned when a kind has no entry in the recipe table.
var ErrUnknownRecipe = errors.New("unknown recipe")

// Recipe is the price and duration of one unit, structure, or technology.
// Duration is in ticks. Requires names the building kind that researches a
// technology; it is empty for units and structures.
type Recipe struct {
	Cost     Resources
	Duration float64
	Requires string
}

// IsTech returns true if the recipe describes a researchable technology.
func (r Recipe) IsTech() bool {
	return r.Requires != ""
}

// RecipeTable maps a kind name to its recipe.
type RecipeTable map[string]Recipe

// Lookup returns the recipe for kind.
func (t RecipeTable) Lookup(kind string) (Recipe, error) {
	r, ok := t[kind]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, kind)
	}
	return r, nil
}

// Clone returns an independent copy of the table.
func (t RecipeTable) Clone() RecipeTable {
	out := make(RecipeTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func unit(f, w, s, m, time float64) Recipe {
	return Recipe{Cost: Resources{f, w, s, m}, Duration: time}
}

func tech(f, w, s, m, time float64, requires string) Recipe {
	return Recipe{Cost: Resources{f, w, s, m}, Duration: time, Requires: requires}
}

// DefaultRecipes returns the built-in recipe table.
func DefaultRecipes() RecipeTable {
	return RecipeTable{
		// Units
		"horse":    unit(100, 50, 0, 0, 15),
		"sheep":    unit(50, 0, 0, 0, 40),
		"male":     unit(50, 50, 0, 0, 10),
		"female":   unit(50, 0, 0, 0, 8),
		"trader":   unit(100, 0, 0, 80, 15),
		"champ":    unit(150, 80, 0, 100, 25),
		"elephant": unit(100, 0, 0, 0, 11),

		// Structures
		"house":      unit(0, 75, 0, 0, 30),
		"storehouse": unit(0, 100, 0, 0, 40),
		"farmstead":  unit(0, 100, 0, 0, 45),
		"cc":         unit(0, 300, 300, 250, 500),
		"corral":     unit(0, 100, 0, 0, 50),
		"barracks":   unit(0, 300, 0, 0, 150),
		"temple":     unit(0, 0, 300, 0, 200),
		"market":     unit(0, 300, 0, 0, 150),
		"blacksmith": unit(0, 200, 0, 0, 120),
		"tower":      unit(0, 100, 100, 0, 150),
		"field":      unit(0, 100, 0, 0, 50),
		"castle":     unit(0, 300, 600, 0, 450),

		// Technologies
		"up_chop1":  tech(0, 200, 0, 100, 40, "storehouse"),
		"up_chop2":  tech(0, 400, 0, 200, 50, "storehouse"),
		"up_chop3":  tech(0, 600, 0, 300, 60, "storehouse"),
		"up_stone1": tech(200, 0, 100, 0, 40, "storehouse"),
		"up_stone2": tech(300, 0, 200, 0, 50, "storehouse"),
		"up_stone3": tech(400, 0, 300, 0, 60, "storehouse"),
		"up_metal1": tech(200, 0, 0, 100, 40, "storehouse"),
		"up_metal2": tech(300, 0, 0, 200, 50, "storehouse"),
		"up_metal3": tech(400, 0, 0, 300, 60, "storehouse"),
		"up_gather": tech(0, 100, 0, 0, 40, "farmstead"),
		"up_farm1":  tech(0, 200, 0, 100, 40, "farmstead"),
		"up_farm2":  tech(0, 300, 0, 100, 50, "farmstead"),
		"up_farm3":  tech(0, 400, 0, 100, 60, "farmstead"),
		"up_trade1": tech(0, 150, 0, 150, 40, "market"),
		"up_trade2": tech(0, 300, 0, 300, 40, "market"),
	}
}

// recipeEntry is the YAML shape of one recipe.
type recipeEntry struct {
	Food     float64 `yaml:"food"`
	Wood     float64 `yaml:"wood"`
	Stone    float64 `yaml:"stone"`
	Metal    float64 `yaml:"metal"`
	Time     float64 `yaml:"time"`
	Requires string  `yaml:"requires"`
}

// LoadRecipes reads a YAML recipe file and overlays it on the defaults.
// Entries in the file replace built-in entries of the same name.
func LoadRecipes(path string) (RecipeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecipes(raw)
}

// ParseRecipes decodes YAML recipe data and overlays it on the defaults.
func ParseRecipes(raw []byte) (RecipeTable, error) {
	var entries map[string]recipeEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("recipes.yaml: %w", err)
	}
	table := DefaultRecipes()
	for kind, e := range entries {
		if kind == "" {
			return nil, fmt.Errorf("recipes.yaml: empty kind")
		}
		if e.Time < 0 {
			return nil, fmt.Errorf("recipes.yaml: %s: negative time", kind)
		}
		table[kind] = Recipe{
			Cost:     Resources{e.Food, e.Wood, e.Stone, e.Metal},
			Duration: e.Time,
			Requires: e.Requires,
		}
	}
	return table, nil
}
