package gamedata

import (
	"fmt"
	"sort"
)

// EvolutionDef configures card evolution, loaded from evolution.yaml.
// Stages start at 1. A card at stage s is capped at level
// s*LevelsPerStage and evolves once it reaches that cap.
type EvolutionDef struct {
	MaxStage       int             `yaml:"max_stage"`
	LevelsPerStage int             `yaml:"levels_per_stage"`
	StatBonus      float64         `yaml:"stat_bonus"` // Fraction of base stats gained per stage
	Gold           map[Rarity]int  `yaml:"gold"`       // Base gold, multiplied by stage+1
	CoreMaterial   int             `yaml:"core_material"`
	Essences       map[Element]int `yaml:"essences"`
	Fragments      map[Rarity]int  `yaml:"fragments"`
	SoulMaterial   int             `yaml:"soul_material"`
	SoulFromStage  int             `yaml:"soul_from_stage"`
}

// MaterialCost is a quantity of one material.
type MaterialCost struct {
	MaterialID int
	Quantity   int
}

// EvolutionCost is what one evolution consumes.
type EvolutionCost struct {
	Gold      int
	Materials []MaterialCost // Sorted by material ID
}

// LoadEvolution loads the evolution table from the embedded evolution.yaml file.
func LoadEvolution() (*EvolutionDef, error) {
	def, err := Load[EvolutionDef]("evolution.yaml")
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// MustLoadEvolution loads the evolution table, panicking on error.
func MustLoadEvolution() *EvolutionDef {
	def, err := LoadEvolution()
	if err != nil {
		panic(err)
	}
	return def
}

// Validate checks the table against the known materials.
func (e *EvolutionDef) Validate(materials *MaterialRegistry) error {
	if e.MaxStage < 1 || e.LevelsPerStage < 1 || e.StatBonus < 0 {
		return fmt.Errorf("evolution: max_stage %d levels_per_stage %d stat_bonus %v", e.MaxStage, e.LevelsPerStage, e.StatBonus)
	}
	ids := []int{e.CoreMaterial, e.SoulMaterial}
	for _, id := range e.Essences {
		ids = append(ids, id)
	}
	for _, id := range e.Fragments {
		ids = append(ids, id)
	}
	for _, id := range ids {
		if materials.GetByID(id) == nil {
			return fmt.Errorf("evolution: unknown material %d", id)
		}
	}
	for _, r := range Rarities {
		if e.Gold[r] <= 0 {
			return fmt.Errorf("evolution: gold for %s must be positive", r)
		}
	}
	return nil
}

// MaxLevel returns the level cap of a card at stage.
func (e *EvolutionDef) MaxLevel(stage int) int {
	return max(1, stage) * e.LevelsPerStage
}

// Cost returns what evolving card out of stage consumes. Elements without
// an essence and rarities without a fragment skip that material.
func (e *EvolutionDef) Cost(card *CardDef, stage int) EvolutionCost {
	stage = max(1, stage)
	n := stage + 1
	cost := EvolutionCost{Gold: e.Gold[card.Rarity] * n}

	need := map[int]int{e.CoreMaterial: n}
	if id, ok := e.Essences[card.Element]; ok {
		need[id] += 2 * n
	}
	if id, ok := e.Fragments[card.Rarity]; ok {
		need[id] += n
	}
	if e.SoulFromStage > 0 && stage >= e.SoulFromStage {
		need[e.SoulMaterial]++
	}

	for id, qty := range need {
		cost.Materials = append(cost.Materials, MaterialCost{MaterialID: id, Quantity: qty})
	}
	sort.Slice(cost.Materials, func(i, j int) bool {
		return cost.Materials[i].MaterialID < cost.Materials[j].MaterialID
	})
	return cost
}
