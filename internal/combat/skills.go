package combat

import (
	"strings"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// SkillEffect is what a skill does once it fires.
type SkillEffect struct {
	Name             string                    `yaml:"name"`
	Keywords         []string                  `yaml:"keywords"`
	Status           gamedata.StatusEffectType `yaml:"status"`
	StatusTurns      int                       `yaml:"status_turns"`
	DamageMultiplier float64                   `yaml:"damage_multiplier"`
	Heal             bool                      `yaml:"heal"`
	HealFraction     float64                   `yaml:"heal_fraction"` // Share of max HP restored
}

// SkillTable maps skill text to effects. Rules are tried in order and the
// first rule with a keyword contained in the skill's name or description
// wins; Default applies when nothing matches.
type SkillTable struct {
	Rules   []SkillEffect `yaml:"rules"`
	Default SkillEffect   `yaml:"default"`
}

// Match returns the effect for a skill. Matching is a case-insensitive
// substring search.
func (t SkillTable) Match(skill *Skill) SkillEffect {
	if skill == nil {
		return t.Default
	}
	text := strings.ToLower(skill.Name + " " + skill.Description)
	for _, rule := range t.Rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return rule
			}
		}
	}
	return t.Default
}

// DefaultSkillTable returns the keyword table used by the standard preset.
// healFraction is the share of max HP a healing skill restores.
func DefaultSkillTable(healFraction float64) SkillTable {
	return SkillTable{
		Rules: []SkillEffect{
			{
				Name:             "fire",
				Keywords:         []string{"fire", "flame", "burn"},
				Status:           gamedata.StatusBurning,
				StatusTurns:      3,
				DamageMultiplier: 1.3,
			},
			{
				Name:             "heal",
				Keywords:         []string{"heal", "cure", "recover"},
				DamageMultiplier: 0.5,
				Heal:             true,
				HealFraction:     healFraction,
			},
			{
				Name:             "stun",
				Keywords:         []string{"stun", "paralyz"},
				Status:           gamedata.StatusStunned,
				StatusTurns:      1,
				DamageMultiplier: 1.2,
			},
			{
				Name:             "poison",
				Keywords:         []string{"poison", "toxic"},
				Status:           gamedata.StatusPoisoned,
				StatusTurns:      3,
				DamageMultiplier: 1.2,
			},
			{
				Name:             "ultimate",
				Keywords:         []string{"ultimate", "final"},
				DamageMultiplier: 2.0,
			},
		},
		Default: SkillEffect{Name: "power", DamageMultiplier: 1.5},
	}
}
