package combat

import (
	"fmt"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// SkillOdds is the probability that an eligible combatant uses its skill.
// Below LowHPThreshold (share of max HP) the LowHP value applies.
type SkillOdds struct {
	Base           float64 `yaml:"base"`
	LowHP          float64 `yaml:"low_hp"`
	LowHPThreshold float64 `yaml:"low_hp_threshold"`
}

// For returns the skill-use probability for c's current HP.
func (o SkillOdds) For(c *Combatant) float64 {
	if float64(c.hp) < o.LowHPThreshold*float64(c.maxHP) {
		return o.LowHP
	}
	return o.Base
}

// Settings holds every tunable of the engine. Presets are loaded by the
// config package; DefaultSettings matches the standard preset.
type Settings struct {
	Skills             SkillTable   `yaml:"skills"`
	Status             []StatusRule `yaml:"status"`
	ChallengerOdds     SkillOdds    `yaml:"challenger_odds"`
	OpponentOdds       SkillOdds    `yaml:"opponent_odds"`
	MinDamage          int          `yaml:"min_damage"`
	DefenseDivisor     int          `yaml:"defense_divisor"`
	CriticalMultiplier float64      `yaml:"critical_multiplier"`
	MPRegenFraction    float64      `yaml:"mp_regen_fraction"`
	MaxTurns           int          `yaml:"max_turns"`
	DefaultCooldown    int          `yaml:"default_cooldown"`
}

// DefaultSettings returns the standard engine tuning.
func DefaultSettings() Settings {
	odds := SkillOdds{Base: 0.3, LowHP: 0.7, LowHPThreshold: 0.4}
	return Settings{
		Skills: DefaultSkillTable(0.20),
		Status: []StatusRule{
			{Type: gamedata.StatusBurning, MaxHPFraction: 0.05},
			{Type: gamedata.StatusPoisoned, MaxHPFraction: 0.08},
			{Type: gamedata.StatusStunned},
		},
		ChallengerOdds:     odds,
		OpponentOdds:       odds,
		MinDamage:          5,
		DefenseDivisor:     2,
		CriticalMultiplier: 1.5,
		MPRegenFraction:    0.05,
		MaxTurns:           100,
		DefaultCooldown:    3,
	}
}

// Odds returns the skill odds for a side.
func (s Settings) Odds(side Side) SkillOdds {
	if side == Opponent {
		return s.OpponentOdds
	}
	return s.ChallengerOdds
}

// Validate checks every field. Errors wrap ErrInvalidSettings.
func (s Settings) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
	}

	if s.MaxTurns < 1 {
		return fail("max_turns %d must be at least 1", s.MaxTurns)
	}
	if s.MinDamage < 0 {
		return fail("min_damage %d is negative", s.MinDamage)
	}
	if s.DefenseDivisor < 1 {
		return fail("defense_divisor %d must be at least 1", s.DefenseDivisor)
	}
	if s.CriticalMultiplier < 1 {
		return fail("critical_multiplier %v must be at least 1", s.CriticalMultiplier)
	}
	if !inUnit(s.MPRegenFraction) {
		return fail("mp_regen_fraction %v outside [0,1]", s.MPRegenFraction)
	}
	if s.DefaultCooldown < 0 {
		return fail("default_cooldown %d is negative", s.DefaultCooldown)
	}
	for name, o := range map[string]SkillOdds{"challenger_odds": s.ChallengerOdds, "opponent_odds": s.OpponentOdds} {
		if !inUnit(o.Base) || !inUnit(o.LowHP) || !inUnit(o.LowHPThreshold) {
			return fail("%s %+v has a value outside [0,1]", name, o)
		}
	}

	for _, r := range s.Status {
		if !r.Type.IsKnown() {
			return fail("unknown status %q", r.Type)
		}
		if !inUnit(r.MaxHPFraction) {
			return fail("status %s max_hp_fraction %v outside [0,1]", r.Type, r.MaxHPFraction)
		}
	}

	if len(s.Skills.Rules) == 0 {
		return fail("skill keyword table is empty")
	}
	for _, rule := range s.Skills.Rules {
		if len(rule.Keywords) == 0 {
			return fail("skill rule %q has no keywords", rule.Name)
		}
		if err := validateEffect(rule); err != nil {
			return fail("skill rule %q: %v", rule.Name, err)
		}
	}
	if err := validateEffect(s.Skills.Default); err != nil {
		return fail("default skill rule: %v", err)
	}
	return nil
}

func validateEffect(e SkillEffect) error {
	if e.Status != gamedata.StatusNone && !e.Status.IsKnown() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	if e.Status != gamedata.StatusNone && e.StatusTurns < 1 {
		return fmt.Errorf("status %s needs at least one turn", e.Status)
	}
	if e.DamageMultiplier < 0 {
		return fmt.Errorf("damage_multiplier %v is negative", e.DamageMultiplier)
	}
	if e.Heal && (e.HealFraction <= 0 || e.HealFraction > 1) {
		return fmt.Errorf("heal_fraction %v outside (0,1]", e.HealFraction)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
