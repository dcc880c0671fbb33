package combat

import (
	"math"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// StatusEffect represents an active status effect on a combatant.
type StatusEffect struct {
	Type           gamedata.StatusEffectType
	RemainingTurns int
}

// StatusRule configures the passive effect of a status at turn start.
type StatusRule struct {
	Type          gamedata.StatusEffectType `yaml:"type"`
	MaxHPFraction float64                   `yaml:"max_hp_fraction"` // Damage per tick as a share of max HP
}

// StatusTick represents what happened when a status effect was processed.
type StatusTick struct {
	Side   Side
	Type   gamedata.StatusEffectType
	Amount int  // Damage taken
	Ended  bool // True if the effect expired
}

// AddStatusEffect sets an effect, replacing any existing effect of the same
// type. Unknown types and non-positive durations are ignored.
func (c *Combatant) AddStatusEffect(effect StatusEffect) {
	if !effect.Type.IsKnown() || effect.RemainingTurns <= 0 {
		return
	}
	c.status[effect.Type] = effect.RemainingTurns
}

// RemoveStatusEffect clears an effect.
func (c *Combatant) RemoveStatusEffect(effectType gamedata.StatusEffectType) {
	delete(c.status, effectType)
}

// HasStatus reports whether an effect is active.
func (c *Combatant) HasStatus(effectType gamedata.StatusEffectType) bool {
	return c.status[effectType] > 0
}

// GetStatusEffects returns active effects in processing order.
func (c *Combatant) GetStatusEffects() []StatusEffect {
	effects := make([]StatusEffect, 0, len(c.status))
	for _, t := range gamedata.StatusOrder {
		if turns, ok := c.status[t]; ok {
			effects = append(effects, StatusEffect{Type: t, RemainingTurns: turns})
		}
	}
	return effects
}

// IsStunned reports whether the combatant loses its action this turn. It is
// decided by the turn-start tick, so a one-turn stun still costs an action
// even though the tick already expired it.
func (c *Combatant) IsStunned() bool {
	return c.stunnedThisTurn
}

// TickStatusEffects applies each active effect once in gamedata.StatusOrder,
// then decrements it and removes it at zero.
func (c *Combatant) TickStatusEffects(side Side, rules []StatusRule) []StatusTick {
	c.stunnedThisTurn = false
	if len(c.status) == 0 {
		return nil
	}

	var ticks []StatusTick
	for _, t := range gamedata.StatusOrder {
		turns, ok := c.status[t]
		if !ok {
			continue
		}

		tick := StatusTick{Side: side, Type: t}
		if t == gamedata.StatusStunned {
			c.stunnedThisTurn = true
		}
		if fraction := statusFraction(rules, t); fraction > 0 {
			tick.Amount = c.TakeDamage(int(math.Floor(float64(c.maxHP) * fraction)))
		}

		turns--
		if turns <= 0 {
			delete(c.status, t)
			tick.Ended = true
		} else {
			c.status[t] = turns
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

func statusFraction(rules []StatusRule, t gamedata.StatusEffectType) float64 {
	for _, r := range rules {
		if r.Type == t {
			return r.MaxHPFraction
		}
	}
	return 0
}
