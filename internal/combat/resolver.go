// Package combat provides the turn-based battle engine: combatants, status
// effects, the turn resolver and the battle loop.
package combat

import (
	"math"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// Dice supplies the random rolls the resolver needs. Each call is an
// independent draw. *probability.Roller implements it.
type Dice interface {
	Critical(rate float64) bool
	Dodge(rate float64) bool
	Chance(p float64) bool
}

// ElementTable returns the damage multiplier for an attacker/defender
// pairing. *gamedata.ElementChart implements it.
type ElementTable interface {
	Multiplier(attacker, defender gamedata.Element) float64
}

type neutralElements struct{}

func (neutralElements) Multiplier(_, _ gamedata.Element) float64 { return 1.0 }

// Action is the kind of move a combatant made on its turn.
type Action string

const (
	ActionAttack     Action = "attack"
	ActionSkill      Action = "skill"
	ActionNone       Action = "none"
	ActionFlee       Action = "flee"
	ActionFleeFailed Action = "flee_failed"
)

// ActionResult contains the outcome of one combatant's action.
type ActionResult struct {
	Action        Action
	Skill         string
	SkillEffect   string // Name of the matched SkillEffect
	Damage        int
	Healed        int
	Critical      bool
	Dodged        bool
	Stunned       bool
	Effective     bool
	Resisted      bool
	StatusApplied gamedata.StatusEffectType
}

// Resolver decides and applies one combatant's action against its opponent.
type Resolver struct {
	settings Settings
	dice     Dice
	elements ElementTable
}

// NewResolver creates a resolver. A nil element table is neutral.
func NewResolver(settings Settings, dice Dice, elements ElementTable) *Resolver {
	if elements == nil {
		elements = neutralElements{}
	}
	return &Resolver{
		settings: settings,
		dice:     dice,
		elements: elements,
	}
}

// Resolve runs actor's turn against target using odds for the skill roll.
func (r *Resolver) Resolve(actor, target *Combatant, odds SkillOdds) ActionResult {
	if actor.IsStunned() {
		return ActionResult{Action: ActionNone, Stunned: true}
	}

	// Eligibility short-circuits the probability roll.
	if actor.CanUseSkill() && r.dice.Chance(odds.For(actor)) {
		return r.resolveSkill(actor, target)
	}
	return r.resolveAttack(actor, target)
}

// resolveAttack handles a basic attack. Basic attacks can be dodged.
func (r *Resolver) resolveAttack(actor, target *Combatant) ActionResult {
	result := ActionResult{Action: ActionAttack}
	r.strike(actor, target, 1.0, true, &result)
	return result
}

// resolveSkill spends MP, starts the cooldown and applies the matched effect.
func (r *Resolver) resolveSkill(actor, target *Combatant) ActionResult {
	skill := actor.skill
	effect := r.settings.Skills.Match(skill)

	actor.SpendMP(skill.MPCost)
	cooldown := skill.Cooldown
	if cooldown == CooldownDefault {
		cooldown = r.settings.DefaultCooldown
	}
	actor.skillCooldown = cooldown

	result := ActionResult{
		Action:      ActionSkill,
		Skill:       skill.Name,
		SkillEffect: effect.Name,
	}

	if effect.Heal {
		result.Healed = actor.Heal(int(math.Floor(float64(actor.maxHP) * effect.HealFraction)))
		return result
	}

	r.strike(actor, target, effect.DamageMultiplier, false, &result)

	if effect.Status != gamedata.StatusNone {
		target.AddStatusEffect(StatusEffect{Type: effect.Status, RemainingTurns: effect.StatusTurns})
		result.StatusApplied = effect.Status
	}
	return result
}

// strike computes and applies damage. A successful dodge skips the
// critical roll entirely.
func (r *Resolver) strike(actor, target *Combatant, multiplier float64, dodgeable bool, result *ActionResult) {
	elem := r.elements.Multiplier(actor.element, target.element)
	result.Effective = elem > 1
	result.Resisted = elem < 1

	if dodgeable && r.dice.Dodge(target.dodgeRate) {
		result.Dodged = true
		return
	}

	damage := float64(r.BaseDamage(actor, target)) * multiplier * elem
	if r.dice.Critical(actor.critRate) {
		result.Critical = true
		damage *= r.settings.CriticalMultiplier
	}

	result.Damage = target.TakeDamage(int(math.Floor(damage)))
}

// BaseDamage is max(MinDamage, attack - defense/DefenseDivisor) with
// integer division.
func (r *Resolver) BaseDamage(actor, target *Combatant) int {
	base := actor.attack - target.defense/r.settings.DefenseDivisor
	if base < r.settings.MinDamage {
		base = r.settings.MinDamage
	}
	return base
}

// Flee attempts to escape. The chance in percent is
// min(90, 60 + (speed ratio - 1) * 20).
func (r *Resolver) Flee(actor, target *Combatant) ActionResult {
	if actor.IsStunned() {
		return ActionResult{Action: ActionNone, Stunned: true}
	}
	if r.dice.Chance(FleeChance(actor.speed, target.speed) / 100) {
		return ActionResult{Action: ActionFlee}
	}
	return ActionResult{Action: ActionFleeFailed}
}

// FleeChance returns the flee success chance in percent, clamped to [0,90].
func FleeChance(speed, enemySpeed int) float64 {
	if enemySpeed <= 0 {
		return 90
	}
	chance := 60 + (float64(speed)/float64(enemySpeed)-1)*20
	return math.Max(0, math.Min(90, chance))
}
