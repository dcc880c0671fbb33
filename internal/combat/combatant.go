package combat

import (
	"fmt"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// Source identifies where a combatant's stats came from.
type Source string

const (
	SourcePlayerCard Source = "player_card"
	SourceEnemy      Source = "enemy"
	SourceBoss       Source = "boss"
)

// Side identifies one of the two combatants in a battle.
type Side int

const (
	// Challenger is the side that initiated the battle (the player in PvE).
	Challenger Side = iota
	// Opponent is the enemy, boss or second player.
	Opponent
)

// String returns a human-readable side name.
func (s Side) String() string {
	switch s {
	case Challenger:
		return "challenger"
	case Opponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Challenger {
		return Opponent
	}
	return Challenger
}

// Skill is a combatant's special move.
type Skill struct {
	Name        string
	Description string
	MPCost      int
	Cooldown    int // Turns before reuse; CooldownDefault uses Settings.DefaultCooldown
}

// CooldownDefault marks a skill that takes the engine's default cooldown.
// Zero is a real cooldown: the skill is ready again next turn.
const CooldownDefault = -1

// Spec is the input to NewCombatant. HP and MP are the seed values the
// battle starts with, which lets a player carry MP over between fights.
type Spec struct {
	Name         string
	Source       Source
	Level        int
	Element      gamedata.Element
	Attack       int
	Defense      int
	Speed        int
	HP           int
	MaxHP        int
	MP           int
	MaxMP        int
	CriticalRate float64 // Percent; clamped to [0,100]
	DodgeRate    float64 // Percent; clamped to [0,100]
	Skill        *Skill  // nil means the combatant only has a basic attack
}

// Combatant is one side's live battle state. HP and MP are clamped to
// [0, max] on every mutation.
type Combatant struct {
	name    string
	source  Source
	level   int
	element gamedata.Element

	attack  int
	defense int
	speed   int

	hp, maxHP int
	mp, maxMP int

	critRate  float64
	dodgeRate float64

	skill         *Skill
	skillCooldown int

	status          map[gamedata.StatusEffectType]int
	stunnedThisTurn bool
}

// NewCombatant validates spec and builds a combatant. Malformed input is
// rejected here so nothing fails mid-battle.
func NewCombatant(spec Spec) (*Combatant, error) {
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCombatant, spec.Name, err)
	}

	c := &Combatant{
		name:      spec.Name,
		source:    spec.Source,
		level:     spec.Level,
		element:   spec.Element,
		attack:    spec.Attack,
		defense:   spec.Defense,
		speed:     spec.Speed,
		hp:        spec.HP,
		maxHP:     spec.MaxHP,
		mp:        spec.MP,
		maxMP:     spec.MaxMP,
		critRate:  clampRate(spec.CriticalRate),
		dodgeRate: clampRate(spec.DodgeRate),
		status:    make(map[gamedata.StatusEffectType]int),
	}
	if spec.Skill != nil {
		skill := *spec.Skill
		c.skill = &skill
	}
	return c, nil
}

// MustNewCombatant is NewCombatant for fixtures; it panics on error.
func MustNewCombatant(spec Spec) *Combatant {
	c, err := NewCombatant(spec)
	if err != nil {
		panic(err)
	}
	return c
}

func (s Spec) validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("name is required")
	case s.Element == "":
		return fmt.Errorf("element is required")
	case s.Level < 0:
		return fmt.Errorf("level %d is negative", s.Level)
	case s.Attack < 0 || s.Defense < 0 || s.Speed < 0:
		return fmt.Errorf("stats must be non-negative (attack=%d defense=%d speed=%d)", s.Attack, s.Defense, s.Speed)
	case s.MaxHP < 1:
		return fmt.Errorf("max_hp %d must be at least 1", s.MaxHP)
	case s.HP < 1 || s.HP > s.MaxHP:
		return fmt.Errorf("hp %d outside [1, %d]", s.HP, s.MaxHP)
	case s.MaxMP < 0:
		return fmt.Errorf("max_mp %d is negative", s.MaxMP)
	case s.MP < 0 || s.MP > s.MaxMP:
		return fmt.Errorf("mp %d outside [0, %d]", s.MP, s.MaxMP)
	}
	if s.Skill != nil {
		if s.Skill.Name == "" {
			return fmt.Errorf("skill name is required")
		}
		if s.Skill.MPCost < 0 {
			return fmt.Errorf("skill %q mp_cost %d is negative", s.Skill.Name, s.Skill.MPCost)
		}
		if s.Skill.Cooldown < CooldownDefault {
			return fmt.Errorf("skill %q cooldown %d is negative", s.Skill.Name, s.Skill.Cooldown)
		}
	}
	return nil
}

// Clone returns an independent copy with its own status map.
func (c *Combatant) Clone() *Combatant {
	clone := *c
	if c.skill != nil {
		skill := *c.skill
		clone.skill = &skill
	}
	clone.status = make(map[gamedata.StatusEffectType]int, len(c.status))
	for k, v := range c.status {
		clone.status[k] = v
	}
	return &clone
}

// Identity

func (c *Combatant) GetName() string              { return c.name }
func (c *Combatant) GetSource() Source            { return c.source }
func (c *Combatant) GetLevel() int                { return c.level }
func (c *Combatant) GetElement() gamedata.Element { return c.element }
func (c *Combatant) IsAlive() bool                { return c.hp > 0 }
func (c *Combatant) IsDefeated() bool             { return c.hp == 0 }

// Stats

func (c *Combatant) GetHP() int               { return c.hp }
func (c *Combatant) GetMaxHP() int            { return c.maxHP }
func (c *Combatant) GetMP() int               { return c.mp }
func (c *Combatant) GetMaxMP() int            { return c.maxMP }
func (c *Combatant) GetAttack() int           { return c.attack }
func (c *Combatant) GetDefense() int          { return c.defense }
func (c *Combatant) GetSpeed() int            { return c.speed }
func (c *Combatant) GetCriticalRate() float64 { return c.critRate }
func (c *Combatant) GetDodgeRate() float64    { return c.dodgeRate }
func (c *Combatant) GetSkill() *Skill         { return c.skill }
func (c *Combatant) GetSkillCooldown() int    { return c.skillCooldown }

// HPRatio returns hp/max_hp in [0,1].
func (c *Combatant) HPRatio() float64 {
	return float64(c.hp) / float64(c.maxHP)
}

// Mutations

// TakeDamage reduces HP, never below zero. Returns actual damage taken.
func (c *Combatant) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if actual > c.hp {
		actual = c.hp
	}
	c.hp -= actual
	return actual
}

// Heal restores HP, never above max. Returns actual amount healed.
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if c.hp+actual > c.maxHP {
		actual = c.maxHP - c.hp
	}
	c.hp += actual
	return actual
}

// SpendMP deducts MP. Returns false and changes nothing if MP is insufficient.
func (c *Combatant) SpendMP(amount int) bool {
	if amount < 0 || c.mp < amount {
		return false
	}
	c.mp -= amount
	return true
}

// RestoreMP restores MP, never above max. Returns actual amount restored.
func (c *Combatant) RestoreMP(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if c.mp+actual > c.maxMP {
		actual = c.maxMP - c.mp
	}
	c.mp += actual
	return actual
}

// CanUseSkill reports whether the skill is off cooldown and affordable.
func (c *Combatant) CanUseSkill() bool {
	return c.skill != nil && c.skillCooldown == 0 && c.mp >= c.skill.MPCost
}

// tickCooldown lowers the skill cooldown by one, stopping at zero.
func (c *Combatant) tickCooldown() {
	if c.skillCooldown > 0 {
		c.skillCooldown--
	}
}

func (c *Combatant) checkInvariants() {
	if c.hp < 0 || c.hp > c.maxHP {
		panic(&InvariantError{Combatant: c.name, Field: "hp", Value: c.hp, Max: c.maxHP})
	}
	if c.mp < 0 || c.mp > c.maxMP {
		panic(&InvariantError{Combatant: c.name, Field: "mp", Value: c.mp, Max: c.maxMP})
	}
	if c.skillCooldown < 0 {
		panic(&InvariantError{Combatant: c.name, Field: "cooldown", Value: c.skillCooldown})
	}
}

// Vitals is a snapshot of a combatant's resources.
type Vitals struct {
	HP    int
	MaxHP int
	MP    int
	MaxMP int
}

func (c *Combatant) vitals() Vitals {
	return Vitals{HP: c.hp, MaxHP: c.maxHP, MP: c.mp, MaxMP: c.maxMP}
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
