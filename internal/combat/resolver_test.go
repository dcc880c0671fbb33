package combat

import (
	"testing"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// scriptedDice returns queued answers per roll kind and false once a queue
// is empty. It counts calls so tests can assert a roll was skipped.
type scriptedDice struct {
	crits, dodges, chances             []bool
	critCalls, dodgeCalls, chanceCalls int
}

func (d *scriptedDice) Critical(float64) bool {
	d.critCalls++
	return pop(&d.crits)
}

func (d *scriptedDice) Dodge(float64) bool {
	d.dodgeCalls++
	return pop(&d.dodges)
}

func (d *scriptedDice) Chance(float64) bool {
	d.chanceCalls++
	return pop(&d.chances)
}

func pop(q *[]bool) bool {
	if len(*q) == 0 {
		return false
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v
}

func newTestCombatant(name string, attack, defense, speed, hp int) *Combatant {
	return MustNewCombatant(Spec{
		Name:    name,
		Source:  SourceEnemy,
		Level:   1,
		Element: gamedata.ElementStar,
		Attack:  attack,
		Defense: defense,
		Speed:   speed,
		HP:      hp,
		MaxHP:   hp,
	})
}

func withSkill(c *Combatant, name, description string, mp int) *Combatant {
	c.skill = &Skill{Name: name, Description: description, MPCost: 20, Cooldown: CooldownDefault}
	c.maxMP = 100
	c.mp = mp
	return c
}

func TestResolveBasicAttackDamage(t *testing.T) {
	a := newTestCombatant("A", 100, 50, 80, 500)
	b := newTestCombatant("B", 50, 100, 40, 500)
	r := NewResolver(DefaultSettings(), &scriptedDice{}, nil)

	result := r.Resolve(a, b, DefaultSettings().ChallengerOdds)
	if result.Action != ActionAttack || result.Damage != 50 {
		t.Errorf("A hit: got %s for %d, want attack for 50", result.Action, result.Damage)
	}

	result = r.Resolve(b, a, DefaultSettings().OpponentOdds)
	if result.Damage != 25 {
		t.Errorf("B hit: got %d, want 25", result.Damage)
	}
}

func TestBaseDamageFloor(t *testing.T) {
	weak := newTestCombatant("weak", 10, 0, 1, 100)
	wall := newTestCombatant("wall", 0, 500, 1, 100)
	r := NewResolver(DefaultSettings(), &scriptedDice{}, nil)

	if got := r.BaseDamage(weak, wall); got != 5 {
		t.Errorf("BaseDamage = %d, want minimum 5", got)
	}
}

func TestCriticalHit(t *testing.T) {
	a := newTestCombatant("A", 100, 50, 80, 500)
	b := newTestCombatant("B", 50, 100, 40, 500)
	r := NewResolver(DefaultSettings(), &scriptedDice{crits: []bool{true}}, nil)

	result := r.Resolve(a, b, SkillOdds{})
	if !result.Critical || result.Damage != 75 {
		t.Errorf("got critical=%v damage=%d, want critical for 75", result.Critical, result.Damage)
	}
}

func TestDodgeSkipsCriticalRoll(t *testing.T) {
	a := newTestCombatant("A", 100, 50, 80, 500)
	b := newTestCombatant("B", 50, 100, 40, 500)
	dice := &scriptedDice{dodges: []bool{true}, crits: []bool{true}}
	r := NewResolver(DefaultSettings(), dice, nil)

	result := r.Resolve(a, b, SkillOdds{})

	if !result.Dodged || result.Damage != 0 {
		t.Errorf("got dodged=%v damage=%d, want dodge for 0", result.Dodged, result.Damage)
	}
	if result.Critical {
		t.Error("Dodged attack must not be critical")
	}
	if dice.critCalls != 0 {
		t.Errorf("Critical rolled %d times after a dodge", dice.critCalls)
	}
	if b.GetHP() != 500 {
		t.Errorf("Defender HP changed to %d", b.GetHP())
	}
}

func TestSkillGateShortCircuitsRoll(t *testing.T) {
	a := withSkill(newTestCombatant("A", 100, 50, 80, 500), "Fire Fist", "", 0)
	b := newTestCombatant("B", 50, 100, 40, 500)
	dice := &scriptedDice{chances: []bool{true}}
	r := NewResolver(DefaultSettings(), dice, nil)

	for i := 0; i < 20; i++ {
		if result := r.Resolve(a, b, SkillOdds{Base: 1, LowHP: 1}); result.Action != ActionAttack {
			t.Fatalf("Resolve %d: combatant with 0 MP used %s", i, result.Action)
		}
		a.mp = 0
	}
	if dice.chanceCalls != 0 {
		t.Errorf("Skill chance rolled %d times with insufficient MP", dice.chanceCalls)
	}
}

func TestSkillOnCooldownIsNotRolled(t *testing.T) {
	a := withSkill(newTestCombatant("A", 100, 50, 80, 500), "Rasengan", "", 100)
	b := newTestCombatant("B", 50, 100, 40, 5000)
	dice := &scriptedDice{chances: []bool{true, true}}
	r := NewResolver(DefaultSettings(), dice, nil)

	if result := r.Resolve(a, b, SkillOdds{Base: 1}); result.Action != ActionSkill {
		t.Fatalf("First resolve: got %s, want skill", result.Action)
	}
	if a.GetSkillCooldown() != 3 {
		t.Errorf("Cooldown = %d, want default 3", a.GetSkillCooldown())
	}
	if a.GetMP() != 80 {
		t.Errorf("MP = %d, want 80", a.GetMP())
	}
	if result := r.Resolve(a, b, SkillOdds{Base: 1}); result.Action != ActionAttack {
		t.Errorf("Second resolve: got %s, want attack while on cooldown", result.Action)
	}
	if dice.chanceCalls != 1 {
		t.Errorf("Chance rolled %d times, want 1", dice.chanceCalls)
	}
}

func TestZeroCooldownSkillIsReadyNextTurn(t *testing.T) {
	a := withSkill(newTestCombatant("A", 100, 50, 80, 500), "Rasengan", "", 100)
	a.skill.Cooldown = 0
	b := newTestCombatant("B", 50, 100, 40, 5000)
	dice := &scriptedDice{chances: []bool{true, true}}
	r := NewResolver(DefaultSettings(), dice, nil)

	for i := 0; i < 2; i++ {
		if result := r.Resolve(a, b, SkillOdds{Base: 1}); result.Action != ActionSkill {
			t.Fatalf("Resolve %d: got %s, want skill", i, result.Action)
		}
		if a.GetSkillCooldown() != 0 {
			t.Errorf("Resolve %d: cooldown = %d, want 0", i, a.GetSkillCooldown())
		}
	}
	if a.GetMP() != 60 {
		t.Errorf("MP = %d, want 60", a.GetMP())
	}
}

func TestSkillEffects(t *testing.T) {
	tests := []struct {
		name       string
		skill      string
		wantEffect string
		wantDamage int
		wantStatus gamedata.StatusEffectType
	}{
		// base damage 100 - 50/2 = 75
		{"fire", "Fire Fist", "fire", 97, gamedata.StatusBurning},
		{"stun", "Paralyzing Bolt", "stun", 90, gamedata.StatusStunned},
		{"poison", "Toxic Fang", "poison", 90, gamedata.StatusPoisoned},
		{"ultimate", "Final Flash", "ultimate", 150, gamedata.StatusNone},
		{"default", "Rasengan", "power", 112, gamedata.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := withSkill(newTestCombatant("A", 100, 50, 80, 500), tt.skill, "", 100)
			b := newTestCombatant("B", 50, 50, 40, 1000)
			dice := &scriptedDice{chances: []bool{true}, dodges: []bool{true}}
			r := NewResolver(DefaultSettings(), dice, nil)

			result := r.Resolve(a, b, SkillOdds{Base: 1})

			if result.Action != ActionSkill || result.SkillEffect != tt.wantEffect {
				t.Fatalf("got %s/%s, want skill/%s", result.Action, result.SkillEffect, tt.wantEffect)
			}
			if result.Damage != tt.wantDamage {
				t.Errorf("Damage = %d, want %d", result.Damage, tt.wantDamage)
			}
			if result.StatusApplied != tt.wantStatus {
				t.Errorf("StatusApplied = %q, want %q", result.StatusApplied, tt.wantStatus)
			}
			if tt.wantStatus != gamedata.StatusNone && !b.HasStatus(tt.wantStatus) {
				t.Errorf("Target missing status %s", tt.wantStatus)
			}
			if dice.dodgeCalls != 0 {
				t.Error("Skills must not roll dodge")
			}
		})
	}
}

func TestHealingSkillSuppressesDamage(t *testing.T) {
	a := withSkill(newTestCombatant("A", 100, 50, 80, 1000), "Mystical Palm", "Medical ninjutsu that will heal wounds", 100)
	a.hp = 500
	b := newTestCombatant("B", 50, 50, 40, 1000)
	r := NewResolver(DefaultSettings(), &scriptedDice{chances: []bool{true}}, nil)

	result := r.Resolve(a, b, SkillOdds{Base: 1})

	if result.Healed != 200 {
		t.Errorf("Healed = %d, want 200 (20%% of 1000)", result.Healed)
	}
	if result.Damage != 0 || b.GetHP() != 1000 {
		t.Errorf("Heal dealt %d damage, target HP %d", result.Damage, b.GetHP())
	}
	if a.GetHP() != 700 {
		t.Errorf("Healer HP = %d, want 700", a.GetHP())
	}
}

func TestHealingIsClampedAtMaxHP(t *testing.T) {
	a := withSkill(newTestCombatant("A", 100, 50, 80, 1000), "Cure", "", 100)
	a.hp = 950
	b := newTestCombatant("B", 50, 50, 40, 1000)
	r := NewResolver(DefaultSettings(), &scriptedDice{chances: []bool{true}}, nil)

	if result := r.Resolve(a, b, SkillOdds{Base: 1}); result.Healed != 50 {
		t.Errorf("Healed = %d, want 50", result.Healed)
	}
	if a.GetHP() != 1000 {
		t.Errorf("HP = %d, want 1000", a.GetHP())
	}
}

func TestStunnedActorSkipsAction(t *testing.T) {
	a := newTestCombatant("A", 100, 50, 80, 500)
	b := newTestCombatant("B", 50, 100, 40, 500)
	a.AddStatusEffect(StatusEffect{Type: gamedata.StatusStunned, RemainingTurns: 1})
	a.TickStatusEffects(Challenger, DefaultSettings().Status)

	dice := &scriptedDice{}
	r := NewResolver(DefaultSettings(), dice, nil)
	result := r.Resolve(a, b, SkillOdds{Base: 1})

	if result.Action != ActionNone || !result.Stunned {
		t.Errorf("got %s stunned=%v, want none/stunned", result.Action, result.Stunned)
	}
	if b.GetHP() != 500 {
		t.Errorf("Stunned actor dealt damage")
	}
	if dice.chanceCalls+dice.dodgeCalls+dice.critCalls != 0 {
		t.Error("Stunned actor consumed rolls")
	}
}

func TestElementMultiplierApplied(t *testing.T) {
	chart := gamedata.MustLoadElementChart()

	tests := []struct {
		attacker, defender gamedata.Element
		wantDamage         int
		effective          bool
		resisted           bool
	}{
		{gamedata.ElementFire, gamedata.ElementEarth, 75, true, false},
		{gamedata.ElementFire, gamedata.ElementWater, 37, false, true},
		{gamedata.ElementFire, gamedata.ElementStar, 50, false, false},
		{"Void", gamedata.ElementFire, 50, false, false},
	}

	for _, tt := range tests {
		a := newTestCombatant("A", 100, 50, 80, 500)
		a.element = tt.attacker
		b := newTestCombatant("B", 50, 100, 40, 500)
		b.element = tt.defender
		r := NewResolver(DefaultSettings(), &scriptedDice{}, chart)

		result := r.Resolve(a, b, SkillOdds{})
		if result.Damage != tt.wantDamage || result.Effective != tt.effective || result.Resisted != tt.resisted {
			t.Errorf("%s vs %s: got damage=%d effective=%v resisted=%v, want %d/%v/%v",
				tt.attacker, tt.defender, result.Damage, result.Effective, result.Resisted,
				tt.wantDamage, tt.effective, tt.resisted)
		}
	}
}

func TestFleeChance(t *testing.T) {
	tests := []struct {
		speed, enemy int
		want         float64
	}{
		{80, 40, 80},
		{40, 40, 60},
		{200, 40, 90},
		{10, 40, 45},
		{0, 100, 40},
		{10, 0, 90},
	}

	for _, tt := range tests {
		if got := FleeChance(tt.speed, tt.enemy); got != tt.want {
			t.Errorf("FleeChance(%d, %d) = %v, want %v", tt.speed, tt.enemy, got, tt.want)
		}
	}
}

func TestSkillTableMatch(t *testing.T) {
	table := DefaultSkillTable(0.2)

	tests := []struct {
		name, description string
		want              string
	}{
		{"Fire Fist", "", "fire"},
		{"Ember", "A wave of FLAME", "fire"},
		{"Inferno", "leaves the foe BURNING", "fire"},
		{"Mystical Palm", "will heal wounds", "heal"},
		{"Remedy", "cure ailments", "heal"},
		{"Rumble Ball", "to recover strength", "heal"},
		{"Shock", "can stun", "stun"},
		{"Chidori", "can paralyze the target", "stun"},
		{"Venom", "a poison bite", "poison"},
		{"Toxic Fang", "", "poison"},
		{"Almighty Push", "the ultimate force", "ultimate"},
		{"Final Flash", "", "ultimate"},
		{"Final Flame", "", "fire"},
		{"Rasengan", "A spinning sphere", "power"},
	}

	for _, tt := range tests {
		got := table.Match(&Skill{Name: tt.name, Description: tt.description})
		if got.Name != tt.want {
			t.Errorf("Match(%q, %q) = %s, want %s", tt.name, tt.description, got.Name, tt.want)
		}
	}

	if got := table.Match(nil); got.Name != "power" {
		t.Errorf("Match(nil) = %s, want default", got.Name)
	}
}
