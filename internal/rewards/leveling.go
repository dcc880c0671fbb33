package rewards

import (
	"math"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// CardProgress is a card's persisted level state before the reward.
type CardProgress struct {
	Level  int
	XP     int
	Rarity gamedata.Rarity

	// MaxLevel is the card's own cap, such as its evolution stage cap.
	// Zero leaves only CardLeveling.MaxLevel.
	MaxLevel int
}

// PlayerProgress is a player's persisted level state before the reward.
type PlayerProgress struct {
	Level int
	XP    int
}

// StatBoost is the stat growth from a card level-up.
type StatBoost struct {
	Attack  int
	Defense int
	Speed   int
}

// Add returns the sum of two boosts.
func (b StatBoost) Add(o StatBoost) StatBoost {
	return StatBoost{Attack: b.Attack + o.Attack, Defense: b.Defense + o.Defense, Speed: b.Speed + o.Speed}
}

// CardLevelUp describes a card's progress after XP was applied.
type CardLevelUp struct {
	FromLevel int
	ToLevel   int
	XP        int         // Remaining XP toward the next level
	Boosts    []StatBoost // One draw per level gained
	Total     StatBoost
}

// LeveledUp reports whether at least one level was gained.
func (c CardLevelUp) LeveledUp() bool {
	return c.ToLevel > c.FromLevel
}

// PlayerLevelUp describes a player's progress after XP was applied.
type PlayerLevelUp struct {
	FromLevel      int
	ToLevel        int
	XP             int
	MaxStaminaGain int
	MaxMPGain      int
}

// LeveledUp reports whether at least one level was gained.
func (p PlayerLevelUp) LeveledUp() bool {
	return p.ToLevel > p.FromLevel
}

// CardXPNeeded returns the XP a card at level needs to reach level+1.
func (s CardLeveling) CardXPNeeded(level int, rarity gamedata.Rarity) int {
	mult := s.RarityXP[rarity]
	if mult <= 0 {
		mult = 1.0
	}
	return int(s.Base * math.Pow(s.Growth, float64(level-1)) * mult)
}

// PlayerXPNeeded returns the XP a player at level needs to reach level+1.
func (s PlayerLeveling) PlayerXPNeeded(level int) int {
	return int(s.Base * math.Pow(s.Growth, float64(level-1)))
}

// levelCard applies gained XP, looping while the threshold is met. Each
// level draws one stat boost scaled by rarity growth.
func (c *Calculator) levelCard(p CardProgress, gained int) CardLevelUp {
	cfg := c.settings.Card
	result := CardLevelUp{FromLevel: p.Level, ToLevel: p.Level, XP: p.XP + gained}

	growth := cfg.StatGrowth[p.Rarity]
	if growth <= 0 {
		growth = 1.0
	}

	limit := cfg.MaxLevel
	if p.MaxLevel > 0 && (limit <= 0 || p.MaxLevel < limit) {
		limit = p.MaxLevel
	}

	for {
		if limit > 0 && result.ToLevel >= limit {
			break
		}
		needed := cfg.CardXPNeeded(result.ToLevel, p.Rarity)
		if needed <= 0 || result.XP < needed {
			break
		}
		result.XP -= needed
		result.ToLevel++

		boost := StatBoost{
			Attack:  int(float64(c.dice.IntRange(cfg.AttackBoost.Min, cfg.AttackBoost.Max)) * growth),
			Defense: int(float64(c.dice.IntRange(cfg.DefenseBoost.Min, cfg.DefenseBoost.Max)) * growth),
			Speed:   int(float64(c.dice.IntRange(cfg.SpeedBoost.Min, cfg.SpeedBoost.Max)) * growth),
		}
		result.Boosts = append(result.Boosts, boost)
		result.Total = result.Total.Add(boost)
	}
	return result
}

// levelPlayer applies gained XP to a player.
func (c *Calculator) levelPlayer(p PlayerProgress, gained int) PlayerLevelUp {
	cfg := c.settings.Player
	result := PlayerLevelUp{FromLevel: p.Level, ToLevel: p.Level, XP: p.XP + gained}

	for {
		if cfg.MaxLevel > 0 && result.ToLevel >= cfg.MaxLevel {
			break
		}
		needed := cfg.PlayerXPNeeded(result.ToLevel)
		if needed <= 0 || result.XP < needed {
			break
		}
		result.XP -= needed
		result.ToLevel++
		result.MaxStaminaGain += cfg.StaminaPerLevel
		result.MaxMPGain += cfg.MPPerLevel
	}
	return result
}
