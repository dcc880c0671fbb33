// Package rewards converts a finished battle into gold, XP, level-ups and
// material drops. It computes deltas only; applying them is the caller's job.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/telemetry"
)

// ErrInvalidInput is returned for inputs the calculator cannot price.
var ErrInvalidInput = errors.New("invalid reward input")

// Dice supplies reward randomness. *probability.Roller implements it.
type Dice interface {
	Chance(p float64) bool
	IntRange(min, max int) int
}

// Input describes what is being rewarded.
type Input struct {
	Outcome    *combat.Outcome
	Profile    Profile
	EnemyLevel int // Level of the defeated opponent

	// Standard profile: the defeated enemy was a boss.
	IsBoss bool

	// Boss profile base values.
	BossGold int
	BossXP   int

	// Drop table of the defeated opponent.
	Drops []gamedata.MaterialDrop

	// Winner's progress. In PvP this is the winning player's, whichever
	// side they fought on.
	Card   CardProgress
	Player PlayerProgress

	// PvP only.
	WinnerLevel int
	LoserLevel  int
}

// MaterialReward is a dropped material and its quantity.
type MaterialReward struct {
	MaterialID int
	Quantity   int
}

// Result is the computed reward for one battle. A zero Result (other than
// Profile) means nothing is granted.
type Result struct {
	Profile   Profile
	Granted   bool
	Gold      int
	BonusGold int // Already included in Gold
	PlayerXP  int
	CardXP    int
	Card      CardLevelUp
	Player    PlayerLevelUp
	Materials []MaterialReward
}

// Calculator prices battle outcomes.
type Calculator struct {
	settings Settings
	dice     Dice
}

// NewCalculator creates a calculator.
func NewCalculator(settings Settings, dice Dice) (*Calculator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if dice == nil {
		return nil, fmt.Errorf("%w: dice is required", ErrInvalidInput)
	}
	return &Calculator{settings: settings, dice: dice}, nil
}

// Settings returns the calculator's settings.
func (c *Calculator) Settings() Settings {
	return c.settings
}

// Calculate computes the reward for in. Battles without a winner, and PvE
// battles the challenger lost, yield an empty Result.
func (c *Calculator) Calculate(ctx context.Context, in Input) (Result, error) {
	if in.Outcome == nil {
		return Result{}, fmt.Errorf("%w: outcome is required", ErrInvalidInput)
	}

	tracer := telemetry.Tracer("rewards")
	_, span := tracer.Start(ctx, "rewards.calculate")
	defer span.End()
	span.SetAttributes(
		attribute.String("battle_id", in.Outcome.BattleID.String()),
		attribute.String("profile", string(in.Profile)),
		attribute.String("state", string(in.Outcome.State)),
	)

	result := Result{Profile: in.Profile}
	if !c.rewardable(in) {
		span.SetAttributes(attribute.Bool("granted", false))
		return result, nil
	}

	switch in.Profile {
	case ProfileStandard:
		c.standard(in, &result)
	case ProfileBoss:
		c.boss(in, &result)
	case ProfilePvP:
		c.pvp(in, &result)
	default:
		return Result{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidInput, in.Profile)
	}

	if c.dice.Chance(c.settings.BonusGoldChance) {
		result.BonusGold = int(float64(result.Gold) * c.settings.BonusGoldFraction)
		result.Gold += result.BonusGold
	}

	result.Materials = append(result.Materials, c.rollDrops(in.Drops)...)
	result.Card = c.levelCard(in.Card, result.CardXP)
	result.Player = c.levelPlayer(in.Player, result.PlayerXP)
	result.Granted = true

	span.SetAttributes(
		attribute.Bool("granted", true),
		attribute.Int("gold", result.Gold),
		attribute.Int("player_xp", result.PlayerXP),
		attribute.Int("card_xp", result.CardXP),
		attribute.Int("materials", len(result.Materials)),
		attribute.Bool("card_leveled", result.Card.LeveledUp()),
		attribute.Bool("player_leveled", result.Player.LeveledUp()),
	)
	return result, nil
}

func (c *Calculator) rewardable(in Input) bool {
	if in.Profile == ProfilePvP {
		return in.Outcome.HasWinner()
	}
	return in.Outcome.ChallengerWon()
}

// standard: xp and gold from enemy level, scaled by battle efficiency.
func (c *Calculator) standard(in Input, r *Result) {
	p := c.settings.Standard
	baseXP := float64(p.XPBase + p.XPPerLevel*in.EnemyLevel)
	baseGold := float64(p.GoldBase + p.GoldPerLevel*in.EnemyLevel)
	if in.IsBoss {
		baseXP *= p.BossXPMultiplier
		baseGold *= p.BossGoldMultiplier
	}

	efficiency := math.Max(p.MinEfficiency, 1.0-float64(in.Outcome.Turns)*p.EfficiencyPerTurn)

	r.PlayerXP = int(baseXP * efficiency)
	r.Gold = int(baseGold * efficiency)
	r.CardXP = int(float64(r.PlayerXP) * p.CardXPShare)
}

// boss: fixed boss values boosted by the challenger's remaining HP.
func (c *Calculator) boss(in Input, r *Result) {
	p := c.settings.Boss
	multiplier := 1 + in.Outcome.Challenger.HPRatio()*p.HPBonus

	r.Gold = int(float64(in.BossGold) * multiplier)
	r.CardXP = int(float64(in.BossXP) * multiplier)
	r.PlayerXP = int(float64(r.CardXP) * p.PlayerXPShare)
}

// pvp: flat base adjusted by level difference and battle speed.
func (c *Calculator) pvp(in Input, r *Result) {
	p := c.settings.PvP
	levelMul := 1.0 + float64(in.LoserLevel-in.WinnerLevel)*p.LevelStep
	levelMul = math.Max(p.MinMultiplier, math.Min(levelMul, p.MaxMultiplier))

	turnMul := 1.0
	switch {
	case in.Outcome.Turns <= p.QuickTurns:
		turnMul = p.QuickMultiplier
	case in.Outcome.Turns >= p.SlowTurns:
		turnMul = p.SlowMultiplier
	}

	r.Gold = max(p.MinGold, int(float64(p.Gold)*levelMul*turnMul))
	r.CardXP = max(p.MinXP, int(float64(p.XP)*levelMul*turnMul))
	r.PlayerXP = int(float64(r.CardXP) * p.PlayerXPShare)

	chance := math.Min(p.MaterialMax, p.MaterialBase+float64(in.LoserLevel)*p.MaterialPerLevel)
	if c.dice.Chance(chance) {
		for _, tier := range p.MaterialTiers {
			if in.LoserLevel >= tier.MinLevel {
				r.Materials = append(r.Materials, MaterialReward{MaterialID: tier.MaterialID, Quantity: tier.Quantity})
				break
			}
		}
	}
}

// rollDrops makes one independent roll per drop table entry.
func (c *Calculator) rollDrops(drops []gamedata.MaterialDrop) []MaterialReward {
	var rewards []MaterialReward
	for _, d := range drops {
		if !c.dice.Chance(d.Rate) {
			continue
		}
		if qty := c.dice.IntRange(d.Min, d.Max); qty > 0 {
			rewards = append(rewards, MaterialReward{MaterialID: d.MaterialID, Quantity: qty})
		}
	}
	return rewards
}
