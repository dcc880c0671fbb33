package rewards

import (
	"errors"
	"fmt"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// ErrInvalidSettings is returned when reward settings fail validation.
var ErrInvalidSettings = errors.New("invalid reward settings")

// Profile selects a reward formula.
type Profile string

const (
	ProfileStandard Profile = "standard"
	ProfileBoss     Profile = "boss"
	ProfilePvP      Profile = "pvp"
)

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// CardLeveling configures card XP thresholds and level-up growth.
// XP needed for the next level is Base * Growth^(level-1) * RarityXP[rarity].
type CardLeveling struct {
	Base         float64                     `yaml:"base"`
	Growth       float64                     `yaml:"growth"`
	RarityXP     map[gamedata.Rarity]float64 `yaml:"rarity_xp"`
	StatGrowth   map[gamedata.Rarity]float64 `yaml:"stat_growth"` // Scales each stat boost draw
	AttackBoost  IntRange                    `yaml:"attack_boost"`
	DefenseBoost IntRange                    `yaml:"defense_boost"`
	SpeedBoost   IntRange                    `yaml:"speed_boost"`
	MaxLevel     int                         `yaml:"max_level"`
}

// PlayerLeveling configures player XP thresholds and level-up grants.
// XP needed for the next level is Base * Growth^(level-1).
type PlayerLeveling struct {
	Base            float64 `yaml:"base"`
	Growth          float64 `yaml:"growth"`
	StaminaPerLevel int     `yaml:"stamina_per_level"`
	MPPerLevel      int     `yaml:"mp_per_level"`
	MaxLevel        int     `yaml:"max_level"`
}

// StandardProfile is the regular-battle formula. Gold and player XP scale
// with enemy level and shrink with battle length; the card gets a share.
type StandardProfile struct {
	XPBase             int     `yaml:"xp_base"`
	XPPerLevel         int     `yaml:"xp_per_level"`
	GoldBase           int     `yaml:"gold_base"`
	GoldPerLevel       int     `yaml:"gold_per_level"`
	BossXPMultiplier   float64 `yaml:"boss_xp_multiplier"`
	BossGoldMultiplier float64 `yaml:"boss_gold_multiplier"`
	EfficiencyPerTurn  float64 `yaml:"efficiency_per_turn"`
	MinEfficiency      float64 `yaml:"min_efficiency"`
	CardXPShare        float64 `yaml:"card_xp_share"`
}

// BossProfile scales a boss's fixed gold/XP by remaining HP. The card gets
// the XP and the player a share of it.
type BossProfile struct {
	HPBonus       float64 `yaml:"hp_bonus"`
	PlayerXPShare float64 `yaml:"player_xp_share"`
}

// PvPMaterialTier is the material awarded when the loser is at least MinLevel.
type PvPMaterialTier struct {
	MinLevel   int `yaml:"min_level"`
	MaterialID int `yaml:"material_id"`
	Quantity   int `yaml:"quantity"`
}

// PvPProfile rewards the winner of a player battle.
type PvPProfile struct {
	Gold             int               `yaml:"gold"`
	XP               int               `yaml:"xp"`
	LevelStep        float64           `yaml:"level_step"`
	MinMultiplier    float64           `yaml:"min_multiplier"`
	MaxMultiplier    float64           `yaml:"max_multiplier"`
	QuickTurns       int               `yaml:"quick_turns"`
	QuickMultiplier  float64           `yaml:"quick_multiplier"`
	SlowTurns        int               `yaml:"slow_turns"`
	SlowMultiplier   float64           `yaml:"slow_multiplier"`
	MinGold          int               `yaml:"min_gold"`
	MinXP            int               `yaml:"min_xp"`
	PlayerXPShare    float64           `yaml:"player_xp_share"`
	MaterialBase     float64           `yaml:"material_base"`
	MaterialPerLevel float64           `yaml:"material_per_level"`
	MaterialMax      float64           `yaml:"material_max"`
	MaterialTiers    []PvPMaterialTier `yaml:"material_tiers"` // Highest MinLevel first
}

// Settings holds every reward constant.
type Settings struct {
	Card              CardLeveling    `yaml:"card"`
	Player            PlayerLeveling  `yaml:"player"`
	BonusGoldChance   float64         `yaml:"bonus_gold_chance"`
	BonusGoldFraction float64         `yaml:"bonus_gold_fraction"`
	Standard          StandardProfile `yaml:"standard"`
	Boss              BossProfile     `yaml:"boss"`
	PvP               PvPProfile      `yaml:"pvp"`
}

// DefaultSettings returns the standard preset reward tuning.
func DefaultSettings() Settings {
	return Settings{
		Card: CardLeveling{
			Base:   100,
			Growth: 1.2,
			RarityXP: map[gamedata.Rarity]float64{
				gamedata.RarityCommon:    1.0,
				gamedata.RarityUncommon:  1.2,
				gamedata.RarityRare:      1.4,
				gamedata.RarityEpic:      1.7,
				gamedata.RarityLegendary: 2.0,
			},
			StatGrowth: map[gamedata.Rarity]float64{
				gamedata.RarityCommon:    1.0,
				gamedata.RarityUncommon:  1.2,
				gamedata.RarityRare:      1.5,
				gamedata.RarityEpic:      1.8,
				gamedata.RarityLegendary: 2.2,
			},
			AttackBoost:  IntRange{Min: 3, Max: 7},
			DefenseBoost: IntRange{Min: 2, Max: 5},
			SpeedBoost:   IntRange{Min: 1, Max: 3},
			MaxLevel:     100,
		},
		Player: PlayerLeveling{
			Base:            150,
			Growth:          1.5,
			StaminaPerLevel: 2,
			MPPerLevel:      10,
			MaxLevel:        100,
		},
		BonusGoldChance:   0.1,
		BonusGoldFraction: 0.5,
		Standard: StandardProfile{
			XPBase:             10,
			XPPerLevel:         3,
			GoldBase:           5,
			GoldPerLevel:       2,
			BossXPMultiplier:   2.5,
			BossGoldMultiplier: 3,
			EfficiencyPerTurn:  0.05,
			MinEfficiency:      0.5,
			CardXPShare:        0.8,
		},
		Boss: BossProfile{
			HPBonus:       0.5,
			PlayerXPShare: 0.5,
		},
		PvP: PvPProfile{
			Gold:             100,
			XP:               50,
			LevelStep:        0.1,
			MinMultiplier:    0.5,
			MaxMultiplier:    2.0,
			QuickTurns:       5,
			QuickMultiplier:  1.5,
			SlowTurns:        15,
			SlowMultiplier:   0.8,
			MinGold:          50,
			MinXP:            20,
			PlayerXPShare:    0.5,
			MaterialBase:     0.1,
			MaterialPerLevel: 0.01,
			MaterialMax:      0.3,
			MaterialTiers: []PvPMaterialTier{
				{MinLevel: 20, MaterialID: 3, Quantity: 1},
				{MinLevel: 10, MaterialID: 2, Quantity: 1},
				{MinLevel: 0, MaterialID: 1, Quantity: 2},
			},
		},
	}
}

// Validate checks the settings. Errors wrap ErrInvalidSettings.
func (s Settings) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
	}

	if s.Card.Base <= 0 || s.Card.Growth < 1 {
		return fail("card leveling base %v / growth %v", s.Card.Base, s.Card.Growth)
	}
	if s.Player.Base <= 0 || s.Player.Growth < 1 {
		return fail("player leveling base %v / growth %v", s.Player.Base, s.Player.Growth)
	}
	for _, r := range gamedata.Rarities {
		if s.Card.RarityXP[r] <= 0 {
			return fail("card rarity_xp for %s must be positive", r)
		}
		if s.Card.StatGrowth[r] <= 0 {
			return fail("card stat_growth for %s must be positive", r)
		}
	}
	for name, r := range map[string]IntRange{"attack_boost": s.Card.AttackBoost, "defense_boost": s.Card.DefenseBoost, "speed_boost": s.Card.SpeedBoost} {
		if r.Min < 0 || r.Max < r.Min {
			return fail("card %s %+v", name, r)
		}
	}
	if !inUnit(s.BonusGoldChance) || s.BonusGoldFraction < 0 {
		return fail("bonus gold chance %v / fraction %v", s.BonusGoldChance, s.BonusGoldFraction)
	}
	if !inUnit(s.Standard.MinEfficiency) || s.Standard.EfficiencyPerTurn < 0 || s.Standard.CardXPShare < 0 {
		return fail("standard profile %+v", s.Standard)
	}
	if s.Boss.HPBonus < 0 || s.Boss.PlayerXPShare < 0 {
		return fail("boss profile %+v", s.Boss)
	}
	if s.PvP.MinMultiplier > s.PvP.MaxMultiplier || !inUnit(s.PvP.MaterialMax) {
		return fail("pvp profile multipliers [%v, %v] material max %v", s.PvP.MinMultiplier, s.PvP.MaxMultiplier, s.PvP.MaterialMax)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
