// Package provider builds ready-to-fight combatants from the embedded game
// data. Enemy and boss level scaling lives here; the combat engine only ever
// sees pre-scaled combatants.
package provider

import (
	"errors"
	"fmt"
	"math"

	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/probability"
	"github.com/samdwyer/animearena/internal/rewards"
)

// ErrUnknownTemplate is returned when a card, enemy, boss or dungeon ID is
// not in the registries.
var ErrUnknownTemplate = errors.New("unknown template")

// ErrInvalidScaling is returned by Scaling.Validate.
var ErrInvalidScaling = errors.New("invalid scaling")

// Scaling holds the level formulas used to turn templates into combatants.
type Scaling struct {
	// Player cards: stats * (1 + CardStatPerLevel*(level-1)).
	CardStatPerLevel  float64 `yaml:"card_stat_per_level"`
	CardHPBase        int     `yaml:"card_hp_base"`
	CardHPPerLevel    int     `yaml:"card_hp_per_level"`
	CardMPBase        int     `yaml:"card_mp_base"`
	CardMPPerLevel    int     `yaml:"card_mp_per_level"`
	CardCritBase      float64 `yaml:"card_crit_base"`
	CardCritPerLevel  float64 `yaml:"card_crit_per_level"`
	CardDodgeBase     float64 `yaml:"card_dodge_base"`
	CardDodgePerLevel float64 `yaml:"card_dodge_per_level"`

	// Enemies: level = max(1, playerLevel*EnemyLevelFactor), raised to
	// playerLevel*(1 + FloorLevelFactor*floor) inside a dungeon.
	EnemyLevelFactor   float64 `yaml:"enemy_level_factor"`
	FloorLevelFactor   float64 `yaml:"floor_level_factor"`
	EnemyStatPerLevel  float64 `yaml:"enemy_stat_per_level"`
	EnemyMPBase        int     `yaml:"enemy_mp_base"`
	EnemyMPPerLevel    int     `yaml:"enemy_mp_per_level"`
	EnemyCritBase      float64 `yaml:"enemy_crit_base"`
	EnemyCritPerLevel  float64 `yaml:"enemy_crit_per_level"`
	EnemyDodgeBase     float64 `yaml:"enemy_dodge_base"`
	EnemyDodgePerLevel float64 `yaml:"enemy_dodge_per_level"`
}

// DefaultScaling returns the formulas of the live game.
func DefaultScaling() Scaling {
	return Scaling{
		CardStatPerLevel:  0.1,
		CardHPBase:        500,
		CardHPPerLevel:    15,
		CardMPBase:        50,
		CardMPPerLevel:    5,
		CardCritBase:      5,
		CardCritPerLevel:  0.5,
		CardDodgeBase:     3,
		CardDodgePerLevel: 0.3,

		EnemyLevelFactor:   0.8,
		FloorLevelFactor:   0.1,
		EnemyStatPerLevel:  0.1,
		EnemyMPBase:        40,
		EnemyMPPerLevel:    5,
		EnemyCritBase:      5,
		EnemyCritPerLevel:  0.3,
		EnemyDodgeBase:     3,
		EnemyDodgePerLevel: 0.2,
	}
}

// Validate rejects negative factors and a card HP base that could produce
// a zero-HP combatant.
func (s Scaling) Validate() error {
	if s.CardHPBase < 1 {
		return fmt.Errorf("%w: card_hp_base must be at least 1", ErrInvalidScaling)
	}
	for name, v := range map[string]float64{
		"card_stat_per_level":   s.CardStatPerLevel,
		"card_hp_per_level":     float64(s.CardHPPerLevel),
		"card_mp_base":          float64(s.CardMPBase),
		"card_mp_per_level":     float64(s.CardMPPerLevel),
		"enemy_level_factor":    s.EnemyLevelFactor,
		"floor_level_factor":    s.FloorLevelFactor,
		"enemy_stat_per_level":  s.EnemyStatPerLevel,
		"enemy_mp_base":         float64(s.EnemyMPBase),
		"enemy_mp_per_level":    float64(s.EnemyMPPerLevel),
		"card_crit_base":        s.CardCritBase,
		"card_crit_per_level":   s.CardCritPerLevel,
		"card_dodge_base":       s.CardDodgeBase,
		"card_dodge_per_level":  s.CardDodgePerLevel,
		"enemy_crit_base":       s.EnemyCritBase,
		"enemy_crit_per_level":  s.EnemyCritPerLevel,
		"enemy_dodge_base":      s.EnemyDodgeBase,
		"enemy_dodge_per_level": s.EnemyDodgePerLevel,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidScaling, name)
		}
	}
	return nil
}

// Data bundles the registries a Provider reads from.
type Data struct {
	Cards    *gamedata.CardRegistry
	Enemies  *gamedata.EnemyRegistry
	Bosses   *gamedata.BossRegistry
	Dungeons *gamedata.DungeonRegistry
}

// LoadData loads every registry from the embedded game data.
func LoadData() (Data, error) {
	cards, err := gamedata.LoadCardRegistry()
	if err != nil {
		return Data{}, err
	}
	enemies, err := gamedata.LoadEnemyRegistry()
	if err != nil {
		return Data{}, err
	}
	bosses, err := gamedata.LoadBossRegistry()
	if err != nil {
		return Data{}, err
	}
	dungeons, err := gamedata.LoadDungeonRegistry()
	if err != nil {
		return Data{}, err
	}
	return Data{Cards: cards, Enemies: enemies, Bosses: bosses, Dungeons: dungeons}, nil
}

// Encounter is a scaled opponent plus the metadata the reward calculator
// needs once it is defeated.
type Encounter struct {
	TemplateID string
	Combatant  *combat.Combatant
	Level      int
	IsBoss     bool
	Gold       int // Boss base gold; zero for regular enemies
	XP         int // Boss base XP; zero for regular enemies
	Drops      []gamedata.MaterialDrop
}

// Provider turns templates into combatants. It shares one Roller between
// enemy spawns and gacha pulls, so it is not safe for concurrent use.
type Provider struct {
	data    Data
	scaling Scaling
	roller  *probability.Roller
}

// New creates a provider.
func New(data Data, scaling Scaling, roller *probability.Roller) (*Provider, error) {
	if data.Cards == nil || data.Enemies == nil || data.Bosses == nil || data.Dungeons == nil {
		return nil, errors.New("provider: all registries are required")
	}
	if roller == nil {
		return nil, errors.New("provider: roller is required")
	}
	if err := scaling.Validate(); err != nil {
		return nil, err
	}
	return &Provider{data: data, scaling: scaling, roller: roller}, nil
}

// Data returns the registries the provider reads from.
func (p *Provider) Data() Data {
	return p.data
}

// Scaling returns the provider's level formulas.
func (p *Provider) Scaling() Scaling {
	return p.scaling
}

// CardSpec returns the combat spec of a player's card at level, with full
// HP and MP. A card's own critical and dodge rates replace the scaling base
// values when set.
func (p *Provider) CardSpec(cardID string, level int) (combat.Spec, error) {
	def := p.data.Cards.GetByID(cardID)
	if def == nil {
		return combat.Spec{}, fmt.Errorf("%w: card %q", ErrUnknownTemplate, cardID)
	}
	if level < 1 {
		level = 1
	}
	s := p.scaling
	mult := 1 + s.CardStatPerLevel*float64(level-1)
	maxHP := s.CardHPBase + s.CardHPPerLevel*level
	maxMP := s.CardMPBase + s.CardMPPerLevel*level

	return combat.Spec{
		Name:         def.Name,
		Source:       combat.SourcePlayerCard,
		Level:        level,
		Element:      def.Element,
		Attack:       scale(def.Attack, mult),
		Defense:      scale(def.Defense, mult),
		Speed:        scale(def.Speed, mult),
		HP:           maxHP,
		MaxHP:        maxHP,
		MP:           maxMP,
		MaxMP:        maxMP,
		CriticalRate: orDefault(def.CriticalRate, s.CardCritBase) + s.CardCritPerLevel*float64(level),
		DodgeRate:    orDefault(def.DodgeRate, s.CardDodgeBase) + s.CardDodgePerLevel*float64(level),
		Skill:        skillFrom(def.Skill),
	}, nil
}

// Seed carries HP and MP over from a previous fight. Negative values mean
// full.
type Seed struct {
	HP int
	MP int
}

// Fresh starts a combatant with full HP and MP.
var Fresh = Seed{HP: -1, MP: -1}

// PlayerCard builds a player's card combatant. bonus holds the stat growth
// the card has earned from level-ups. Seed values are clamped to the card's
// maxima; an HP seed of zero is raised to 1.
func (p *Provider) PlayerCard(cardID string, level int, bonus rewards.StatBoost, seed Seed) (*combat.Combatant, error) {
	spec, err := p.CardSpec(cardID, level)
	if err != nil {
		return nil, err
	}
	spec.Attack += bonus.Attack
	spec.Defense += bonus.Defense
	spec.Speed += bonus.Speed
	if seed.HP >= 0 {
		spec.HP = max(1, min(seed.HP, spec.MaxHP))
	}
	if seed.MP >= 0 {
		spec.MP = min(seed.MP, spec.MaxMP)
	}
	return combat.NewCombatant(spec)
}

// EnemyLevel returns the level of a regular enemy facing a player. floor
// is the dungeon floor number, or 0 outside dungeons.
func (p *Provider) EnemyLevel(playerLevel, floor int) int {
	level := max(1, int(float64(playerLevel)*p.scaling.EnemyLevelFactor))
	if floor > 0 {
		level = max(level, int(float64(playerLevel)*(1+p.scaling.FloorLevelFactor*float64(floor))))
	}
	return level
}

// Enemy spawns a weighted-random regular enemy scaled for the player.
func (p *Provider) Enemy(playerLevel, floor int) (*Encounter, error) {
	def := p.data.Enemies.SpawnRandom(p.roller.Rand())
	if def == nil {
		return nil, fmt.Errorf("%w: no enemies to spawn", ErrUnknownTemplate)
	}
	return p.enemy(def, p.EnemyLevel(playerLevel, floor))
}

// EnemyByID builds a specific enemy at level.
func (p *Provider) EnemyByID(id string, level int) (*Encounter, error) {
	def := p.data.Enemies.GetByID(id)
	if def == nil {
		return nil, fmt.Errorf("%w: enemy %q", ErrUnknownTemplate, id)
	}
	return p.enemy(def, max(1, level))
}

func (p *Provider) enemy(def *gamedata.EnemyDef, level int) (*Encounter, error) {
	s := p.scaling
	mult := 1 + s.EnemyStatPerLevel*float64(level)
	maxHP := max(1, scale(def.HP, mult))
	maxMP := def.MP + s.EnemyMPBase + s.EnemyMPPerLevel*level

	c, err := combat.NewCombatant(combat.Spec{
		Name:         def.Name,
		Source:       combat.SourceEnemy,
		Level:        level,
		Element:      def.Element,
		Attack:       scale(def.Attack, mult),
		Defense:      scale(def.Defense, mult),
		Speed:        scale(def.Speed, mult),
		HP:           maxHP,
		MaxHP:        maxHP,
		MP:           maxMP,
		MaxMP:        maxMP,
		CriticalRate: s.EnemyCritBase + s.EnemyCritPerLevel*float64(level),
		DodgeRate:    s.EnemyDodgeBase + s.EnemyDodgePerLevel*float64(level),
		Skill:        skillFrom(def.Skill),
	})
	if err != nil {
		return nil, err
	}
	return &Encounter{
		TemplateID: def.ID,
		Combatant:  c,
		Level:      level,
		Drops:      def.Drops,
	}, nil
}

// Boss builds a boss. Bosses are fixed-level and are not scaled.
func (p *Provider) Boss(id string) (*Encounter, error) {
	def := p.data.Bosses.GetByID(id)
	if def == nil {
		return nil, fmt.Errorf("%w: boss %q", ErrUnknownTemplate, id)
	}
	c, err := combat.NewCombatant(combat.Spec{
		Name:         def.Name,
		Source:       combat.SourceBoss,
		Level:        def.Level,
		Element:      def.Element,
		Attack:       def.Attack,
		Defense:      def.Defense,
		Speed:        def.Speed,
		HP:           def.HP,
		MaxHP:        def.HP,
		MP:           def.MP,
		MaxMP:        def.MP,
		CriticalRate: def.CriticalRate,
		DodgeRate:    def.DodgeRate,
		Skill:        skillFrom(def.Skill),
	})
	if err != nil {
		return nil, err
	}
	return &Encounter{
		TemplateID: def.ID,
		Combatant:  c,
		Level:      def.Level,
		IsBoss:     true,
		Gold:       def.Gold,
		XP:         def.XP,
		Drops:      def.Drops,
	}, nil
}

// Pull draws a card from a pack: a rarity from the tier's weight table,
// then a uniform card of that rarity. If no card has the drawn rarity any
// card may be returned.
func (p *Provider) Pull(tier gamedata.PackTier) (*gamedata.CardDef, error) {
	rarity := p.roller.GachaRarity(tier)
	if pool := p.data.Cards.ByRarity(rarity); len(pool) > 0 {
		return pool[p.roller.Pick(len(pool))], nil
	}
	all := p.data.Cards.All()
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no cards to pull", ErrUnknownTemplate)
	}
	return &all[p.roller.Pick(len(all))], nil
}

func skillFrom(def gamedata.SkillDef) *combat.Skill {
	if def.Name == "" {
		return nil
	}
	s := &combat.Skill{
		Name:        def.Name,
		Description: def.Description,
		MPCost:      def.MPCost,
		Cooldown:    combat.CooldownDefault,
	}
	if def.Cooldown != nil {
		s.Cooldown = *def.Cooldown
	}
	return s
}

func scale(stat int, mult float64) int {
	return int(math.Floor(float64(stat) * mult))
}

func orDefault(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
