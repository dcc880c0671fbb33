package gamedata

// =============================================================================
// BATTLE DATA DESIGN
// =============================================================================
//
// Overview:
// ---------
// Cards, enemies, bosses, materials and elements are data-driven. They are
// defined in YAML, embedded at build time and loaded into registries at
// startup. The combat engine never reads these files directly; the provider
// turns a definition plus a level into a ready-to-fight combatant.
//
// Core Concepts:
// --------------
//
// 1. Element - the affinity of a combatant. Eleven elements are known:
//    Fire, Water, Earth, Air, Electric, Ice, Light, Dark, Cute, Sweet, Star.
//    Each element lists the elements it is strong against and weak against.
//    Unknown elements (boss-only or event content) are legal and are always
//    neutral in both directions.
//
// 2. Rarity - card quality tier: Common, Uncommon, Rare, Epic, Legendary.
//    Rarity scales XP requirements and level-up stat growth.
//
// 3. StatusEffectType - timed conditions a skill can inflict:
//    - burning:  damage over time (fraction of max HP)
//    - poisoned: damage over time (fraction of max HP)
//    - stunned:  the victim loses its next action
//
// 4. SkillDef - a card's single special move. What it does is decided by the
//    keyword table in the combat settings, matched against its name and
//    description, so content can add skills without code changes.
//
// YAML Schema (cards.yaml):
// -------------------------
// cards:
//   - id: naruto_uzumaki
//     name: Naruto Uzumaki
//     series: Naruto
//     rarity: Epic
//     element: Air
//     attack: 72
//     defense: 48
//     speed: 70
//     critical_rate: 8
//     dodge_rate: 6
//     skill:
//       name: Rasengan
//       description: A spinning sphere of chakra
//       mp_cost: 30
//       cooldown: 3
//
// Telemetry:
// ----------
// - battle.start: mode, challenger, opponent, first_actor
// - battle.turn: turn, actor, action, damage, critical, dodged
// - battle.end: state, turns, winner

// Element is a combat affinity.
type Element string

const (
	ElementFire     Element = "Fire"
	ElementWater    Element = "Water"
	ElementEarth    Element = "Earth"
	ElementAir      Element = "Air"
	ElementElectric Element = "Electric"
	ElementIce      Element = "Ice"
	ElementLight    Element = "Light"
	ElementDark     Element = "Dark"
	ElementCute     Element = "Cute"
	ElementSweet    Element = "Sweet"
	ElementStar     Element = "Star"
)

// Elements lists the known elements in display order.
var Elements = []Element{
	ElementFire, ElementWater, ElementEarth, ElementAir, ElementElectric, ElementIce,
	ElementLight, ElementDark, ElementCute, ElementSweet, ElementStar,
}

// IsKnown reports whether e is one of the eleven standard elements.
func (e Element) IsKnown() bool {
	for _, k := range Elements {
		if k == e {
			return true
		}
	}
	return false
}

// Rarity is a card quality tier.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists rarities from most to least common. Gacha weight tables
// are indexed in this order.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Index returns the position of r in Rarities, or -1.
func (r Rarity) Index() int {
	for i, k := range Rarities {
		if k == r {
			return i
		}
	}
	return -1
}

// PackTier selects a gacha weight table.
type PackTier string

const (
	PackBasic     PackTier = "basic"
	PackPremium   PackTier = "premium"
	PackLegendary PackTier = "legendary"
)

// StatusEffectType represents status effects that can be applied.
type StatusEffectType string

const (
	StatusNone     StatusEffectType = ""
	StatusBurning  StatusEffectType = "burning"
	StatusPoisoned StatusEffectType = "poisoned"
	StatusStunned  StatusEffectType = "stunned"
)

// StatusOrder is the fixed order in which effects are processed at turn start.
var StatusOrder = []StatusEffectType{StatusBurning, StatusPoisoned, StatusStunned}

// IsKnown reports whether s is a status the engine knows how to process.
func (s StatusEffectType) IsKnown() bool {
	for _, k := range StatusOrder {
		if k == s {
			return true
		}
	}
	return false
}

// SkillDef defines a card or enemy skill loaded from YAML.
type SkillDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MPCost      int    `yaml:"mp_cost"`
	Cooldown    *int   `yaml:"cooldown"` // Turns before reuse; unset uses the engine default
}

// MaterialDrop is one entry of a loot table.
type MaterialDrop struct {
	MaterialID int     `yaml:"material_id"`
	Rate       float64 `yaml:"rate"` // Probability in [0,1]
	Min        int     `yaml:"min"`
	Max        int     `yaml:"max"`
}
