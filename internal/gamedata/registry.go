package gamedata

import (
	"errors"
	"math/rand"
)

// =============================================================================
// CardRegistry
// =============================================================================

// CardRegistry holds loaded card templates and provides lookup utilities.
type CardRegistry struct {
	cards    map[string]*CardDef
	byRarity map[Rarity][]*CardDef
	all      []CardDef
}

// NewCardRegistry creates a registry from loaded card definitions.
func NewCardRegistry(cards []CardDef) *CardRegistry {
	registry := &CardRegistry{
		cards:    make(map[string]*CardDef, len(cards)),
		byRarity: make(map[Rarity][]*CardDef),
		all:      cards,
	}
	for i := range cards {
		registry.cards[cards[i].ID] = &cards[i]
		registry.byRarity[cards[i].Rarity] = append(registry.byRarity[cards[i].Rarity], &cards[i])
	}
	return registry
}

// LoadCardRegistry loads and creates a registry from the embedded cards.yaml.
func LoadCardRegistry() (*CardRegistry, error) {
	cards, err := LoadCards()
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, errors.New("no cards loaded from cards.yaml")
	}
	return NewCardRegistry(cards), nil
}

// MustLoadCardRegistry loads a registry, panicking on error.
func MustLoadCardRegistry() *CardRegistry {
	registry, err := LoadCardRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the card definition with the given ID, or nil if not found.
func (r *CardRegistry) GetByID(id string) *CardDef {
	return r.cards[id]
}

// ByRarity returns the cards of a rarity in file order.
func (r *CardRegistry) ByRarity(rarity Rarity) []*CardDef {
	return r.byRarity[rarity]
}

// All returns all card definitions.
func (r *CardRegistry) All() []CardDef {
	return r.all
}

// Count returns the number of cards in the registry.
func (r *CardRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// EnemyRegistry
// =============================================================================

// EnemyRegistry holds loaded enemy definitions and provides spawning utilities.
type EnemyRegistry struct {
	enemies     []EnemyDef
	totalWeight int
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	totalWeight := 0
	for _, e := range enemies {
		totalWeight += e.SpawnWeight
	}
	return &EnemyRegistry{
		enemies:     enemies,
		totalWeight: totalWeight,
	}
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.yaml.
func LoadEnemyRegistry() (*EnemyRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.yaml")
	}
	return NewEnemyRegistry(enemies), nil
}

// MustLoadEnemyRegistry loads a registry, panicking on error.
func MustLoadEnemyRegistry() *EnemyRegistry {
	registry, err := LoadEnemyRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// SpawnRandom selects a random enemy definition using weighted probability.
// Enemies with higher spawn_weight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(rng *rand.Rand) *EnemyDef {
	if r.totalWeight <= 0 || len(r.enemies) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for i := range r.enemies {
		cumulative += r.enemies[i].SpawnWeight
		if roll < cumulative {
			return &r.enemies[i]
		}
	}

	return &r.enemies[0]
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	for i := range r.enemies {
		if r.enemies[i].ID == id {
			return &r.enemies[i]
		}
	}
	return nil
}

// All returns all enemy definitions.
func (r *EnemyRegistry) All() []EnemyDef {
	return r.enemies
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}

// =============================================================================
// BossRegistry
// =============================================================================

// BossRegistry holds loaded boss definitions.
type BossRegistry struct {
	bosses map[string]*BossDef
	all    []BossDef
}

// NewBossRegistry creates a registry from loaded boss definitions.
func NewBossRegistry(bosses []BossDef) *BossRegistry {
	registry := &BossRegistry{
		bosses: make(map[string]*BossDef, len(bosses)),
		all:    bosses,
	}
	for i := range bosses {
		registry.bosses[bosses[i].ID] = &bosses[i]
	}
	return registry
}

// LoadBossRegistry loads and creates a registry from the embedded bosses.yaml.
func LoadBossRegistry() (*BossRegistry, error) {
	bosses, err := LoadBosses()
	if err != nil {
		return nil, err
	}
	if len(bosses) == 0 {
		return nil, errors.New("no bosses loaded from bosses.yaml")
	}
	return NewBossRegistry(bosses), nil
}

// MustLoadBossRegistry loads a registry, panicking on error.
func MustLoadBossRegistry() *BossRegistry {
	registry, err := LoadBossRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the boss definition with the given ID, or nil if not found.
func (r *BossRegistry) GetByID(id string) *BossDef {
	return r.bosses[id]
}

// Available returns bosses whose level is at most maxLevel.
func (r *BossRegistry) Available(maxLevel int) []*BossDef {
	result := make([]*BossDef, 0, len(r.all))
	for i := range r.all {
		if r.all[i].Level <= maxLevel {
			result = append(result, &r.all[i])
		}
	}
	return result
}

// All returns all boss definitions.
func (r *BossRegistry) All() []BossDef {
	return r.all
}

// =============================================================================
// MaterialRegistry
// =============================================================================

// MaterialRegistry maps material IDs to their definitions.
type MaterialRegistry struct {
	materials map[int]*MaterialDef
	all       []MaterialDef
}

// NewMaterialRegistry creates a registry from loaded material definitions.
func NewMaterialRegistry(materials []MaterialDef) *MaterialRegistry {
	registry := &MaterialRegistry{
		materials: make(map[int]*MaterialDef, len(materials)),
		all:       materials,
	}
	for i := range materials {
		registry.materials[materials[i].ID] = &materials[i]
	}
	return registry
}

// LoadMaterialRegistry loads and creates a registry from the embedded materials.yaml.
func LoadMaterialRegistry() (*MaterialRegistry, error) {
	materials, err := LoadMaterials()
	if err != nil {
		return nil, err
	}
	return NewMaterialRegistry(materials), nil
}

// MustLoadMaterialRegistry loads the embedded materials, panicking on error.
func MustLoadMaterialRegistry() *MaterialRegistry {
	registry, err := LoadMaterialRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the material with the given ID, or nil if not found.
func (r *MaterialRegistry) GetByID(id int) *MaterialDef {
	return r.materials[id]
}

// Name returns the material name, or a placeholder for unknown IDs.
func (r *MaterialRegistry) Name(id int) string {
	if m := r.materials[id]; m != nil {
		return m.Name
	}
	return "Unknown Material"
}

// All returns all material definitions.
func (r *MaterialRegistry) All() []MaterialDef {
	return r.all
}

// =============================================================================
// DungeonRegistry
// =============================================================================

// DungeonRegistry holds loaded dungeon definitions.
type DungeonRegistry struct {
	dungeons map[string]*DungeonDef
	all      []DungeonDef
}

// NewDungeonRegistry creates a registry from loaded dungeon definitions.
func NewDungeonRegistry(dungeons []DungeonDef) *DungeonRegistry {
	registry := &DungeonRegistry{
		dungeons: make(map[string]*DungeonDef, len(dungeons)),
		all:      dungeons,
	}
	for i := range dungeons {
		registry.dungeons[dungeons[i].ID] = &dungeons[i]
	}
	return registry
}

// LoadDungeonRegistry loads and creates a registry from the embedded dungeons.yaml.
func LoadDungeonRegistry() (*DungeonRegistry, error) {
	dungeons, err := LoadDungeons()
	if err != nil {
		return nil, err
	}
	return NewDungeonRegistry(dungeons), nil
}

// MustLoadDungeonRegistry loads the embedded dungeons, panicking on error.
func MustLoadDungeonRegistry() *DungeonRegistry {
	registry, err := LoadDungeonRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the dungeon with the given ID, or nil if not found.
func (r *DungeonRegistry) GetByID(id string) *DungeonDef {
	return r.dungeons[id]
}

// All returns all dungeon definitions.
func (r *DungeonRegistry) All() []DungeonDef {
	return r.all
}
