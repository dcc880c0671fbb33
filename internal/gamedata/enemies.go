package gamedata

// EnemyDef defines a regular enemy template loaded from YAML. Stats are
// level-1 values; the provider scales them to the encounter level.
type EnemyDef struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Element     Element        `yaml:"element"`
	HP          int            `yaml:"hp"`
	MP          int            `yaml:"mp"`
	Attack      int            `yaml:"attack"`
	Defense     int            `yaml:"defense"`
	Speed       int            `yaml:"speed"`
	Skill       SkillDef       `yaml:"skill"`
	SpawnWeight int            `yaml:"spawn_weight"` // Relative spawn frequency (higher = more common)
	Drops       []MaterialDrop `yaml:"drops"`
}

// EnemiesFile represents the structure of enemies.yaml.
type EnemiesFile struct {
	Enemies []EnemyDef `yaml:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.yaml file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.yaml")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}

// BossDef defines a boss. Bosses are fixed-level and carry their own reward
// base values and drop table.
type BossDef struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Level        int            `yaml:"level"`
	Element      Element        `yaml:"element"`
	HP           int            `yaml:"hp"`
	MP           int            `yaml:"mp"`
	Attack       int            `yaml:"attack"`
	Defense      int            `yaml:"defense"`
	Speed        int            `yaml:"speed"`
	CriticalRate float64        `yaml:"critical_rate"`
	DodgeRate    float64        `yaml:"dodge_rate"`
	Skill        SkillDef       `yaml:"skill"`
	Gold         int            `yaml:"gold"`
	XP           int            `yaml:"xp"`
	Drops        []MaterialDrop `yaml:"drops"`
}

// BossesFile represents the structure of bosses.yaml.
type BossesFile struct {
	Bosses []BossDef `yaml:"bosses"`
}

// LoadBosses loads boss definitions from the embedded bosses.yaml file.
func LoadBosses() ([]BossDef, error) {
	file, err := Load[BossesFile]("bosses.yaml")
	if err != nil {
		return nil, err
	}
	return file.Bosses, nil
}

// MaterialDef names an evolution material.
type MaterialDef struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Rarity Rarity `yaml:"rarity"`
}

// MaterialsFile represents the structure of materials.yaml.
type MaterialsFile struct {
	Materials []MaterialDef `yaml:"materials"`
}

// LoadMaterials loads material definitions from the embedded materials.yaml file.
func LoadMaterials() ([]MaterialDef, error) {
	file, err := Load[MaterialsFile]("materials.yaml")
	if err != nil {
		return nil, err
	}
	return file.Materials, nil
}

// DungeonDef defines a themed dungeon. Floors are generated from it.
type DungeonDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Series      string `yaml:"series"`
	MinLevel    int    `yaml:"min_level"`
	FloorCount  int    `yaml:"floor_count"`
	BossEvery   int    `yaml:"boss_every"` // Every Nth floor is a boss floor
	BossID      string `yaml:"boss_id"`
	MaxEnemies  int    `yaml:"max_enemies"` // Enemies on a normal floor: 1..MaxEnemies
	Description string `yaml:"description"`
}

// DungeonsFile represents the structure of dungeons.yaml.
type DungeonsFile struct {
	Dungeons []DungeonDef `yaml:"dungeons"`
}

// LoadDungeons loads dungeon definitions from the embedded dungeons.yaml file.
func LoadDungeons() ([]DungeonDef, error) {
	file, err := Load[DungeonsFile]("dungeons.yaml")
	if err != nil {
		return nil, err
	}
	return file.Dungeons, nil
}
