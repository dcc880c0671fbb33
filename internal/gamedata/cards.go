package gamedata

// CardDef defines a collectible card template loaded from YAML.
type CardDef struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Series       string   `yaml:"series"`
	Rarity       Rarity   `yaml:"rarity"`
	Element      Element  `yaml:"element"`
	Attack       int      `yaml:"attack"`
	Defense      int      `yaml:"defense"`
	Speed        int      `yaml:"speed"`
	CriticalRate float64  `yaml:"critical_rate"` // Percent, 0-100
	DodgeRate    float64  `yaml:"dodge_rate"`    // Percent, 0-100
	Skill        SkillDef `yaml:"skill"`
}

// CardsFile represents the structure of cards.yaml.
type CardsFile struct {
	Cards []CardDef `yaml:"cards"`
}

// LoadCards loads card definitions from the embedded cards.yaml file.
func LoadCards() ([]CardDef, error) {
	file, err := Load[CardsFile]("cards.yaml")
	if err != nil {
		return nil, err
	}
	return file.Cards, nil
}

// MustLoadCards loads card definitions, panicking on error.
func MustLoadCards() []CardDef {
	cards, err := LoadCards()
	if err != nil {
		panic(err)
	}
	return cards
}
