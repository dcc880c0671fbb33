package gamedata

import (
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestLoadCards(t *testing.T) {
	cards, err := LoadCards()
	if err != nil {
		t.Fatalf("Failed to load cards: %v", err)
	}

	if len(cards) == 0 {
		t.Fatal("Expected cards to be loaded")
	}

	seen := make(map[string]bool)
	for _, c := range cards {
		if seen[c.ID] {
			t.Errorf("Duplicate card ID %q", c.ID)
		}
		seen[c.ID] = true

		if c.Rarity.Index() < 0 {
			t.Errorf("Card %q has unknown rarity %q", c.ID, c.Rarity)
		}
		if !c.Element.IsKnown() {
			t.Errorf("Card %q has unknown element %q", c.ID, c.Element)
		}
		if c.Skill.Name == "" || c.Skill.MPCost < 0 {
			t.Errorf("Card %q has invalid skill %+v", c.ID, c.Skill)
		}
	}
}

func TestCardRegistry(t *testing.T) {
	registry := MustLoadCardRegistry()

	naruto := registry.GetByID("naruto_uzumaki")
	if naruto == nil {
		t.Fatal("naruto_uzumaki not found by ID")
	}
	if naruto.Element != ElementAir {
		t.Errorf("Expected Air, got %s", naruto.Element)
	}

	if registry.GetByID("nope") != nil {
		t.Error("Expected nil for unknown card ID")
	}

	total := 0
	for _, r := range Rarities {
		for _, c := range registry.ByRarity(r) {
			if c.Rarity != r {
				t.Errorf("Card %q listed under %s but is %s", c.ID, r, c.Rarity)
			}
			total++
		}
	}
	if total != registry.Count() {
		t.Errorf("Rarity buckets hold %d cards, registry has %d", total, registry.Count())
	}
}

func TestEnemyRegistry(t *testing.T) {
	registry, err := LoadEnemyRegistry()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	if registry.Count() != 5 {
		t.Errorf("Expected 5 enemy types, got %d", registry.Count())
	}

	ninja := registry.GetByID("rogue_ninja")
	if ninja == nil {
		t.Error("rogue_ninja not found by ID")
	} else if ninja.Name != "Rogue Ninja" {
		t.Errorf("Expected name 'Rogue Ninja', got %q", ninja.Name)
	}

	// Test weighted spawning is deterministic with same seed
	rng1 := rand.New(rand.NewSource(12345))
	rng2 := rand.New(rand.NewSource(12345))

	for i := 0; i < 10; i++ {
		a := registry.SpawnRandom(rng1).ID
		b := registry.SpawnRandom(rng2).ID
		if a != b {
			t.Errorf("Spawn %d mismatch: %s != %s", i, a, b)
		}
	}
}

func TestSpawnRandomEmptyRegistry(t *testing.T) {
	registry := NewEnemyRegistry(nil)
	if got := registry.SpawnRandom(rand.New(rand.NewSource(1))); got != nil {
		t.Errorf("Expected nil spawn from empty registry, got %+v", got)
	}
}

func TestBossRegistryAvailable(t *testing.T) {
	registry := MustLoadBossRegistry()

	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{5, 1},
		{20, 2},
		{100, 3},
	}

	for _, tt := range tests {
		if got := len(registry.Available(tt.level)); got != tt.want {
			t.Errorf("Available(%d) = %d bosses, want %d", tt.level, got, tt.want)
		}
	}
}

func TestMaterialRegistry(t *testing.T) {
	registry := MustLoadMaterialRegistry()

	if got := registry.Name(1); got != "Crystal Shard" {
		t.Errorf("Name(1) = %q, want Crystal Shard", got)
	}
	if got := registry.Name(99); got != "Unknown Material" {
		t.Errorf("Name(99) = %q, want placeholder", got)
	}
	if len(registry.All()) != 21 {
		t.Errorf("Expected 21 materials, got %d", len(registry.All()))
	}
}

func TestDropTablesReferenceKnownMaterials(t *testing.T) {
	materials := MustLoadMaterialRegistry()

	check := func(owner string, drops []MaterialDrop) {
		for _, d := range drops {
			if materials.GetByID(d.MaterialID) == nil {
				t.Errorf("%s drops unknown material %d", owner, d.MaterialID)
			}
			if d.Rate < 0 || d.Rate > 1 || d.Min > d.Max || d.Min < 0 {
				t.Errorf("%s has invalid drop %+v", owner, d)
			}
		}
	}

	for _, e := range MustLoadEnemyRegistry().All() {
		check(e.ID, e.Drops)
	}
	for _, b := range MustLoadBossRegistry().All() {
		check(b.ID, b.Drops)
	}
}

func TestDungeonsReferenceKnownBosses(t *testing.T) {
	bosses := MustLoadBossRegistry()
	for _, d := range MustLoadDungeonRegistry().All() {
		if bosses.GetByID(d.BossID) == nil {
			t.Errorf("Dungeon %q references unknown boss %q", d.ID, d.BossID)
		}
		if d.BossEvery <= 0 || d.MaxEnemies <= 0 || d.FloorCount <= 0 {
			t.Errorf("Dungeon %q has invalid layout %+v", d.ID, d)
		}
	}
}

func TestElementChartMultiplier(t *testing.T) {
	chart := MustLoadElementChart()

	tests := []struct {
		attacker, defender Element
		want               float64
	}{
		{ElementFire, ElementEarth, 1.5},
		{ElementFire, ElementIce, 1.5},
		{ElementFire, ElementWater, 0.75},
		{ElementWater, ElementFire, 1.5},
		{ElementElectric, ElementEarth, 0.75},
		{ElementLight, ElementDark, 1.5},
		{ElementDark, ElementLight, 1.5},
		{ElementSweet, ElementCute, 1.5},
		{ElementStar, ElementFire, 1.0},
		{ElementFire, ElementStar, 1.0},
		{ElementFire, ElementFire, 1.0},
		{"Void", ElementFire, 1.0},
		{ElementFire, "Void", 1.0},
		{"Void", "Chaos", 1.0},
	}

	for _, tt := range tests {
		if got := chart.Multiplier(tt.attacker, tt.defender); got != tt.want {
			t.Errorf("Multiplier(%s, %s) = %v, want %v", tt.attacker, tt.defender, got, tt.want)
		}
	}
}

func TestElementChartStrongMatchesDefinitions(t *testing.T) {
	defs, err := LoadElements()
	if err != nil {
		t.Fatalf("Failed to load elements: %v", err)
	}
	chart := NewElementChart(defs, 0, 0)

	if len(defs) != len(Elements) {
		t.Errorf("Expected %d elements, got %d", len(Elements), len(defs))
	}

	for _, a := range Elements {
		def := chart.Def(a)
		if def == nil {
			t.Errorf("Element %s missing from chart", a)
			continue
		}
		for _, d := range Elements {
			m := chart.Multiplier(a, d)
			if m == 0 {
				t.Errorf("Multiplier(%s, %s) returned 0", a, d)
			}
			if m == DefaultStrongMultiplier && !contains(def.Strong, d) {
				t.Errorf("Multiplier(%s, %s) is strong but %s does not list %s", a, d, a, d)
			}
			if contains(def.Strong, d) && m != DefaultStrongMultiplier {
				t.Errorf("%s lists %s as strong but multiplier is %v", a, d, m)
			}
		}
	}
}

func TestElementChartCustomMultipliers(t *testing.T) {
	chart, err := LoadElementChart(1.2, 0.7)
	if err != nil {
		t.Fatalf("Failed to load chart: %v", err)
	}
	if got := chart.Multiplier(ElementFire, ElementEarth); got != 1.2 {
		t.Errorf("Expected 1.2, got %v", got)
	}
	if got := chart.Multiplier(ElementFire, ElementWater); got != 0.7 {
		t.Errorf("Expected 0.7, got %v", got)
	}
}

func TestNilElementChartIsNeutral(t *testing.T) {
	var chart *ElementChart
	if got := chart.Multiplier(ElementFire, ElementEarth); got != 1.0 {
		t.Errorf("Expected 1.0 from nil chart, got %v", got)
	}
	if chart.Def(ElementFire) != nil {
		t.Error("Expected nil def from nil chart")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"#FF0000", true},
		{"FF0000", true},
		{"#00FF00", true},
		{"#FFFFFF", true},
		{"#000000", true},
		{"#FFF", false},
		{"GGGGGG", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := ParseHexColor(tt.input)
		if (err == nil) != tt.valid {
			t.Errorf("ParseHexColor(%q) error = %v, want valid=%v", tt.input, err, tt.valid)
		}
	}
}

func TestANSIForeground(t *testing.T) {
	color, err := ParseHexColor("#FF4500")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if got, want := ANSIForeground(color), "\x1b[38;2;255;69;0m"; got != want {
		t.Errorf("ANSIForeground = %q, want %q", got, want)
	}
	if got := ANSIForeground(tcell.ColorDefault); got != "" {
		t.Errorf("Expected empty escape for default color, got %q", got)
	}
}

func TestElementDefTCellColorFallback(t *testing.T) {
	def := ElementDef{Name: "Void", Color: "not-a-color"}
	if def.TCellColor() != tcell.ColorWhite {
		t.Error("Expected white fallback for invalid color")
	}
}

func contains(list []Element, e Element) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func TestEvolutionTable(t *testing.T) {
	evo := MustLoadEvolution()
	if err := evo.Validate(MustLoadMaterialRegistry()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, e := range Elements {
		if _, ok := evo.Essences[e]; !ok {
			t.Errorf("No essence for %s", e)
		}
	}
	if got := evo.MaxLevel(1); got != 20 {
		t.Errorf("MaxLevel(1) = %d, want 20", got)
	}
	if got := evo.MaxLevel(0); got != 20 {
		t.Errorf("MaxLevel(0) = %d, want stage 1 cap", got)
	}
	if got := evo.MaxLevel(3); got != 60 {
		t.Errorf("MaxLevel(3) = %d, want 60", got)
	}
}

func TestEvolutionCost(t *testing.T) {
	evo := MustLoadEvolution()
	tests := []struct {
		name  string
		card  CardDef
		stage int
		gold  int
		want  map[int]int
	}{
		{
			name:  "common fire stage 1",
			card:  CardDef{Rarity: RarityCommon, Element: ElementFire},
			stage: 1,
			gold:  2000,
			want:  map[int]int{17: 2, 6: 4},
		},
		{
			name:  "epic air stage 2",
			card:  CardDef{Rarity: RarityEpic, Element: ElementAir},
			stage: 2,
			gold:  30000,
			want:  map[int]int{17: 3, 9: 6, 19: 3},
		},
		{
			name:  "legendary star stage 4 needs a soul",
			card:  CardDef{Rarity: RarityLegendary, Element: ElementStar},
			stage: 4,
			gold:  100000,
			want:  map[int]int{17: 5, 16: 10, 20: 5, 21: 1},
		},
		{
			name:  "unknown element skips essence",
			card:  CardDef{Rarity: RarityUncommon, Element: "Void"},
			stage: 1,
			gold:  4000,
			want:  map[int]int{17: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := evo.Cost(&tt.card, tt.stage)
			if cost.Gold != tt.gold {
				t.Errorf("Gold = %d, want %d", cost.Gold, tt.gold)
			}
			got := make(map[int]int, len(cost.Materials))
			for i, m := range cost.Materials {
				if i > 0 && cost.Materials[i-1].MaterialID >= m.MaterialID {
					t.Errorf("Materials not sorted: %+v", cost.Materials)
				}
				got[m.MaterialID] = m.Quantity
			}
			if len(got) != len(tt.want) {
				t.Errorf("Materials = %v, want %v", got, tt.want)
			}
			for id, qty := range tt.want {
				if got[id] != qty {
					t.Errorf("material %d = %d, want %d", id, got[id], qty)
				}
			}
		})
	}
}
