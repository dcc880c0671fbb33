package gamedata

import "github.com/gdamore/tcell/v2"

// Default effectiveness multipliers. The narrow variant (1.2 / 0.7) is
// configured through the boss preset rather than hardcoded here.
const (
	DefaultStrongMultiplier = 1.5
	DefaultWeakMultiplier   = 0.75
)

// ElementDef defines an element, its display colour and its matchups.
type ElementDef struct {
	Name   Element   `yaml:"name"`
	Color  string    `yaml:"color"`  // Hex color code (e.g., "#FF4500")
	Strong []Element `yaml:"strong"` // Defenders this element deals extra damage to
	Weak   []Element `yaml:"weak"`   // Defenders that resist this element
}

// TCellColor returns the display color as a tcell.Color.
func (e *ElementDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite // fallback
	}
	return color
}

// ElementsFile represents the structure of elements.yaml.
type ElementsFile struct {
	Elements []ElementDef `yaml:"elements"`
}

// LoadElements loads element definitions from the embedded elements.yaml file.
func LoadElements() ([]ElementDef, error) {
	file, err := Load[ElementsFile]("elements.yaml")
	if err != nil {
		return nil, err
	}
	return file.Elements, nil
}

// ElementChart is the directed strong/weak graph between elements.
// The zero value is usable and treats every pairing as neutral.
type ElementChart struct {
	strong map[Element]map[Element]bool
	weak   map[Element]map[Element]bool
	defs   map[Element]*ElementDef

	StrongMultiplier float64
	WeakMultiplier   float64
}

// NewElementChart builds a chart from element definitions. Non-positive
// multipliers fall back to the defaults.
func NewElementChart(defs []ElementDef, strongMul, weakMul float64) *ElementChart {
	if strongMul <= 0 {
		strongMul = DefaultStrongMultiplier
	}
	if weakMul <= 0 {
		weakMul = DefaultWeakMultiplier
	}
	chart := &ElementChart{
		strong:           make(map[Element]map[Element]bool, len(defs)),
		weak:             make(map[Element]map[Element]bool, len(defs)),
		defs:             make(map[Element]*ElementDef, len(defs)),
		StrongMultiplier: strongMul,
		WeakMultiplier:   weakMul,
	}
	for i := range defs {
		def := &defs[i]
		chart.defs[def.Name] = def
		chart.strong[def.Name] = toSet(def.Strong)
		chart.weak[def.Name] = toSet(def.Weak)
	}
	return chart
}

// LoadElementChart loads the embedded elements and builds a chart.
func LoadElementChart(strongMul, weakMul float64) (*ElementChart, error) {
	defs, err := LoadElements()
	if err != nil {
		return nil, err
	}
	return NewElementChart(defs, strongMul, weakMul), nil
}

// MustLoadElementChart loads a chart with the default multipliers, panicking on error.
func MustLoadElementChart() *ElementChart {
	chart, err := LoadElementChart(DefaultStrongMultiplier, DefaultWeakMultiplier)
	if err != nil {
		panic(err)
	}
	return chart
}

// Multiplier returns the damage multiplier for attacker hitting defender.
// Pairs the chart does not mention, including unknown elements, return 1.0.
func (c *ElementChart) Multiplier(attacker, defender Element) float64 {
	if c == nil {
		return 1.0
	}
	if c.strong[attacker][defender] {
		return c.StrongMultiplier
	}
	if c.weak[attacker][defender] {
		return c.WeakMultiplier
	}
	return 1.0
}

// IsStrong reports whether attacker is listed as strong against defender.
func (c *ElementChart) IsStrong(attacker, defender Element) bool {
	return c != nil && c.strong[attacker][defender]
}

// Def returns the definition for an element, or nil if it is not charted.
func (c *ElementChart) Def(e Element) *ElementDef {
	if c == nil {
		return nil
	}
	return c.defs[e]
}

func toSet(elements []Element) map[Element]bool {
	set := make(map[Element]bool, len(elements))
	for _, e := range elements {
		set[e] = true
	}
	return set
}
