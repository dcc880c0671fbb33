// Package config loads engine presets: combat tuning, element multipliers,
// reward formulas and enemy scaling. The embedded presets.yaml is used
// unless ARENA_CONFIG names another file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/provider"
	"github.com/samdwyer/animearena/internal/rewards"
)

// ErrInvalidConfig wraps every load and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables read by ApplyEnv and FromEnv.
const (
	EnvConfig   = "ARENA_CONFIG"
	EnvPreset   = "ARENA_PRESET"
	EnvSeed     = "ARENA_SEED"
	EnvMaxTurns = "ARENA_MAX_TURNS"
)

const presetsFile = "presets.yaml"

// ElementMultipliers are the strong and weak damage factors.
type ElementMultipliers struct {
	Strong float64 `yaml:"strong"`
	Weak   float64 `yaml:"weak"`
}

// Preset is one complete engine tuning.
type Preset struct {
	Name     string             `yaml:"-"`
	Combat   combat.Settings    `yaml:"combat"`
	Elements ElementMultipliers `yaml:"elements"`
	Rewards  rewards.Settings   `yaml:"rewards"`
	Scaling  provider.Scaling   `yaml:"scaling"`
}

// DefaultPreset returns the built-in standard tuning. Presets in YAML are
// decoded on top of it.
func DefaultPreset() Preset {
	return Preset{
		Name:     "standard",
		Combat:   combat.DefaultSettings(),
		Elements: ElementMultipliers{Strong: gamedata.DefaultStrongMultiplier, Weak: gamedata.DefaultWeakMultiplier},
		Rewards:  rewards.DefaultSettings(),
		Scaling:  provider.DefaultScaling(),
	}
}

// Validate checks every section of the preset.
func (p Preset) Validate() error {
	if p.Elements.Strong <= 0 || p.Elements.Weak <= 0 {
		return fmt.Errorf("%w: preset %q: element multipliers %v/%v must be positive",
			ErrInvalidConfig, p.Name, p.Elements.Strong, p.Elements.Weak)
	}
	for _, err := range []error{p.Combat.Validate(), p.Rewards.Validate(), p.Scaling.Validate()} {
		if err != nil {
			return fmt.Errorf("%w: preset %q: %w", ErrInvalidConfig, p.Name, err)
		}
	}
	return nil
}

// ElementChart builds the element chart for the preset's multipliers.
func (p Preset) ElementChart() (*gamedata.ElementChart, error) {
	return gamedata.LoadElementChart(p.Elements.Strong, p.Elements.Weak)
}

// Config is the loaded set of presets.
type Config struct {
	Default string
	Modes   map[combat.Mode]string
	Presets map[string]Preset

	// Seed fixes the RNG seed. Zero means seed from the clock.
	Seed int64
}

type rawConfig struct {
	Default string                 `yaml:"default"`
	Modes   map[combat.Mode]string `yaml:"modes"`
	Presets map[string]yaml.Node   `yaml:"presets"`
	Seed    int64                  `yaml:"seed"`
}

// Parse decodes and validates a presets document.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := &Config{
		Default: raw.Default,
		Modes:   raw.Modes,
		Presets: make(map[string]Preset, len(raw.Presets)),
		Seed:    raw.Seed,
	}
	if cfg.Modes == nil {
		cfg.Modes = make(map[combat.Mode]string)
	}
	for name, node := range raw.Presets {
		p := DefaultPreset()
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: preset %q: %w", ErrInvalidConfig, name, err)
		}
		p.Name = name
		cfg.Presets[name] = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads presets from path, or the embedded presets.yaml when path is
// empty.
func Load(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = gamedata.ReadFile(presetsFile)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return Parse(data)
}

// Default loads the embedded presets, panicking on error.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// FromEnv loads .env if present, then the presets named by ARENA_CONFIG,
// then applies the remaining ARENA_* overrides.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalidConfig, err)
	}
	cfg, err := Load(os.Getenv(EnvConfig))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies ARENA_PRESET, ARENA_SEED and ARENA_MAX_TURNS. A forced
// preset replaces the per-mode mapping; the turn cap applies to every preset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvPreset); v != "" {
		c.Force(v)
	}
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvSeed, v, err)
		}
		c.Seed = seed
	}
	if v := getenv(EnvMaxTurns); v != "" {
		turns, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvMaxTurns, v, err)
		}
		for name, p := range c.Presets {
			p.Combat.MaxTurns = turns
			c.Presets[name] = p
		}
	}
	return c.Validate()
}

// Validate checks that the default and every mode mapping name a preset,
// and that every preset is valid.
func (c *Config) Validate() error {
	if len(c.Presets) == 0 {
		return fmt.Errorf("%w: no presets defined", ErrInvalidConfig)
	}
	if _, ok := c.Presets[c.Default]; !ok {
		return fmt.Errorf("%w: default preset %q is not defined", ErrInvalidConfig, c.Default)
	}
	for mode, name := range c.Modes {
		if _, ok := c.Presets[name]; !ok {
			return fmt.Errorf("%w: mode %s uses undefined preset %q", ErrInvalidConfig, mode, name)
		}
	}
	for _, name := range c.PresetNames() {
		if err := c.Presets[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Force makes every mode use the named preset.
func (c *Config) Force(name string) {
	c.Default = name
	c.Modes = make(map[combat.Mode]string)
}

// Preset returns the preset used for a battle mode.
func (c *Config) Preset(mode combat.Mode) Preset {
	if name, ok := c.Modes[mode]; ok {
		return c.Presets[name]
	}
	return c.Presets[c.Default]
}

// PresetNames returns the defined preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
