package provider

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/telemetry"
)

// Floor is one generated dungeon floor.
type Floor struct {
	Number      int
	MinLevel    int // Player level required to enter
	IsBoss      bool
	Description string
	Encounters  []*Encounter // Fought in order
}

// Dungeon is a dungeon definition with its floors generated for one run.
type Dungeon struct {
	Def    *gamedata.DungeonDef
	Floors []*Floor
}

// Floor returns floor n (1-based), or nil if out of range.
func (d *Dungeon) Floor(n int) *Floor {
	if n < 1 || n > len(d.Floors) {
		return nil
	}
	return d.Floors[n-1]
}

// IsBossFloor reports whether floor n of def holds the dungeon boss.
func IsBossFloor(def *gamedata.DungeonDef, n int) bool {
	return def.BossEvery > 0 && n%def.BossEvery == 0
}

// FloorMinLevel returns the level a player needs to enter floor n.
func FloorMinLevel(def *gamedata.DungeonDef, n int) int {
	return def.MinLevel + n - 1
}

// GenerateFloor builds floor n of a dungeon for a player. Boss floors hold
// the dungeon boss alone; other floors hold 1..MaxEnemies scaled enemies.
// Generation draws from the provider's roller, so a fixed seed yields the
// same floor.
func (p *Provider) GenerateFloor(ctx context.Context, dungeonID string, n, playerLevel int) (*Floor, error) {
	def := p.data.Dungeons.GetByID(dungeonID)
	if def == nil {
		return nil, fmt.Errorf("%w: dungeon %q", ErrUnknownTemplate, dungeonID)
	}
	if n < 1 || n > def.FloorCount {
		return nil, fmt.Errorf("%w: dungeon %q has no floor %d", ErrUnknownTemplate, dungeonID, n)
	}

	tracer := telemetry.Tracer("provider")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	floor, err := p.floor(def, n, playerLevel)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("dungeon.id", def.ID),
		attribute.Int("dungeon.floor", n),
		attribute.Bool("dungeon.boss_floor", floor.IsBoss),
		attribute.Int("dungeon.enemy_count", len(floor.Encounters)),
	)
	return floor, nil
}

// GenerateDungeon builds every floor of a dungeon for a player.
func (p *Provider) GenerateDungeon(ctx context.Context, dungeonID string, playerLevel int) (*Dungeon, error) {
	def := p.data.Dungeons.GetByID(dungeonID)
	if def == nil {
		return nil, fmt.Errorf("%w: dungeon %q", ErrUnknownTemplate, dungeonID)
	}

	tracer := telemetry.Tracer("provider")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	dungeon := &Dungeon{Def: def, Floors: make([]*Floor, 0, def.FloorCount)}
	enemies := 0
	for n := 1; n <= def.FloorCount; n++ {
		floor, err := p.floor(def, n, playerLevel)
		if err != nil {
			return nil, err
		}
		enemies += len(floor.Encounters)
		dungeon.Floors = append(dungeon.Floors, floor)
	}

	span.SetAttributes(
		attribute.String("dungeon.id", def.ID),
		attribute.Int("dungeon.floor_count", def.FloorCount),
		attribute.Int("dungeon.enemy_count", enemies),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return dungeon, nil
}

func (p *Provider) floor(def *gamedata.DungeonDef, n, playerLevel int) (*Floor, error) {
	floor := &Floor{
		Number:      n,
		MinLevel:    FloorMinLevel(def, n),
		IsBoss:      IsBossFloor(def, n),
		Description: fmt.Sprintf("Floor %d of %s", n, def.Name),
	}

	if floor.IsBoss {
		boss, err := p.Boss(def.BossID)
		if err != nil {
			return nil, err
		}
		floor.Description = fmt.Sprintf("Boss Floor %d of %s", n, def.Name)
		floor.Encounters = []*Encounter{boss}
		return floor, nil
	}

	count := p.roller.IntRange(1, max(1, def.MaxEnemies))
	floor.Encounters = make([]*Encounter, 0, count)
	for i := 0; i < count; i++ {
		enemy, err := p.Enemy(playerLevel, n)
		if err != nil {
			return nil, err
		}
		floor.Encounters = append(floor.Encounters, enemy)
	}
	return floor, nil
}
