// Package main is the entry point for the arena CLI. It runs one battle
// against the in-memory ledger and prints the turn log. Traces are exported
// when OTEL_EXPORTER_OTLP_ENDPOINT is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/samdwyer/animearena/internal/arena"
	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/config"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/logging"
	"github.com/samdwyer/animearena/internal/probability"
	"github.com/samdwyer/animearena/internal/provider"
	"github.com/samdwyer/animearena/internal/session"
	"github.com/samdwyer/animearena/internal/telemetry"
)

func main() {
	var (
		mode         = flag.String("mode", "pve", "battle mode: pve, boss, pvp or dungeon")
		seed         = flag.Int64("seed", 0, "RNG seed (0 uses ARENA_SEED or the clock)")
		presetName   = flag.String("preset", "", "force one preset for every mode")
		bossID       = flag.String("boss", "zabuza", "boss id for -mode boss")
		dungeonID    = flag.String("dungeon", "forest_of_death", "dungeon id for -mode dungeon")
		floor        = flag.Int("floor", 1, "dungeon floor for -mode dungeon")
		cardID       = flag.String("card", "naruto_uzumaki", "card template to fight with")
		cardLevel    = flag.Int("card-level", 10, "level of the player's card")
		playerLevel  = flag.Int("level", 5, "player level")
		opponentCard = flag.String("opponent-card", "sasuke_uchiha", "opponent card template for -mode pvp")
		pull         = flag.String("pull", "", "draw the player's card from a gacha pack (basic, premium, legendary)")
		noColor      = flag.Bool("no-color", false, "disable colored output")
		evolve       = flag.Bool("evolve", false, "try to evolve the card after the battle")
		gold         = flag.Int("gold", 0, "starting gold, for -evolve")
		traceRatio   = flag.Float64("trace-ratio", 1, "fraction of battles to trace")
	)
	flag.Parse()

	// Loads .env, which may also set the OTEL_* variables.
	cfg, err := config.FromEnv()
	if err != nil {
		logging.Fatal("config load failed", err, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, telemetry.WithSampleRatio(*traceRatio))
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Battles will run without tracing")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	if *presetName != "" {
		cfg.Force(*presetName)
		if err := cfg.Validate(); err != nil {
			logging.Fatal("invalid preset", err, logging.Fields{"preset": *presetName})
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	data, err := provider.LoadData()
	if err != nil {
		logging.Fatal("game data load failed", err, nil)
	}
	materials, err := gamedata.LoadMaterialRegistry()
	if err != nil {
		logging.Fatal("material data load failed", err, nil)
	}
	chart, err := cfg.Preset(combat.Mode(*mode)).ElementChart()
	if err != nil {
		logging.Fatal("element chart load failed", err, nil)
	}

	card := data.Cards.GetByID(*cardID)
	if *pull != "" {
		card, err = pullCard(cfg, data, gamedata.PackTier(*pull))
		if err != nil {
			logging.Fatal("gacha pull failed", err, logging.Fields{"tier": *pull})
		}
	}
	if card == nil {
		logging.Fatal("unknown card", provider.ErrUnknownTemplate, logging.Fields{"card": *cardID})
	}

	ledger := arena.NewLedger()
	hero := newPlayer("player-1", "Player", *playerLevel, card, *cardLevel)
	hero.Gold = *gold
	if err := ledger.AddPlayer(ctx, hero); err != nil {
		logging.Fatal("add player failed", err, nil)
	}

	req := arena.FightRequest{
		Mode:      combat.Mode(*mode),
		BossID:    *bossID,
		DungeonID: *dungeonID,
		Floor:     *floor,
	}
	if req.Mode == combat.ModePvP {
		def := data.Cards.GetByID(*opponentCard)
		if def == nil {
			logging.Fatal("unknown card", provider.ErrUnknownTemplate, logging.Fields{"card": *opponentCard})
		}
		rival := newPlayer("player-2", "Rival", *playerLevel, def, *cardLevel)
		if err := ledger.AddPlayer(ctx, rival); err != nil {
			logging.Fatal("add player failed", err, nil)
		}
		req.OpponentID = rival.ID
	}

	svc, err := arena.NewService(cfg, ledger, session.NewRegistry(), arena.WithData(data))
	if err != nil {
		logging.Fatal("arena setup failed", err, nil)
	}

	out := newPrinter(os.Stdout, chart, materials, !*noColor)
	req.Observer = out

	fmt.Fprintf(os.Stdout, "%s battle with %s (Lv %d)\n", req.Mode, card.Name, *cardLevel)
	reports, err := svc.Fight(ctx, hero.ID, req)
	for _, r := range reports {
		out.report(r)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("battle failed", err, logging.Fields{"mode": *mode})
	}

	after, err := ledger.Player(context.Background(), hero.ID)
	if err != nil {
		logging.Fatal("player lookup failed", err, nil)
	}
	out.player(after)

	if *evolve {
		r, err := svc.Evolve(context.Background(), hero.ID, hero.Equipped)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Cannot evolve: %v\n", err)
			return
		}
		out.evolution(r)
	}
}

func newPlayer(id, name string, level int, def *gamedata.CardDef, cardLevel int) arena.Player {
	p := arena.NewPlayer(id, name)
	p.Level = max(1, level)
	p.Cards = []arena.CardRecord{{
		ID:       id + "-" + def.ID,
		CardID:   def.ID,
		Rarity:   def.Rarity,
		Level:    max(1, cardLevel),
		EvoStage: 1,
	}}
	p.Equipped = p.Cards[0].ID
	return p
}

// pullCard draws a card on its own roller so the battle seed is unaffected.
func pullCard(cfg *config.Config, data provider.Data, tier gamedata.PackTier) (*gamedata.CardDef, error) {
	seed := cfg.Seed + 1
	if cfg.Seed == 0 {
		seed = time.Now().UnixNano()
	}
	p, err := provider.New(data, cfg.Preset(combat.ModePvE).Scaling, probability.NewRoller(seed))
	if err != nil {
		return nil, err
	}
	return p.Pull(tier)
}
