// Package arena is the command layer over the battle engine. It checks
// stamina and level gates, claims a battle session, builds both
// combatants, runs the battle and hands the reward to the store.
//
// Stamina is spent when a battle starts and is never refunded, including
// for losses, aborts and timeouts.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/config"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/logging"
	"github.com/samdwyer/animearena/internal/probability"
	"github.com/samdwyer/animearena/internal/provider"
	"github.com/samdwyer/animearena/internal/rewards"
	"github.com/samdwyer/animearena/internal/session"
	"github.com/samdwyer/animearena/internal/telemetry"
)

var (
	ErrLevelTooLow     = errors.New("level too low")
	ErrFloorLocked     = errors.New("floor locked")
	ErrMatchInProgress = errors.New("match still in progress")
	ErrRunOver         = errors.New("dungeon run is over")
)

// StaminaCosts is the stamina spent to start a battle of each mode.
type StaminaCosts map[combat.Mode]int

// DefaultStaminaCosts returns the live game's costs.
func DefaultStaminaCosts() StaminaCosts {
	return StaminaCosts{
		combat.ModePvE:     3,
		combat.ModeBoss:    10,
		combat.ModeDungeon: 5,
		combat.ModePvP:     0,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithStaminaCosts replaces DefaultStaminaCosts.
func WithStaminaCosts(c StaminaCosts) Option {
	return func(s *Service) { s.costs = c }
}

// WithData replaces the embedded game data.
func WithData(d provider.Data) Option {
	return func(s *Service) { s.data = &d }
}

// Service runs battles for players held in a Store.
type Service struct {
	cfg       *config.Config
	store     Store
	registry  *session.Registry
	costs     StaminaCosts
	data      *provider.Data
	evolution *gamedata.EvolutionDef

	// mu guards the shared roller and the providers that draw from it.
	mu        sync.Mutex
	seeds     *probability.Roller
	providers map[string]*provider.Provider
	charts    map[string]*gamedata.ElementChart
}

// NewService wires a service. A zero cfg.Seed seeds from the clock.
func NewService(cfg *config.Config, store Store, registry *session.Registry, opts ...Option) (*Service, error) {
	if cfg == nil || store == nil || registry == nil {
		return nil, errors.New("arena: config, store and registry are required")
	}
	s := &Service{
		cfg:       cfg,
		store:     store,
		registry:  registry,
		costs:     DefaultStaminaCosts(),
		providers: make(map[string]*provider.Provider, len(cfg.Presets)),
		charts:    make(map[string]*gamedata.ElementChart, len(cfg.Presets)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.data == nil {
		data, err := provider.LoadData()
		if err != nil {
			return nil, err
		}
		s.data = &data
	}
	if s.evolution == nil {
		evo, err := gamedata.LoadEvolution()
		if err != nil {
			return nil, err
		}
		s.evolution = evo
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.seeds = probability.NewRoller(seed)

	for _, name := range cfg.PresetNames() {
		preset := cfg.Presets[name]
		p, err := provider.New(*s.data, preset.Scaling, s.seeds)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		chart, err := preset.ElementChart()
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		s.providers[name] = p
		s.charts[name] = chart
	}
	return s, nil
}

// Registry returns the session registry.
func (s *Service) Registry() *session.Registry {
	return s.registry
}

// Match is one started battle.
type Match struct {
	Session   *session.Session
	Battle    *combat.Battle
	Mode      combat.Mode
	Preset    string
	Profile   rewards.Profile
	PlayerID  string
	CardID    string              // Challenger's card instance
	Encounter *provider.Encounter // nil in PvP

	// PvP only.
	OpponentID     string
	OpponentCardID string

	challenger progress
	opponent   progress
	dice       *probability.Roller
	run        *DungeonRun
}

// progress is a player's state when the match started.
type progress struct {
	card   rewards.CardProgress
	player rewards.PlayerProgress

	// The player's MP pool and the MP their card entered battle with. The
	// pool is charged with what the card spent.
	mpPool, mpStart int
}

func (s *Service) progressOf(p Player, c *CardRecord, fighter *combat.Combatant) progress {
	return progress{
		card: rewards.CardProgress{
			Level:    c.Level,
			XP:       c.XP,
			Rarity:   c.Rarity,
			MaxLevel: s.evolution.MaxLevel(c.Stage()),
		},
		player:  rewards.PlayerProgress{Level: p.Level, XP: p.XP},
		mpPool:  p.MP,
		mpStart: fighter.GetMP(),
	}
}

// mpAfter returns the player's MP pool once the card ends on mp.
func (p progress) mpAfter(mp int) int {
	return max(0, p.mpPool+mp-p.mpStart)
}

// Report is the settled result of one match.
type Report struct {
	Outcome   *combat.Outcome
	Reward    rewards.Result
	Encounter *provider.Encounter
	Player    Player // Challenger after the reward was applied
}

// StartPvE starts a battle against a random enemy scaled to the player.
func (s *Service) StartPvE(ctx context.Context, playerID string, obs combat.Observer) (*Match, error) {
	player, card, err := s.equipped(ctx, playerID)
	if err != nil {
		return nil, err
	}

	preset := s.cfg.Preset(combat.ModePvE)
	s.mu.Lock()
	enc, err := s.providers[preset.Name].Enemy(player.Level, 0)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, beginArgs{
		mode:      combat.ModePvE,
		preset:    preset,
		profile:   rewards.ProfileStandard,
		player:    player,
		card:      card,
		seed:      provider.Seed{HP: -1, MP: player.MP},
		encounter: enc,
		observer:  obs,
	})
}

// StartBoss starts a boss battle. The player must be at least the boss's level.
func (s *Service) StartBoss(ctx context.Context, playerID, bossID string, obs combat.Observer) (*Match, error) {
	player, card, err := s.equipped(ctx, playerID)
	if err != nil {
		return nil, err
	}

	preset := s.cfg.Preset(combat.ModeBoss)
	s.mu.Lock()
	enc, err := s.providers[preset.Name].Boss(bossID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if player.Level < enc.Level {
		return nil, fmt.Errorf("%w: %s needs level %d, player is %d", ErrLevelTooLow, bossID, enc.Level, player.Level)
	}
	return s.begin(ctx, beginArgs{
		mode:      combat.ModeBoss,
		preset:    preset,
		profile:   rewards.ProfileBoss,
		player:    player,
		card:      card,
		seed:      provider.Seed{HP: -1, MP: player.MP},
		encounter: enc,
		observer:  obs,
	})
}

// StartPvP starts a battle between two players' equipped cards. The
// challenger acts as the player side for initiative ties.
func (s *Service) StartPvP(ctx context.Context, challengerID, opponentID string, obs combat.Observer) (*Match, error) {
	if challengerID == opponentID {
		return nil, fmt.Errorf("%w: a player cannot fight themselves", combat.ErrInvalidCombatant)
	}
	player, card, err := s.equipped(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	rival, rivalCard, err := s.equipped(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	preset := s.cfg.Preset(combat.ModePvP)
	s.mu.Lock()
	opp, err := s.providers[preset.Name].PlayerCard(rivalCard.CardID, rivalCard.Level, rivalCard.Bonus, provider.Seed{HP: -1, MP: rival.MP})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, beginArgs{
		mode:     combat.ModePvP,
		preset:   preset,
		profile:  rewards.ProfilePvP,
		player:   player,
		card:     card,
		seed:     provider.Seed{HP: -1, MP: player.MP},
		rival:    &rival,
		rivalC:   rivalCard,
		opponent: opp,
		observer: obs,
	})
}

type beginArgs struct {
	mode     combat.Mode
	preset   config.Preset
	profile  rewards.Profile
	player   Player
	card     *CardRecord
	seed     provider.Seed
	observer combat.Observer

	encounter *provider.Encounter // PvE, boss, dungeon
	rival     *Player             // PvP
	rivalC    *CardRecord
	opponent  *combat.Combatant

	session *session.Session // Reused by dungeon runs
	run     *DungeonRun
}

// begin claims the session, spends stamina and builds the battle.
func (s *Service) begin(ctx context.Context, a beginArgs) (*Match, error) {
	s.mu.Lock()
	ch, err := s.providers[a.preset.Name].PlayerCard(a.card.CardID, a.card.Level, a.card.Bonus, a.seed)
	dice := probability.NewRoller(s.seeds.Rand().Int63())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	opponent := a.opponent
	if a.encounter != nil {
		opponent = a.encounter.Combatant
	}

	sess, claimed := a.session, a.session == nil
	if claimed {
		players := []string{a.player.ID}
		if a.rival != nil {
			players = append(players, a.rival.ID)
		}
		sess, err = s.registry.Begin(ctx, a.mode, players...)
		if err != nil {
			logging.Info("battle rejected", logging.Fields{"player": a.player.ID, "mode": string(a.mode), "error": err.Error()})
			return nil, err
		}
		if err := s.store.SpendStamina(ctx, a.player.ID, s.costs[a.mode]); err != nil {
			_ = s.registry.End(ctx, sess.ID)
			return nil, err
		}
	}

	battle, err := combat.NewBattle(ch, opponent,
		combat.WithSettings(a.preset.Combat),
		combat.WithDice(dice),
		combat.WithElements(s.charts[a.preset.Name]),
		combat.WithObserver(a.observer),
		combat.WithMode(a.mode),
	)
	if err != nil {
		// A dungeon run keeps its session until the run ends.
		if claimed {
			_ = s.registry.End(ctx, sess.ID)
		}
		return nil, err
	}
	sess.Battle = battle

	m := &Match{
		Session:    sess,
		Battle:     battle,
		Mode:       a.mode,
		Preset:     a.preset.Name,
		Profile:    a.profile,
		PlayerID:   a.player.ID,
		CardID:     a.card.ID,
		Encounter:  a.encounter,
		challenger: s.progressOf(a.player, a.card, ch),
		dice:       dice,
		run:        a.run,
	}
	if a.rival != nil {
		m.OpponentID = a.rival.ID
		m.OpponentCardID = a.rivalC.ID
		m.opponent = s.progressOf(*a.rival, a.rivalC, opponent)
	}

	logging.Info("battle started", logging.Fields{
		"battle_id":  battle.ID.String(),
		"session_id": sess.ID,
		"player":     a.player.ID,
		"mode":       string(a.mode),
		"preset":     a.preset.Name,
		"opponent":   opponent.GetName(),
	})
	return m, nil
}

// Finish prices a finished match, applies the reward and releases the
// session. Only a won battle grants anything.
func (s *Service) Finish(ctx context.Context, m *Match) (*Report, error) {
	outcome := m.Battle.Outcome()
	if outcome == nil {
		return nil, ErrMatchInProgress
	}

	preset := s.cfg.Presets[m.Preset]
	calc, err := rewards.NewCalculator(preset.Rewards, m.dice)
	if err != nil {
		return nil, err
	}

	in := rewards.Input{
		Outcome: outcome,
		Profile: m.Profile,
		Card:    m.challenger.card,
		Player:  m.challenger.player,
	}
	if enc := m.Encounter; enc != nil {
		in.EnemyLevel = enc.Level
		in.IsBoss = enc.IsBoss
		in.BossGold = enc.Gold
		in.BossXP = enc.XP
		in.Drops = enc.Drops
	}
	if m.Mode == combat.ModePvP {
		winner, loser := m.challenger, m.opponent
		if outcome.State == combat.StateOpponentWon {
			winner, loser = m.opponent, m.challenger
		}
		in.Card = winner.card
		in.Player = winner.player
		in.WinnerLevel = winner.player.Level
		in.LoserLevel = loser.player.Level
	}

	reward, err := calc.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}

	settlements := s.settlements(m, outcome, reward)
	if err := s.store.Apply(ctx, settlements...); err != nil {
		logging.Error("reward apply failed", err, logging.Fields{"battle_id": outcome.BattleID.String(), "player": m.PlayerID})
		return nil, err
	}

	if m.run != nil {
		m.run.record(outcome)
	}
	if m.run == nil || m.run.Done() {
		if err := s.registry.End(ctx, m.Session.ID); err != nil {
			return nil, err
		}
	}

	fields := logging.Fields{
		"battle_id": outcome.BattleID.String(),
		"player":    m.PlayerID,
		"mode":      string(m.Mode),
		"state":     string(outcome.State),
		"reason":    outcome.Reason,
		"turns":     outcome.Turns,
		"gold":      reward.Gold,
		"player_xp": reward.PlayerXP,
		"card_xp":   reward.CardXP,
	}
	switch {
	case errors.Is(outcome.Err(), combat.ErrTimedOut):
		logging.Info("battle timed out", fields)
	case outcome.State == combat.StateAborted:
		logging.Info("battle aborted", fields)
	default:
		logging.Info("battle finished", fields)
	}
	if reward.Card.LeveledUp() || reward.Player.LeveledUp() {
		logging.Debug("level up", logging.Fields{
			"player":       m.PlayerID,
			"card_level":   reward.Card.ToLevel,
			"player_level": reward.Player.ToLevel,
		})
	}

	after, err := s.store.Player(ctx, m.PlayerID)
	if err != nil {
		return nil, err
	}
	return &Report{Outcome: outcome, Reward: reward, Encounter: m.Encounter, Player: after}, nil
}

func (s *Service) settlements(m *Match, o *combat.Outcome, reward rewards.Result) []Settlement {
	challenger := Settlement{
		PlayerID: m.PlayerID,
		CardID:   m.CardID,
		MP:       m.challenger.mpAfter(o.Challenger.Vitals.MP),
	}

	if m.Mode != combat.ModePvP {
		challenger.Won = o.ChallengerWon()
		challenger.Lost = o.State == combat.StateOpponentWon
		challenger.Reward = reward
		if m.run != nil && m.run.clears(o) {
			challenger.Cleared = &FloorClear{DungeonID: m.run.Dungeon.ID, Floor: m.run.Floor.Number}
		}
		return []Settlement{challenger}
	}

	opponent := Settlement{
		PlayerID: m.OpponentID,
		CardID:   m.OpponentCardID,
		MP:       m.opponent.mpAfter(o.Opponent.Vitals.MP),
	}
	switch o.State {
	case combat.StateChallengerWon:
		challenger.Won, challenger.Reward = true, reward
		opponent.Lost = true
	case combat.StateOpponentWon:
		opponent.Won, opponent.Reward = true, reward
		challenger.Lost = true
	}
	return []Settlement{challenger, opponent}
}

// Abort ends a match early without a winner and settles it. Nothing is
// granted and no stamina is refunded.
func (s *Service) Abort(ctx context.Context, m *Match, reason string) (*Report, error) {
	if err := m.Battle.Abort(ctx, reason); err != nil && !errors.Is(err, combat.ErrBattleOver) {
		return nil, err
	}
	return s.Finish(ctx, m)
}

// FightRequest selects what Fight runs.
type FightRequest struct {
	Mode       combat.Mode
	BossID     string // ModeBoss
	DungeonID  string // ModeDungeon
	Floor      int    // ModeDungeon
	OpponentID string // ModePvP
	Observer   combat.Observer
}

// Fight starts, runs and settles a battle in one call. A dungeon floor
// yields one report per encounter fought. If ctx is cancelled the battle
// in progress is aborted and settled before the context error is returned.
func (s *Service) Fight(ctx context.Context, playerID string, req FightRequest) ([]*Report, error) {
	tracer := telemetry.Tracer("arena")
	ctx, span := tracer.Start(ctx, "arena.battle")
	defer span.End()
	span.SetAttributes(
		attribute.String("player", playerID),
		attribute.String("mode", string(req.Mode)),
	)

	var reports []*Report
	runOne := func(m *Match) error {
		_, runErr := m.Battle.Run(ctx)
		report, err := s.Finish(context.WithoutCancel(ctx), m)
		if err != nil {
			return err
		}
		reports = append(reports, report)
		span.SetAttributes(
			attribute.String("state", string(report.Outcome.State)),
			attribute.Int("turns", report.Outcome.Turns),
		)
		return runErr
	}

	var err error
	switch req.Mode {
	case combat.ModePvE:
		var m *Match
		if m, err = s.StartPvE(ctx, playerID, req.Observer); err == nil {
			err = runOne(m)
		}
	case combat.ModeBoss:
		var m *Match
		if m, err = s.StartBoss(ctx, playerID, req.BossID, req.Observer); err == nil {
			err = runOne(m)
		}
	case combat.ModePvP:
		var m *Match
		if m, err = s.StartPvP(ctx, playerID, req.OpponentID, req.Observer); err == nil {
			err = runOne(m)
		}
	case combat.ModeDungeon:
		var run *DungeonRun
		if run, err = s.StartDungeonFloor(ctx, playerID, req.DungeonID, req.Floor); err == nil {
			for !run.Done() && err == nil {
				var m *Match
				if m, err = s.NextEncounter(ctx, run, req.Observer); err == nil {
					err = runOne(m)
				}
			}
			if err != nil && !run.Done() {
				_ = s.LeaveDungeon(context.WithoutCancel(ctx), run)
			}
		}
	default:
		err = fmt.Errorf("arena: unknown mode %q", req.Mode)
	}

	span.SetAttributes(attribute.Int("battles", len(reports)))
	if err != nil {
		span.RecordError(err)
	}
	return reports, err
}

func (s *Service) equipped(ctx context.Context, playerID string) (Player, *CardRecord, error) {
	player, err := s.store.Player(ctx, playerID)
	if err != nil {
		return Player{}, nil, err
	}
	card, err := player.EquippedCard()
	if err != nil {
		return Player{}, nil, err
	}
	return player, card, nil
}
