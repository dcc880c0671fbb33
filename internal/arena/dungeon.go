package arena

import (
	"context"
	"fmt"

	"github.com/samdwyer/animearena/internal/combat"
	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/provider"
	"github.com/samdwyer/animearena/internal/rewards"
	"github.com/samdwyer/animearena/internal/session"
)

// DungeonRun is one attempt at a dungeon floor. The floor's encounters are
// fought in order under a single session and a single stamina charge. HP
// and MP carry from one encounter to the next; a loss ends the run.
type DungeonRun struct {
	Session  *session.Session
	PlayerID string
	Dungeon  *gamedata.DungeonDef
	Floor    *provider.Floor

	next    int
	hp, mp  int
	active  *Match
	done    bool
	cleared bool
}

// Done reports whether the run has ended.
func (r *DungeonRun) Done() bool { return r.done }

// Cleared reports whether every encounter on the floor was beaten.
func (r *DungeonRun) Cleared() bool { return r.cleared }

// Remaining returns the number of encounters not yet fought.
func (r *DungeonRun) Remaining() int {
	if r.done {
		return 0
	}
	return len(r.Floor.Encounters) - r.next
}

// clears reports whether o finishes the floor.
func (r *DungeonRun) clears(o *combat.Outcome) bool {
	return o.ChallengerWon() && r.next == len(r.Floor.Encounters)-1
}

func (r *DungeonRun) record(o *combat.Outcome) {
	r.active = nil
	if !o.ChallengerWon() {
		r.done = true
		return
	}
	r.hp, r.mp = o.Challenger.Vitals.HP, o.Challenger.Vitals.MP
	r.next++
	if r.next == len(r.Floor.Encounters) {
		r.done, r.cleared = true, true
	}
}

// StartDungeonFloor claims a session for floor n of a dungeon and spends
// the dungeon stamina cost. The player must meet the floor's level and must
// have cleared the floor below it.
func (s *Service) StartDungeonFloor(ctx context.Context, playerID, dungeonID string, n int) (*DungeonRun, error) {
	player, _, err := s.equipped(ctx, playerID)
	if err != nil {
		return nil, err
	}

	def := s.data.Dungeons.GetByID(dungeonID)
	if def == nil {
		return nil, fmt.Errorf("%w: dungeon %q", provider.ErrUnknownTemplate, dungeonID)
	}
	if n < 1 || n > def.FloorCount {
		return nil, fmt.Errorf("%w: dungeon %q has no floor %d", provider.ErrUnknownTemplate, dungeonID, n)
	}
	if need := provider.FloorMinLevel(def, n); player.Level < need {
		return nil, fmt.Errorf("%w: %s floor %d needs level %d, player is %d", ErrLevelTooLow, def.ID, n, need, player.Level)
	}
	if best := player.Floors[def.ID]; n > best+1 {
		return nil, fmt.Errorf("%w: %s floor %d, highest cleared is %d", ErrFloorLocked, def.ID, n, best)
	}

	preset := s.cfg.Preset(combat.ModeDungeon)
	s.mu.Lock()
	floor, err := s.providers[preset.Name].GenerateFloor(ctx, def.ID, n, player.Level)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sess, err := s.registry.Begin(ctx, combat.ModeDungeon, player.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SpendStamina(ctx, player.ID, s.costs[combat.ModeDungeon]); err != nil {
		_ = s.registry.End(ctx, sess.ID)
		return nil, err
	}

	return &DungeonRun{
		Session:  sess,
		PlayerID: player.ID,
		Dungeon:  def,
		Floor:    floor,
		hp:       -1,
		mp:       player.MP,
	}, nil
}

// NextEncounter starts the run's next battle. Boss encounters use the boss
// preset and reward profile.
func (s *Service) NextEncounter(ctx context.Context, run *DungeonRun, obs combat.Observer) (*Match, error) {
	if run.done {
		return nil, ErrRunOver
	}
	if run.active != nil {
		return nil, ErrMatchInProgress
	}
	player, card, err := s.equipped(ctx, run.PlayerID)
	if err != nil {
		return nil, err
	}

	enc := run.Floor.Encounters[run.next]
	mode, profile := combat.ModeDungeon, rewards.ProfileStandard
	preset := s.cfg.Preset(combat.ModeDungeon)
	if enc.IsBoss {
		preset, profile = s.cfg.Preset(combat.ModeBoss), rewards.ProfileBoss
	}

	m, err := s.begin(ctx, beginArgs{
		mode:      mode,
		preset:    preset,
		profile:   profile,
		player:    player,
		card:      card,
		seed:      provider.Seed{HP: run.hp, MP: run.mp},
		encounter: enc,
		observer:  obs,
		session:   run.Session,
		run:       run,
	})
	if err != nil {
		return nil, err
	}
	run.active = m
	return m, nil
}

// LeaveDungeon ends a run early and releases its session. An unfinished
// battle is aborted and settled first.
func (s *Service) LeaveDungeon(ctx context.Context, run *DungeonRun) error {
	if run.active != nil {
		if _, err := s.Abort(ctx, run.active, "left dungeon"); err != nil {
			return err
		}
		if run.done {
			return nil
		}
	}
	if run.done {
		return ErrRunOver
	}
	run.done = true
	return s.registry.End(ctx, run.Session.ID)
}
