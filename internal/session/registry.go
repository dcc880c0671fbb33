// Package session tracks in-flight battles. A player may be in at most one
// battle at a time.
//
// Sessions live in process memory only. A restart clears every in-flight
// battle; players keep the stamina they already spent.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samdwyer/animearena/internal/combat"
)

var (
	// ErrBattleInProgress is returned when a player already has an active session.
	ErrBattleInProgress = errors.New("battle already in progress")
	// ErrNoSession is returned for unknown session IDs.
	ErrNoSession = errors.New("no such session")
)

// Session is one player's (or two players', in PvP) claim on a battle.
type Session struct {
	ID        string
	Mode      combat.Mode
	Players   []string
	StartedAt time.Time

	// Battle is attached by the command layer after the claim succeeds.
	Battle *combat.Battle
}

// Registry enforces at-most-one in-progress battle per player.
type Registry struct {
	mu       sync.Mutex
	byPlayer map[string]string // player ID -> session ID
	sessions *MemoryStore[*Session]
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPlayer: make(map[string]string),
		sessions: NewMemoryStore[*Session](),
		now:      time.Now,
	}
}

// Begin claims a session for every player listed. Either all players are
// claimed or none are.
func (r *Registry) Begin(ctx context.Context, mode combat.Mode, players ...string) (*Session, error) {
	if len(players) == 0 {
		return nil, errors.New("session: at least one player is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if seen[p] {
			return nil, fmt.Errorf("session: player %q listed twice", p)
		}
		seen[p] = true
		if _, busy := r.byPlayer[p]; busy {
			return nil, fmt.Errorf("%w: player %q", ErrBattleInProgress, p)
		}
	}

	s := &Session{
		ID:        r.sessions.NewID(),
		Mode:      mode,
		Players:   append([]string(nil), players...),
		StartedAt: r.now(),
	}
	if err := r.sessions.Put(ctx, s.ID, s); err != nil {
		return nil, err
	}
	for _, p := range players {
		r.byPlayer[p] = s.ID
	}
	return s, nil
}

// End releases a session and all of its players.
func (r *Registry) End(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok, err := r.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	for _, p := range s.Players {
		if r.byPlayer[p] == id {
			delete(r.byPlayer, p)
		}
	}
	return r.sessions.Delete(ctx, id)
}

// Get returns a session by ID.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	s, ok, err := r.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return s, nil
}

// Active returns the player's in-progress session, if any.
func (r *Registry) Active(ctx context.Context, player string) (*Session, bool) {
	r.mu.Lock()
	id, ok := r.byPlayer[player]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	s, ok, err := r.sessions.Get(ctx, id)
	if err != nil || !ok {
		return nil, false
	}
	return s, true
}

// Count returns the number of in-progress sessions.
func (r *Registry) Count() int {
	return r.sessions.Len()
}
