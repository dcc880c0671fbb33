package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samdwyer/animearena/internal/combat"
)

func TestRegistryBeginEnd(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	s, err := r.Begin(ctx, combat.ModePvE, "alice")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.ID == "" || s.Mode != combat.ModePvE || len(s.Players) != 1 {
		t.Errorf("unexpected session %+v", s)
	}

	if _, err := r.Begin(ctx, combat.ModeBoss, "alice"); !errors.Is(err, ErrBattleInProgress) {
		t.Errorf("Expected ErrBattleInProgress, got %v", err)
	}

	active, ok := r.Active(ctx, "alice")
	if !ok || active.ID != s.ID {
		t.Errorf("Active(alice) = %v, %v; want session %s", active, ok, s.ID)
	}

	if err := r.End(ctx, s.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, ok := r.Active(ctx, "alice"); ok {
		t.Error("Expected no active session after End")
	}
	if _, err := r.Begin(ctx, combat.ModeBoss, "alice"); err != nil {
		t.Errorf("Begin after End: %v", err)
	}
}

func TestRegistryPvPClaimsBothOrNeither(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if _, err := r.Begin(ctx, combat.ModePvE, "bob"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if _, err := r.Begin(ctx, combat.ModePvP, "alice", "bob"); !errors.Is(err, ErrBattleInProgress) {
		t.Fatalf("Expected ErrBattleInProgress, got %v", err)
	}
	if _, ok := r.Active(ctx, "alice"); ok {
		t.Error("Failed PvP claim must not reserve alice")
	}

	s, err := r.Begin(ctx, combat.ModePvP, "alice", "carol")
	if err != nil {
		t.Fatalf("Begin PvP: %v", err)
	}
	if r.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", r.Count())
	}
	if err := r.End(ctx, s.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	for _, p := range []string{"alice", "carol"} {
		if _, ok := r.Active(ctx, p); ok {
			t.Errorf("Expected %s to be released", p)
		}
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if _, err := r.Begin(ctx, combat.ModePvE); err == nil {
		t.Error("Expected error for no players")
	}
	if _, err := r.Begin(ctx, combat.ModePvP, "alice", "alice"); err == nil {
		t.Error("Expected error for duplicate player")
	}
	if err := r.End(ctx, "missing"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if _, err := r.Get(ctx, "missing"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestRegistryConcurrentBegin(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Begin(ctx, combat.ModePvE, "alice"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one successful claim, got %d", wins)
	}
}
