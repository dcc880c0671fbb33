package combat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCombatant is returned by NewCombatant for malformed input.
	ErrInvalidCombatant = errors.New("invalid combatant")
	// ErrInvalidSettings is returned when engine settings fail validation.
	ErrInvalidSettings = errors.New("invalid combat settings")
	// ErrNotStarted is returned when stepping a battle before Start.
	ErrNotStarted = errors.New("battle not started")
	// ErrBattleOver is returned when stepping or aborting a finished battle.
	ErrBattleOver = errors.New("battle is over")
	// ErrNotChallengerTurn is returned by Flee when the opponent is due to act.
	ErrNotChallengerTurn = errors.New("not the challenger's turn")
	// ErrTimedOut is reported by Outcome.Err for battles that hit the turn cap.
	ErrTimedOut = errors.New("battle exceeded max turns")
)

// InvariantError reports a resource outside its legal range. It indicates a
// calculation bug and is raised with panic, never returned.
type InvariantError struct {
	Combatant string
	Field     string
	Value     int
	Max       int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("combat invariant violated: %s %s=%d (max %d)", e.Combatant, e.Field, e.Value, e.Max)
}
