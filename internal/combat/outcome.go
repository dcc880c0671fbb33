package combat

import (
	"github.com/google/uuid"

	"github.com/samdwyer/animearena/internal/gamedata"
)

// Termination reasons recorded on the outcome.
const (
	ReasonKnockout  = "knockout"
	ReasonFled      = "fled"
	ReasonMaxTurns  = "max_turns"
	ReasonCancelled = "cancelled"
)

// TurnResult is the structured log entry for one resolved turn. It is also
// what observers receive.
type TurnResult struct {
	Turn          int
	Actor         Side
	ActorName     string
	TargetName    string
	Action        Action
	Skill         string
	SkillEffect   string
	Damage        int
	Healed        int
	Critical      bool
	Dodged        bool
	Stunned       bool
	Effective     bool
	Resisted      bool
	StatusApplied gamedata.StatusEffectType
	Ticks         []StatusTick
	Challenger    Vitals
	Opponent      Vitals
}

// Observer receives each turn as it resolves. The engine works without one.
type Observer interface {
	OnTurn(TurnResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(TurnResult)

// OnTurn calls f.
func (f ObserverFunc) OnTurn(r TurnResult) { f(r) }

// SideTotals aggregates one side's contribution over the battle.
type SideTotals struct {
	DamageDealt  int
	StatusDamage int // Damage dealt by burning/poison ticks on the other side
	HealingDone  int
	SkillsUsed   int
	CriticalHits int
	Dodges       int // Attacks this side dodged
	TurnsStunned int
}

// SideSummary is a combatant's final state.
type SideSummary struct {
	Name    string
	Source  Source
	Level   int
	Element gamedata.Element
	Vitals  Vitals
	Totals  SideTotals
}

// HPRatio returns remaining HP as a share of max HP.
func (s SideSummary) HPRatio() float64 {
	if s.Vitals.MaxHP == 0 {
		return 0
	}
	return float64(s.Vitals.HP) / float64(s.Vitals.MaxHP)
}

// Outcome is produced once when a battle ends and is not modified after.
type Outcome struct {
	BattleID   uuid.UUID
	Mode       Mode
	State      State
	Reason     string
	Turns      int
	FirstActor Side
	Challenger SideSummary
	Opponent   SideSummary
	Log        []TurnResult
}

// HasWinner reports whether the battle ended in a knockout.
func (o *Outcome) HasWinner() bool {
	return o.State == StateChallengerWon || o.State == StateOpponentWon
}

// ChallengerWon reports whether the challenger won.
func (o *Outcome) ChallengerWon() bool {
	return o.State == StateChallengerWon
}

// Winner returns the winning side's summary, or false without a winner.
func (o *Outcome) Winner() (SideSummary, bool) {
	switch o.State {
	case StateChallengerWon:
		return o.Challenger, true
	case StateOpponentWon:
		return o.Opponent, true
	default:
		return SideSummary{}, false
	}
}

// Loser returns the losing side's summary, or false without a winner.
func (o *Outcome) Loser() (SideSummary, bool) {
	switch o.State {
	case StateChallengerWon:
		return o.Opponent, true
	case StateOpponentWon:
		return o.Challenger, true
	default:
		return SideSummary{}, false
	}
}

// Err returns ErrTimedOut for battles that hit the turn cap and nil for
// every other terminal state.
func (o *Outcome) Err() error {
	if o.State == StateTimedOut {
		return ErrTimedOut
	}
	return nil
}
