package combat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/probability"
	"github.com/samdwyer/animearena/internal/telemetry"
)

// State is a battle lifecycle state.
type State string

const (
	StateNotStarted    State = "not_started"
	StateInProgress    State = "in_progress"
	StateChallengerWon State = "challenger_won"
	StateOpponentWon   State = "opponent_won"
	StateAborted       State = "aborted"
	StateTimedOut      State = "timed_out"
)

// IsTerminal reports whether no further turns can be taken.
func (s State) IsTerminal() bool {
	switch s {
	case StateChallengerWon, StateOpponentWon, StateAborted, StateTimedOut:
		return true
	default:
		return false
	}
}

// Mode labels the kind of battle. The engine treats every mode the same;
// the label flows into telemetry and reward selection.
type Mode string

const (
	ModePvE     Mode = "pve"
	ModeBoss    Mode = "boss"
	ModeDungeon Mode = "dungeon"
	ModePvP     Mode = "pvp"
)

const (
	eventStart          = "start"
	eventChallengerWins = "challenger_wins"
	eventOpponentWins   = "opponent_wins"
	eventAbort          = "abort"
	eventTimeOut        = "time_out"
)

func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		string(StateNotStarted),
		fsm.Events{
			{Name: eventStart, Src: []string{string(StateNotStarted)}, Dst: string(StateInProgress)},
			{Name: eventChallengerWins, Src: []string{string(StateInProgress)}, Dst: string(StateChallengerWon)},
			{Name: eventOpponentWins, Src: []string{string(StateInProgress)}, Dst: string(StateOpponentWon)},
			{Name: eventTimeOut, Src: []string{string(StateInProgress)}, Dst: string(StateTimedOut)},
			{Name: eventAbort, Src: []string{string(StateNotStarted), string(StateInProgress)}, Dst: string(StateAborted)},
		},
		fsm.Callbacks{},
	)
}

// Option configures a Battle.
type Option func(*Battle)

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(b *Battle) { b.settings = s }
}

// WithDice sets the random source. The default is a time-seeded Roller.
func WithDice(d Dice) Option {
	return func(b *Battle) { b.dice = d }
}

// WithElements sets the element table. The default treats every pairing as neutral.
func WithElements(e ElementTable) Option {
	return func(b *Battle) { b.elements = e }
}

// WithObserver attaches a turn observer.
func WithObserver(o Observer) Option {
	return func(b *Battle) { b.observer = o }
}

// WithMode labels the battle.
func WithMode(m Mode) Option {
	return func(b *Battle) { b.mode = m }
}

// Battle runs one fight between two combatants. It owns private copies of
// both and is not safe for concurrent use.
type Battle struct {
	ID   uuid.UUID
	mode Mode

	sides [2]*Combatant

	settings Settings
	dice     Dice
	elements ElementTable
	resolver *Resolver
	observer Observer
	tracer   trace.Tracer

	lifecycle *fsm.FSM
	turn      int
	current   Side
	first     Side
	reason    string
	log       []TurnResult
	totals    [2]SideTotals
	outcome   *Outcome
}

// NewBattle prepares a battle. The combatants are cloned; the caller's
// values are never mutated.
func NewBattle(challenger, opponent *Combatant, opts ...Option) (*Battle, error) {
	if challenger == nil || opponent == nil {
		return nil, fmt.Errorf("%w: both combatants are required", ErrInvalidCombatant)
	}
	if challenger == opponent {
		return nil, fmt.Errorf("%w: a combatant cannot fight itself", ErrInvalidCombatant)
	}

	b := &Battle{
		ID:        uuid.New(),
		mode:      ModePvE,
		sides:     [2]*Combatant{challenger.Clone(), opponent.Clone()},
		settings:  DefaultSettings(),
		tracer:    telemetry.Tracer("combat"),
		lifecycle: newLifecycle(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.settings.Validate(); err != nil {
		return nil, err
	}
	if b.dice == nil {
		b.dice = probability.NewRoller(time.Now().UnixNano())
	}
	b.resolver = NewResolver(b.settings, b.dice, b.elements)
	return b, nil
}

// Start moves the battle to in_progress and decides initiative: the faster
// side acts first and ties go to the challenger.
func (b *Battle) Start(ctx context.Context) error {
	// Transitions are synchronous; a cancelled context must not leave the
	// machine stuck mid-transition.
	if err := b.lifecycle.Event(context.WithoutCancel(ctx), eventStart); err != nil {
		return b.transitionError(eventStart, err)
	}

	for _, c := range b.sides {
		c.skillCooldown = 0
		c.status = make(map[gamedata.StatusEffectType]int)
		c.stunnedThisTurn = false
	}

	b.first = Challenger
	if b.sides[Opponent].speed > b.sides[Challenger].speed {
		b.first = Opponent
	}
	b.current = b.first

	_, span := b.tracer.Start(ctx, "battle.start")
	span.SetAttributes(
		attribute.String("battle_id", b.ID.String()),
		attribute.String("mode", string(b.mode)),
		attribute.String("challenger", b.sides[Challenger].name),
		attribute.String("opponent", b.sides[Opponent].name),
		attribute.String("first_actor", b.first.String()),
		attribute.Int("max_turns", b.settings.MaxTurns),
	)
	span.End()
	return nil
}

// Next resolves exactly one turn.
func (b *Battle) Next(ctx context.Context) (TurnResult, error) {
	if err := b.checkActive(); err != nil {
		return TurnResult{}, err
	}
	return b.step(ctx, func(actor, target *Combatant, side Side) ActionResult {
		return b.resolver.Resolve(actor, target, b.settings.Odds(side))
	}), nil
}

// Flee spends the challenger's turn on an escape attempt. Success aborts
// the battle with ReasonFled; failure lets the opponent act next.
func (b *Battle) Flee(ctx context.Context) (TurnResult, error) {
	if err := b.checkActive(); err != nil {
		return TurnResult{}, err
	}
	if b.current != Challenger {
		return TurnResult{}, ErrNotChallengerTurn
	}
	return b.step(ctx, func(actor, target *Combatant, _ Side) ActionResult {
		return b.resolver.Flee(actor, target)
	}), nil
}

// Run starts the battle if needed and resolves turns until it ends. If ctx
// is cancelled between turns the battle is aborted with ReasonCancelled and
// the context error is returned alongside the outcome.
func (b *Battle) Run(ctx context.Context) (*Outcome, error) {
	if b.State() == StateNotStarted {
		if err := b.Start(ctx); err != nil {
			return nil, err
		}
	}
	for !b.State().IsTerminal() {
		if err := ctx.Err(); err != nil {
			b.finish(ctx, eventAbort, ReasonCancelled)
			return b.outcome, err
		}
		if _, err := b.Next(ctx); err != nil {
			return b.outcome, err
		}
	}
	return b.outcome, nil
}

// Abort ends the battle without a winner. It is legal before Start and
// between turns.
func (b *Battle) Abort(ctx context.Context, reason string) error {
	if b.State().IsTerminal() {
		return ErrBattleOver
	}
	if reason == "" {
		reason = string(StateAborted)
	}
	b.finish(ctx, eventAbort, reason)
	return nil
}

// State returns the current lifecycle state.
func (b *Battle) State() State {
	return State(b.lifecycle.Current())
}

// Mode returns the battle's mode label.
func (b *Battle) Mode() Mode {
	return b.mode
}

// Turn returns the number of turns resolved so far.
func (b *Battle) Turn() int {
	return b.turn
}

// Current returns the side due to act next.
func (b *Battle) Current() Side {
	return b.current
}

// Combatant returns the battle's private copy of a side. Callers must not
// mutate it.
func (b *Battle) Combatant(side Side) *Combatant {
	return b.sides[side]
}

// Log returns the turns resolved so far.
func (b *Battle) Log() []TurnResult {
	return append([]TurnResult(nil), b.log...)
}

// Outcome returns the final outcome, or nil while the battle is running.
func (b *Battle) Outcome() *Outcome {
	return b.outcome
}

func (b *Battle) checkActive() error {
	switch b.State() {
	case StateNotStarted:
		return ErrNotStarted
	case StateInProgress:
		return nil
	default:
		return ErrBattleOver
	}
}

// step runs the per-turn protocol: tick both sides, lower both cooldowns,
// act, regenerate MP, then check for termination.
func (b *Battle) step(ctx context.Context, act func(actor, target *Combatant, side Side) ActionResult) TurnResult {
	b.turn++
	side := b.current
	actor, target := b.sides[side], b.sides[side.Other()]

	ctx, span := b.tracer.Start(ctx, "battle.turn")
	defer span.End()

	result := TurnResult{
		Turn:       b.turn,
		Actor:      side,
		ActorName:  actor.name,
		TargetName: target.name,
		Action:     ActionNone,
	}

	for _, s := range []Side{Challenger, Opponent} {
		ticks := b.sides[s].TickStatusEffects(s, b.settings.Status)
		for _, t := range ticks {
			b.totals[s.Other()].StatusDamage += t.Amount
		}
		result.Ticks = append(result.Ticks, ticks...)
	}
	b.checkInvariants()

	if actor.IsAlive() && target.IsAlive() {
		for _, c := range b.sides {
			c.tickCooldown()
		}

		action := act(actor, target, side)
		result.applyAction(action)
		b.tally(side, action)
		b.checkInvariants()

		for _, c := range b.sides {
			c.RestoreMP(int(float64(c.maxMP) * b.settings.MPRegenFraction))
		}
		b.checkInvariants()
	}

	result.Challenger = b.sides[Challenger].vitals()
	result.Opponent = b.sides[Opponent].vitals()
	b.log = append(b.log, result)

	span.SetAttributes(
		attribute.Int("turn", result.Turn),
		attribute.String("actor", result.ActorName),
		attribute.String("action", string(result.Action)),
		attribute.Int("damage", result.Damage),
		attribute.Bool("critical", result.Critical),
		attribute.Bool("dodged", result.Dodged),
	)
	if result.StatusApplied != "" {
		span.SetAttributes(attribute.String("status_applied", string(result.StatusApplied)))
	}

	if b.observer != nil {
		b.observer.OnTurn(result)
	}

	switch {
	case result.Action == ActionFlee:
		b.finish(ctx, eventAbort, ReasonFled)
	case b.sides[Challenger].IsDefeated():
		// A double knockout goes to the opponent.
		b.finish(ctx, eventOpponentWins, ReasonKnockout)
	case b.sides[Opponent].IsDefeated():
		b.finish(ctx, eventChallengerWins, ReasonKnockout)
	case b.turn >= b.settings.MaxTurns:
		b.finish(ctx, eventTimeOut, ReasonMaxTurns)
	default:
		b.current = side.Other()
	}
	return result
}

func (r *TurnResult) applyAction(a ActionResult) {
	r.Action = a.Action
	r.Skill = a.Skill
	r.SkillEffect = a.SkillEffect
	r.Damage = a.Damage
	r.Healed = a.Healed
	r.Critical = a.Critical
	r.Dodged = a.Dodged
	r.Stunned = a.Stunned
	r.Effective = a.Effective
	r.Resisted = a.Resisted
	r.StatusApplied = a.StatusApplied
}

func (b *Battle) tally(side Side, a ActionResult) {
	t := &b.totals[side]
	t.DamageDealt += a.Damage
	t.HealingDone += a.Healed
	if a.Action == ActionSkill {
		t.SkillsUsed++
	}
	if a.Critical {
		t.CriticalHits++
	}
	if a.Stunned {
		t.TurnsStunned++
	}
	if a.Dodged {
		b.totals[side.Other()].Dodges++
	}
}

func (b *Battle) checkInvariants() {
	for _, c := range b.sides {
		c.checkInvariants()
	}
	if b.turn > b.settings.MaxTurns {
		panic(&InvariantError{Combatant: "battle", Field: "turn", Value: b.turn, Max: b.settings.MaxTurns})
	}
}

// finish fires the terminal event and freezes the outcome.
func (b *Battle) finish(ctx context.Context, event, reason string) {
	if err := b.lifecycle.Event(context.WithoutCancel(ctx), event); err != nil {
		panic(fmt.Sprintf("battle %s: %s from %s: %v", b.ID, event, b.lifecycle.Current(), err))
	}
	b.reason = reason

	summary := func(s Side) SideSummary {
		c := b.sides[s]
		return SideSummary{
			Name:    c.name,
			Source:  c.source,
			Level:   c.level,
			Element: c.element,
			Vitals:  c.vitals(),
			Totals:  b.totals[s],
		}
	}
	b.outcome = &Outcome{
		BattleID:   b.ID,
		Mode:       b.mode,
		State:      b.State(),
		Reason:     reason,
		Turns:      b.turn,
		FirstActor: b.first,
		Challenger: summary(Challenger),
		Opponent:   summary(Opponent),
		Log:        b.Log(),
	}

	_, span := b.tracer.Start(ctx, "battle.end")
	span.SetAttributes(
		attribute.String("battle_id", b.ID.String()),
		attribute.String("state", string(b.outcome.State)),
		attribute.String("reason", reason),
		attribute.Int("turns", b.turn),
	)
	if winner, ok := b.outcome.Winner(); ok {
		span.SetAttributes(attribute.String("winner", winner.Name))
	}
	span.End()
}

func (b *Battle) transitionError(event string, err error) error {
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) && b.State().IsTerminal() {
		return ErrBattleOver
	}
	return fmt.Errorf("battle %s: %s: %w", b.ID, event, err)
}
