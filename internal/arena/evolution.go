package arena

import (
	"context"
	"errors"
	"fmt"

	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/logging"
	"github.com/samdwyer/animearena/internal/provider"
	"github.com/samdwyer/animearena/internal/rewards"
	"github.com/samdwyer/animearena/internal/session"
)

// ErrMaxStage is returned for a card already at its last stage.
var ErrMaxStage = errors.New("card is fully evolved")

// WithEvolution replaces the embedded evolution table.
func WithEvolution(e *gamedata.EvolutionDef) Option {
	return func(s *Service) { s.evolution = e }
}

// EvolveReport is a completed evolution.
type EvolveReport struct {
	Evolution
	ToStage  int
	MaxLevel int // Level cap at the new stage
	Card     CardRecord
}

// PriceEvolution checks that a card is ready to evolve and returns what
// the evolution costs. Whether the player can pay is left to Evolve.
func (s *Service) PriceEvolution(ctx context.Context, playerID, cardID string) (Evolution, error) {
	player, err := s.store.Player(ctx, playerID)
	if err != nil {
		return Evolution{}, err
	}
	card, ok := player.Card(cardID)
	if !ok {
		return Evolution{}, fmt.Errorf("%w: player %q card %q", ErrUnknownCard, playerID, cardID)
	}
	def := s.data.Cards.GetByID(card.CardID)
	if def == nil {
		return Evolution{}, fmt.Errorf("%w: card %q", provider.ErrUnknownTemplate, card.CardID)
	}

	stage := card.Stage()
	if stage >= s.evolution.MaxStage {
		return Evolution{}, fmt.Errorf("%w: %s is at stage %d", ErrMaxStage, def.Name, stage)
	}
	if need := s.evolution.MaxLevel(stage); card.Level < need {
		return Evolution{}, fmt.Errorf("%w: %s must reach level %d to evolve, is %d", ErrLevelTooLow, def.Name, need, card.Level)
	}

	bonus := s.evolution.StatBonus
	boost := rewards.StatBoost{
		Attack:  int(float64(def.Attack) * bonus),
		Defense: int(float64(def.Defense) * bonus),
		Speed:   int(float64(def.Speed) * bonus),
	}
	return Evolution{
		PlayerID:  playerID,
		CardID:    cardID,
		FromStage: stage,
		Cost:      s.evolution.Cost(def, stage),
		Boost:     boost,
	}, nil
}

// Evolve moves a card to its next stage, spending gold and materials. A
// player in a battle cannot evolve.
func (s *Service) Evolve(ctx context.Context, playerID, cardID string) (*EvolveReport, error) {
	if _, busy := s.registry.Active(ctx, playerID); busy {
		return nil, fmt.Errorf("%w: player %q", session.ErrBattleInProgress, playerID)
	}
	e, err := s.PriceEvolution(ctx, playerID, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Evolve(ctx, e); err != nil {
		logging.Info("evolution rejected", logging.Fields{"player": playerID, "card": cardID, "error": err.Error()})
		return nil, err
	}

	after, err := s.store.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	card, ok := after.Card(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: player %q card %q", ErrUnknownCard, playerID, cardID)
	}

	r := &EvolveReport{
		Evolution: e,
		ToStage:   card.Stage(),
		MaxLevel:  s.evolution.MaxLevel(card.Stage()),
		Card:      *card,
	}
	logging.Info("card evolved", logging.Fields{
		"player":    playerID,
		"card":      cardID,
		"stage":     r.ToStage,
		"max_level": r.MaxLevel,
		"gold":      e.Cost.Gold,
	})
	return r, nil
}
