package arena

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/samdwyer/animearena/internal/gamedata"
	"github.com/samdwyer/animearena/internal/rewards"
)

var (
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrUnknownCard      = errors.New("unknown card")
	ErrNoEquippedCard   = errors.New("no card equipped")
	ErrNotEnoughStamina = errors.New("not enough stamina")
	ErrPlayerExists     = errors.New("player already exists")
	ErrNotEnoughGold    = errors.New("not enough gold")
	ErrNotEnoughItems   = errors.New("not enough materials")
	ErrStageChanged     = errors.New("card evolved concurrently")
)

// New players start with these values.
const (
	StartingStamina = 10
	StartingMP      = 100
)

// CardRecord is a card a player owns.
type CardRecord struct {
	ID     string // Instance ID
	CardID string // Template ID
	Rarity gamedata.Rarity
	Level  int
	XP     int
	Bonus  rewards.StatBoost // Stat growth earned from level-ups and evolution

	EvoStage int // Zero is read as stage 1
}

// Stage returns the card's evolution stage.
func (c CardRecord) Stage() int {
	return max(1, c.EvoStage)
}

// Player is a player's persisted state.
type Player struct {
	ID         string
	Name       string
	Level      int
	XP         int
	Stamina    int
	MaxStamina int
	MP         int
	MaxMP      int
	Gold       int
	Wins       int
	Losses     int
	Equipped   string // Card instance ID
	Cards      []CardRecord
	Materials  map[int]int
	Floors     map[string]int // Highest cleared floor per dungeon
}

// NewPlayer returns a level-1 player with full stamina and MP.
func NewPlayer(id, name string) Player {
	return Player{
		ID:         id,
		Name:       name,
		Level:      1,
		Stamina:    StartingStamina,
		MaxStamina: StartingStamina,
		MP:         StartingMP,
		MaxMP:      StartingMP,
		Materials:  map[int]int{},
		Floors:     map[string]int{},
	}
}

// Card returns the card with the given instance ID.
func (p *Player) Card(id string) (*CardRecord, bool) {
	for i := range p.Cards {
		if p.Cards[i].ID == id {
			return &p.Cards[i], true
		}
	}
	return nil, false
}

// EquippedCard returns the equipped card.
func (p *Player) EquippedCard() (*CardRecord, error) {
	if p.Equipped == "" {
		return nil, fmt.Errorf("%w: player %q", ErrNoEquippedCard, p.ID)
	}
	c, ok := p.Card(p.Equipped)
	if !ok {
		return nil, fmt.Errorf("%w: player %q card %q", ErrUnknownCard, p.ID, p.Equipped)
	}
	return c, nil
}

func (p Player) clone() Player {
	p.Cards = append([]CardRecord(nil), p.Cards...)
	p.Materials = maps.Clone(p.Materials)
	p.Floors = maps.Clone(p.Floors)
	if p.Materials == nil {
		p.Materials = map[int]int{}
	}
	if p.Floors == nil {
		p.Floors = map[string]int{}
	}
	return p
}

// FloorClear records a cleared dungeon floor.
type FloorClear struct {
	DungeonID string
	Floor     int
}

// Settlement is what one battle changes for one player.
type Settlement struct {
	PlayerID string
	CardID   string // Card instance that fought; receives card XP
	Reward   rewards.Result
	MP       int // MP left after the battle; negative leaves MP unchanged
	Won      bool
	Lost     bool
	Cleared  *FloorClear
}

// Store is the persistence the arena needs. Apply must commit every
// settlement or none.
type Store interface {
	Player(ctx context.Context, id string) (Player, error)
	SpendStamina(ctx context.Context, id string, amount int) error
	Apply(ctx context.Context, settlements ...Settlement) error
	Evolve(ctx context.Context, e Evolution) error
}

// Evolution is a priced evolution of one card.
type Evolution struct {
	PlayerID  string
	CardID    string // Card instance
	FromStage int
	Cost      gamedata.EvolutionCost
	Boost     rewards.StatBoost
}

// Ledger is an in-memory Store. A restart loses its contents.
type Ledger struct {
	mu      sync.Mutex
	players map[string]Player
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{players: make(map[string]Player)}
}

// AddPlayer stores a new player.
func (l *Ledger) AddPlayer(_ context.Context, p Player) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.players[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrPlayerExists, p.ID)
	}
	l.players[p.ID] = p.clone()
	return nil
}

// GrantCard adds a level-1 card to a player's collection and equips it if
// nothing is equipped. It returns the new instance ID.
func (l *Ledger) GrantCard(_ context.Context, playerID string, def *gamedata.CardDef) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	p = p.clone()
	rec := CardRecord{
		ID:       uuid.NewString(),
		CardID:   def.ID,
		Rarity:   def.Rarity,
		Level:    1,
		EvoStage: 1,
	}
	p.Cards = append(p.Cards, rec)
	if p.Equipped == "" {
		p.Equipped = rec.ID
	}
	l.players[playerID] = p
	return rec.ID, nil
}

// Equip sets the player's equipped card.
func (l *Ledger) Equip(_ context.Context, playerID, cardID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	if _, ok := p.Card(cardID); !ok {
		return fmt.Errorf("%w: player %q card %q", ErrUnknownCard, playerID, cardID)
	}
	p.Equipped = cardID
	l.players[playerID] = p
	return nil
}

// Player returns a copy of a player's state.
func (l *Ledger) Player(_ context.Context, id string) (Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		return Player{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}
	return p.clone(), nil
}

// SpendStamina deducts stamina, failing if the player has too little.
func (l *Ledger) SpendStamina(_ context.Context, id string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}
	if p.Stamina < amount {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughStamina, amount, p.Stamina)
	}
	p.Stamina -= amount
	l.players[id] = p
	return nil
}

// Restore refills a player's stamina and MP.
func (l *Ledger) Restore(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}
	p.Stamina = p.MaxStamina
	p.MP = p.MaxMP
	l.players[id] = p
	return nil
}

// Apply commits settlements atomically. If any settlement names an unknown
// player or card nothing is changed.
func (l *Ledger) Apply(_ context.Context, settlements ...Settlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[string]Player, len(settlements))
	for _, s := range settlements {
		p, ok := next[s.PlayerID]
		if !ok {
			stored, found := l.players[s.PlayerID]
			if !found {
				return fmt.Errorf("%w: %q", ErrUnknownPlayer, s.PlayerID)
			}
			p = stored.clone()
		}
		if err := settle(&p, s); err != nil {
			return err
		}
		next[s.PlayerID] = p
	}

	for id, p := range next {
		l.players[id] = p
	}
	return nil
}

func settle(p *Player, s Settlement) error {
	if s.Won {
		p.Wins++
	}
	if s.Lost {
		p.Losses++
	}
	if s.MP >= 0 {
		p.MP = min(s.MP, p.MaxMP)
	}

	r := s.Reward
	if r.Granted {
		if s.CardID != "" {
			card, ok := p.Card(s.CardID)
			if !ok {
				return fmt.Errorf("%w: player %q card %q", ErrUnknownCard, p.ID, s.CardID)
			}
			card.Level = r.Card.ToLevel
			card.XP = r.Card.XP
			card.Bonus = card.Bonus.Add(r.Card.Total)
		}

		p.Gold += r.Gold
		p.Level = r.Player.ToLevel
		p.XP = r.Player.XP
		p.MaxStamina += r.Player.MaxStaminaGain
		p.MaxMP += r.Player.MaxMPGain
		for _, m := range r.Materials {
			p.Materials[m.MaterialID] += m.Quantity
		}
	}

	if c := s.Cleared; c != nil && c.Floor > p.Floors[c.DungeonID] {
		p.Floors[c.DungeonID] = c.Floor
	}
	return nil
}

// Evolve spends the gold and materials and moves the card to the next
// stage. Nothing changes unless the player can pay all of it and the card
// is still at FromStage.
func (l *Ledger) Evolve(_ context.Context, e Evolution) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored, ok := l.players[e.PlayerID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, e.PlayerID)
	}
	p := stored.clone()
	card, ok := p.Card(e.CardID)
	if !ok {
		return fmt.Errorf("%w: player %q card %q", ErrUnknownCard, p.ID, e.CardID)
	}
	if card.Stage() != e.FromStage {
		return fmt.Errorf("%w: card %q is at stage %d, not %d", ErrStageChanged, card.ID, card.Stage(), e.FromStage)
	}

	if p.Gold < e.Cost.Gold {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughGold, e.Cost.Gold, p.Gold)
	}
	p.Gold -= e.Cost.Gold
	for _, m := range e.Cost.Materials {
		have := p.Materials[m.MaterialID]
		if have < m.Quantity {
			return fmt.Errorf("%w: material %d need %d, have %d", ErrNotEnoughItems, m.MaterialID, m.Quantity, have)
		}
		if have == m.Quantity {
			delete(p.Materials, m.MaterialID)
		} else {
			p.Materials[m.MaterialID] = have - m.Quantity
		}
	}

	card.EvoStage = e.FromStage + 1
	card.Bonus = card.Bonus.Add(e.Boost)
	l.players[p.ID] = p
	return nil
}
