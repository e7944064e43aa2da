package state

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// colorPalette and avatarPalette are the fixed appearance pools used to
// resolve collisions between players. Assignment is deterministic: the
// first free entry wins, scanning players in list order.
var colorPalette = []string{
	"#007bff", "#28a745", "#dc3545", "#ffc107", "#6f42c1", "#fd7e14", "#20c997", "#e83e8c",
}

var avatarPalette = []string{
	"👷", "📐", "🔧", "🏗️", "📋", "🧰", "🏢", "🚧",
}

// Options configures the opening position and balances of new players.
type Options struct {
	StartingSpace string
	StartingMoney int
	StartingTime  int
}

// Subscriber receives the full game state after every mutation.
type Subscriber func(*GameState)

// Store owns the single authoritative GameState. Every mutation replaces
// the whole state value under lock and notifies subscribers with a fresh
// copy, so readers always observe a consistent point-in-time value.
type Store struct {
	mu        sync.RWMutex
	state     *GameState
	opts      Options
	subs      map[int]Subscriber
	nextSubID int
	logger    *zap.Logger
}

// NewStore creates a store holding an empty SETUP-phase game.
func NewStore(opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  NewGameState(),
		opts:   opts,
		subs:   make(map[int]Subscriber),
		logger: logger,
	}
}

// GetState returns a deep-copied snapshot of the current game state.
func (s *Store) GetState() *GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Copy()
}

// GetPlayer returns a deep copy of the player with the given id.
func (s *Store) GetPlayer(id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.state.Player(id)
	if p == nil {
		return nil, NewNotFoundError("player", id)
	}
	return p.Copy(), nil
}

// Subscribe registers a callback invoked with a state copy after every
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// mutate applies fn to a copy of the current state and installs the copy
// as the new state when fn succeeds. Subscribers are notified outside
// the lock so they may call back into the store.
func (s *Store) mutate(fn func(gs *GameState) error) error {
	s.mu.Lock()
	next := s.state.Copy()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	subs := make([]Subscriber, 0, len(s.subs))
	for _, cb := range s.subs {
		subs = append(subs, cb)
	}
	snapshot := next.Copy()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(snapshot)
	}
	return nil
}

// AddPlayer creates a player during SETUP and returns the new id.
// Appearance collisions are resolved against the fixed palettes.
func (s *Store) AddPlayer(name, color, avatar string) (string, error) {
	id := uuid.NewString()
	err := s.mutate(func(gs *GameState) error {
		if gs.GamePhase != PhaseSetup {
			return &InvalidPhaseError{Operation: "AddPlayer", Phase: gs.GamePhase, Required: PhaseSetup}
		}
		p := NewPlayer(id, name, color, avatar, s.opts.StartingSpace, s.opts.StartingMoney, s.opts.StartingTime)
		gs.Players = append(gs.Players, p)
		gs.TurnModifiers[id] = &TurnModifier{}
		ensureDistinctAppearance(gs.Players)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("player added", zap.String("player_id", id), zap.String("name", name))
	return id, nil
}

// UpdatePlayer merges a partial player record into the named player.
// Permitted in SETUP and PLAY; the END phase is immutable.
func (s *Store) UpdatePlayer(id string, update PlayerUpdate) error {
	return s.mutate(func(gs *GameState) error {
		if gs.GamePhase == PhaseEnd {
			return &InvalidPhaseError{Operation: "UpdatePlayer", Phase: gs.GamePhase, Required: PhasePlay}
		}
		p := gs.Player(id)
		if p == nil {
			return NewNotFoundError("player", id)
		}
		applyPlayerUpdate(p, update)
		ensureDistinctAppearance(gs.Players)
		return nil
	})
}

// StartGame transitions SETUP → PLAY with the first player current.
func (s *Store) StartGame() error {
	return s.mutate(func(gs *GameState) error {
		if gs.GamePhase != PhaseSetup {
			return &InvalidPhaseError{Operation: "StartGame", Phase: gs.GamePhase, Required: PhaseSetup}
		}
		if len(gs.Players) == 0 {
			return NewValidationError("cannot start a game with no players")
		}
		gs.GamePhase = PhasePlay
		gs.CurrentPlayerID = gs.Players[0].ID
		gs.Turn = 1
		return nil
	})
}

// EndGame transitions PLAY → END and records the winner. The current
// player id is left untouched.
func (s *Store) EndGame(winnerID string) error {
	return s.mutate(func(gs *GameState) error {
		if gs.GamePhase != PhasePlay {
			return &InvalidPhaseError{Operation: "EndGame", Phase: gs.GamePhase, Required: PhasePlay}
		}
		if winnerID != "" && gs.Player(winnerID) == nil {
			return NewNotFoundError("player", winnerID)
		}
		gs.GamePhase = PhaseEnd
		gs.IsGameOver = true
		gs.Winner = winnerID
		return nil
	})
}

// SetCurrentPlayer hands the turn to the named player.
func (s *Store) SetCurrentPlayer(id string) error {
	return s.mutate(func(gs *GameState) error {
		if gs.Player(id) == nil {
			return NewNotFoundError("player", id)
		}
		gs.CurrentPlayerID = id
		return nil
	})
}

// AdvanceTurn hands the turn to the next player, increments the global
// turn counter, and resets per-turn flags and action counters.
func (s *Store) AdvanceTurn(nextPlayerID string) error {
	return s.mutate(func(gs *GameState) error {
		if gs.Player(nextPlayerID) == nil {
			return NewNotFoundError("player", nextPlayerID)
		}
		gs.CurrentPlayerID = nextPlayerID
		gs.Turn++
		gs.HasPlayerMovedThisTurn = false
		gs.RequiredActions = 0
		gs.CompletedActions = 0
		return nil
	})
}

// MarkPlayerMoved flags the current turn's movement as done.
func (s *Store) MarkPlayerMoved() error {
	return s.mutate(func(gs *GameState) error {
		gs.HasPlayerMovedThisTurn = true
		return nil
	})
}

// SetActionCounts replaces the per-turn action accounting.
func (s *Store) SetActionCounts(required, completed int) error {
	return s.mutate(func(gs *GameState) error {
		gs.RequiredActions = required
		gs.CompletedActions = completed
		return nil
	})
}

// AddCompletedAction increments the completed action counter.
func (s *Store) AddCompletedAction() error {
	return s.mutate(func(gs *GameState) error {
		gs.CompletedActions++
		return nil
	})
}

// SetAwaitingChoice installs the sole outstanding choice. Installing a
// second one is a ValidationError.
func (s *Store) SetAwaitingChoice(c *Choice) error {
	return s.mutate(func(gs *GameState) error {
		if gs.AwaitingChoice != nil {
			return NewValidationError("choice %s is already awaiting resolution", gs.AwaitingChoice.ID)
		}
		gs.AwaitingChoice = c.Copy()
		return nil
	})
}

// ClearAwaitingChoice removes the outstanding choice, if any.
func (s *Store) ClearAwaitingChoice() error {
	return s.mutate(func(gs *GameState) error {
		gs.AwaitingChoice = nil
		return nil
	})
}

// AddSkipTurns adds n skipped turns to the player's turn modifier.
func (s *Store) AddSkipTurns(playerID string, n int) error {
	return s.mutate(func(gs *GameState) error {
		if gs.Player(playerID) == nil {
			return NewNotFoundError("player", playerID)
		}
		tm := gs.TurnModifiers[playerID]
		if tm == nil {
			tm = &TurnModifier{}
			gs.TurnModifiers[playerID] = tm
		}
		tm.SkipTurns += n
		return nil
	})
}

// ConsumeSkipTurn decrements the player's skip counter. Reports whether
// a skip was consumed.
func (s *Store) ConsumeSkipTurn(playerID string) bool {
	consumed := false
	_ = s.mutate(func(gs *GameState) error {
		tm := gs.TurnModifiers[playerID]
		if tm != nil && tm.SkipTurns > 0 {
			tm.SkipTurns--
			consumed = true
		}
		return nil
	})
	return consumed
}

// CreatePlayerSnapshot captures the player's revertible state.
func (s *Store) CreatePlayerSnapshot(id string) error {
	return s.mutate(func(gs *GameState) error {
		p := gs.Player(id)
		if p == nil {
			return NewNotFoundError("player", id)
		}
		p.Snapshot = &PlayerSnapshot{
			CurrentSpace: p.CurrentSpace,
			VisitType:    p.VisitType,
			Money:        p.Money,
			TimeSpent:    p.TimeSpent,
			Available:    copyCardMap(p.Available),
			Active:       append([]ActiveCard(nil), p.Active...),
			Discarded:    copyCardMap(p.Discarded),
		}
		return nil
	})
}

// RestorePlayerSnapshot reverts the player to the captured state and
// discards the snapshot. Missing snapshot is a NotFoundError.
func (s *Store) RestorePlayerSnapshot(id string) error {
	return s.mutate(func(gs *GameState) error {
		p := gs.Player(id)
		if p == nil {
			return NewNotFoundError("player", id)
		}
		if p.Snapshot == nil {
			return NewNotFoundError("snapshot for player", id)
		}
		snap := p.Snapshot
		p.CurrentSpace = snap.CurrentSpace
		p.VisitType = snap.VisitType
		p.Money = snap.Money
		p.TimeSpent = snap.TimeSpent
		p.Available = copyCardMap(snap.Available)
		p.Active = append([]ActiveCard(nil), snap.Active...)
		p.Discarded = copyCardMap(snap.Discarded)
		p.Snapshot = nil
		return nil
	})
}

// ensureDistinctAppearance resolves color and avatar collisions by
// assigning the first free palette entry, scanning players in order.
func ensureDistinctAppearance(players []*Player) {
	usedColors := make(map[string]bool)
	usedAvatars := make(map[string]bool)
	for _, p := range players {
		if p.Color == "" || usedColors[p.Color] {
			p.Color = firstFree(colorPalette, usedColors)
		}
		usedColors[p.Color] = true
		if p.Avatar == "" || usedAvatars[p.Avatar] {
			p.Avatar = firstFree(avatarPalette, usedAvatars)
		}
		usedAvatars[p.Avatar] = true
	}
}

func firstFree(palette []string, used map[string]bool) string {
	for _, entry := range palette {
		if !used[entry] {
			return entry
		}
	}
	// Palette exhausted; reuse the first entry.
	if len(palette) > 0 {
		return palette[0]
	}
	return ""
}
