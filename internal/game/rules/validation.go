// Package rules holds the stateless predicate checks consumed across the
// engine. Predicates are side-effect-free and answer false for ordinary
// invalid input instead of erroring, so hot validation paths need no
// error handling.
package rules

import (
	"strings"

	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
)

// DefaultCardLimit is the per-type cap on a player's available cards.
const DefaultCardLimit = 6

// MoveLister supplies the legal destinations for a player. The movement
// resolver implements it.
type MoveLister interface {
	GetValidMoves(playerID string) ([]string, error)
}

// Validator evaluates game-rule predicates over the current state.
type Validator struct {
	store     *state.Store
	provider  data.Provider
	moves     MoveLister
	cardLimit int
}

// NewValidator creates a validator. A cardLimit of zero falls back to
// DefaultCardLimit.
func NewValidator(store *state.Store, provider data.Provider, moves MoveLister, cardLimit int) *Validator {
	if cardLimit <= 0 {
		cardLimit = DefaultCardLimit
	}
	return &Validator{store: store, provider: provider, moves: moves, cardLimit: cardLimit}
}

// IsGameInProgress reports whether the game is in the PLAY phase and not
// yet won.
func (v *Validator) IsGameInProgress() bool {
	gs := v.store.GetState()
	return gs.GamePhase == state.PhasePlay && !gs.IsGameOver
}

// IsPlayerTurn reports whether the named player is the current player.
func (v *Validator) IsPlayerTurn(playerID string) bool {
	gs := v.store.GetState()
	return gs.CurrentPlayerID == playerID && gs.GamePhase == state.PhasePlay
}

// IsMoveValid reports whether destination is among the player's legal
// moves from their current space.
func (v *Validator) IsMoveValid(playerID, destination string) bool {
	if v.moves == nil || destination == "" {
		return false
	}
	moves, err := v.moves.GetValidMoves(playerID)
	if err != nil {
		return false
	}
	for _, m := range moves {
		if m == destination {
			return true
		}
	}
	return false
}

// CanPlayCard reports whether the player may play the card right now:
// the card sits in their available pile, it is their turn, they can
// afford the cost, and the card's phase restriction matches the phase of
// the space they occupy.
func (v *Validator) CanPlayCard(playerID, cardID string) bool {
	if !v.IsGameInProgress() || !v.IsPlayerTurn(playerID) {
		return false
	}
	p, err := v.store.GetPlayer(playerID)
	if err != nil {
		return false
	}
	if p.FindCard(cardID) != state.CardLocationAvailable {
		return false
	}
	card, ok := LookupCard(v.provider, cardID)
	if !ok {
		return false
	}
	if card.Cost > p.Money {
		return false
	}
	return v.phaseRestrictionSatisfied(p, card)
}

// CanDrawCard reports whether the player may draw a card of the given
// type without breaching the per-type hand cap.
func (v *Validator) CanDrawCard(playerID string, t state.CardType) bool {
	if !state.IsValidCardType(t) {
		return false
	}
	p, err := v.store.GetPlayer(playerID)
	if err != nil {
		return false
	}
	return p.CountAvailable(t) < v.cardLimit
}

// CheckWinCondition reports whether the player sits on a space flagged
// as an ending space.
func (v *Validator) CheckWinCondition(playerID string) bool {
	p, err := v.store.GetPlayer(playerID)
	if err != nil {
		return false
	}
	cfg, ok := v.provider.GetGameConfigBySpace(p.CurrentSpace)
	return ok && cfg.IsEndingSpace
}

func (v *Validator) phaseRestrictionSatisfied(p *state.Player, card *data.Card) bool {
	restriction := strings.TrimSpace(card.PhaseRestriction)
	if restriction == "" || strings.EqualFold(restriction, "Any") {
		return true
	}
	cfg, ok := v.provider.GetGameConfigBySpace(p.CurrentSpace)
	if !ok {
		return false
	}
	return strings.EqualFold(cfg.Phase, restriction)
}

// LookupCard resolves a card definition from an instance id. Instance
// ids carry the definition id as a prefix ("W001_1a2b3c4d"), so lookup
// retries with the prefix when the full id misses.
func LookupCard(provider data.Provider, cardID string) (*data.Card, bool) {
	if c, ok := provider.GetCardByID(cardID); ok {
		return c, true
	}
	if i := strings.LastIndex(cardID, "_"); i > 0 {
		if c, ok := provider.GetCardByID(cardID[:i]); ok {
			return c, true
		}
	}
	return nil, false
}
