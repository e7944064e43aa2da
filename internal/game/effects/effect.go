// Package effects defines the declarative effect instructions the data
// tables and cards emit, and the processor that applies them against the
// game state. Effects are immutable, data-only values; all behavior
// lives in the processor's dispatch.
package effects

import "github.com/unravel-games/code2027-server-go/internal/game/state"

// EffectType discriminates the effect union.
type EffectType string

const (
	EffectResourceChange   EffectType = "RESOURCE_CHANGE"
	EffectCardDraw         EffectType = "CARD_DRAW"
	EffectCardDiscard      EffectType = "CARD_DISCARD"
	EffectChoice           EffectType = "CHOICE"
	EffectLog              EffectType = "LOG"
	EffectPlayerMovement   EffectType = "PLAYER_MOVEMENT"
	EffectTurnControl      EffectType = "TURN_CONTROL"
	EffectCardActivation   EffectType = "CARD_ACTIVATION"
	EffectGroupTargeted    EffectType = "EFFECT_GROUP_TARGETED"
	EffectRecalculateScope EffectType = "RECALCULATE_SCOPE"
	EffectConditional      EffectType = "CONDITIONAL_EFFECT"
)

// Effect is the sealed effect union. Only the types in this package
// implement it, so the processor's type switch is exhaustive.
type Effect interface {
	Type() EffectType
	isEffect()
}

// Resource names a ledger-managed resource.
type Resource string

const (
	ResourceMoney Resource = "MONEY"
	ResourceTime  Resource = "TIME"
)

// ResourceChange adjusts money or time. Amount is signed: positive
// credits the player, negative charges them. For money, a non-zero
// Percent of the player's current balance is applied before the flat
// amount.
type ResourceChange struct {
	PlayerID string
	Resource Resource
	Amount   int
	Percent  int
	Source   string
	Reason   string
}

func (ResourceChange) Type() EffectType { return EffectResourceChange }
func (ResourceChange) isEffect()        {}

// CardDraw adds newly generated cards of a type to a player.
type CardDraw struct {
	PlayerID string
	CardType state.CardType
	Count    int
}

func (CardDraw) Type() EffectType { return EffectCardDraw }
func (CardDraw) isEffect()        {}

// CardDiscard discards cards of a type from a player's available pile.
type CardDiscard struct {
	PlayerID string
	CardType state.CardType
	Count    int
}

func (CardDiscard) Type() EffectType { return EffectCardDiscard }
func (CardDiscard) isEffect()        {}

// ChoiceEffect suspends flow on a general decision. The selection is
// recorded in the batch result; it carries no further behavior.
type ChoiceEffect struct {
	PlayerID string
	Prompt   string
	Options  []state.ChoiceOption
}

func (ChoiceEffect) Type() EffectType { return EffectChoice }
func (ChoiceEffect) isEffect()        {}

// Log emits a game log entry and changes nothing.
type Log struct {
	PlayerID string
	Message  string
}

func (Log) Type() EffectType { return EffectLog }
func (Log) isEffect()        {}

// PlayerMovement relocates a player to a destination, which must be one
// of their valid moves.
type PlayerMovement struct {
	PlayerID    string
	Destination string
}

func (PlayerMovement) Type() EffectType { return EffectPlayerMovement }
func (PlayerMovement) isEffect()        {}

// TurnAction names a turn control operation.
type TurnAction string

const (
	TurnSkip TurnAction = "SKIP_TURN"
)

// TurnControl applies a turn control action, such as skipping a
// player's upcoming turns.
type TurnControl struct {
	PlayerID string
	Action   TurnAction
	Turns    int
}

func (TurnControl) Type() EffectType { return EffectTurnControl }
func (TurnControl) isEffect()        {}

// CardActivation moves an available card into the active list for a
// number of turns.
type CardActivation struct {
	PlayerID string
	CardID   string
	Duration int
}

func (CardActivation) Type() EffectType { return EffectCardActivation }
func (CardActivation) isEffect()        {}

// TargetRule selects which players a GroupTargeted effect expands to.
type TargetRule string

const (
	TargetChosenOther TargetRule = "OTHER_PLAYER_CHOICE"
	TargetAllOthers   TargetRule = "ALL_OTHER_PLAYERS"
	TargetAllPlayers  TargetRule = "ALL_PLAYERS"
)

// GroupTargeted broadcasts a template effect to other or all players.
// With TargetChosenOther the initiator picks the single target through
// a PLAYER_TARGET choice.
type GroupTargeted struct {
	PlayerID string
	Target   TargetRule
	Template Effect
	Prompt   string
}

func (GroupTargeted) Type() EffectType { return EffectGroupTargeted }
func (GroupTargeted) isEffect()        {}

// RecalculateScope refreshes the player's derived project scope.
type RecalculateScope struct {
	PlayerID string
}

func (RecalculateScope) Type() EffectType { return EffectRecalculateScope }
func (RecalculateScope) isEffect()        {}

// DiceRange gates nested effects on a dice roll interval, inclusive.
type DiceRange struct {
	Min     int
	Max     int
	Effects []Effect
}

// Conditional applies the nested effects of the range containing the
// context's dice roll. A roll outside every range is a no-op.
type Conditional struct {
	PlayerID string
	Ranges   []DiceRange
}

func (Conditional) Type() EffectType { return EffectConditional }
func (Conditional) isEffect()        {}

// retarget returns a copy of the effect bound to a different player.
func retarget(e Effect, playerID string) Effect {
	switch v := e.(type) {
	case ResourceChange:
		v.PlayerID = playerID
		return v
	case CardDraw:
		v.PlayerID = playerID
		return v
	case CardDiscard:
		v.PlayerID = playerID
		return v
	case ChoiceEffect:
		v.PlayerID = playerID
		return v
	case Log:
		v.PlayerID = playerID
		return v
	case PlayerMovement:
		v.PlayerID = playerID
		return v
	case TurnControl:
		v.PlayerID = playerID
		return v
	case CardActivation:
		v.PlayerID = playerID
		return v
	case GroupTargeted:
		v.PlayerID = playerID
		return v
	case RecalculateScope:
		v.PlayerID = playerID
		return v
	case Conditional:
		v.PlayerID = playerID
		return v
	}
	return e
}
