package effects

import (
	"strings"

	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/parse"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
)

// Trigger types carried by space effect rows. Manual rows are not
// applied on arrival; the player performs them as extra required
// actions.
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)

// IsManualRow reports whether a space effect row needs an explicit
// player action.
func IsManualRow(row data.SpaceEffectRow) bool {
	return strings.EqualFold(strings.TrimSpace(row.TriggerType), TriggerManual)
}

// FromSpaceEffectRow translates one space effect row into an effect
// bound to the player. Unrecognized effect types yield an
// UnknownTypeError; callers log it and skip the row.
func FromSpaceEffectRow(row data.SpaceEffectRow, playerID string) (Effect, error) {
	action := strings.ToLower(strings.TrimSpace(row.EffectAction))
	value := strings.TrimSpace(row.EffectValue)

	switch strings.ToLower(strings.TrimSpace(row.EffectType)) {
	case "money":
		magnitude, ok := parse.Magnitude(value)
		if !ok {
			return nil, state.NewValidationError("money effect %q carries no magnitude", value)
		}
		rc := ResourceChange{PlayerID: playerID, Resource: ResourceMoney, Source: "space_effect", Reason: row.Space}
		if parse.IsPercentage(value) {
			rc.Percent = signedByAction(magnitude, action)
		} else {
			rc.Amount = signedByAction(magnitude, action)
		}
		return rc, nil
	case "time":
		magnitude, ok := parse.Magnitude(value)
		if !ok {
			return nil, state.NewValidationError("time effect %q carries no magnitude", value)
		}
		// "add" on a time row adds to the player's time spent: a cost.
		return ResourceChange{
			PlayerID: playerID,
			Resource: ResourceTime,
			Amount:   -signedByAction(magnitude, action),
			Source:   "space_effect",
			Reason:   row.Space,
		}, nil
	case "cards":
		verb, cardType, ok := splitCardAction(action)
		if !ok {
			return nil, &state.UnknownTypeError{Kind: "card action", Value: row.EffectAction}
		}
		count, ok := parse.Magnitude(value)
		if !ok {
			count = 1
		}
		switch verb {
		case "draw":
			return CardDraw{PlayerID: playerID, CardType: cardType, Count: count}, nil
		case "discard", "remove":
			return CardDiscard{PlayerID: playerID, CardType: cardType, Count: count}, nil
		}
		return nil, &state.UnknownTypeError{Kind: "card action", Value: row.EffectAction}
	case "turn":
		count, ok := parse.Magnitude(value)
		if !ok {
			count = 1
		}
		switch action {
		case "skip", "skip_turn", "skip_next_turn":
			return TurnControl{PlayerID: playerID, Action: TurnSkip, Turns: count}, nil
		}
		return nil, &state.UnknownTypeError{Kind: "turn action", Value: row.EffectAction}
	case "log":
		return Log{PlayerID: playerID, Message: value}, nil
	}
	return nil, &state.UnknownTypeError{Kind: "effect", Value: row.EffectType}
}

// FromDiceEffectRow translates the outcome bound to the rolled value.
// Returns nil with no error for empty and "No change" outcomes.
func FromDiceEffectRow(row data.DiceEffectRow, playerID string, roll int) (Effect, error) {
	outcome := strings.TrimSpace(row.Outcome(roll))
	if outcome == "" || strings.EqualFold(outcome, "no change") {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(row.EffectType)) {
	case "cards", "":
		cardType := state.CardType(strings.ToUpper(strings.TrimSpace(row.CardType)))
		if !state.IsValidCardType(cardType) {
			return nil, &state.UnknownTypeError{Kind: "card", Value: row.CardType}
		}
		count, ok := parse.Magnitude(outcome)
		if !ok {
			count = 1
		}
		lower := strings.ToLower(outcome)
		switch {
		case strings.Contains(lower, "draw"):
			return CardDraw{PlayerID: playerID, CardType: cardType, Count: count}, nil
		case strings.Contains(lower, "discard"), strings.Contains(lower, "remove"):
			return CardDiscard{PlayerID: playerID, CardType: cardType, Count: count}, nil
		}
		return nil, &state.UnknownTypeError{Kind: "card outcome", Value: outcome}
	case "money":
		magnitude, ok := parse.Magnitude(outcome)
		if !ok {
			return nil, state.NewValidationError("money outcome %q carries no magnitude", outcome)
		}
		rc := ResourceChange{PlayerID: playerID, Resource: ResourceMoney, Source: "dice_effect", Reason: row.Space}
		if parse.IsPercentage(outcome) {
			// Dice-table percentages are fees against current money.
			rc.Percent = -abs(magnitude)
		} else {
			rc.Amount = magnitude
		}
		return rc, nil
	case "time":
		magnitude, ok := parse.Magnitude(outcome)
		if !ok {
			return nil, state.NewValidationError("time outcome %q carries no magnitude", outcome)
		}
		// Bare dice-table time values are days spent on the space.
		return ResourceChange{
			PlayerID: playerID,
			Resource: ResourceTime,
			Amount:   -abs(magnitude),
			Source:   "dice_effect",
			Reason:   row.Space,
		}, nil
	}
	return nil, &state.UnknownTypeError{Kind: "effect", Value: row.EffectType}
}

// splitCardAction parses actions of the form "draw_w" / "discard_e".
func splitCardAction(action string) (string, state.CardType, bool) {
	verb, suffix, found := strings.Cut(action, "_")
	if !found {
		return "", "", false
	}
	t := state.CardType(strings.ToUpper(suffix))
	if !state.IsValidCardType(t) {
		return "", "", false
	}
	return verb, t, true
}

// signedByAction applies the row action's direction to a magnitude.
func signedByAction(magnitude int, action string) int {
	switch action {
	case "subtract", "remove", "fee", "charge", "pay":
		return -abs(magnitude)
	case "add", "gain", "":
		return abs(magnitude)
	}
	// Unrecognized actions keep the embedded sign.
	return magnitude
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
