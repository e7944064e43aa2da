package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
)

func TestIsManualRow(t *testing.T) {
	assert.True(t, IsManualRow(data.SpaceEffectRow{TriggerType: "manual"}))
	assert.True(t, IsManualRow(data.SpaceEffectRow{TriggerType: " Manual "}))
	assert.False(t, IsManualRow(data.SpaceEffectRow{TriggerType: "auto"}))
	assert.False(t, IsManualRow(data.SpaceEffectRow{}))
}

func TestFromSpaceEffectRow_Money(t *testing.T) {
	e, err := FromSpaceEffectRow(data.SpaceEffectRow{
		Space: "BANK", EffectType: "money", EffectAction: "add", EffectValue: "500",
	}, "p1")
	require.NoError(t, err)
	rc, ok := e.(ResourceChange)
	require.True(t, ok)
	assert.Equal(t, "p1", rc.PlayerID)
	assert.Equal(t, ResourceMoney, rc.Resource)
	assert.Equal(t, 500, rc.Amount)
	assert.Zero(t, rc.Percent)

	e, err = FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "money", EffectAction: "fee", EffectValue: "5%",
	}, "p1")
	require.NoError(t, err)
	rc = e.(ResourceChange)
	assert.Equal(t, -5, rc.Percent)
	assert.Zero(t, rc.Amount)
}

func TestFromSpaceEffectRow_TimeAddIsACost(t *testing.T) {
	e, err := FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "time", EffectAction: "add", EffectValue: "3",
	}, "p1")
	require.NoError(t, err)
	rc := e.(ResourceChange)
	assert.Equal(t, ResourceTime, rc.Resource)
	assert.Equal(t, -3, rc.Amount)
}

func TestFromSpaceEffectRow_Cards(t *testing.T) {
	e, err := FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "cards", EffectAction: "draw_w", EffectValue: "2",
	}, "p1")
	require.NoError(t, err)
	draw, ok := e.(CardDraw)
	require.True(t, ok)
	assert.Equal(t, state.CardWork, draw.CardType)
	assert.Equal(t, 2, draw.Count)

	e, err = FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "cards", EffectAction: "discard_e", EffectValue: "",
	}, "p1")
	require.NoError(t, err)
	discard, ok := e.(CardDiscard)
	require.True(t, ok)
	assert.Equal(t, state.CardEquipment, discard.CardType)
	assert.Equal(t, 1, discard.Count)

	_, err = FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "cards", EffectAction: "shuffle_w",
	}, "p1")
	var unknown *state.UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestFromSpaceEffectRow_TurnSkip(t *testing.T) {
	e, err := FromSpaceEffectRow(data.SpaceEffectRow{
		EffectType: "turn", EffectAction: "skip_turn", EffectValue: "1",
	}, "p1")
	require.NoError(t, err)
	tc, ok := e.(TurnControl)
	require.True(t, ok)
	assert.Equal(t, TurnSkip, tc.Action)
	assert.Equal(t, 1, tc.Turns)
}

func TestFromSpaceEffectRow_Unknown(t *testing.T) {
	_, err := FromSpaceEffectRow(data.SpaceEffectRow{EffectType: "weather"}, "p1")
	var unknown *state.UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestFromDiceEffectRow_DrawPerRoll(t *testing.T) {
	row := data.DiceEffectRow{
		Space:    "ARCH-INITIATION",
		CardType: "W",
		Roll1:    "No change",
		Roll2:    "Draw 1",
		Roll3:    "Draw 2",
		Roll4:    "Draw 2",
		Roll5:    "Discard 1",
		Roll6:    "",
	}

	e, err := FromDiceEffectRow(row, "p1", 3)
	require.NoError(t, err)
	draw, ok := e.(CardDraw)
	require.True(t, ok)
	assert.Equal(t, state.CardWork, draw.CardType)
	assert.Equal(t, 2, draw.Count)

	e, err = FromDiceEffectRow(row, "p1", 5)
	require.NoError(t, err)
	discard, ok := e.(CardDiscard)
	require.True(t, ok)
	assert.Equal(t, 1, discard.Count)

	// "No change" and empty outcomes translate to nothing.
	e, err = FromDiceEffectRow(row, "p1", 1)
	require.NoError(t, err)
	assert.Nil(t, e)
	e, err = FromDiceEffectRow(row, "p1", 6)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestFromDiceEffectRow_MoneyPercentIsAFee(t *testing.T) {
	row := data.DiceEffectRow{
		Space: "REG-FEE-REVIEW", EffectType: "money",
		Roll1: "1%", Roll2: "1%", Roll3: "2%", Roll4: "2%", Roll5: "3%", Roll6: "3%",
	}
	e, err := FromDiceEffectRow(row, "p1", 5)
	require.NoError(t, err)
	rc := e.(ResourceChange)
	assert.Equal(t, -3, rc.Percent)
	assert.Zero(t, rc.Amount)
}

func TestFromDiceEffectRow_TimeIsACost(t *testing.T) {
	row := data.DiceEffectRow{
		Space: "CON-ISSUES", EffectType: "time",
		Roll1: "2", Roll2: "2", Roll3: "4", Roll4: "4", Roll5: "6", Roll6: "6",
	}
	e, err := FromDiceEffectRow(row, "p1", 3)
	require.NoError(t, err)
	rc := e.(ResourceChange)
	assert.Equal(t, ResourceTime, rc.Resource)
	assert.Equal(t, -4, rc.Amount)
}
