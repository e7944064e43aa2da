package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// boardFixture builds a small linear board: START -> MID -> FINISH, with
// FINISH flagged as the ending space.
func boardFixture() *data.Fixture {
	f := data.NewFixture().
		AddSpaceConfig(data.SpaceConfig{Space: "START", Phase: "SETUP", IsStartingSpace: true}).
		AddSpaceConfig(data.SpaceConfig{Space: "MID", Phase: "CONSTRUCTION"}).
		AddSpaceConfig(data.SpaceConfig{Space: "FINISH", Phase: "CLOSEOUT", IsEndingSpace: true}).
		AddCard(data.Card{ID: "W001", Name: "Site Survey", Type: state.CardWork})
	for _, visit := range []string{"First", "Subsequent"} {
		f.AddMovement(data.MovementRecord{
			Space: "START", VisitType: visit, MovementType: data.MovementFixed, Destination1: "MID",
		})
		f.AddMovement(data.MovementRecord{
			Space: "MID", VisitType: visit, MovementType: data.MovementFixed, Destination1: "FINISH",
		})
		f.AddMovement(data.MovementRecord{
			Space: "FINISH", VisitType: visit, MovementType: data.MovementNone,
		})
	}
	return f
}

func newEngineFixture(t *testing.T, provider data.Provider, players int) (*Engine, []string) {
	t.Helper()
	engine := NewEngine(provider, Config{
		StartingSpace: "START",
		StartingMoney: 1000,
		Seed:          1,
	}, zap.NewNop())

	names := []string{"Alice", "Bob", "Carol"}
	ids := make([]string, 0, players)
	for i := 0; i < players; i++ {
		id, err := engine.AddPlayer(names[i], "", "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, engine.StartGame())
	return engine, ids
}

func TestEngine_TakeTurnMovesAndCountsActions(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 2)

	result := engine.TakeTurn(ids[0])
	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.GreaterOrEqual(t, result.DiceRoll, 1)
	assert.LessOrEqual(t, result.DiceRoll, 6)

	gs := engine.Store().GetState()
	assert.True(t, gs.HasPlayerMovedThisTurn)
	assert.Equal(t, 1, gs.RequiredActions)
	assert.Equal(t, 1, gs.CompletedActions)

	p, err := engine.Store().GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "MID", p.CurrentSpace)
}

func TestEngine_TakeTurnGuards(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 2)

	// Wrong player.
	result := engine.TakeTurn(ids[1])
	var vErr *state.ValidationError
	require.ErrorAs(t, result.Err, &vErr)

	// Taking the turn twice.
	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	result = engine.TakeTurn(ids[0])
	require.ErrorAs(t, result.Err, &vErr)
}

func TestEngine_EndTurnBeforeActingIsIncomplete(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 2)

	result := engine.EndTurn(ids[0])
	var incomplete *state.IncompleteTurnError
	require.ErrorAs(t, result.Err, &incomplete)
	assert.False(t, incomplete.AwaitingChoice)
}

func TestEngine_EndTurnAdvancesInOrder(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 3)
	store := engine.Store()

	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	require.NoError(t, engine.EndTurn(ids[0]).Err)

	gs := store.GetState()
	assert.Equal(t, ids[1], gs.CurrentPlayerID)
	assert.Equal(t, 2, gs.Turn)

	require.NoError(t, engine.TakeTurn(ids[1]).Err)
	require.NoError(t, engine.EndTurn(ids[1]).Err)
	assert.Equal(t, ids[2], store.GetState().CurrentPlayerID)

	// Wrap-around back to the first player.
	require.NoError(t, engine.TakeTurn(ids[2]).Err)
	require.NoError(t, engine.EndTurn(ids[2]).Err)
	assert.Equal(t, ids[0], store.GetState().CurrentPlayerID)
}

func TestEngine_SkipTurnModifierConsumedOnAdvance(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 3)
	store := engine.Store()

	require.NoError(t, store.AddSkipTurns(ids[1], 1))

	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	require.NoError(t, engine.EndTurn(ids[0]).Err)

	// Bob's skip was consumed; play passes straight to Carol.
	assert.Equal(t, ids[2], store.GetState().CurrentPlayerID)
	assert.False(t, store.ConsumeSkipTurn(ids[1]))
}

func TestEngine_WinOnEndingSpace(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 2)
	store := engine.Store()

	// Alice: START -> MID.
	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	require.NoError(t, engine.EndTurn(ids[0]).Err)
	// Bob: START -> MID.
	require.NoError(t, engine.TakeTurn(ids[1]).Err)
	require.NoError(t, engine.EndTurn(ids[1]).Err)
	// Alice: MID -> FINISH, and the end-of-turn check crowns her.
	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	result := engine.EndTurn(ids[0])
	require.NoError(t, result.Err)

	gs := store.GetState()
	assert.True(t, gs.IsGameOver)
	assert.Equal(t, state.PhaseEnd, gs.GamePhase)
	assert.Equal(t, ids[0], gs.Winner)
	// The current player is left in place for final inspection.
	assert.Equal(t, ids[0], gs.CurrentPlayerID)

	// Nothing moves after the game ends.
	res := engine.TakeTurn(ids[1])
	var phaseErr *state.InvalidPhaseError
	assert.ErrorAs(t, res.Err, &phaseErr)
}

func TestEngine_ChoiceSuspendsTurnUntilResolved(t *testing.T) {
	provider := boardFixture().AddMovement(data.MovementRecord{
		Space: "START", VisitType: "First", MovementType: data.MovementChoice,
		Destination1: "MID", Destination2: "FINISH",
	})
	engine, ids := newEngineFixture(t, provider, 2)
	store := engine.Store()

	require.NoError(t, engine.TakeTurn(ids[0]).Err)

	ch := store.GetState().AwaitingChoice
	require.NotNil(t, ch)

	// The turn cannot end while the choice is outstanding.
	result := engine.EndTurn(ids[0])
	var incomplete *state.IncompleteTurnError
	require.ErrorAs(t, result.Err, &incomplete)
	assert.True(t, incomplete.AwaitingChoice)

	require.NoError(t, engine.ResolveChoice(ch.ID, "MID"))
	p, err := store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "MID", p.CurrentSpace)
	assert.Equal(t, state.VisitFirst, p.VisitType)

	require.NoError(t, engine.EndTurn(ids[0]).Err)
	assert.Equal(t, ids[1], store.GetState().CurrentPlayerID)
}

func TestEngine_ArrivalSpaceEffectsApply(t *testing.T) {
	provider := boardFixture().AddSpaceEffect(data.SpaceEffectRow{
		Space: "START", VisitType: "First",
		EffectType: "money", EffectAction: "add", EffectValue: "500",
		TriggerType: "auto",
	})
	engine, ids := newEngineFixture(t, provider, 2)

	require.NoError(t, engine.TakeTurn(ids[0]).Err)

	p, err := engine.Store().GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1500, p.Money)
}

func TestEngine_ConditionalSpaceEffectSkipped(t *testing.T) {
	provider := boardFixture().AddSpaceEffect(data.SpaceEffectRow{
		Space: "START", VisitType: "First",
		EffectType: "money", EffectAction: "add", EffectValue: "500",
		Condition: "money > 5000", TriggerType: "auto",
	})
	engine, ids := newEngineFixture(t, provider, 2)

	require.NoError(t, engine.TakeTurn(ids[0]).Err)

	p, err := engine.Store().GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Money)
}

func TestEngine_DiceEffectAppliesRolledOutcome(t *testing.T) {
	provider := boardFixture().AddDiceEffect(data.DiceEffectRow{
		Space: "START", VisitType: "First", CardType: "W",
		Roll1: "Draw 1", Roll2: "Draw 1", Roll3: "Draw 1",
		Roll4: "Draw 1", Roll5: "Draw 1", Roll6: "Draw 1",
	})
	engine, ids := newEngineFixture(t, provider, 2)

	require.NoError(t, engine.TakeTurn(ids[0]).Err)

	p, err := engine.Store().GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Len(t, p.Available[state.CardWork], 1)
}

func TestEngine_ManualActionsAreRequired(t *testing.T) {
	provider := boardFixture().AddSpaceEffect(data.SpaceEffectRow{
		Space: "START", VisitType: "First",
		EffectType: "cards", EffectAction: "draw_w", EffectValue: "1",
		TriggerType: "manual",
	})
	engine, ids := newEngineFixture(t, provider, 2)
	store := engine.Store()

	require.NoError(t, engine.TakeTurn(ids[0]).Err)

	gs := store.GetState()
	assert.Equal(t, 2, gs.RequiredActions)
	assert.Equal(t, 1, gs.CompletedActions)

	// Manual work is still owed.
	result := engine.EndTurn(ids[0])
	var incomplete *state.IncompleteTurnError
	require.ErrorAs(t, result.Err, &incomplete)

	// The owed rows belong to the space the turn started from, even
	// though the player has already moved to MID.
	rows, err := engine.ManualActions(ids[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, engine.PerformManualAction(ids[0], 0).Err)
	p, err := store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "MID", p.CurrentSpace)
	assert.Len(t, p.Available[state.CardWork], 1)

	require.NoError(t, engine.EndTurn(ids[0]).Err)
	assert.Equal(t, ids[1], store.GetState().CurrentPlayerID)
}

func TestEngine_PlayCard(t *testing.T) {
	provider := boardFixture().
		AddCard(data.Card{ID: "L001", Name: "Permit Filing", Type: state.CardLegal, Cost: 300})
	engine, ids := newEngineFixture(t, provider, 2)
	store := engine.Store()

	require.NoError(t, store.UpdatePlayer(ids[0], state.PlayerUpdate{
		Available: map[state.CardType][]string{state.CardLegal: {"L001_aaaa"}},
	}))

	result := engine.PlayCard(ids[0], "L001_aaaa")
	require.NoError(t, result.Err)

	p, err := store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 700, p.Money)
	assert.Equal(t, []string{"L001_aaaa"}, p.Discarded[state.CardLegal])
}

func TestEngine_EndTurnBillsInterestAndSweepsCards(t *testing.T) {
	engine, ids := newEngineFixture(t, boardFixture(), 2)
	store := engine.Store()

	_, err := engine.Ledger().TakeLoan(ids[0], 1000, 0.05)
	require.NoError(t, err)
	require.NoError(t, store.UpdatePlayer(ids[0], state.PlayerUpdate{
		Active: []state.ActiveCard{{CardID: "E001_aaaa", ExpirationTurn: 1}},
	}))

	require.NoError(t, engine.TakeTurn(ids[0]).Err)
	require.NoError(t, engine.EndTurn(ids[0]).Err)

	p, err := store.GetPlayer(ids[0])
	require.NoError(t, err)
	// 1000 starting + 1000 principal - 50 interest.
	assert.Equal(t, 1950, p.Money)
	assert.Empty(t, p.Active)
	assert.Equal(t, []string{"E001_aaaa"}, p.Discarded[state.CardEquipment])
}
