package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore(Options{
		StartingSpace: "OWNER-SCOPE-INITIATION",
		StartingMoney: 1000,
		StartingTime:  0,
	}, zap.NewNop())
}

func TestStore_AddPlayer(t *testing.T) {
	store := newTestStore()

	id, err := store.AddPlayer("Alice", "#007bff", "👷")
	require.NoError(t, err)

	p, err := store.GetPlayer(id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "OWNER-SCOPE-INITIATION", p.CurrentSpace)
	assert.Equal(t, VisitFirst, p.VisitType)
	assert.Equal(t, 1000, p.Money)
	assert.Equal(t, []string{"OWNER-SCOPE-INITIATION"}, p.VisitedSpaces)
}

func TestStore_AddPlayerOutsideSetup(t *testing.T) {
	store := newTestStore()
	_, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)
	require.NoError(t, store.StartGame())

	_, err = store.AddPlayer("Bob", "", "")
	require.Error(t, err)
	var phaseErr *InvalidPhaseError
	assert.ErrorAs(t, err, &phaseErr)
}

func TestStore_AppearanceCollisionResolved(t *testing.T) {
	store := newTestStore()

	a, err := store.AddPlayer("Alice", "#007bff", "👷")
	require.NoError(t, err)
	b, err := store.AddPlayer("Bob", "#007bff", "👷")
	require.NoError(t, err)

	pa, _ := store.GetPlayer(a)
	pb, _ := store.GetPlayer(b)
	assert.NotEqual(t, pa.Color, pb.Color)
	assert.NotEqual(t, pa.Avatar, pb.Avatar)

	// Collisions introduced by updates are also resolved.
	err = store.UpdatePlayer(b, PlayerUpdate{Color: &pa.Color})
	require.NoError(t, err)
	pb, _ = store.GetPlayer(b)
	assert.NotEqual(t, pa.Color, pb.Color)
}

func TestStore_UpdatePlayerMergesCardMaps(t *testing.T) {
	store := newTestStore()
	id, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)

	err = store.UpdatePlayer(id, PlayerUpdate{
		Available: map[CardType][]string{CardWork: {"W001_aaaa"}},
	})
	require.NoError(t, err)
	err = store.UpdatePlayer(id, PlayerUpdate{
		Available: map[CardType][]string{CardEquipment: {"E001_bbbb"}},
	})
	require.NoError(t, err)

	p, _ := store.GetPlayer(id)
	assert.Equal(t, []string{"W001_aaaa"}, p.Available[CardWork])
	assert.Equal(t, []string{"E001_bbbb"}, p.Available[CardEquipment])
}

func TestStore_UpdateUnknownPlayer(t *testing.T) {
	store := newTestStore()
	err := store.UpdatePlayer("missing", PlayerUpdate{})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStore_GetStateReturnsIsolatedCopy(t *testing.T) {
	store := newTestStore()
	id, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)

	gs := store.GetState()
	gs.Player(id).Money = 0
	gs.Players[0].Available[CardWork] = []string{"W999_zzzz"}

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 1000, p.Money)
	assert.Empty(t, p.Available[CardWork])
}

func TestStore_SubscribeNotifiesOnMutation(t *testing.T) {
	store := newTestStore()
	var seen []GamePhase
	unsubscribe := store.Subscribe(func(gs *GameState) {
		seen = append(seen, gs.GamePhase)
	})

	_, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)
	require.NoError(t, store.StartGame())
	assert.Equal(t, []GamePhase{PhaseSetup, PhasePlay}, seen)

	unsubscribe()
	require.NoError(t, store.MarkPlayerMoved())
	assert.Len(t, seen, 2)
}

func TestStore_StartAndEndGame(t *testing.T) {
	store := newTestStore()

	// A game with no players cannot start.
	err := store.StartGame()
	require.Error(t, err)

	id, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)
	require.NoError(t, store.StartGame())

	gs := store.GetState()
	assert.Equal(t, PhasePlay, gs.GamePhase)
	assert.Equal(t, id, gs.CurrentPlayerID)
	assert.Equal(t, 1, gs.Turn)

	require.NoError(t, store.EndGame(id))
	gs = store.GetState()
	assert.True(t, gs.IsGameOver)
	assert.Equal(t, id, gs.Winner)
	assert.Equal(t, PhaseEnd, gs.GamePhase)

	// END phase is immutable.
	err = store.UpdatePlayer(id, PlayerUpdate{})
	var phaseErr *InvalidPhaseError
	assert.ErrorAs(t, err, &phaseErr)
}

func TestStore_AdvanceTurnResetsPerTurnState(t *testing.T) {
	store := newTestStore()
	a, _ := store.AddPlayer("Alice", "", "")
	b, _ := store.AddPlayer("Bob", "", "")
	require.NoError(t, store.StartGame())

	require.NoError(t, store.MarkPlayerMoved())
	require.NoError(t, store.SetActionCounts(2, 2))
	require.NoError(t, store.AdvanceTurn(b))

	gs := store.GetState()
	assert.Equal(t, b, gs.CurrentPlayerID)
	assert.Equal(t, 2, gs.Turn)
	assert.False(t, gs.HasPlayerMovedThisTurn)
	assert.Zero(t, gs.RequiredActions)
	assert.Zero(t, gs.CompletedActions)
	assert.Equal(t, b, gs.NextPlayerID(a))
	assert.Equal(t, a, gs.NextPlayerID(b))
}

func TestStore_SingleAwaitingChoice(t *testing.T) {
	store := newTestStore()
	id, _ := store.AddPlayer("Alice", "", "")

	choice := &Choice{
		ID:       "c1",
		PlayerID: id,
		Type:     ChoiceMovement,
		Options:  []ChoiceOption{{ID: "X", Label: "X"}, {ID: "Y", Label: "Y"}},
	}
	require.NoError(t, store.SetAwaitingChoice(choice))

	err := store.SetAwaitingChoice(&Choice{ID: "c2", PlayerID: id, Type: ChoiceGeneral, Options: []ChoiceOption{{ID: "a"}}})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	require.NoError(t, store.ClearAwaitingChoice())
	assert.Nil(t, store.GetState().AwaitingChoice)
}

func TestStore_SkipTurnModifiers(t *testing.T) {
	store := newTestStore()
	id, _ := store.AddPlayer("Alice", "", "")

	assert.False(t, store.ConsumeSkipTurn(id))
	require.NoError(t, store.AddSkipTurns(id, 2))
	assert.True(t, store.ConsumeSkipTurn(id))
	assert.True(t, store.ConsumeSkipTurn(id))
	assert.False(t, store.ConsumeSkipTurn(id))
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	store := newTestStore()
	id, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)

	err = store.UpdatePlayer(id, PlayerUpdate{
		Available: map[CardType][]string{CardWork: {"W001_aaaa"}},
		Active:    []ActiveCard{{CardID: "E001_bbbb", ExpirationTurn: 5}},
		Discarded: map[CardType][]string{CardLegal: {"L001_cccc"}},
	})
	require.NoError(t, err)
	require.NoError(t, store.CreatePlayerSnapshot(id))

	// Mutate everything the snapshot protects.
	space := "PM-DECISION-CHECK"
	visit := VisitSubsequent
	money := 250
	timeSpent := 9
	err = store.UpdatePlayer(id, PlayerUpdate{
		CurrentSpace: &space,
		VisitType:    &visit,
		Money:        &money,
		TimeSpent:    &timeSpent,
		Available:    map[CardType][]string{CardWork: {}},
		Active:       []ActiveCard{},
		Discarded:    map[CardType][]string{CardLegal: {"L001_cccc", "L002_dddd"}},
	})
	require.NoError(t, err)

	require.NoError(t, store.RestorePlayerSnapshot(id))
	p, err := store.GetPlayer(id)
	require.NoError(t, err)
	assert.Equal(t, "OWNER-SCOPE-INITIATION", p.CurrentSpace)
	assert.Equal(t, VisitFirst, p.VisitType)
	assert.Equal(t, 1000, p.Money)
	assert.Equal(t, 0, p.TimeSpent)
	assert.Equal(t, []string{"W001_aaaa"}, p.Available[CardWork])
	assert.Equal(t, []ActiveCard{{CardID: "E001_bbbb", ExpirationTurn: 5}}, p.Active)
	assert.Equal(t, []string{"L001_cccc"}, p.Discarded[CardLegal])
	assert.Nil(t, p.Snapshot)

	// Restoring twice is a NotFoundError.
	err = store.RestorePlayerSnapshot(id)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestPlayer_FindCard(t *testing.T) {
	p := NewPlayer("p1", "Alice", "", "", "START", 0, 0)
	p.Available[CardWork] = []string{"W001_aaaa"}
	p.Active = []ActiveCard{{CardID: "E001_bbbb", ExpirationTurn: 3}}
	p.Discarded[CardLegal] = []string{"L001_cccc"}

	assert.Equal(t, CardLocationAvailable, p.FindCard("W001_aaaa"))
	assert.Equal(t, CardLocationActive, p.FindCard("E001_bbbb"))
	assert.Equal(t, CardLocationDiscarded, p.FindCard("L001_cccc"))
	assert.Equal(t, CardLocationNone, p.FindCard("I001_dddd"))
}

func TestCardTypeOf(t *testing.T) {
	for _, tc := range []struct {
		id   string
		want CardType
		ok   bool
	}{
		{"W001_aaaa", CardWork, true},
		{"B002", CardBusiness, true},
		{"E003", CardEquipment, true},
		{"L004", CardLegal, true},
		{"I005", CardInvestment, true},
		{"X001", "", false},
		{"", "", false},
	} {
		got, ok := CardTypeOf(tc.id)
		assert.Equal(t, tc.ok, ok, tc.id)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.id)
		}
	}
}
