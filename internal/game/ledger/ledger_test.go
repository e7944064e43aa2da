package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

func newTestLedger(t *testing.T, startingMoney int) (*Ledger, *state.Store, string) {
	t.Helper()
	store := state.NewStore(state.Options{
		StartingSpace: "START",
		StartingMoney: startingMoney,
	}, zap.NewNop())
	id, err := store.AddPlayer("Alice", "", "")
	require.NoError(t, err)
	return NewLedger(store, zap.NewNop()), store, id
}

func TestLedger_AddMoney(t *testing.T) {
	l, store, id := newTestLedger(t, 100)

	require.NoError(t, l.AddMoney(id, 250, "grant"))

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 350, p.Money)
	assert.Equal(t, 250, p.MoneySources["grant"])
	require.Len(t, p.Transactions, 1)
	assert.Equal(t, KindMoneyAdd, p.Transactions[0].Kind)
	assert.Equal(t, 100, p.Transactions[0].Before)
	assert.Equal(t, 350, p.Transactions[0].After)

	err := l.AddMoney(id, 0, "grant")
	var vErr *state.ValidationError
	assert.ErrorAs(t, err, &vErr)
	err = l.AddMoney(id, -5, "grant")
	assert.ErrorAs(t, err, &vErr)
}

func TestLedger_SpendMoney(t *testing.T) {
	l, store, id := newTestLedger(t, 100)

	ok, err := l.SpendMoney(id, 60, "fees")
	require.NoError(t, err)
	assert.True(t, ok)

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 40, p.Money)
	assert.Equal(t, 60, p.CostByCategory["fees"])

	// An unaffordable spend fails without mutating anything.
	ok, err = l.SpendMoney(id, 41, "fees")
	require.NoError(t, err)
	assert.False(t, ok)

	p, _ = store.GetPlayer(id)
	assert.Equal(t, 40, p.Money)
	assert.Equal(t, 60, p.CostByCategory["fees"])
	assert.Len(t, p.Transactions, 1)
	assert.GreaterOrEqual(t, p.Money, 0)
}

func TestLedger_Time(t *testing.T) {
	l, store, id := newTestLedger(t, 0)

	ok, err := l.SpendTime(id, 5, "construction")
	require.NoError(t, err)
	assert.True(t, ok)
	p, _ := store.GetPlayer(id)
	assert.Equal(t, 5, p.TimeSpent)

	// Recovery clamps at zero rather than going negative.
	require.NoError(t, l.AddTime(id, 8, "expedite"))
	p, _ = store.GetPlayer(id)
	assert.Equal(t, 0, p.TimeSpent)
}

func TestLedger_TransactionHistoryIsBounded(t *testing.T) {
	l, store, id := newTestLedger(t, 0)

	for i := 0; i < 105; i++ {
		require.NoError(t, l.AddMoney(id, 1, fmt.Sprintf("source_%d", i)))
	}

	p, _ := store.GetPlayer(id)
	assert.Len(t, p.Transactions, 100)
	// Oldest entries were dropped; the newest survives.
	assert.Equal(t, "source_104", p.Transactions[99].Source)
	assert.Equal(t, "source_5", p.Transactions[0].Source)
}

func TestLedger_TakeLoan(t *testing.T) {
	l, store, id := newTestLedger(t, 0)

	loanID, err := l.TakeLoan(id, 1000, 0.05)
	require.NoError(t, err)
	assert.NotEmpty(t, loanID)

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 1000, p.Money)
	require.Len(t, p.Loans, 1)
	assert.Equal(t, 1000, p.Loans[0].Principal)
	assert.Equal(t, 0.05, p.Loans[0].Rate)

	_, err = l.TakeLoan(id, 0, 0.05)
	var vErr *state.ValidationError
	assert.ErrorAs(t, err, &vErr)
	_, err = l.TakeLoan(id, 100, -0.1)
	assert.ErrorAs(t, err, &vErr)
}

func TestLedger_ApplyInterest(t *testing.T) {
	l, store, id := newTestLedger(t, 0)

	_, err := l.TakeLoan(id, 1000, 0.05)
	require.NoError(t, err)
	_, err = l.TakeLoan(id, 500, 0.10)
	require.NoError(t, err)

	// 1000*0.05 + 500*0.10 = 100 due, fully affordable.
	collected, err := l.ApplyInterest(id)
	require.NoError(t, err)
	assert.Equal(t, 100, collected)

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 1400, p.Money)
	assert.Equal(t, 100, p.CostByCategory[KindInterest])
}

func TestLedger_ApplyInterestShortfallForgiven(t *testing.T) {
	l, store, id := newTestLedger(t, 0)

	_, err := l.TakeLoan(id, 1000, 0.05)
	require.NoError(t, err)

	// Drain the balance below the 50 due.
	ok, err := l.SpendMoney(id, 970, "construction")
	require.NoError(t, err)
	require.True(t, ok)

	collected, err := l.ApplyInterest(id)
	require.NoError(t, err)
	assert.Equal(t, 30, collected)

	p, _ := store.GetPlayer(id)
	assert.Equal(t, 0, p.Money)

	// The shortfall is forgiven, not carried: next cycle bills fresh.
	collected, err = l.ApplyInterest(id)
	require.NoError(t, err)
	assert.Equal(t, 0, collected)
	p, _ = store.GetPlayer(id)
	assert.Equal(t, 0, p.Money)
}

func TestLedger_NoLoansNoInterest(t *testing.T) {
	l, _, id := newTestLedger(t, 500)
	collected, err := l.ApplyInterest(id)
	require.NoError(t, err)
	assert.Zero(t, collected)
}
