// Package ledger performs all money and time mutation for players:
// validated add/spend operations, a bounded per-player transaction
// history, and loans with best-effort interest collection.
package ledger

import (
	"math"

	"github.com/google/uuid"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// maxTransactions bounds the per-player history to the most recent entries.
const maxTransactions = 100

// Transaction kinds recorded in the history.
const (
	KindMoneyAdd   = "money_add"
	KindMoneySpend = "money_spend"
	KindTimeAdd    = "time_add"
	KindTimeSpend  = "time_spend"
	KindLoan       = "loan"
	KindInterest   = "interest"
)

// Ledger mutates player economy through the state store.
type Ledger struct {
	store  *state.Store
	logger *zap.Logger
}

// NewLedger creates a ledger bound to the given store.
func NewLedger(store *state.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger}
}

// AddMoney credits the player and records the source in the money-source
// breakdown. The amount must be positive.
func (l *Ledger) AddMoney(playerID string, amount int, source string) error {
	if amount <= 0 {
		return state.NewValidationError("money amount must be positive, got %d", amount)
	}
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	before := p.Money
	after := before + amount
	update := state.PlayerUpdate{
		Money:        &after,
		MoneySources: map[string]int{source: p.MoneySources[source] + amount},
		Transactions: appendTransaction(p.Transactions, state.Transaction{
			ID:     uuid.NewString(),
			Turn:   l.currentTurn(),
			Kind:   KindMoneyAdd,
			Amount: amount,
			Source: source,
			Before: before,
			After:  after,
		}),
	}
	if err := l.store.UpdatePlayer(playerID, update); err != nil {
		return err
	}
	l.logger.Debug("money added",
		zap.String("player_id", playerID),
		zap.Int("amount", amount),
		zap.String("source", source),
	)
	return nil
}

// SpendMoney debits the player, recording the spend under its cost
// category. Returns false without mutating when the player cannot
// afford the amount.
func (l *Ledger) SpendMoney(playerID string, amount int, source string) (bool, error) {
	if amount <= 0 {
		return false, state.NewValidationError("money amount must be positive, got %d", amount)
	}
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return false, err
	}
	if p.Money < amount {
		return false, nil
	}
	before := p.Money
	after := before - amount
	update := state.PlayerUpdate{
		Money:          &after,
		CostByCategory: map[string]int{source: p.CostByCategory[source] + amount},
		Transactions: appendTransaction(p.Transactions, state.Transaction{
			ID:     uuid.NewString(),
			Turn:   l.currentTurn(),
			Kind:   KindMoneySpend,
			Amount: amount,
			Source: source,
			Before: before,
			After:  after,
		}),
	}
	if err := l.store.UpdatePlayer(playerID, update); err != nil {
		return false, err
	}
	return true, nil
}

// AddTime recovers time for the player, reducing the running time-spent
// counter without driving it below zero.
func (l *Ledger) AddTime(playerID string, amount int, source string) error {
	if amount <= 0 {
		return state.NewValidationError("time amount must be positive, got %d", amount)
	}
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	before := p.TimeSpent
	after := before - amount
	if after < 0 {
		after = 0
	}
	update := state.PlayerUpdate{
		TimeSpent: &after,
		Transactions: appendTransaction(p.Transactions, state.Transaction{
			ID:     uuid.NewString(),
			Turn:   l.currentTurn(),
			Kind:   KindTimeAdd,
			Amount: amount,
			Source: source,
			Before: before,
			After:  after,
		}),
	}
	return l.store.UpdatePlayer(playerID, update)
}

// SpendTime charges time against the player, growing the time-spent
// counter. Time spending always succeeds for a valid player.
func (l *Ledger) SpendTime(playerID string, amount int, source string) (bool, error) {
	if amount <= 0 {
		return false, state.NewValidationError("time amount must be positive, got %d", amount)
	}
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return false, err
	}
	before := p.TimeSpent
	after := before + amount
	update := state.PlayerUpdate{
		TimeSpent: &after,
		Transactions: appendTransaction(p.Transactions, state.Transaction{
			ID:     uuid.NewString(),
			Turn:   l.currentTurn(),
			Kind:   KindTimeSpend,
			Amount: amount,
			Source: source,
			Before: before,
			After:  after,
		}),
	}
	if err := l.store.UpdatePlayer(playerID, update); err != nil {
		return false, err
	}
	return true, nil
}

// TakeLoan credits the principal and appends a loan record. Returns the
// new loan's id.
func (l *Ledger) TakeLoan(playerID string, principal int, rate float64) (string, error) {
	if principal <= 0 {
		return "", state.NewValidationError("loan principal must be positive, got %d", principal)
	}
	if rate < 0 {
		return "", state.NewValidationError("loan rate must not be negative, got %f", rate)
	}
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return "", err
	}
	loanID := uuid.NewString()
	turn := l.currentTurn()
	before := p.Money
	after := before + principal
	update := state.PlayerUpdate{
		Money:        &after,
		MoneySources: map[string]int{KindLoan: p.MoneySources[KindLoan] + principal},
		Loans: append(append([]state.Loan(nil), p.Loans...), state.Loan{
			ID:        loanID,
			Principal: principal,
			Rate:      rate,
			StartTurn: turn,
		}),
		Transactions: appendTransaction(p.Transactions, state.Transaction{
			ID:     uuid.NewString(),
			Turn:   turn,
			Kind:   KindLoan,
			Amount: principal,
			Source: KindLoan,
			Before: before,
			After:  after,
		}),
	}
	if err := l.store.UpdatePlayer(playerID, update); err != nil {
		return "", err
	}
	l.logger.Info("loan taken",
		zap.String("player_id", playerID),
		zap.Int("principal", principal),
		zap.Float64("rate", rate),
	)
	return loanID, nil
}

// ApplyInterest charges the interest due across all of the player's
// loans, collecting what the player can afford. Any shortfall is
// forgiven rather than carried forward. Returns the amount collected.
func (l *Ledger) ApplyInterest(playerID string) (int, error) {
	p, err := l.store.GetPlayer(playerID)
	if err != nil {
		return 0, err
	}
	due := 0
	for _, loan := range p.Loans {
		due += int(math.Round(float64(loan.Principal) * loan.Rate))
	}
	if due == 0 {
		return 0, nil
	}
	charge := due
	if charge > p.Money {
		charge = p.Money
	}
	if charge < due {
		l.logger.Info("interest shortfall forgiven",
			zap.String("player_id", playerID),
			zap.Int("due", due),
			zap.Int("collected", charge),
		)
	}
	if charge == 0 {
		return 0, nil
	}
	ok, err := l.SpendMoney(playerID, charge, KindInterest)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return charge, nil
}

func (l *Ledger) currentTurn() int {
	return l.store.GetState().Turn
}

// appendTransaction appends an entry, dropping the oldest entries past
// the history bound.
func appendTransaction(history []state.Transaction, tx state.Transaction) []state.Transaction {
	out := append(append([]state.Transaction(nil), history...), tx)
	if len(out) > maxTransactions {
		out = out[len(out)-maxTransactions:]
	}
	return out
}
