// Package cards moves card identifiers between a player's available,
// active, and discarded collections and resolves the per-card-type play
// effects. A card identifier lives in exactly one collection at a time.
package cards

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/ledger"
	"github.com/unravel-games/code2027-server-go/internal/game/parse"
	"github.com/unravel-games/code2027-server-go/internal/game/rules"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// Sources tagged on ledger entries originated by card play.
const (
	sourceCardPlay  = "card_play"
	sourceCardGrant = "card_grant"
	sourceEquipment = "equipment"
)

// defaultGrantAmount is the fallback money grant for Business and
// Investment cards whose name matches no known pattern.
const defaultGrantAmount = 50000

// namedGrantAmounts maps known card-name fragments to flat money grants.
// First match in order wins.
var namedGrantAmounts = []struct {
	fragment string
	amount   int
}{
	{"venture capital", 200000},
	{"angel investor", 100000},
	{"city bond", 150000},
	{"federal grant", 75000},
	{"small business", 50000},
	{"crowdfunding", 25000},
}

// Rand is the subset of math/rand the manager draws from.
type Rand interface {
	Intn(n int) int
}

// Manager owns the card lifecycle for every player.
type Manager struct {
	store     *state.Store
	ledger    *ledger.Ledger
	provider  data.Provider
	validator *rules.Validator
	rng       Rand
	logger    *zap.Logger
}

// NewManager creates a card lifecycle manager.
func NewManager(store *state.Store, lg *ledger.Ledger, provider data.Provider, validator *rules.Validator, rng Rand, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:     store,
		ledger:    lg,
		provider:  provider,
		validator: validator,
		rng:       rng,
		logger:    logger,
	}
}

// Draw appends count newly generated card identifiers of the given type
// to the player's available pile and returns them. Each identifier
// embeds the definition id of a randomly selected card of that type.
func (m *Manager) Draw(playerID string, t state.CardType, count int) ([]string, error) {
	if !state.IsValidCardType(t) {
		return nil, &state.UnknownTypeError{Kind: "card", Value: string(t)}
	}
	if count <= 0 {
		return nil, state.NewValidationError("draw count must be positive, got %d", count)
	}
	defs := m.provider.GetCardsByType(t)
	if len(defs) == 0 {
		return nil, state.NewNotFoundError("card definitions for type", string(t))
	}
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	drawn := make([]string, 0, count)
	pile := append([]string(nil), p.Available[t]...)
	for i := 0; i < count; i++ {
		def := defs[m.rng.Intn(len(defs))]
		id := newInstanceID(def.ID)
		drawn = append(drawn, id)
		pile = append(pile, id)
	}
	update := state.PlayerUpdate{Available: map[state.CardType][]string{t: pile}}
	if err := m.store.UpdatePlayer(playerID, update); err != nil {
		return nil, err
	}
	m.logger.Debug("cards drawn",
		zap.String("player_id", playerID),
		zap.String("card_type", string(t)),
		zap.Strings("card_ids", drawn),
	)
	return drawn, nil
}

// Remove deletes a card from whichever collection holds it, searching
// available, then active, then discarded. Removing an absent card is a
// NotFoundError and changes nothing.
func (m *Manager) Remove(playerID, cardID string) error {
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	t, _ := state.CardTypeOf(cardID)

	if ids, ok := removeFromPile(p.Available[t], cardID); ok {
		return m.store.UpdatePlayer(playerID, state.PlayerUpdate{
			Available: map[state.CardType][]string{t: ids},
		})
	}
	for i, ac := range p.Active {
		if ac.CardID == cardID {
			active := make([]state.ActiveCard, 0, len(p.Active)-1)
			active = append(active, p.Active[:i]...)
			active = append(active, p.Active[i+1:]...)
			return m.store.UpdatePlayer(playerID, state.PlayerUpdate{Active: active})
		}
	}
	if ids, ok := removeFromPile(p.Discarded[t], cardID); ok {
		return m.store.UpdatePlayer(playerID, state.PlayerUpdate{
			Discarded: map[state.CardType][]string{t: ids},
		})
	}
	return state.NewNotFoundError("card", cardID)
}

// Discard moves up to count cards of a type from the player's available
// pile to the discarded pile, oldest first. Returns the moved ids.
func (m *Manager) Discard(playerID string, t state.CardType, count int) ([]string, error) {
	if !state.IsValidCardType(t) {
		return nil, &state.UnknownTypeError{Kind: "card", Value: string(t)}
	}
	if count <= 0 {
		return nil, state.NewValidationError("discard count must be positive, got %d", count)
	}
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	pile := p.Available[t]
	if count > len(pile) {
		count = len(pile)
	}
	moved := append([]string(nil), pile[:count]...)
	update := state.PlayerUpdate{
		Available: map[state.CardType][]string{t: append([]string(nil), pile[count:]...)},
		Discarded: map[state.CardType][]string{t: append(append([]string(nil), p.Discarded[t]...), moved...)},
	}
	if err := m.store.UpdatePlayer(playerID, update); err != nil {
		return nil, err
	}
	return moved, nil
}

// Play validates ownership, turn, affordability, and phase restriction,
// deducts the card's cost, applies its type-specific effect, then either
// activates the card for its duration or discards it immediately.
func (m *Manager) Play(playerID, cardID string) error {
	if !m.validator.CanPlayCard(playerID, cardID) {
		return state.NewValidationError("player %s cannot play card %s", playerID, cardID)
	}
	def, ok := rules.LookupCard(m.provider, cardID)
	if !ok {
		return state.NewNotFoundError("card definition", cardID)
	}
	if def.Cost > 0 {
		ok, err := m.ledger.SpendMoney(playerID, def.Cost, sourceCardPlay)
		if err != nil {
			return err
		}
		if !ok {
			return state.NewValidationError("player %s cannot afford card %s", playerID, cardID)
		}
	}

	if err := m.applyPlayEffect(playerID, cardID, def); err != nil {
		return err
	}

	duration := def.DurationTurns()
	if duration > 0 {
		expiration := m.store.GetState().Turn + duration
		return m.Activate(playerID, cardID, expiration)
	}
	return m.moveToDiscarded(playerID, cardID)
}

// Activate moves a card from the available pile into the active list
// with the given expiration turn.
func (m *Manager) Activate(playerID, cardID string, expirationTurn int) error {
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	t, _ := state.CardTypeOf(cardID)
	ids, ok := removeFromPile(p.Available[t], cardID)
	if !ok {
		return state.NewNotFoundError("available card", cardID)
	}
	update := state.PlayerUpdate{
		Available: map[state.CardType][]string{t: ids},
		Active: append(append([]state.ActiveCard(nil), p.Active...), state.ActiveCard{
			CardID:         cardID,
			ExpirationTurn: expirationTurn,
		}),
	}
	if err := m.store.UpdatePlayer(playerID, update); err != nil {
		return err
	}
	m.logger.Info("card activated",
		zap.String("player_id", playerID),
		zap.String("card_id", cardID),
		zap.Int("expiration_turn", expirationTurn),
	)
	return nil
}

// Replace removes a card and draws one new card of the given type.
func (m *Manager) Replace(playerID, oldCardID string, newType state.CardType) ([]string, error) {
	if err := m.Remove(playerID, oldCardID); err != nil {
		return nil, err
	}
	return m.Draw(playerID, newType, 1)
}

// Transfer hands a card from one player's available pile to another's.
// Only Equipment and Legal cards may change owners.
func (m *Manager) Transfer(sourceID, targetID, cardID string) error {
	t, ok := state.CardTypeOf(cardID)
	if !ok {
		return &state.UnknownTypeError{Kind: "card", Value: cardID}
	}
	if t != state.CardEquipment && t != state.CardLegal {
		return state.NewValidationError("%s cards are not transferable", t)
	}
	src, err := m.store.GetPlayer(sourceID)
	if err != nil {
		return err
	}
	tgt, err := m.store.GetPlayer(targetID)
	if err != nil {
		return err
	}
	ids, ok := removeFromPile(src.Available[t], cardID)
	if !ok {
		return state.NewNotFoundError("available card", cardID)
	}
	if err := m.store.UpdatePlayer(sourceID, state.PlayerUpdate{
		Available: map[state.CardType][]string{t: ids},
	}); err != nil {
		return err
	}
	return m.store.UpdatePlayer(targetID, state.PlayerUpdate{
		Available: map[state.CardType][]string{t: append(append([]string(nil), tgt.Available[t]...), cardID)},
	})
}

// SweepExpired moves every active card whose expiration turn has been
// reached into its owner's discarded pile. Run once per turn end.
func (m *Manager) SweepExpired(currentTurn int) error {
	gs := m.store.GetState()
	for _, p := range gs.Players {
		var kept []state.ActiveCard
		expired := make(map[state.CardType][]string)
		for _, ac := range p.Active {
			if ac.ExpirationTurn <= currentTurn {
				t, _ := state.CardTypeOf(ac.CardID)
				expired[t] = append(expired[t], ac.CardID)
			} else {
				kept = append(kept, ac)
			}
		}
		if len(expired) == 0 {
			continue
		}
		discarded := make(map[state.CardType][]string, len(expired))
		for t, ids := range expired {
			discarded[t] = append(append([]string(nil), p.Discarded[t]...), ids...)
			m.logger.Info("active cards expired",
				zap.String("player_id", p.ID),
				zap.String("card_type", string(t)),
				zap.Strings("card_ids", ids),
			)
		}
		if kept == nil {
			kept = []state.ActiveCard{}
		}
		if err := m.store.UpdatePlayer(p.ID, state.PlayerUpdate{
			Active:    kept,
			Discarded: discarded,
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateScope recomputes the player's project scope as the sum of
// the nominal contributions of their Work cards, available and active.
func (m *Manager) RecalculateScope(playerID string) error {
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	scope := 0
	for _, id := range p.Available[state.CardWork] {
		scope += m.workContribution(id)
	}
	for _, ac := range p.Active {
		if t, _ := state.CardTypeOf(ac.CardID); t == state.CardWork {
			scope += m.workContribution(ac.CardID)
		}
	}
	return m.store.UpdatePlayer(playerID, state.PlayerUpdate{ProjectScope: &scope})
}

// workContribution reads a Work card's nominal project-scope value from
// its definition: the explicit work cost when present, otherwise the
// dollar figure embedded in the description.
func (m *Manager) workContribution(cardID string) int {
	def, ok := rules.LookupCard(m.provider, cardID)
	if !ok {
		return 0
	}
	if def.WorkCost > 0 {
		return def.WorkCost
	}
	if n, ok := parse.Dollars(def.Description); ok {
		return n
	}
	return 0
}

func (m *Manager) applyPlayEffect(playerID, cardID string, def *data.Card) error {
	switch def.Type {
	case state.CardWork:
		return m.RecalculateScope(playerID)
	case state.CardBusiness, state.CardInvestment:
		return m.applyFundingEffect(playerID, def)
	case state.CardEquipment:
		return m.applyEquipmentEffect(playerID, def)
	case state.CardLegal:
		// Legal cards are informational; compliance is logged, nothing mutates.
		m.logger.Info("legal card played",
			zap.String("player_id", playerID),
			zap.String("card_id", cardID),
			zap.String("card_name", def.Name),
		)
		return nil
	}
	return &state.UnknownTypeError{Kind: "card", Value: string(def.Type)}
}

// applyFundingEffect credits a Business or Investment card's funding.
// Cards carrying a loan take one out at the stated rate, so the
// principal accrues interest at turn end. Cards with a flat investment
// amount credit it directly; anything else falls back to the grant
// table keyed by name.
func (m *Manager) applyFundingEffect(playerID string, def *data.Card) error {
	if def.LoanAmount > 0 {
		_, err := m.ledger.TakeLoan(playerID, def.LoanAmount, def.LoanRate)
		return err
	}
	if def.InvestmentAmount > 0 {
		return m.ledger.AddMoney(playerID, def.InvestmentAmount, sourceCardGrant)
	}
	return m.ledger.AddMoney(playerID, grantAmountFor(def.Name), sourceCardGrant)
}

// applyEquipmentEffect interprets the free-text effect of an Equipment
// card: money gains, time-unit gains, and card draws from a random type.
func (m *Manager) applyEquipmentEffect(playerID string, def *data.Card) error {
	text := def.EffectsOnPlay
	if strings.TrimSpace(text) == "" {
		text = def.Description
	}
	if n, ok := parse.GainedDollars(text); ok && n > 0 {
		if err := m.ledger.AddMoney(playerID, n, sourceEquipment); err != nil {
			return err
		}
	}
	if n, ok := parse.TimeUnits(text); ok && n > 0 {
		if err := m.ledger.AddTime(playerID, n, sourceEquipment); err != nil {
			return err
		}
	}
	if n, ok := parse.DrawCount(text); ok && n > 0 {
		if err := m.drawFromRandomType(playerID, n); err != nil {
			return err
		}
	}
	return nil
}

// drawFromRandomType draws from a randomly chosen card type, retrying a
// different type when the chosen one has no definitions.
func (m *Manager) drawFromRandomType(playerID string, count int) error {
	types := append([]state.CardType(nil), state.AllCardTypes...)
	start := m.rng.Intn(len(types))
	for i := 0; i < len(types); i++ {
		t := types[(start+i)%len(types)]
		if len(m.provider.GetCardsByType(t)) == 0 {
			continue
		}
		_, err := m.Draw(playerID, t, count)
		return err
	}
	return state.NewNotFoundError("card definitions", "any type")
}

func (m *Manager) moveToDiscarded(playerID, cardID string) error {
	p, err := m.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	t, _ := state.CardTypeOf(cardID)
	ids, ok := removeFromPile(p.Available[t], cardID)
	if !ok {
		return state.NewNotFoundError("available card", cardID)
	}
	return m.store.UpdatePlayer(playerID, state.PlayerUpdate{
		Available: map[state.CardType][]string{t: ids},
		Discarded: map[state.CardType][]string{t: append(append([]string(nil), p.Discarded[t]...), cardID)},
	})
}

// grantAmountFor selects the flat grant for a Business or Investment
// card by name fragment, falling back to the default amount.
func grantAmountFor(name string) int {
	lower := strings.ToLower(name)
	for _, entry := range namedGrantAmounts {
		if strings.Contains(lower, entry.fragment) {
			return entry.amount
		}
	}
	return defaultGrantAmount
}

func newInstanceID(defID string) string {
	return fmt.Sprintf("%s_%s", defID, uuid.NewString()[:8])
}

func removeFromPile(pile []string, cardID string) ([]string, bool) {
	for i, id := range pile {
		if id == cardID {
			return append(append([]string(nil), pile[:i]...), pile[i+1:]...), true
		}
	}
	return nil, false
}
