package data

import (
	"strings"

	"github.com/unravel-games/code2027-server-go/internal/game/state"
)

// Provider is the read-only query surface the rules engine consumes.
// Implementations perform no game logic.
type Provider interface {
	GetMovement(space string, visit state.VisitType) (*MovementRecord, bool)
	GetDiceOutcome(space string, visit state.VisitType) (*DiceOutcome, bool)
	GetSpaceEffects(space string, visit state.VisitType) []SpaceEffectRow
	GetDiceEffects(space string, visit state.VisitType) []DiceEffectRow
	GetGameConfigBySpace(space string) (*SpaceConfig, bool)
	GetCardByID(id string) (*Card, bool)
	GetCardsByType(t state.CardType) []*Card
}

type visitKey struct {
	space string
	visit state.VisitType
}

// Fixture is an in-memory Provider assembled by hand. Tests use it the
// same way the engine uses a loaded Dataset.
type Fixture struct {
	movements    map[visitKey]*MovementRecord
	diceOutcomes map[visitKey]*DiceOutcome
	spaceEffects map[visitKey][]SpaceEffectRow
	diceEffects  map[visitKey][]DiceEffectRow
	spaceConfigs map[string]*SpaceConfig
	cards        map[string]*Card
	cardOrder    []string
}

// NewFixture creates an empty in-memory provider.
func NewFixture() *Fixture {
	return &Fixture{
		movements:    make(map[visitKey]*MovementRecord),
		diceOutcomes: make(map[visitKey]*DiceOutcome),
		spaceEffects: make(map[visitKey][]SpaceEffectRow),
		diceEffects:  make(map[visitKey][]DiceEffectRow),
		spaceConfigs: make(map[string]*SpaceConfig),
		cards:        make(map[string]*Card),
	}
}

// AddMovement registers a movement row for both lookup keys it names.
func (f *Fixture) AddMovement(m MovementRecord) *Fixture {
	f.movements[visitKey{m.Space, state.VisitType(m.VisitType)}] = &m
	return f
}

// AddDiceOutcome registers a dice outcome row.
func (f *Fixture) AddDiceOutcome(d DiceOutcome) *Fixture {
	f.diceOutcomes[visitKey{d.Space, state.VisitType(d.VisitType)}] = &d
	return f
}

// AddSpaceEffect appends a space effect row.
func (f *Fixture) AddSpaceEffect(e SpaceEffectRow) *Fixture {
	k := visitKey{e.Space, state.VisitType(e.VisitType)}
	f.spaceEffects[k] = append(f.spaceEffects[k], e)
	return f
}

// AddDiceEffect appends a dice effect row.
func (f *Fixture) AddDiceEffect(e DiceEffectRow) *Fixture {
	k := visitKey{e.Space, state.VisitType(e.VisitType)}
	f.diceEffects[k] = append(f.diceEffects[k], e)
	return f
}

// AddSpaceConfig registers a space's board-level flags.
func (f *Fixture) AddSpaceConfig(c SpaceConfig) *Fixture {
	f.spaceConfigs[c.Space] = &c
	return f
}

// AddCard registers a card definition.
func (f *Fixture) AddCard(c Card) *Fixture {
	f.cards[c.ID] = &c
	f.cardOrder = append(f.cardOrder, c.ID)
	return f
}

func (f *Fixture) GetMovement(space string, visit state.VisitType) (*MovementRecord, bool) {
	m, ok := f.movements[visitKey{space, visit}]
	return m, ok
}

func (f *Fixture) GetDiceOutcome(space string, visit state.VisitType) (*DiceOutcome, bool) {
	d, ok := f.diceOutcomes[visitKey{space, visit}]
	return d, ok
}

func (f *Fixture) GetSpaceEffects(space string, visit state.VisitType) []SpaceEffectRow {
	return f.spaceEffects[visitKey{space, visit}]
}

func (f *Fixture) GetDiceEffects(space string, visit state.VisitType) []DiceEffectRow {
	return f.diceEffects[visitKey{space, visit}]
}

func (f *Fixture) GetGameConfigBySpace(space string) (*SpaceConfig, bool) {
	c, ok := f.spaceConfigs[space]
	return c, ok
}

func (f *Fixture) GetCardByID(id string) (*Card, bool) {
	c, ok := f.cards[id]
	return c, ok
}

func (f *Fixture) GetCardsByType(t state.CardType) []*Card {
	var out []*Card
	for _, id := range f.cardOrder {
		c := f.cards[id]
		if c.Type == t || strings.EqualFold(string(c.Type), string(t)) {
			out = append(out, c)
		}
	}
	return out
}
