// Package choice suspends game flow until a single external decision
// arrives. A created choice becomes the sole awaiting choice in the game
// state; resolving it runs the continuation registered at creation.
package choice

import (
	"sync"

	"github.com/google/uuid"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// Continuation resumes a suspended computation with the selected option id.
type Continuation func(optionID string) error

// Coordinator manages the lifecycle of outstanding choices.
type Coordinator struct {
	store  *state.Store
	logger *zap.Logger

	mu            sync.Mutex
	continuations map[string]Continuation
}

// NewCoordinator creates a coordinator bound to the given store.
func NewCoordinator(store *state.Store, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:         store,
		logger:        logger,
		continuations: make(map[string]Continuation),
	}
}

// Create installs a new choice as the sole awaiting choice and registers
// the continuation to run on resolution. Creating a choice while one is
// outstanding is a ValidationError.
func (c *Coordinator) Create(playerID string, typ state.ChoiceType, prompt string, options []state.ChoiceOption, cont Continuation) (string, error) {
	if len(options) == 0 {
		return "", state.NewValidationError("choice requires at least one option")
	}
	ch := &state.Choice{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Type:     typ,
		Prompt:   prompt,
		Options:  options,
	}
	if err := c.store.SetAwaitingChoice(ch); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.continuations[ch.ID] = cont
	c.mu.Unlock()

	c.logger.Info("choice created",
		zap.String("choice_id", ch.ID),
		zap.String("player_id", playerID),
		zap.String("type", string(typ)),
		zap.Int("options", len(options)),
	)
	return ch.ID, nil
}

// Pending returns the outstanding choice, or nil.
func (c *Coordinator) Pending() *state.Choice {
	return c.store.GetState().AwaitingChoice
}

// Resolve supplies the single external decision for the outstanding
// choice. The choice is cleared before the continuation runs, so the
// continuation may itself create a follow-up choice.
func (c *Coordinator) Resolve(choiceID, optionID string) error {
	awaiting := c.store.GetState().AwaitingChoice
	if awaiting == nil || awaiting.ID != choiceID {
		return state.NewNotFoundError("awaiting choice", choiceID)
	}
	if _, ok := awaiting.OptionByID(optionID); !ok {
		return state.NewValidationError("option %q is not part of choice %s", optionID, choiceID)
	}

	c.mu.Lock()
	cont := c.continuations[choiceID]
	delete(c.continuations, choiceID)
	c.mu.Unlock()

	if err := c.store.ClearAwaitingChoice(); err != nil {
		return err
	}
	c.logger.Info("choice resolved",
		zap.String("choice_id", choiceID),
		zap.String("option_id", optionID),
	)
	if cont == nil {
		return nil
	}
	return cont(optionID)
}
