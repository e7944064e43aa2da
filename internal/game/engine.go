// Package game wires the rules engine together and drives the turn
// state machine: dice roll, space and dice effects, movement
// resolution, action accounting, and turn advancement with win
// detection.
package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/cards"
	"github.com/unravel-games/code2027-server-go/internal/game/choice"
	"github.com/unravel-games/code2027-server-go/internal/game/effects"
	"github.com/unravel-games/code2027-server-go/internal/game/ledger"
	"github.com/unravel-games/code2027-server-go/internal/game/movement"
	"github.com/unravel-games/code2027-server-go/internal/game/rules"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// diceSides is the single die every turn rolls.
const diceSides = 6

// Config sets the engine's opening balances and limits.
type Config struct {
	StartingSpace string
	StartingMoney int
	StartingTime  int
	CardLimit     int
	Seed          int64
}

// ActionResult is the outcome of one orchestrator entry point.
type ActionResult struct {
	Success  bool
	DiceRoll int
	Err      error
}

func failure(err error) *ActionResult {
	return &ActionResult{Err: err}
}

// Engine is the top-level turn orchestrator.
type Engine struct {
	store     *state.Store
	provider  data.Provider
	ledger    *ledger.Ledger
	choices   *choice.Coordinator
	movement  *movement.Resolver
	validator *rules.Validator
	cards     *cards.Manager
	processor *effects.Processor
	rng       *rand.Rand
	logger    *zap.Logger

	// turnSpace and turnVisit pin the space whose effect rows govern the
	// current turn. Movement changes the player's space mid-turn, but the
	// manual actions owed are the ones counted on the space the turn
	// started from.
	turnSpace string
	turnVisit state.VisitType
}

// NewEngine builds the engine and its collaborators. A zero seed is
// replaced with the current time.
func NewEngine(provider data.Provider, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	store := state.NewStore(state.Options{
		StartingSpace: cfg.StartingSpace,
		StartingMoney: cfg.StartingMoney,
		StartingTime:  cfg.StartingTime,
	}, logger.Named("store"))
	lg := ledger.NewLedger(store, logger.Named("ledger"))
	ch := choice.NewCoordinator(store, logger.Named("choice"))
	mv := movement.NewResolver(store, provider, ch, logger.Named("movement"))
	validator := rules.NewValidator(store, provider, mv, cfg.CardLimit)
	cm := cards.NewManager(store, lg, provider, validator, rng, logger.Named("cards"))
	proc := effects.NewProcessor(store, lg, cm, mv, ch, logger.Named("effects"))

	return &Engine{
		store:     store,
		provider:  provider,
		ledger:    lg,
		choices:   ch,
		movement:  mv,
		validator: validator,
		cards:     cm,
		processor: proc,
		rng:       rng,
		logger:    logger,
	}
}

// Store exposes the state store for subscription and inspection.
func (e *Engine) Store() *state.Store { return e.store }

// Ledger exposes the resource ledger.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Cards exposes the card lifecycle manager.
func (e *Engine) Cards() *cards.Manager { return e.cards }

// Validator exposes the rule predicates.
func (e *Engine) Validator() *rules.Validator { return e.validator }

// AddPlayer registers a player during setup.
func (e *Engine) AddPlayer(name, color, avatar string) (string, error) {
	return e.store.AddPlayer(name, color, avatar)
}

// StartGame transitions into the PLAY phase.
func (e *Engine) StartGame() error {
	return e.store.StartGame()
}

// GetValidMoves lists the player's legal destinations.
func (e *Engine) GetValidMoves(playerID string) ([]string, error) {
	return e.movement.GetValidMoves(playerID)
}

// TakeTurn runs the turn sequence for the current player: roll the die,
// apply the space effects for the arrival key, apply the dice effects
// bound to the rolled value, then resolve movement. The turn may
// suspend on a choice; it cannot be taken twice without an intervening
// end of turn.
func (e *Engine) TakeTurn(playerID string) *ActionResult {
	gs := e.store.GetState()
	if gs.GamePhase != state.PhasePlay {
		return failure(&state.InvalidPhaseError{Operation: "TakeTurn", Phase: gs.GamePhase, Required: state.PhasePlay})
	}
	if !e.validator.IsPlayerTurn(playerID) {
		return failure(state.NewValidationError("it is not player %s's turn", playerID))
	}
	if gs.AwaitingChoice != nil {
		return failure(state.NewValidationError("choice %s must be resolved first", gs.AwaitingChoice.ID))
	}
	if gs.RequiredActions > 0 || gs.HasPlayerMovedThisTurn {
		return failure(state.NewValidationError("player %s has already taken this turn", playerID))
	}

	roll := e.rollDice()
	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return failure(err)
	}
	e.turnSpace = player.CurrentSpace
	e.turnVisit = player.VisitType
	e.logger.Info("turn started",
		zap.String("player_id", playerID),
		zap.String("space", player.CurrentSpace),
		zap.String("visit_type", string(player.VisitType)),
		zap.Int("roll", roll),
	)

	batch, manualCount := e.applyArrivalEffects(player, roll)
	if batch.Failed > 0 {
		e.logger.Warn("effect batch finished with failures",
			zap.Int("total", batch.Total),
			zap.Int("failed", batch.Failed),
			zap.Strings("errors", batch.Errors),
		)
	}

	if err := e.movement.ResolveMovement(playerID, roll); err != nil {
		return failure(err)
	}

	// The roll itself is one completed action; manual space effects add
	// to the required total until the player performs them.
	if err := e.store.SetActionCounts(1+manualCount, 1); err != nil {
		return failure(err)
	}
	return &ActionResult{Success: true, DiceRoll: roll}
}

// applyArrivalEffects translates and processes the space effects and
// roll-bound dice effects for the player's current space. Returns the
// batch result and how many manual actions the space demands.
func (e *Engine) applyArrivalEffects(player *state.Player, roll int) (*effects.BatchResult, int) {
	var effs []effects.Effect
	manualCount := 0

	for _, row := range e.provider.GetSpaceEffects(player.CurrentSpace, player.VisitType) {
		if effects.IsManualRow(row) {
			manualCount++
			continue
		}
		if !rules.EvaluateCondition(player, row.Condition) {
			continue
		}
		eff, err := effects.FromSpaceEffectRow(row, player.ID)
		if err != nil {
			e.logger.Warn("space effect row skipped", zap.String("space", row.Space), zap.Error(err))
			continue
		}
		effs = append(effs, eff)
	}

	for _, row := range e.provider.GetDiceEffects(player.CurrentSpace, player.VisitType) {
		eff, err := effects.FromDiceEffectRow(row, player.ID, roll)
		if err != nil {
			e.logger.Warn("dice effect row skipped", zap.String("space", row.Space), zap.Error(err))
			continue
		}
		if eff == nil {
			continue
		}
		effs = append(effs, eff)
	}

	ctx := &effects.Context{PlayerID: player.ID, DiceRoll: roll, Source: player.CurrentSpace}
	return e.processor.Process(effs, ctx), manualCount
}

// ManualActions lists the manual-trigger effect rows owed this turn, in
// table order. The rows belong to the space the turn started from, even
// after the player has moved on.
func (e *Engine) ManualActions(playerID string) ([]data.SpaceEffectRow, error) {
	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	space, visit := e.turnSpace, e.turnVisit
	if space == "" {
		space, visit = player.CurrentSpace, player.VisitType
	}
	var rows []data.SpaceEffectRow
	for _, row := range e.provider.GetSpaceEffects(space, visit) {
		if effects.IsManualRow(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// PerformManualAction executes the index-th manual effect row of the
// player's current space and counts it toward the completed actions.
func (e *Engine) PerformManualAction(playerID string, index int) *ActionResult {
	if !e.validator.IsPlayerTurn(playerID) {
		return failure(state.NewValidationError("it is not player %s's turn", playerID))
	}
	rows, err := e.ManualActions(playerID)
	if err != nil {
		return failure(err)
	}
	if index < 0 || index >= len(rows) {
		return failure(state.NewNotFoundError("manual action", playerID))
	}
	row := rows[index]

	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return failure(err)
	}
	if rules.EvaluateCondition(player, row.Condition) {
		if err := e.performRow(row, playerID); err != nil {
			return failure(err)
		}
	}
	if err := e.store.AddCompletedAction(); err != nil {
		return failure(err)
	}
	return &ActionResult{Success: true}
}

// performRow applies one effect row on demand. Replacement actions call
// straight into the card manager; everything else goes through the
// effect processor.
func (e *Engine) performRow(row data.SpaceEffectRow, playerID string) error {
	action := strings.ToLower(strings.TrimSpace(row.EffectAction))
	if verb, cardType, ok := splitReplaceAction(action); ok && verb == "replace" {
		player, err := e.store.GetPlayer(playerID)
		if err != nil {
			return err
		}
		pile := player.Available[cardType]
		if len(pile) == 0 {
			return nil
		}
		_, err = e.cards.Replace(playerID, pile[0], cardType)
		return err
	}
	eff, err := effects.FromSpaceEffectRow(row, playerID)
	if err != nil {
		return err
	}
	batch := e.processor.Process([]effects.Effect{eff}, &effects.Context{PlayerID: playerID, Source: row.Space})
	if batch.Failed > 0 {
		return state.NewValidationError("manual action failed: %s", batch.Errors[0])
	}
	return nil
}

// PlayCard plays a card for the player through the card manager.
func (e *Engine) PlayCard(playerID, cardID string) *ActionResult {
	if err := e.cards.Play(playerID, cardID); err != nil {
		return failure(err)
	}
	return &ActionResult{Success: true}
}

// ResolveChoice supplies the selection for the outstanding choice and
// resumes the suspended turn.
func (e *Engine) ResolveChoice(choiceID, optionID string) error {
	return e.choices.Resolve(choiceID, optionID)
}

// EndTurn finishes the current player's turn: it is rejected while a
// choice is outstanding or required actions remain, sweeps expired
// cards, bills loan interest, checks the win condition, and otherwise
// advances to the next player, consuming skip-turn modifiers.
func (e *Engine) EndTurn(playerID string) *ActionResult {
	gs := e.store.GetState()
	if gs.GamePhase != state.PhasePlay {
		return failure(&state.InvalidPhaseError{Operation: "EndTurn", Phase: gs.GamePhase, Required: state.PhasePlay})
	}
	if !e.validator.IsPlayerTurn(playerID) {
		return failure(state.NewValidationError("it is not player %s's turn", playerID))
	}
	if gs.AwaitingChoice != nil {
		return failure(&state.IncompleteTurnError{AwaitingChoice: true})
	}
	required := gs.RequiredActions
	if required == 0 {
		required = 1
	}
	if gs.CompletedActions < required {
		return failure(&state.IncompleteTurnError{Completed: gs.CompletedActions, Required: required})
	}

	if err := e.cards.SweepExpired(gs.Turn); err != nil {
		return failure(err)
	}
	if _, err := e.ledger.ApplyInterest(playerID); err != nil {
		return failure(err)
	}

	e.turnSpace, e.turnVisit = "", ""

	if e.validator.CheckWinCondition(playerID) {
		if err := e.store.EndGame(playerID); err != nil {
			return failure(err)
		}
		e.logger.Info("game won", zap.String("winner", playerID), zap.Int("turn", gs.Turn))
		return &ActionResult{Success: true}
	}

	next := gs.NextPlayerID(playerID)
	for i := 0; i < len(gs.Players); i++ {
		if !e.store.ConsumeSkipTurn(next) {
			break
		}
		e.logger.Info("turn skipped", zap.String("player_id", next))
		next = gs.NextPlayerID(next)
	}
	if err := e.store.AdvanceTurn(next); err != nil {
		return failure(err)
	}
	e.logger.Info("turn ended",
		zap.String("player_id", playerID),
		zap.String("next_player_id", next),
	)
	return &ActionResult{Success: true}
}

// rollDice rolls the single six-sided die.
func (e *Engine) rollDice() int {
	return e.rng.Intn(diceSides) + 1
}

// splitReplaceAction parses "replace_<t>" actions.
func splitReplaceAction(action string) (string, state.CardType, bool) {
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
