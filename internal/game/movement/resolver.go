// Package movement computes legal destinations from the movement table
// and commits position changes. Multi-destination spaces suspend on a
// MOVEMENT choice; arrival on another choice or logic space eagerly
// raises the follow-up choice so each arrival has one suspension point.
// Dice spaces never ask: their destination comes from the next roll.
package movement

import (
	"sync"

	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game/choice"
	"github.com/unravel-games/code2027-server-go/internal/game/rules"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// Resolver resolves and commits player movement.
type Resolver struct {
	store    *state.Store
	provider data.Provider
	choices  *choice.Coordinator
	logger   *zap.Logger

	mu sync.Mutex
	// pendingSelections holds destinations chosen through an eager
	// follow-up choice, consumed by the next resolution for that player.
	pendingSelections map[string]string
}

// NewResolver creates a movement resolver.
func NewResolver(store *state.Store, provider data.Provider, choices *choice.Coordinator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:             store,
		provider:          provider,
		choices:           choices,
		logger:            logger,
		pendingSelections: make(map[string]string),
	}
}

// GetValidMoves returns every legal destination for the player's current
// space and visit type. Terminal spaces and unknown movement types yield
// an empty list.
func (r *Resolver) GetValidMoves(playerID string) ([]string, error) {
	p, err := r.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	rec, ok := r.provider.GetMovement(p.CurrentSpace, p.VisitType)
	if !ok {
		return nil, nil
	}
	switch rec.MovementType {
	case data.MovementFixed:
		if dest := firstNonEmpty(rec.Destinations()); dest != "" {
			return []string{dest}, nil
		}
		return nil, nil
	case data.MovementChoice:
		return nonEmpty(rec.Destinations()), nil
	case data.MovementDice:
		outcome, ok := r.provider.GetDiceOutcome(p.CurrentSpace, p.VisitType)
		if !ok {
			return nil, nil
		}
		var moves []string
		seen := make(map[string]bool)
		for roll := 1; roll <= 6; roll++ {
			if dest := outcome.Outcome(roll); dest != "" && !seen[dest] {
				seen[dest] = true
				moves = append(moves, dest)
			}
		}
		return moves, nil
	case data.MovementLogic:
		return r.logicDestinations(p, rec), nil
	case data.MovementNone:
		return nil, nil
	}
	r.logger.Warn("unknown movement type treated as terminal",
		zap.String("space", p.CurrentSpace),
		zap.String("movement_type", string(rec.MovementType)),
	)
	return nil, nil
}

// ResolveMovement performs the player's movement for this turn. Fixed
// and single-option spaces move immediately; dice spaces map the rolled
// value to its configured outcome; multi-option spaces suspend on a
// MOVEMENT choice unless an eager selection is already recorded.
func (r *Resolver) ResolveMovement(playerID string, roll int) error {
	if dest, ok := r.takePendingSelection(playerID); ok {
		return r.MovePlayer(playerID, dest)
	}
	p, err := r.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	rec, ok := r.provider.GetMovement(p.CurrentSpace, p.VisitType)
	if !ok {
		return r.store.MarkPlayerMoved()
	}

	switch rec.MovementType {
	case data.MovementFixed:
		if dest := firstNonEmpty(rec.Destinations()); dest != "" {
			return r.MovePlayer(playerID, dest)
		}
		return r.store.MarkPlayerMoved()
	case data.MovementDice:
		outcome, ok := r.provider.GetDiceOutcome(p.CurrentSpace, p.VisitType)
		if !ok {
			return r.store.MarkPlayerMoved()
		}
		dest := outcome.Outcome(roll)
		if dest == "" {
			// This roll is configured as "stay put".
			return r.store.MarkPlayerMoved()
		}
		return r.MovePlayer(playerID, dest)
	case data.MovementChoice:
		return r.resolveMultiDestination(playerID, nonEmpty(rec.Destinations()))
	case data.MovementLogic:
		return r.resolveMultiDestination(playerID, r.logicDestinations(p, rec))
	case data.MovementNone:
		return r.store.MarkPlayerMoved()
	}
	r.logger.Warn("unknown movement type, no movement performed",
		zap.String("space", p.CurrentSpace),
		zap.String("movement_type", string(rec.MovementType)),
	)
	return r.store.MarkPlayerMoved()
}

// MovePlayer commits a position change. It succeeds only when the
// destination is among the player's valid moves; otherwise it fails
// with no state change.
func (r *Resolver) MovePlayer(playerID, destination string) error {
	moves, err := r.GetValidMoves(playerID)
	if err != nil {
		return err
	}
	valid := false
	for _, m := range moves {
		if m == destination {
			valid = true
			break
		}
	}
	if !valid {
		return state.NewValidationError("destination %q is not a valid move for player %s", destination, playerID)
	}
	return r.commitMove(playerID, destination)
}

func (r *Resolver) resolveMultiDestination(playerID string, candidates []string) error {
	switch len(candidates) {
	case 0:
		return r.store.MarkPlayerMoved()
	case 1:
		// A single option needs no choice.
		return r.MovePlayer(playerID, candidates[0])
	}
	options := make([]state.ChoiceOption, len(candidates))
	for i, dest := range candidates {
		options[i] = state.ChoiceOption{ID: dest, Label: dest}
	}
	_, err := r.choices.Create(playerID, state.ChoiceMovement, "Choose your destination", options,
		func(optionID string) error {
			return r.MovePlayer(playerID, optionID)
		})
	return err
}

func (r *Resolver) commitMove(playerID, destination string) error {
	p, err := r.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	visit := state.VisitSubsequent
	visited := append([]string(nil), p.VisitedSpaces...)
	if !p.HasVisited(destination) {
		visit = state.VisitFirst
		visited = append(visited, destination)
	}
	update := state.PlayerUpdate{
		CurrentSpace:  &destination,
		VisitType:     &visit,
		VisitedSpaces: visited,
	}
	if err := r.store.UpdatePlayer(playerID, update); err != nil {
		return err
	}
	if err := r.store.MarkPlayerMoved(); err != nil {
		return err
	}
	r.logger.Info("player moved",
		zap.String("player_id", playerID),
		zap.String("destination", destination),
		zap.String("visit_type", string(visit)),
	)
	return r.raiseFollowUpChoice(playerID)
}

// raiseFollowUpChoice checks the arrival space and, when it is a choice
// or logic space with multiple options, asks for the selection now. The
// answer is recorded and consumed by the next movement resolution.
// Other movement types raise nothing: fixed spaces have no decision and
// a dice space's destination is mapped from the next turn's roll.
func (r *Resolver) raiseFollowUpChoice(playerID string) error {
	if r.store.GetState().AwaitingChoice != nil {
		return nil
	}
	p, err := r.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	rec, ok := r.provider.GetMovement(p.CurrentSpace, p.VisitType)
	if !ok {
		return nil
	}
	if rec.MovementType != data.MovementChoice && rec.MovementType != data.MovementLogic {
		return nil
	}
	moves, err := r.GetValidMoves(playerID)
	if err != nil {
		return err
	}
	if len(moves) < 2 {
		return nil
	}
	options := make([]state.ChoiceOption, len(moves))
	for i, dest := range moves {
		options[i] = state.ChoiceOption{ID: dest, Label: dest}
	}
	_, err = r.choices.Create(playerID, state.ChoiceMovement, "Choose where to head next", options,
		func(optionID string) error {
			r.mu.Lock()
			r.pendingSelections[playerID] = optionID
			r.mu.Unlock()
			return nil
		})
	return err
}

func (r *Resolver) takePendingSelection(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dest, ok := r.pendingSelections[playerID]
	if ok {
		delete(r.pendingSelections, playerID)
	}
	return dest, ok
}

func (r *Resolver) logicDestinations(p *state.Player, rec *data.MovementRecord) []string {
	dests := rec.Destinations()
	conds := rec.Conditions()
	var out []string
	for i, dest := range dests {
		if dest == "" {
			continue
		}
		if rules.EvaluateCondition(p, conds[i]) {
			out = append(out, dest)
		}
	}
	return out
}

func firstNonEmpty(list []string) string {
	for _, s := range list {
		if s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(list []string) []string {
	var out []string
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
