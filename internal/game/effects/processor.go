package effects

import (
	"fmt"

	"github.com/unravel-games/code2027-server-go/internal/game/cards"
	"github.com/unravel-games/code2027-server-go/internal/game/choice"
	"github.com/unravel-games/code2027-server-go/internal/game/ledger"
	"github.com/unravel-games/code2027-server-go/internal/game/movement"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// Context carries the turn-scoped inputs an effect batch is applied
// under: the acting player and the current dice roll.
type Context struct {
	PlayerID string
	DiceRoll int
	Source   string
}

// EffectResult records the outcome of one effect.
type EffectResult struct {
	Effect  Effect
	Success bool
	Err     error
}

// BatchResult aggregates a batch of effect applications. Batches are
// best-effort: one effect failing never rolls back or aborts the others.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []EffectResult
	Errors    []string
}

func (b *BatchResult) record(e Effect, err error) {
	b.Total++
	if err != nil {
		b.Failed++
		b.Errors = append(b.Errors, err.Error())
	} else {
		b.Succeeded++
	}
	b.Results = append(b.Results, EffectResult{Effect: e, Success: err == nil, Err: err})
}

// merge folds a nested batch into the parent without re-counting the
// nested effects as one unit.
func (b *BatchResult) merge(nested *BatchResult) {
	b.Total += nested.Total
	b.Succeeded += nested.Succeeded
	b.Failed += nested.Failed
	b.Results = append(b.Results, nested.Results...)
	b.Errors = append(b.Errors, nested.Errors...)
}

// Processor converts declarative effects into calls against the ledger,
// the card manager, the movement resolver, and the choice coordinator.
type Processor struct {
	store    *state.Store
	ledger   *ledger.Ledger
	cards    *cards.Manager
	movement *movement.Resolver
	choices  *choice.Coordinator
	logger   *zap.Logger
}

// NewProcessor creates an effect processor.
func NewProcessor(store *state.Store, lg *ledger.Ledger, cm *cards.Manager, mv *movement.Resolver, ch *choice.Coordinator, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:    store,
		ledger:   lg,
		cards:    cm,
		movement: mv,
		choices:  ch,
		logger:   logger,
	}
}

// Process applies each effect in order. A failing effect is recorded and
// the batch continues; there is no cross-effect rollback.
func (p *Processor) Process(effectList []Effect, ctx *Context) *BatchResult {
	batch := &BatchResult{}
	for _, e := range effectList {
		p.processOne(e, ctx, batch)
	}
	return batch
}

func (p *Processor) processOne(e Effect, ctx *Context, batch *BatchResult) {
	e = defaultToContextPlayer(e, ctx)
	if err := validateEffect(e); err != nil {
		batch.record(e, err)
		return
	}
	switch v := e.(type) {
	case ResourceChange:
		batch.record(e, p.applyResourceChange(v))
	case CardDraw:
		_, err := p.cards.Draw(v.PlayerID, v.CardType, v.Count)
		batch.record(e, err)
	case CardDiscard:
		_, err := p.cards.Discard(v.PlayerID, v.CardType, v.Count)
		batch.record(e, err)
	case ChoiceEffect:
		batch.record(e, p.applyChoice(v))
	case Log:
		p.logger.Info("game log effect",
			zap.String("player_id", v.PlayerID),
			zap.String("message", v.Message),
		)
		batch.record(e, nil)
	case PlayerMovement:
		batch.record(e, p.movement.MovePlayer(v.PlayerID, v.Destination))
	case TurnControl:
		batch.record(e, p.applyTurnControl(v))
	case CardActivation:
		expiration := p.store.GetState().Turn + v.Duration
		batch.record(e, p.cards.Activate(v.PlayerID, v.CardID, expiration))
	case GroupTargeted:
		p.applyGroupTargeted(v, ctx, batch)
	case RecalculateScope:
		batch.record(e, p.cards.RecalculateScope(v.PlayerID))
	case Conditional:
		p.applyConditional(v, ctx, batch)
	default:
		// The union is sealed; reaching this arm means a new effect kind
		// was added without updating the dispatcher.
		err := &state.UnknownTypeError{Kind: "effect", Value: string(e.Type())}
		p.logger.Warn("unknown effect ignored", zap.Error(err))
		batch.record(e, err)
	}
}

func (p *Processor) applyResourceChange(v ResourceChange) error {
	switch v.Resource {
	case ResourceMoney:
		flat := v.Amount
		if v.Percent != 0 {
			player, err := p.store.GetPlayer(v.PlayerID)
			if err != nil {
				return err
			}
			// Percentage applies to the balance before the flat add.
			pct := player.Money * v.Percent / 100
			if err := p.applyMoneyDelta(v.PlayerID, pct, v.Source); err != nil {
				return err
			}
		}
		if flat == 0 {
			return nil
		}
		return p.applyMoneyDelta(v.PlayerID, flat, v.Source)
	case ResourceTime:
		if v.Amount > 0 {
			return p.ledger.AddTime(v.PlayerID, v.Amount, v.Source)
		}
		if v.Amount < 0 {
			_, err := p.ledger.SpendTime(v.PlayerID, -v.Amount, v.Source)
			return err
		}
		return nil
	}
	return &state.UnknownTypeError{Kind: "resource", Value: string(v.Resource)}
}

func (p *Processor) applyMoneyDelta(playerID string, delta int, source string) error {
	if delta > 0 {
		return p.ledger.AddMoney(playerID, delta, source)
	}
	if delta < 0 {
		ok, err := p.ledger.SpendMoney(playerID, -delta, source)
		if err != nil {
			return err
		}
		if !ok {
			return state.NewValidationError("player %s cannot afford charge of %d", playerID, -delta)
		}
	}
	return nil
}

func (p *Processor) applyChoice(v ChoiceEffect) error {
	_, err := p.choices.Create(v.PlayerID, state.ChoiceGeneral, v.Prompt, v.Options,
		func(optionID string) error {
			p.logger.Info("general choice answered",
				zap.String("player_id", v.PlayerID),
				zap.String("option_id", optionID),
			)
			return nil
		})
	return err
}

func (p *Processor) applyTurnControl(v TurnControl) error {
	switch v.Action {
	case TurnSkip:
		turns := v.Turns
		if turns <= 0 {
			turns = 1
		}
		return p.store.AddSkipTurns(v.PlayerID, turns)
	}
	return &state.UnknownTypeError{Kind: "turn control", Value: string(v.Action)}
}

// applyGroupTargeted expands the template into one concrete effect per
// resolved target and feeds those back through the processor. With a
// chosen-target rule the expansion suspends on a PLAYER_TARGET choice.
func (p *Processor) applyGroupTargeted(v GroupTargeted, ctx *Context, batch *BatchResult) {
	if v.Template == nil {
		batch.record(v, state.NewValidationError("group effect requires a template effect"))
		return
	}
	gs := p.store.GetState()
	switch v.Target {
	case TargetAllPlayers, TargetAllOthers:
		var expanded []Effect
		for _, target := range gs.Players {
			if v.Target == TargetAllOthers && target.ID == v.PlayerID {
				continue
			}
			expanded = append(expanded, retarget(v.Template, target.ID))
		}
		batch.merge(p.Process(expanded, ctx))
	case TargetChosenOther:
		var options []state.ChoiceOption
		for _, target := range gs.Players {
			if target.ID == v.PlayerID {
				continue
			}
			options = append(options, state.ChoiceOption{ID: target.ID, Label: target.Name})
		}
		if len(options) == 0 {
			batch.record(v, nil)
			return
		}
		prompt := v.Prompt
		if prompt == "" {
			prompt = "Choose a player"
		}
		template := v.Template
		_, err := p.choices.Create(v.PlayerID, state.ChoicePlayerTarget, prompt, options,
			func(optionID string) error {
				nested := p.Process([]Effect{retarget(template, optionID)}, ctx)
				if nested.Failed > 0 {
					return fmt.Errorf("targeted effect failed: %s", nested.Errors[0])
				}
				return nil
			})
		batch.record(v, err)
	default:
		batch.record(v, &state.UnknownTypeError{Kind: "target rule", Value: string(v.Target)})
	}
}

// applyConditional submits the nested effects of the range matching the
// context's dice roll. No matching range is a successful no-op.
func (p *Processor) applyConditional(v Conditional, ctx *Context, batch *BatchResult) {
	matched := false
	for _, rng := range v.Ranges {
		if ctx.DiceRoll >= rng.Min && ctx.DiceRoll <= rng.Max {
			matched = true
			batch.merge(p.Process(rng.Effects, ctx))
		}
	}
	if !matched {
		batch.record(v, nil)
	}
}

// defaultToContextPlayer fills an empty PlayerID from the context.
func defaultToContextPlayer(e Effect, ctx *Context) Effect {
	if ctx == nil {
		return e
	}
	switch v := e.(type) {
	case ResourceChange:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case CardDraw:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case CardDiscard:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case ChoiceEffect:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case PlayerMovement:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case TurnControl:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case CardActivation:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case GroupTargeted:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case RecalculateScope:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	case Conditional:
		if v.PlayerID == "" {
			return retarget(v, ctx.PlayerID)
		}
	}
	return e
}

// validateEffect checks the required fields for each effect type before
// any state changes, failing fast with a ValidationError.
func validateEffect(e Effect) error {
	switch v := e.(type) {
	case ResourceChange:
		if v.PlayerID == "" {
			return state.NewValidationError("resource change requires a player id")
		}
		if v.Resource != ResourceMoney && v.Resource != ResourceTime {
			return state.NewValidationError("resource change requires a known resource, got %q", v.Resource)
		}
		if v.Amount == 0 && v.Percent == 0 {
			return state.NewValidationError("resource change requires a non-zero amount or percent")
		}
	case CardDraw:
		if v.PlayerID == "" || v.Count <= 0 || !state.IsValidCardType(v.CardType) {
			return state.NewValidationError("card draw requires a player, a valid card type, and a positive count")
		}
	case CardDiscard:
		if v.PlayerID == "" || v.Count <= 0 || !state.IsValidCardType(v.CardType) {
			return state.NewValidationError("card discard requires a player, a valid card type, and a positive count")
		}
	case ChoiceEffect:
		if v.PlayerID == "" || len(v.Options) == 0 {
			return state.NewValidationError("choice effect requires a player and options")
		}
	case Log:
		if v.Message == "" {
			return state.NewValidationError("log effect requires a message")
		}
	case PlayerMovement:
		if v.PlayerID == "" || v.Destination == "" {
			return state.NewValidationError("movement effect requires a player and a destination")
		}
	case TurnControl:
		if v.PlayerID == "" || v.Action == "" {
			return state.NewValidationError("turn control requires a player and an action")
		}
	case CardActivation:
		if v.PlayerID == "" || v.CardID == "" || v.Duration <= 0 {
			return state.NewValidationError("card activation requires a player, a card, and a positive duration")
		}
	case GroupTargeted:
		if v.PlayerID == "" || v.Template == nil {
			return state.NewValidationError("group effect requires an initiating player and a template")
		}
	case RecalculateScope:
		if v.PlayerID == "" {
			return state.NewValidationError("scope recalculation requires a player id")
		}
	case Conditional:
		if len(v.Ranges) == 0 {
			return state.NewValidationError("conditional effect requires at least one dice range")
		}
	}
	return nil
}
