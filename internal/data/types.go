package data

import "github.com/unravel-games/code2027-server-go/internal/game/state"

// MovementType classifies how a space hands the player onward.
type MovementType string

const (
	MovementFixed  MovementType = "fixed"
	MovementChoice MovementType = "choice"
	MovementDice   MovementType = "dice"
	MovementLogic  MovementType = "logic"
	MovementNone   MovementType = "none"
)

// MovementRecord is one row of the movement table, keyed by space and
// visit type. Up to five destinations; logic rows pair each destination
// with a condition string.
type MovementRecord struct {
	Space        string       `mapstructure:"space_name"`
	VisitType    string       `mapstructure:"visit_type"`
	MovementType MovementType `mapstructure:"movement_type"`
	Destination1 string       `mapstructure:"destination_1"`
	Destination2 string       `mapstructure:"destination_2"`
	Destination3 string       `mapstructure:"destination_3"`
	Destination4 string       `mapstructure:"destination_4"`
	Destination5 string       `mapstructure:"destination_5"`
	Condition1   string       `mapstructure:"condition_1"`
	Condition2   string       `mapstructure:"condition_2"`
	Condition3   string       `mapstructure:"condition_3"`
	Condition4   string       `mapstructure:"condition_4"`
	Condition5   string       `mapstructure:"condition_5"`
}

// Destinations returns the configured destinations in slot order,
// including empty slots so indices line up with conditions.
func (m *MovementRecord) Destinations() []string {
	return []string{m.Destination1, m.Destination2, m.Destination3, m.Destination4, m.Destination5}
}

// Conditions returns the per-slot condition strings for logic rows.
func (m *MovementRecord) Conditions() []string {
	return []string{m.Condition1, m.Condition2, m.Condition3, m.Condition4, m.Condition5}
}

// DiceOutcome maps each die face to a destination for dice-movement
// spaces. An empty outcome means no movement for that roll.
type DiceOutcome struct {
	Space     string `mapstructure:"space_name"`
	VisitType string `mapstructure:"visit_type"`
	Roll1     string `mapstructure:"roll_1"`
	Roll2     string `mapstructure:"roll_2"`
	Roll3     string `mapstructure:"roll_3"`
	Roll4     string `mapstructure:"roll_4"`
	Roll5     string `mapstructure:"roll_5"`
	Roll6     string `mapstructure:"roll_6"`
}

// Outcome returns the configured outcome for a roll in [1,6].
func (d *DiceOutcome) Outcome(roll int) string {
	switch roll {
	case 1:
		return d.Roll1
	case 2:
		return d.Roll2
	case 3:
		return d.Roll3
	case 4:
		return d.Roll4
	case 5:
		return d.Roll5
	case 6:
		return d.Roll6
	}
	return ""
}

// SpaceEffectRow is one declarative effect attached to a space arrival.
type SpaceEffectRow struct {
	Space        string `mapstructure:"space_name"`
	VisitType    string `mapstructure:"visit_type"`
	EffectType   string `mapstructure:"effect_type"`
	EffectAction string `mapstructure:"effect_action"`
	EffectValue  string `mapstructure:"effect_value"`
	Condition    string `mapstructure:"condition"`
	TriggerType  string `mapstructure:"trigger_type"`
}

// DiceEffectRow binds a per-roll effect to a space, optionally scoped to
// a card type.
type DiceEffectRow struct {
	Space      string `mapstructure:"space_name"`
	VisitType  string `mapstructure:"visit_type"`
	EffectType string `mapstructure:"effect_type"`
	CardType   string `mapstructure:"card_type"`
	Roll1      string `mapstructure:"roll_1"`
	Roll2      string `mapstructure:"roll_2"`
	Roll3      string `mapstructure:"roll_3"`
	Roll4      string `mapstructure:"roll_4"`
	Roll5      string `mapstructure:"roll_5"`
	Roll6      string `mapstructure:"roll_6"`
}

// Outcome returns the configured effect text for a roll in [1,6].
func (d *DiceEffectRow) Outcome(roll int) string {
	switch roll {
	case 1:
		return d.Roll1
	case 2:
		return d.Roll2
	case 3:
		return d.Roll3
	case 4:
		return d.Roll4
	case 5:
		return d.Roll5
	case 6:
		return d.Roll6
	}
	return ""
}

// SpaceConfig carries the board-level flags for a space.
type SpaceConfig struct {
	Space           string `mapstructure:"space_name"`
	Phase           string `mapstructure:"phase"`
	PathType        string `mapstructure:"path_type"`
	IsStartingSpace bool   `mapstructure:"is_starting_space"`
	IsEndingSpace   bool   `mapstructure:"is_ending_space"`
	RequiresDice    bool   `mapstructure:"requires_dice_roll"`
}

// Card is one card definition from the expanded card table. Field names
// follow the upstream data pipeline.
type Card struct {
	ID               string         `mapstructure:"card_id"`
	Name             string         `mapstructure:"card_name"`
	Type             state.CardType `mapstructure:"card_type"`
	Description      string         `mapstructure:"description"`
	EffectsOnPlay    string         `mapstructure:"effects_on_play"`
	Cost             int            `mapstructure:"cost"`
	PhaseRestriction string         `mapstructure:"phase_restriction"`

	Duration      string `mapstructure:"duration"`
	DurationCount int    `mapstructure:"duration_count"`
	TurnEffect    string `mapstructure:"turn_effect"`

	LoanAmount       int     `mapstructure:"loan_amount"`
	LoanRate         float64 `mapstructure:"loan_rate"`
	InvestmentAmount int     `mapstructure:"investment_amount"`
	WorkCost         int     `mapstructure:"work_cost"`

	MoneyEffect  string `mapstructure:"money_effect"`
	TickModifier int    `mapstructure:"tick_modifier"`

	DrawCards    string `mapstructure:"draw_cards"`
	DiscardCards string `mapstructure:"discard_cards"`
	Target       string `mapstructure:"target"`
	Scope        string `mapstructure:"scope"`
}

// DurationTurns returns how many turns the card stays active after being
// played; zero means the card is discarded immediately.
func (c *Card) DurationTurns() int {
	if c.DurationCount > 0 {
		return c.DurationCount
	}
	return 0
}
