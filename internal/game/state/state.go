package state

// GamePhase represents the broad lifecycle phase of a game.
type GamePhase string

const (
	PhaseSetup GamePhase = "SETUP"
	PhasePlay  GamePhase = "PLAY"
	PhaseEnd   GamePhase = "END"
)

// ChoiceType classifies what an outstanding choice decides.
type ChoiceType string

const (
	ChoiceMovement     ChoiceType = "MOVEMENT"
	ChoicePlayerTarget ChoiceType = "PLAYER_TARGET"
	ChoiceGeneral      ChoiceType = "GENERAL"
)

// ChoiceOption is one selectable answer to a choice.
type ChoiceOption struct {
	ID    string
	Label string
}

// Choice is a suspended decision point. At most one exists at a time;
// no turn may end while it is outstanding.
type Choice struct {
	ID       string
	PlayerID string
	Type     ChoiceType
	Prompt   string
	Options  []ChoiceOption
}

// Copy creates a deep copy of the choice.
func (c *Choice) Copy() *Choice {
	cp := *c
	cp.Options = append([]ChoiceOption(nil), c.Options...)
	return &cp
}

// OptionByID returns the option with the given id, if present.
func (c *Choice) OptionByID(id string) (ChoiceOption, bool) {
	for _, opt := range c.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ChoiceOption{}, false
}

// TurnModifier holds per-player turn control state.
type TurnModifier struct {
	SkipTurns int
}

// GameState is the single authoritative game state value. Readers always
// receive a consistent point-in-time copy; mutation happens only inside
// the Store by whole-value replacement.
type GameState struct {
	Players         []*Player
	CurrentPlayerID string
	GamePhase       GamePhase
	Turn            int

	HasPlayerMovedThisTurn bool
	RequiredActions        int
	CompletedActions       int

	AwaitingChoice *Choice
	TurnModifiers  map[string]*TurnModifier

	IsGameOver bool
	Winner     string
}

// NewGameState creates an empty state in the SETUP phase.
func NewGameState() *GameState {
	return &GameState{
		GamePhase:     PhaseSetup,
		TurnModifiers: make(map[string]*TurnModifier),
	}
}

// Player returns the player with the given id, or nil.
func (gs *GameState) Player(id string) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.Player(gs.CurrentPlayerID)
}

// NextPlayerID returns the id of the player after the given one in list
// order, wrapping around. Returns "" when the player is unknown.
func (gs *GameState) NextPlayerID(id string) string {
	for i, p := range gs.Players {
		if p.ID == id {
			return gs.Players[(i+1)%len(gs.Players)].ID
		}
	}
	return ""
}

// Copy creates a deep copy of the game state.
func (gs *GameState) Copy() *GameState {
	cp := *gs
	cp.Players = make([]*Player, len(gs.Players))
	for i, p := range gs.Players {
		cp.Players[i] = p.Copy()
	}
	if gs.AwaitingChoice != nil {
		cp.AwaitingChoice = gs.AwaitingChoice.Copy()
	}
	cp.TurnModifiers = make(map[string]*TurnModifier, len(gs.TurnModifiers))
	for id, tm := range gs.TurnModifiers {
		c := *tm
		cp.TurnModifiers[id] = &c
	}
	return &cp
}
