package state

// CardType tags a card identifier with its game category. The leading
// letter of every card id is its type code.
type CardType string

const (
	CardWork       CardType = "W"
	CardBusiness   CardType = "B"
	CardEquipment  CardType = "E"
	CardLegal      CardType = "L"
	CardInvestment CardType = "I"
)

// AllCardTypes lists every card type in canonical order.
var AllCardTypes = []CardType{CardWork, CardBusiness, CardEquipment, CardLegal, CardInvestment}

// IsValidCardType reports whether t is one of the five known card types.
func IsValidCardType(t CardType) bool {
	switch t {
	case CardWork, CardBusiness, CardEquipment, CardLegal, CardInvestment:
		return true
	}
	return false
}

// CardTypeOf extracts the type code from a card identifier.
// Returns false if the id is empty or carries an unknown code.
func CardTypeOf(cardID string) (CardType, bool) {
	if cardID == "" {
		return "", false
	}
	t := CardType(cardID[:1])
	return t, IsValidCardType(t)
}

// VisitType distinguishes a player's first arrival on a space from
// every later one. Spaces carry separate content rows per visit type.
type VisitType string

const (
	VisitFirst      VisitType = "First"
	VisitSubsequent VisitType = "Subsequent"
)

// CardLocation identifies which of a player's collections holds a card.
type CardLocation int

const (
	CardLocationNone CardLocation = iota
	CardLocationAvailable
	CardLocationActive
	CardLocationDiscarded
)

// ActiveCard is a played card with an ongoing duration. It is discarded
// by the expiration sweep once ExpirationTurn <= the global turn counter.
type ActiveCard struct {
	CardID         string
	ExpirationTurn int
}

// Loan records borrowed principal and its interest rate.
type Loan struct {
	ID        string
	Principal int
	Rate      float64
	StartTurn int
}

// Transaction is one entry of a player's bounded resource history.
type Transaction struct {
	ID     string
	Turn   int
	Kind   string
	Amount int
	Source string
	Before int
	After  int
}

// Player is the per-player slice of the authoritative game state.
type Player struct {
	ID     string
	Name   string
	Color  string
	Avatar string

	CurrentSpace  string
	VisitType     VisitType
	VisitedSpaces []string

	Money          int
	TimeSpent      int
	ProjectScope   int
	CostByCategory map[string]int
	MoneySources   map[string]int
	Loans          []Loan
	Transactions   []Transaction

	// Card collections. A card id lives in exactly one of the three.
	Available map[CardType][]string
	Active    []ActiveCard
	Discarded map[CardType][]string

	// Snapshot holds an optional point-in-time capture used for reversion.
	Snapshot *PlayerSnapshot
}

// PlayerSnapshot captures the revertible portion of a player's state.
type PlayerSnapshot struct {
	CurrentSpace string
	VisitType    VisitType
	Money        int
	TimeSpent    int
	Available    map[CardType][]string
	Active       []ActiveCard
	Discarded    map[CardType][]string
}

// NewPlayer creates a player positioned on the starting space with the
// given opening balances. Card collections start empty but allocated.
func NewPlayer(id, name, color, avatar, startSpace string, money, timeSpent int) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		Color:          color,
		Avatar:         avatar,
		CurrentSpace:   startSpace,
		VisitType:      VisitFirst,
		VisitedSpaces:  []string{startSpace},
		Money:          money,
		TimeSpent:      timeSpent,
		CostByCategory: make(map[string]int),
		MoneySources:   make(map[string]int),
		Available:      make(map[CardType][]string),
		Discarded:      make(map[CardType][]string),
	}
}

// HasVisited reports whether the player has ever entered the space.
func (p *Player) HasVisited(space string) bool {
	for _, s := range p.VisitedSpaces {
		if s == space {
			return true
		}
	}
	return false
}

// FindCard locates a card id across the three collections.
func (p *Player) FindCard(cardID string) CardLocation {
	for _, ids := range p.Available {
		for _, id := range ids {
			if id == cardID {
				return CardLocationAvailable
			}
		}
	}
	for _, ac := range p.Active {
		if ac.CardID == cardID {
			return CardLocationActive
		}
	}
	for _, ids := range p.Discarded {
		for _, id := range ids {
			if id == cardID {
				return CardLocationDiscarded
			}
		}
	}
	return CardLocationNone
}

// CountAvailable returns how many cards of a type sit in the available pile.
func (p *Player) CountAvailable(t CardType) int {
	return len(p.Available[t])
}

// Copy creates a deep copy of the player.
func (p *Player) Copy() *Player {
	cp := *p
	cp.VisitedSpaces = append([]string(nil), p.VisitedSpaces...)
	cp.CostByCategory = copyIntMap(p.CostByCategory)
	cp.MoneySources = copyIntMap(p.MoneySources)
	cp.Loans = append([]Loan(nil), p.Loans...)
	cp.Transactions = append([]Transaction(nil), p.Transactions...)
	cp.Available = copyCardMap(p.Available)
	cp.Active = append([]ActiveCard(nil), p.Active...)
	cp.Discarded = copyCardMap(p.Discarded)
	if p.Snapshot != nil {
		cp.Snapshot = p.Snapshot.copy()
	}
	return &cp
}

func (s *PlayerSnapshot) copy() *PlayerSnapshot {
	cp := *s
	cp.Available = copyCardMap(s.Available)
	cp.Active = append([]ActiveCard(nil), s.Active...)
	cp.Discarded = copyCardMap(s.Discarded)
	return &cp
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyCardMap(m map[CardType][]string) map[CardType][]string {
	out := make(map[CardType][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// PlayerUpdate is a typed partial player record. Nil fields leave the
// current value untouched; the card maps merge per card type, with the
// supplied list replacing that type's list wholesale. Slice fields
// replace when non-nil, so an allocated empty slice clears.
type PlayerUpdate struct {
	Name         *string
	Color        *string
	Avatar       *string
	CurrentSpace *string
	VisitType    *VisitType

	VisitedSpaces []string

	Money        *int
	TimeSpent    *int
	ProjectScope *int

	CostByCategory map[string]int
	MoneySources   map[string]int
	Loans          []Loan
	Transactions   []Transaction

	Available map[CardType][]string
	Active    []ActiveCard
	Discarded map[CardType][]string
}

func applyPlayerUpdate(p *Player, u PlayerUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.CurrentSpace != nil {
		p.CurrentSpace = *u.CurrentSpace
	}
	if u.VisitType != nil {
		p.VisitType = *u.VisitType
	}
	if u.VisitedSpaces != nil {
		p.VisitedSpaces = append([]string(nil), u.VisitedSpaces...)
	}
	if u.Money != nil {
		p.Money = *u.Money
	}
	if u.TimeSpent != nil {
		p.TimeSpent = *u.TimeSpent
	}
	if u.ProjectScope != nil {
		p.ProjectScope = *u.ProjectScope
	}
	for k, v := range u.CostByCategory {
		p.CostByCategory[k] = v
	}
	for k, v := range u.MoneySources {
		p.MoneySources[k] = v
	}
	if u.Loans != nil {
		p.Loans = append([]Loan(nil), u.Loans...)
	}
	if u.Transactions != nil {
		p.Transactions = append([]Transaction(nil), u.Transactions...)
	}
	for t, ids := range u.Available {
		p.Available[t] = append([]string(nil), ids...)
	}
	if u.Active != nil {
		p.Active = append([]ActiveCard(nil), u.Active...)
	}
	for t, ids := range u.Discarded {
		p.Discarded[t] = append([]string(nil), ids...)
	}
}
