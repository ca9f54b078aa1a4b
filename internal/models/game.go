package models

// Identity is the display name a browser profile registered with.
// It is created once and never changes afterwards.
type Identity struct {
	Name string `json:"name"`
}

// Outcome is the prize an identity won. It is recorded the first time a card
// is revealed and replayed on every later visit.
type Outcome struct {
	Identity   Identity `json:"identity"`
	PrizeValue int      `json:"prizeValue"`
}

// CardState is the reveal state of a single scratch card.
type CardState string

const (
	CardHidden   CardState = "hidden"
	CardRevealed CardState = "revealed"
)

// Card is one scratch card of a game session.
// RevealFraction is the share of its scratch surface that has been cleared.
type Card struct {
	Value          int       `json:"value"`
	RevealFraction float64   `json:"revealFraction"`
	State          CardState `json:"state"`
}

// SessionState is the state of a whole game session.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionConcluded SessionState = "concluded"
)

// RevealKind classifies the effect of a single reveal input.
type RevealKind string

const (
	RevealNoChange   RevealKind = "no_change"
	RevealProgress   RevealKind = "progress"
	RevealSessionWon RevealKind = "session_won"
)

// RevealResult reports what a reveal input did to a card.
// Value is only meaningful when Kind is RevealSessionWon.
type RevealResult struct {
	Kind      RevealKind `json:"kind"`
	CardIndex int        `json:"card"`
	Fraction  float64    `json:"revealFraction"`
	State     CardState  `json:"state"`
	Value     int        `json:"value,omitempty"`
}

// Won reports whether this reveal concluded the session.
func (r RevealResult) Won() bool { return r.Kind == RevealSessionWon }

// EntryPoint is what a page load should show.
type EntryPoint string

const (
	ShowRegistration EntryPoint = "show_registration"
	ShowOutcome      EntryPoint = "show_outcome"
	StartNewGame     EntryPoint = "start_new_game"
)
