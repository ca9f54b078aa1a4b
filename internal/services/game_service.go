package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"raspadita/internal/models"
	"raspadita/internal/scratch"
	"raspadita/internal/storage"

	"github.com/google/logger"
	"github.com/google/uuid"
)

var (
	// ErrNotRegistered is returned when a profile plays before registering.
	ErrNotRegistered = errors.New("profile is not registered")
	// ErrNoActiveGame is returned when a profile scratches without a dealt game.
	ErrNoActiveGame = errors.New("no active game")
	// ErrPromotionEnded is returned when a game is scratched after the promotion end.
	ErrPromotionEnded = errors.New("promotion has ended")
	// ErrNoOutcome is returned when sharing before winning.
	ErrNoOutcome = errors.New("no outcome recorded")
)

// GameConfig holds the fixed rules every game is dealt with.
type GameConfig struct {
	CardCount       int
	PrizePool       []int
	Surface         scratch.Surface
	ScratchRadius   float64
	PromotionEndsAt time.Time
	ShareBaseURL    string
}

// CardView is a card as the page may see it: the value stays hidden until
// the card is revealed.
type CardView struct {
	Index          int              `json:"index"`
	RevealFraction float64          `json:"revealFraction"`
	State          models.CardState `json:"state"`
	Value          *int             `json:"value,omitempty"`
}

// SurfaceView tells the page how to map its canvas onto the scratch surface.
type SurfaceView struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// View is what a page load renders.
type View struct {
	Entry     models.EntryPoint `json:"entry"`
	Surface   SurfaceView       `json:"surface"`
	Identity  *models.Identity  `json:"identity,omitempty"`
	Outcome   *models.Outcome   `json:"outcome,omitempty"`
	GameID    string            `json:"gameId,omitempty"`
	Cards     []CardView        `json:"cards,omitempty"`
	Countdown CountdownView     `json:"countdown"`
}

// ScratchResult is the effect of one scratch input.
type ScratchResult struct {
	Kind    models.RevealKind `json:"kind"`
	Card    CardView          `json:"card"`
	Hint    string            `json:"hint"`
	Outcome *models.Outcome   `json:"outcome,omitempty"`
}

// ProfileSession holds the in-memory state of one browser profile.
type ProfileSession struct {
	Game         *scratch.Session
	GameID       uuid.UUID
	LastActivity time.Time
}

// GameService runs scratch games for many browser profiles. Each profile has
// its own persisted identity and outcome and at most one game in memory.
type GameService struct {
	mu       sync.Mutex
	store    storage.Store
	cfg      GameConfig
	rng      scratch.RNG
	sink     scratch.RenderSink
	now      func() time.Time
	sessions map[string]*ProfileSession // Key: profileID
}

// NewGameService creates a GameService. sink may be nil.
func NewGameService(store storage.Store, cfg GameConfig, rng scratch.RNG, sink scratch.RenderSink) *GameService {
	return &GameService{
		store:    store,
		cfg:      cfg,
		rng:      rng,
		sink:     sink,
		now:      time.Now,
		sessions: make(map[string]*ProfileSession),
	}
}

// getSession returns the profile's session, creating one if it doesn't exist.
// Callers must hold s.mu.
func (s *GameService) getSession(profileID string) *ProfileSession {
	session, exists := s.sessions[profileID]
	if !exists {
		session = &ProfileSession{}
		s.sessions[profileID] = session
	}
	session.LastActivity = s.now()
	return session
}

func (s *GameService) manager(profileID string) *SessionManager {
	return NewSessionManager(storage.Scoped(s.store, profileID))
}

// Load decides the entry point for a page load and deals a game when the
// profile is registered but has not won yet. A game already in progress is
// kept.
func (s *GameService) Load(ctx context.Context, profileID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, profileID)
}

func (s *GameService) load(ctx context.Context, profileID string) (View, error) {
	mgr := s.manager(profileID)
	view := View{
		Surface: SurfaceView{
			Width:  s.cfg.Surface.Width,
			Height: s.cfg.Surface.Height,
			Radius: s.cfg.ScratchRadius,
		},
		Countdown: Countdown(s.now(), s.cfg.PromotionEndsAt),
	}

	if identity, ok := mgr.LoadIdentity(ctx); ok {
		view.Identity = &identity
		if outcome, ok := mgr.LoadOutcome(ctx, identity); ok {
			view.Outcome = &outcome
		}
	}
	view.Entry = DecideEntryPoint(view.Identity, view.Outcome)

	session := s.getSession(profileID)
	if view.Entry != models.StartNewGame {
		session.Game = nil
		return view, nil
	}

	if session.Game == nil || !session.Game.Active() {
		if view.Countdown.Expired {
			session.Game = nil
			return view, nil
		}
		game, err := scratch.NewSession(s.cfg.CardCount, s.cfg.PrizePool, s.cfg.Surface, s.rng, s.sink)
		if err != nil {
			return View{}, fmt.Errorf("deal game: %w", err)
		}
		session.Game = game
		session.GameID = uuid.New()
		logger.Infof("dealt game %s for profile %s", session.GameID, profileID)
	}

	view.GameID = session.GameID.String()
	view.Cards = cardViews(session.Game.Cards())
	return view, nil
}

// Register records name as the profile's identity and loads the page. A blank
// name changes nothing and the view still asks for registration.
func (s *GameService) Register(ctx context.Context, profileID, name string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if identity, ok := s.manager(profileID).RegisterIdentity(ctx, name); ok {
		logger.Infof("registered %q for profile %s", identity.Name, profileID)
	}
	return s.load(ctx, profileID)
}

// Scratch applies one scratch input at (x, y) on a card of the profile's game.
// The first card revealed wins the game and its value is recorded as the
// profile's outcome.
func (s *GameService) Scratch(ctx context.Context, profileID string, cardIndex int, x, y float64) (ScratchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mgr := s.manager(profileID)
	identity, ok := mgr.LoadIdentity(ctx)
	if !ok {
		return ScratchResult{}, ErrNotRegistered
	}
	session := s.getSession(profileID)
	if session.Game == nil {
		return ScratchResult{}, ErrNoActiveGame
	}
	if session.Game.Active() && Countdown(s.now(), s.cfg.PromotionEndsAt).Expired {
		return ScratchResult{}, ErrPromotionEnded
	}

	res, err := session.Game.ApplyReveal(cardIndex, scratch.Point{X: x, Y: y}, s.cfg.ScratchRadius)
	if err != nil {
		return ScratchResult{}, err
	}
	card, err := session.Game.Card(cardIndex)
	if err != nil {
		return ScratchResult{}, err
	}

	result := ScratchResult{
		Kind: res.Kind,
		Card: cardView(cardIndex, card),
		Hint: ProgressHint(bestFraction(session.Game.Cards())),
	}
	if !res.Won() {
		return result, nil
	}

	outcome, err := mgr.RecordOutcome(ctx, identity, res.Value)
	if err != nil {
		// The win still shows on this page; a later visit will deal a new game.
		logger.Warningf("record outcome for profile %s: %v", profileID, err)
	}
	logger.Infof("game %s won by %q with %d", session.GameID, identity.Name, res.Value)
	result.Outcome = &outcome
	return result, nil
}

// Reset replays the recorded outcome or, if there is none, deals a fresh game.
func (s *GameService) Reset(ctx context.Context, profileID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getSession(profileID).Game = nil
	return s.load(ctx, profileID)
}

// Share returns the share link for the profile's recorded outcome.
func (s *GameService) Share(ctx context.Context, profileID string) (string, error) {
	mgr := s.manager(profileID)
	identity, ok := mgr.LoadIdentity(ctx)
	if !ok {
		return "", ErrNotRegistered
	}
	outcome, ok := mgr.LoadOutcome(ctx, identity)
	if !ok {
		return "", ErrNoOutcome
	}
	return ShareURL(s.cfg.ShareBaseURL, outcome), nil
}

// CleanUpInactiveSessions drops in-memory games idle for longer than ttl.
// Persisted identities and outcomes are untouched.
func (s *GameService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for profileID, session := range s.sessions {
		if s.now().Sub(session.LastActivity) > ttl {
			delete(s.sessions, profileID)
			removed++
		}
	}
	return removed
}

// ClearSession drops the in-memory game of a profile.
func (s *GameService) ClearSession(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, profileID)
	logger.Infof("Cleared session for profile: %s", profileID)
}

func cardView(index int, card models.Card) CardView {
	v := CardView{Index: index, RevealFraction: card.RevealFraction, State: card.State}
	if card.State == models.CardRevealed {
		value := card.Value
		v.Value = &value
	}
	return v
}

func cardViews(cards []models.Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = cardView(i, c)
	}
	return out
}

func bestFraction(cards []models.Card) float64 {
	best := 0.0
	for _, c := range cards {
		if c.RevealFraction > best {
			best = c.RevealFraction
		}
	}
	return best
}

// LogSink logs reveal events. Progress is only logged when Verbose is set.
type LogSink struct {
	Verbose bool
}

func (l LogSink) CardProgress(index int, card models.Card) {
	if l.Verbose {
		logger.Infof("card %d at %.1f%% (%s)", index, card.RevealFraction*100, card.State)
	}
}

func (l LogSink) SessionWon(index int, value int) {
	logger.Infof("card %d revealed prize %d", index, value)
}
