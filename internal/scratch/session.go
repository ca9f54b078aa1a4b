// Package scratch tracks reveal progress of the cards in one scratch-card game
// and decides when the game is won.
package scratch

import (
	"fmt"
	"math"

	"raspadita/internal/models"
)

// RevealThreshold is the share of a card's surface that must be cleared,
// strictly exceeded, before the card counts as revealed.
const RevealThreshold = 0.5

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// RenderSink receives reveal events synchronously, at the moment they happen.
type RenderSink interface {
	// CardProgress is called whenever a card's reveal fraction grows.
	CardProgress(index int, card models.Card)
	// SessionWon is called once, when the first card is revealed.
	SessionWon(index int, value int)
}

// Session is a single game: a fixed row of cards of which at most one may
// ever be revealed. It is not safe for concurrent use.
type Session struct {
	cards         []models.Card
	surfaces      []*occupancy
	surface       Surface
	state         models.SessionState
	revealedCount int
	sink          RenderSink
}

// NewSession deals cardCount cards, each with a value drawn uniformly (with
// replacement) from pool. Duplicate pool entries are collapsed so every
// distinct value is equally likely. sink may be nil.
func NewSession(cardCount int, pool []int, surface Surface, rng RNG, sink RenderSink) (*Session, error) {
	if cardCount < 1 {
		return nil, fmt.Errorf("%w: card count %d", ErrInvalidArgument, cardCount)
	}
	values := distinct(pool)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty value pool", ErrInvalidArgument)
	}
	if err := surface.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cards:    make([]models.Card, cardCount),
		surfaces: make([]*occupancy, cardCount),
		surface:  surface,
		state:    models.SessionActive,
		sink:     sink,
	}
	for i := range s.cards {
		s.cards[i] = models.Card{
			Value: values[rng.Intn(len(values))],
			State: models.CardHidden,
		}
		s.surfaces[i] = newOccupancy(surface)
	}
	return s, nil
}

// ApplyReveal clears the disk of the given radius around point on one card.
//
// Input is ignored (RevealNoChange) once the session has concluded, when the
// card is already revealed, or when the disk clears nothing new. The first
// card whose reveal fraction exceeds RevealThreshold is revealed, the session
// concludes, and the result carries RevealSessionWon with the card's value.
func (s *Session) ApplyReveal(cardIndex int, point Point, radius float64) (models.RevealResult, error) {
	if cardIndex < 0 || cardIndex >= len(s.cards) {
		return models.RevealResult{}, fmt.Errorf("%w: card index %d out of range [0, %d)", ErrInvalidArgument, cardIndex, len(s.cards))
	}
	if !finite(point.X) || !finite(point.Y) {
		return models.RevealResult{}, fmt.Errorf("%w: point (%v, %v)", ErrInvalidArgument, point.X, point.Y)
	}
	if !finite(radius) || radius <= 0 {
		return models.RevealResult{}, fmt.Errorf("%w: radius %v", ErrInvalidArgument, radius)
	}

	card := &s.cards[cardIndex]
	result := models.RevealResult{
		Kind:      models.RevealNoChange,
		CardIndex: cardIndex,
		Fraction:  card.RevealFraction,
		State:     card.State,
	}
	if s.state == models.SessionConcluded || card.State == models.CardRevealed {
		return result, nil
	}

	if s.surfaces[cardIndex].clear(point, radius) == 0 {
		return result, nil
	}
	card.RevealFraction = s.surfaces[cardIndex].fraction()
	result.Fraction = card.RevealFraction

	if card.RevealFraction <= RevealThreshold {
		result.Kind = models.RevealProgress
		if s.sink != nil {
			s.sink.CardProgress(cardIndex, *card)
		}
		return result, nil
	}

	card.State = models.CardRevealed
	s.revealedCount++
	s.state = models.SessionConcluded

	result.Kind = models.RevealSessionWon
	result.State = card.State
	result.Value = card.Value
	if s.sink != nil {
		s.sink.CardProgress(cardIndex, *card)
		s.sink.SessionWon(cardIndex, card.Value)
	}
	return result, nil
}

// Cards returns a copy of the session's cards.
func (s *Session) Cards() []models.Card {
	out := make([]models.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Card returns the card at index.
func (s *Session) Card(index int) (models.Card, error) {
	if index < 0 || index >= len(s.cards) {
		return models.Card{}, fmt.Errorf("%w: card index %d out of range [0, %d)", ErrInvalidArgument, index, len(s.cards))
	}
	return s.cards[index], nil
}

// State returns the session state.
func (s *Session) State() models.SessionState { return s.state }

// Active reports whether the session is still accepting input.
func (s *Session) Active() bool { return s.state == models.SessionActive }

// RevealedCount is 0 until the game is won and 1 afterwards.
func (s *Session) RevealedCount() int { return s.revealedCount }

// Surface returns the surface geometry shared by all cards.
func (s *Session) Surface() Surface { return s.surface }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func distinct(pool []int) []int {
	seen := make(map[int]bool, len(pool))
	out := make([]int, 0, len(pool))
	for _, v := range pool {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
