package scratch_test

import (
	"errors"
	"math"
	"testing"

	"raspadita/internal/models"
	"raspadita/internal/scratch"
)

// sequenceRNG returns values from a pre-set sequence.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) Intn(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

type progressEvent struct {
	index int
	card  models.Card
}

type recordingSink struct {
	progress []progressEvent
	wins     []int
}

func (s *recordingSink) CardProgress(index int, card models.Card) {
	s.progress = append(s.progress, progressEvent{index: index, card: card})
}

func (s *recordingSink) SessionWon(_ int, value int) {
	s.wins = append(s.wins, value)
}

var pool = []int{1, 2, 3, 4, 5, 6, 7, 8, 9}

// tenByTen is a 10x10 surface measured cell by cell.
func tenByTen() scratch.Surface {
	return scratch.Surface{Width: 10, Height: 10, Cols: 10, Rows: 10}
}

func newTestSession(t *testing.T, cards int, surface scratch.Surface, sink scratch.RenderSink) *scratch.Session {
	t.Helper()
	s, err := scratch.NewSession(cards, pool, surface, &sequenceRNG{values: []int{0, 1, 2, 3, 4, 5, 6, 7}}, sink)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSession(t *testing.T) {
	rng := &sequenceRNG{values: []int{3, 0, 8, 8, 1, 4, 2, 7}}
	s, err := scratch.NewSession(8, pool, scratch.DefaultSurface(), rng, nil)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	want := []int{4, 1, 9, 9, 2, 5, 3, 8}
	cards := s.Cards()
	if len(cards) != len(want) {
		t.Fatalf("Expected %d cards, but got %d", len(want), len(cards))
	}
	for i, c := range cards {
		if c.Value != want[i] {
			t.Errorf("card %d: expected value %d, got %d", i, want[i], c.Value)
		}
		if c.State != models.CardHidden {
			t.Errorf("card %d: expected hidden, got %s", i, c.State)
		}
		if c.RevealFraction != 0 {
			t.Errorf("card %d: expected zero reveal fraction, got %v", i, c.RevealFraction)
		}
	}
	if !s.Active() || s.State() != models.SessionActive {
		t.Errorf("Expected an active session, but got %s", s.State())
	}
	if s.RevealedCount() != 0 {
		t.Errorf("Expected revealed count 0, but got %d", s.RevealedCount())
	}
}

func TestNewSession_DuplicatePoolValuesAreCollapsed(t *testing.T) {
	// Index 1 of the distinct pool {7, 3} is 3; with duplicates kept it would be 7.
	s, err := scratch.NewSession(1, []int{7, 7, 3}, scratch.DefaultSurface(), &sequenceRNG{values: []int{1}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Cards()[0].Value; got != 3 {
		t.Errorf("Expected value 3, but got %d", got)
	}
}

func TestNewSession_InvalidArguments(t *testing.T) {
	rng := &sequenceRNG{values: []int{0}}
	tests := []struct {
		name    string
		cards   int
		pool    []int
		surface scratch.Surface
	}{
		{"zero cards", 0, pool, scratch.DefaultSurface()},
		{"negative cards", -1, pool, scratch.DefaultSurface()},
		{"empty pool", 8, nil, scratch.DefaultSurface()},
		{"zero width", 8, pool, scratch.Surface{Width: 0, Height: 10, Cols: 10, Rows: 10}},
		{"nan height", 8, pool, scratch.Surface{Width: 10, Height: math.NaN(), Cols: 10, Rows: 10}},
		{"zero grid", 8, pool, scratch.Surface{Width: 10, Height: 10, Cols: 0, Rows: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scratch.NewSession(tt.cards, tt.pool, tt.surface, rng, nil)
			if !errors.Is(err, scratch.ErrInvalidArgument) {
				t.Fatalf("Expected ErrInvalidArgument, but got %v", err)
			}
		})
	}
}

func TestApplyReveal_InvalidArguments(t *testing.T) {
	s := newTestSession(t, 8, tenByTen(), nil)
	tests := []struct {
		name   string
		card   int
		point  scratch.Point
		radius float64
	}{
		{"negative index", -1, scratch.Point{X: 5, Y: 5}, 3},
		{"index past end", 8, scratch.Point{X: 5, Y: 5}, 3},
		{"nan x", 0, scratch.Point{X: math.NaN(), Y: 5}, 3},
		{"infinite y", 0, scratch.Point{X: 5, Y: math.Inf(1)}, 3},
		{"zero radius", 0, scratch.Point{X: 5, Y: 5}, 0},
		{"negative radius", 0, scratch.Point{X: 5, Y: 5}, -2},
		{"nan radius", 0, scratch.Point{X: 5, Y: 5}, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ApplyReveal(tt.card, tt.point, tt.radius)
			if !errors.Is(err, scratch.ErrInvalidArgument) {
				t.Fatalf("Expected ErrInvalidArgument, but got %v", err)
			}
		})
	}
	for i, c := range s.Cards() {
		if c.RevealFraction != 0 {
			t.Errorf("card %d changed after invalid input: %v", i, c.RevealFraction)
		}
	}
}

func TestApplyReveal_Progress(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, 8, tenByTen(), sink)

	// Every cell centre within 3 of (5,5) except the four diagonal corners.
	res, err := s.ApplyReveal(2, scratch.Point{X: 5, Y: 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != models.RevealProgress {
		t.Fatalf("Expected progress, but got %s", res.Kind)
	}
	if res.CardIndex != 2 || res.State != models.CardHidden {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Fraction != 0.32 {
		t.Errorf("Expected fraction 0.32, but got %v", res.Fraction)
	}
	if len(sink.progress) != 1 || sink.progress[0].index != 2 || sink.progress[0].card.RevealFraction != 0.32 {
		t.Errorf("unexpected progress events: %+v", sink.progress)
	}
	if len(sink.wins) != 0 {
		t.Errorf("Expected no win, but got %v", sink.wins)
	}
}

func TestApplyReveal_IdempotentUnderRepeatedInput(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, 8, tenByTen(), sink)

	first, err := s.ApplyReveal(0, scratch.Point{X: 5, Y: 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 50; i++ {
		res, err := s.ApplyReveal(0, scratch.Point{X: 5, Y: 5}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Kind != models.RevealNoChange {
			t.Fatalf("repeat %d: expected no change, got %s", i, res.Kind)
		}
		if res.Fraction != first.Fraction {
			t.Fatalf("repeat %d: fraction drifted from %v to %v", i, first.Fraction, res.Fraction)
		}
	}
	if len(sink.progress) != 1 {
		t.Errorf("Expected a single progress event, but got %d", len(sink.progress))
	}
}

func TestApplyReveal_MonotonicFraction(t *testing.T) {
	s := newTestSession(t, 1, scratch.DefaultSurface(), nil)

	points := []scratch.Point{
		{X: 10, Y: 10}, {X: 10, Y: 10}, {X: 30, Y: 12}, {X: 25, Y: 15},
		{X: -40, Y: -40}, {X: 400, Y: 20}, {X: 60, Y: 60}, {X: 58, Y: 62},
		{X: 100, Y: 70}, {X: 120, Y: 70}, {X: 140, Y: 90}, {X: 0, Y: 140},
	}
	last := 0.0
	for i, p := range points {
		res, err := s.ApplyReveal(0, p, 25)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if res.Fraction < last {
			t.Fatalf("step %d: fraction decreased from %v to %v", i, last, res.Fraction)
		}
		last = res.Fraction
	}
	if last == 0 {
		t.Fatal("Expected some progress, but fraction is still zero")
	}
}

func TestApplyReveal_PointOutsideSurface(t *testing.T) {
	s := newTestSession(t, 1, tenByTen(), nil)

	res, err := s.ApplyReveal(0, scratch.Point{X: -100, Y: -100}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != models.RevealNoChange || res.Fraction != 0 {
		t.Errorf("Expected no change, but got %+v", res)
	}
}

func TestApplyReveal_ThresholdBoundary(t *testing.T) {
	t.Run("exactly half stays hidden", func(t *testing.T) {
		// Two cells with centres at (2.5,5) and (7.5,5).
		s := newTestSession(t, 1, scratch.Surface{Width: 10, Height: 10, Cols: 2, Rows: 1}, nil)

		res, err := s.ApplyReveal(0, scratch.Point{X: 0, Y: 5}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Fraction != 0.5 {
			t.Fatalf("Expected fraction 0.5, but got %v", res.Fraction)
		}
		if res.State != models.CardHidden || res.Kind != models.RevealProgress {
			t.Fatalf("Expected the card to stay hidden, but got %+v", res)
		}
		if !s.Active() {
			t.Fatal("Expected the session to stay active")
		}

		res, err = s.ApplyReveal(0, scratch.Point{X: 10, Y: 5}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Kind != models.RevealSessionWon {
			t.Fatalf("Expected session won, but got %s", res.Kind)
		}
	})

	t.Run("just over half is revealed", func(t *testing.T) {
		// 101 unit cells in a row; 50 cleared is below half, 51 above.
		s := newTestSession(t, 1, scratch.Surface{Width: 101, Height: 1, Cols: 101, Rows: 1}, nil)

		res, err := s.ApplyReveal(0, scratch.Point{X: 0, Y: 0.5}, 49.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Fraction != 50.0/101.0 || res.State != models.CardHidden {
			t.Fatalf("Expected 50/101 hidden, but got %+v", res)
		}

		res, err = s.ApplyReveal(0, scratch.Point{X: 0, Y: 0.5}, 50.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Fraction != 51.0/101.0 {
			t.Fatalf("Expected fraction 51/101, but got %v", res.Fraction)
		}
		if res.State != models.CardRevealed || !res.Won() {
			t.Fatalf("Expected the card to be revealed, but got %+v", res)
		}
	})
}

func TestApplyReveal_AtMostOneCardRevealed(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, 8, tenByTen(), sink)

	steps := []struct {
		card   int
		point  scratch.Point
		radius float64
		want   models.RevealKind
	}{
		{0, scratch.Point{X: 5, Y: 5}, 3, models.RevealProgress},
		{1, scratch.Point{X: 5, Y: 5}, 3, models.RevealProgress},
		{0, scratch.Point{X: 0, Y: 0}, 3, models.RevealProgress},
		{1, scratch.Point{X: 5, Y: 5}, 100, models.RevealSessionWon},
		{0, scratch.Point{X: 5, Y: 5}, 100, models.RevealNoChange},
		{1, scratch.Point{X: 5, Y: 5}, 100, models.RevealNoChange},
		{2, scratch.Point{X: 5, Y: 5}, 100, models.RevealNoChange},
	}
	for i, step := range steps {
		res, err := s.ApplyReveal(step.card, step.point, step.radius)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if res.Kind != step.want {
			t.Fatalf("step %d: expected %s, got %s", i, step.want, res.Kind)
		}
	}

	revealed := 0
	for _, c := range s.Cards() {
		if c.State == models.CardRevealed {
			revealed++
		}
	}
	if revealed != 1 || s.RevealedCount() != 1 {
		t.Fatalf("Expected exactly one revealed card, but got %d (count %d)", revealed, s.RevealedCount())
	}
	if s.State() != models.SessionConcluded {
		t.Errorf("Expected concluded session, but got %s", s.State())
	}

	card0, err := s.Card(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card0.State != models.CardHidden || card0.RevealFraction != 0.4 {
		t.Errorf("Expected card 0 frozen at 0.4 hidden, but got %+v", card0)
	}

	winner, _ := s.Card(1)
	if len(sink.wins) != 1 || sink.wins[0] != winner.Value {
		t.Errorf("Expected one win event with value %d, but got %v", winner.Value, sink.wins)
	}
}

func TestApplyReveal_WinEventIsSynchronous(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, 3, tenByTen(), sink)
	card, _ := s.Card(2)

	res, err := s.ApplyReveal(2, scratch.Point{X: 5, Y: 5}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Won() || res.Value != card.Value {
		t.Fatalf("Expected a win carrying %d, but got %+v", card.Value, res)
	}
	if len(sink.wins) != 1 {
		t.Fatalf("Expected the win event before ApplyReveal returned, but got %v", sink.wins)
	}
	last := sink.progress[len(sink.progress)-1]
	if last.index != 2 || last.card.State != models.CardRevealed || last.card.RevealFraction != 1 {
		t.Errorf("unexpected final progress event: %+v", last)
	}
}
