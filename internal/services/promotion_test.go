package services

import (
	"strings"
	"testing"
	"time"

	"raspadita/internal/models"
)

func TestCountdown(t *testing.T) {
	end := time.Date(2026, time.January, 31, 1, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		left    time.Duration
		label   string
		expired bool
	}{
		{"days", 2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second, "Termina en: 2d 3h 4m 5s", false},
		{"hours", 3*time.Hour + 5*time.Second, "Termina en: 3h 0m 5s", false},
		{"minutes", 4*time.Minute + 59*time.Second, "¡ÚLTIMOS MINUTOS! 4m 59s", false},
		{"seconds", 9*time.Second + 500*time.Millisecond, "¡ÚLTIMOS SEGUNDOS! 9s", false},
		{"ended", 0, "¡Promoción finalizada!", true},
		{"long ended", -time.Hour, "¡Promoción finalizada!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Countdown(end.Add(-tt.left), end)
			if got.Label != tt.label {
				t.Errorf("Expected label %q, but got %q", tt.label, got.Label)
			}
			if got.Expired != tt.expired {
				t.Errorf("Expected expired=%v, but got %v", tt.expired, got.Expired)
			}
		})
	}

	if open := Countdown(end, time.Time{}); !open.Open || open.Expired {
		t.Errorf("Expected an open promotion for a zero end date, but got %+v", open)
	}
}

func TestProgressHint(t *testing.T) {
	tests := map[float64]string{
		0:    "Raspá para descubrir tu premio",
		0.29: "Raspá para descubrir tu premio",
		0.30: "¡Sigue raspando! 💫",
		0.49: "¡Sigue raspando! 💫",
		0.50: "¡Casi lo tienes! ✨",
		1:    "¡Casi lo tienes! ✨",
	}
	for fraction, want := range tests {
		if got := ProgressHint(fraction); got != want {
			t.Errorf("ProgressHint(%v) = %q, want %q", fraction, got, want)
		}
	}
}

func TestShareURL(t *testing.T) {
	outcome := models.Outcome{Identity: models.Identity{Name: "Ana"}, PrizeValue: 7}

	msg := ShareMessage(outcome)
	if !strings.Contains(msg, "Mi número ganador: 7") || !strings.Contains(msg, "100%") {
		t.Errorf("unexpected share message: %q", msg)
	}

	got := ShareURL("https://wa.me/", outcome)
	if !strings.HasPrefix(got, "https://wa.me/?text=") {
		t.Fatalf("unexpected share url: %s", got)
	}
	if strings.ContainsAny(strings.TrimPrefix(got, "https://wa.me/?text="), " \n") {
		t.Errorf("share text is not escaped: %s", got)
	}
	if got := ShareURL("https://example.com/share?src=game", outcome); !strings.HasPrefix(got, "https://example.com/share?src=game&text=") {
		t.Errorf("unexpected share url with query: %s", got)
	}
}
