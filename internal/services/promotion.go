package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"raspadita/internal/models"
)

// CountdownView is the time left until the promotion ends.
type CountdownView struct {
	Expired bool   `json:"expired"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Label   string `json:"label"`
	// Open is true when the promotion has no end date.
	Open bool `json:"open,omitempty"`
}

// Countdown reports the time left between now and endsAt. A zero endsAt
// means the promotion never ends.
func Countdown(now, endsAt time.Time) CountdownView {
	if endsAt.IsZero() {
		return CountdownView{Open: true}
	}
	left := endsAt.Sub(now)
	if left <= 0 {
		return CountdownView{Expired: true, Label: "¡Promoción finalizada!"}
	}

	v := CountdownView{
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left % (24 * time.Hour) / time.Hour),
		Minutes: int(left % time.Hour / time.Minute),
		Seconds: int(left % time.Minute / time.Second),
	}
	switch {
	case v.Days > 0:
		v.Label = fmt.Sprintf("Termina en: %dd %dh %dm %ds", v.Days, v.Hours, v.Minutes, v.Seconds)
	case v.Hours > 0:
		v.Label = fmt.Sprintf("Termina en: %dh %dm %ds", v.Hours, v.Minutes, v.Seconds)
	case v.Minutes > 0:
		v.Label = fmt.Sprintf("¡ÚLTIMOS MINUTOS! %dm %ds", v.Minutes, v.Seconds)
	default:
		v.Label = fmt.Sprintf("¡ÚLTIMOS SEGUNDOS! %ds", v.Seconds)
	}
	return v
}

// ProgressHint is the encouragement shown for the best reveal fraction so far.
func ProgressHint(fraction float64) string {
	switch {
	case fraction < 0.30:
		return "Raspá para descubrir tu premio"
	case fraction < 0.50:
		return "¡Sigue raspando! 💫"
	default:
		return "¡Casi lo tienes! ✨"
	}
}

// ShareMessage is the text a winner shares.
func ShareMessage(outcome models.Outcome) string {
	return fmt.Sprintf("🎉 ¡Gané un Bono del 100%% en Raspadita Ganadora! 🍀\n\nMi número ganador: %d\n\n", outcome.PrizeValue)
}

// ShareURL builds a share link of the form <base>?text=<message>.
func ShareURL(base string, outcome models.Outcome) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "text=" + url.QueryEscape(ShareMessage(outcome))
}
