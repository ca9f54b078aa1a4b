// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"raspadita/internal/scratch"
)

// Config holds the settings of the raspadita server.
type Config struct {
	Addr string `env:"RASPADITA_ADDR" envDefault:":8080"`
	// DBPath is the SQLite file holding profile values; empty keeps them in memory.
	DBPath string `env:"RASPADITA_DB_PATH" envDefault:"raspadita.db"`

	CardCount     int     `env:"RASPADITA_CARD_COUNT" envDefault:"8"`
	PrizePool     []int   `env:"RASPADITA_PRIZE_POOL" envDefault:"1,2,3,4,5,6,7,8,9" envSeparator:","`
	ScratchRadius float64 `env:"RASPADITA_SCRATCH_RADIUS" envDefault:"25"`
	SurfaceWidth  float64 `env:"RASPADITA_SURFACE_WIDTH" envDefault:"200"`
	SurfaceHeight float64 `env:"RASPADITA_SURFACE_HEIGHT" envDefault:"140"`
	GridCols      int     `env:"RASPADITA_GRID_COLS" envDefault:"100"`
	GridRows      int     `env:"RASPADITA_GRID_ROWS" envDefault:"70"`

	// PromotionEndsAt is RFC3339; the zero value means the promotion never ends.
	PromotionEndsAt time.Time     `env:"RASPADITA_PROMOTION_ENDS_AT"`
	SessionTTL      time.Duration `env:"RASPADITA_SESSION_TTL" envDefault:"1h"`
	JanitorInterval time.Duration `env:"RASPADITA_JANITOR_INTERVAL" envDefault:"10m"`

	ShareBaseURL string `env:"RASPADITA_SHARE_BASE_URL" envDefault:"https://wa.me/"`
	Verbose      bool   `env:"RASPADITA_VERBOSE" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.DBPath = strings.TrimSpace(c.DBPath)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if c.CardCount < 1 {
		return fmt.Errorf("invalid RASPADITA_CARD_COUNT %d: must be at least 1", c.CardCount)
	}
	if len(c.PrizePool) == 0 {
		return fmt.Errorf("RASPADITA_PRIZE_POOL must not be empty")
	}
	if c.ScratchRadius <= 0 {
		return fmt.Errorf("invalid RASPADITA_SCRATCH_RADIUS %v: must be positive", c.ScratchRadius)
	}
	if c.SurfaceWidth <= 0 || c.SurfaceHeight <= 0 {
		return fmt.Errorf("invalid surface %vx%v: must be positive", c.SurfaceWidth, c.SurfaceHeight)
	}
	if c.GridCols < 1 || c.GridRows < 1 {
		return fmt.Errorf("invalid grid %dx%d: must be at least 1x1", c.GridCols, c.GridRows)
	}
	if c.SessionTTL <= 0 || c.JanitorInterval <= 0 {
		return fmt.Errorf("session TTL and janitor interval must be positive")
	}
	return nil
}

// Surface is the scratch surface geometry described by c.
func (c Config) Surface() scratch.Surface {
	return scratch.Surface{
		Width:  c.SurfaceWidth,
		Height: c.SurfaceHeight,
		Cols:   c.GridCols,
		Rows:   c.GridRows,
	}
}
