package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"raspadita/internal/models"
	"raspadita/internal/storage"

	"github.com/google/logger"
)

// SessionManager decides whether a profile registers, replays its outcome, or
// plays a new game. It reads and writes the profile's two persisted keys.
//
// Storage failures are recovered here: reads fall back to "not set" and the
// caller sees an unregistered profile for that page load.
type SessionManager struct {
	kv storage.KeyValue
}

// NewSessionManager creates a SessionManager over one profile's values.
func NewSessionManager(kv storage.KeyValue) *SessionManager {
	return &SessionManager{kv: kv}
}

// LoadIdentity returns the registered identity, if any.
func (m *SessionManager) LoadIdentity(ctx context.Context) (models.Identity, bool) {
	name, ok := m.read(ctx, storage.KeyUser)
	if !ok || strings.TrimSpace(name) == "" {
		return models.Identity{}, false
	}
	return models.Identity{Name: name}, true
}

// RegisterIdentity persists name as the profile's identity. A name that is
// empty after trimming is ignored and ok is false. An identity is written once:
// a registered profile gets its existing identity back whatever name is given.
// If the store cannot be written the profile stays unregistered.
func (m *SessionManager) RegisterIdentity(ctx context.Context, name string) (models.Identity, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Identity{}, false
	}
	if existing, ok := m.LoadIdentity(ctx); ok {
		return existing, true
	}
	if err := m.kv.Set(ctx, storage.KeyUser, name); err != nil {
		logger.Warningf("register identity %q: %v", name, err)
		return models.Identity{}, false
	}
	return models.Identity{Name: name}, true
}

// LoadOutcome returns the prize recorded for identity, if any. A stored value
// that is not a decimal integer is treated as absent and removed.
func (m *SessionManager) LoadOutcome(ctx context.Context, identity models.Identity) (models.Outcome, bool) {
	raw, ok := m.read(ctx, storage.KeyPrize)
	if !ok {
		return models.Outcome{}, false
	}
	prize, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Warningf("dropping malformed prize value %q: %v", raw, err)
		if err := m.kv.Delete(ctx, storage.KeyPrize); err != nil {
			logger.Warningf("delete %s: %v", storage.KeyPrize, err)
		}
		return models.Outcome{}, false
	}
	return models.Outcome{Identity: identity, PrizeValue: prize}, true
}

// RecordOutcome stores prizeValue for identity, overwriting any earlier value.
// Callers only record on the single winning reveal of a game.
func (m *SessionManager) RecordOutcome(ctx context.Context, identity models.Identity, prizeValue int) (models.Outcome, error) {
	outcome := models.Outcome{Identity: identity, PrizeValue: prizeValue}
	if err := m.kv.Set(ctx, storage.KeyPrize, strconv.Itoa(prizeValue)); err != nil {
		return outcome, err
	}
	logger.Infof("recorded prize %d for %q", prizeValue, identity.Name)
	return outcome, nil
}

func (m *SessionManager) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := m.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrStorageUnavailable) {
			logger.Warningf("read %s: %v; treating as unset", key, err)
		} else {
			logger.Errorf("read %s: %v; treating as unset", key, err)
		}
		return "", false
	}
	return value, ok
}

// DecideEntryPoint picks what a page load shows from the persisted state.
func DecideEntryPoint(identity *models.Identity, outcome *models.Outcome) models.EntryPoint {
	switch {
	case identity == nil:
		return models.ShowRegistration
	case outcome != nil:
		return models.ShowOutcome
	default:
		return models.StartNewGame
	}
}
