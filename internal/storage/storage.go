// Package storage defines the per-profile key-value store that stands in for
// a browser's local storage.
package storage

import (
	"context"
	"errors"
)

// Keys of the two values a profile may hold.
const (
	KeyUser  = "raspadita_user"
	KeyPrize = "raspadita_prize"
)

// ErrStorageUnavailable is returned when the backing store cannot be read or
// written, or has been closed.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store holds string values per browser profile. A missing key is reported
// with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, profileID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, profileID, key, value string) error
	Delete(ctx context.Context, profileID, key string) error
	Close() error
}

// KeyValue is the view of a Store from inside a single profile.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	store     Store
	profileID string
}

// Scoped binds store to one profile.
func Scoped(store Store, profileID string) KeyValue {
	return scoped{store: store, profileID: profileID}
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.profileID, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.profileID, key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.profileID, key)
}
