// Package storage provides the flat key-value persistence used for all
// application entities. Each entity lives under its own key and is stored as
// a JSON snapshot.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys for the persisted entities. Every component writes only to its own keys.
const (
	KeyMealPlan               = "mealPlan"
	KeyCompletedMeals         = "completedMeals"
	KeyMealPlanDate           = "mealPlanDate"
	KeyFavorites              = "favorites"
	KeyUserProfile            = "userProfile"
	KeyWeightHistory          = "weightHistory"
	KeyNotificationSettings   = "notificationSettings"
	KeyCurrentPreferences     = "currentPreferences"
	KeyNotificationPermission = "notificationPermission"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a flat key-value map.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Entry is one key and the value to store under it.
type Entry struct {
	Key   string
	Value any
}

// BatchSetter is implemented by stores that can write several keys
// atomically: either every key is written or none is.
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// DecodeError reports a stored value that exists but cannot be decoded into
// the expected shape.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("storage: failed to decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load reads key and decodes its JSON value into a T.
// An absent key yields ErrNotFound; an unparseable value yields *DecodeError.
func Load[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, &DecodeError{Key: key, Err: err}
	}
	return out, nil
}

// Save encodes v as JSON and writes it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// SaveAll encodes every entry and writes them together. Stores implementing
// BatchSetter write all entries or none; other stores are written in order
// and stop at the first failure.
func SaveAll(ctx context.Context, s Store, entries ...Entry) error {
	values := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", e.Key, err)
		}
		values[e.Key] = data
	}

	if b, ok := s.(BatchSetter); ok {
		return b.SetMany(ctx, values)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, values[e.Key]); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll removes every key, stopping at the first failure.
func RemoveAll(ctx context.Context, s Store, keys ...string) error {
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil {
			return fmt.Errorf("failed to remove %s: %w", k, err)
		}
	}
	return nil
}

// IsDecodeError reports whether err is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
