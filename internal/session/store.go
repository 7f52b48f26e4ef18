// Package session keeps the calculator inputs of one browser session
// between requests. Stored inputs expire after an idle TTL.
//
// Backends:
//   - SQLiteStore: rows in the sessions table, purged by RunSweeper
//   - RedisStore:  one key per session with a native TTL
//   - MemoryStore: process-local map, purged by RunSweeper
//
// Update is an atomic read-modify-write per session, so concurrent field
// updates never lose each other's changes.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/kewo/kewo-rechner/internal/calculator"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// UpdateFunc mutates the inputs of one session. Returning an error aborts
// the update and leaves the stored inputs unchanged.
type UpdateFunc func(in *calculator.Inputs) error

// Store persists calculator inputs per session id.
type Store interface {
	// Load returns the inputs of a live session or ErrNotFound.
	Load(ctx context.Context, id string) (calculator.Inputs, error)
	// Update applies fn to the current inputs (zero inputs for a new or
	// expired session), stores the result and returns it.
	Update(ctx context.Context, id string, fn UpdateFunc) (calculator.Inputs, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores without native expiry.
type Purger interface {
	// PurgeExpired removes sessions idle since before now-ttl and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// LoadOrDefault returns the stored inputs, or zero inputs when the session
// does not exist.
func LoadOrDefault(ctx context.Context, s Store, id string) (calculator.Inputs, error) {
	in, err := s.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return calculator.Inputs{}, nil
	}
	return in, err
}

func expired(updatedAt, now time.Time, ttl time.Duration) bool {
	return !updatedAt.Add(ttl).After(now)
}
