package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ktanaka/shucal/internal/schedule"
)

// Store is a source of schedule records for one owner. Implementations are
// the remote HTTP store, the local JSON file store, and a composite of both.
type Store interface {
	// Schedules returns the owner's records whose date falls in the given
	// "YYYY-MM" month.
	Schedules(ctx context.Context, owner, month string) ([]schedule.Record, error)
	// Create persists a new record. The caller refetches afterwards rather
	// than relying on a returned body.
	Create(ctx context.Context, rec schedule.Record) error
	// Watch returns a channel that signals when the underlying data changed
	// outside this process. Returns nil if watching is not supported.
	Watch() (<-chan ChangeEvent, error)
	// StopWatching stops any change watching.
	StopWatching() error
}

// ChangeEvent signals an out-of-band change to a store's data.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// FetchError wraps a failed month fetch. The UI keeps the last-known-good
// schedule list and surfaces a transient notice.
type FetchError struct {
	Month string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching schedules for %s: %v", e.Month, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError wraps a rejected or failed create. The modal stays open with
// the draft intact.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("creating schedule: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
