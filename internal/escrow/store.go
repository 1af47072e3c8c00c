package escrow

import (
	"context"
	"errors"
	"time"
)

// ErrStateConflict is returned by Update when the stored state no longer
// matches what the caller read.
var ErrStateConflict = errors.New("escrow: state changed concurrently")

// Store persists escrow records keyed by appointment id. Update is a
// compare-and-swap on state.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, appointmentID string) (*Record, error)
	Update(ctx context.Context, rec *Record, fromState string) error
	// ListReleasable returns records in CONSULTATION_COMPLETED whose
	// completion timestamp is on or before the given instant.
	ListReleasable(ctx context.Context, before time.Time) ([]Record, error)
}
