package appointments

import (
	"context"
	"errors"
)

// ErrStatusConflict is returned by Update when the stored status no longer
// matches the status the caller read. The service treats it as a lost race
// and surfaces a state-transition error against the fresh state.
var ErrStatusConflict = errors.New("appointments: status changed concurrently")

// Repository persists appointments. Update is a compare-and-swap on status so
// that accept/cancel/dispute races keep single-writer-per-aggregate semantics
// regardless of the backing store.
type Repository interface {
	Create(ctx context.Context, apt *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, apt *Appointment, fromStatus string) error
}
