package appointments

import (
	"context"
	"sync"

	"github.com/carevault/booking-platform/internal/apperr"
)

// InMemoryRepository is a map-backed Repository for development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]Appointment)}
}

// Create stores a new appointment.
func (r *InMemoryRepository) Create(_ context.Context, apt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[apt.ID] = *apt
	return nil
}

// Get returns a copy of the stored appointment.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	apt, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment", id)
	}
	return &apt, nil
}

// Update replaces the stored appointment iff its status still matches
// fromStatus.
func (r *InMemoryRepository) Update(_ context.Context, apt *Appointment, fromStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[apt.ID]
	if !ok {
		return apperr.NotFound("appointment", apt.ID)
	}
	if stored.Status != fromStatus {
		return ErrStatusConflict
	}
	r.items[apt.ID] = *apt
	return nil
}
