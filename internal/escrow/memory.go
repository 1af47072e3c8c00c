package escrow

import (
	"context"
	"sync"
	"time"

	"github.com/carevault/booking-platform/internal/apperr"
)

// InMemoryStore is a map-backed Store for development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[string]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[string]Record)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.AppointmentID] = *rec
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, appointmentID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[appointmentID]
	if !ok {
		return nil, apperr.NotFound("escrow", appointmentID)
	}
	return &rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec *Record, fromState string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[rec.AppointmentID]
	if !ok {
		return apperr.NotFound("escrow", rec.AppointmentID)
	}
	if stored.State != fromState {
		return ErrStateConflict
	}
	s.items[rec.AppointmentID] = *rec
	return nil
}

func (s *InMemoryStore) ListReleasable(_ context.Context, before time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.items {
		if rec.State == StateConsultationCompleted && rec.CompletedAt != nil && !rec.CompletedAt.After(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}
