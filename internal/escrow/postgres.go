package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carevault/booking-platform/internal/apperr"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the postgres-backed Store.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates an escrow store over a pgx pool or transaction.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("escrow: db required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
		INSERT INTO escrow_records (appointment_id, amount, state, dispute_reason, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.AppointmentID, rec.Amount, rec.State, nullIfEmpty(rec.DisputeReason), rec.CompletedAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("escrow: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, appointmentID string) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT appointment_id, amount, state, dispute_reason, completed_at, created_at, updated_at
		FROM escrow_records WHERE appointment_id = $1`, appointmentID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("escrow", appointmentID)
		}
		return nil, fmt.Errorf("escrow: load: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *Record, fromState string) error {
	rec.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE escrow_records
		SET state = $1, dispute_reason = $2, completed_at = $3, updated_at = $4
		WHERE appointment_id = $5 AND state = $6`,
		rec.State, nullIfEmpty(rec.DisputeReason), rec.CompletedAt, rec.UpdatedAt,
		rec.AppointmentID, fromState,
	)
	if err != nil {
		return fmt.Errorf("escrow: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := s.Get(ctx, rec.AppointmentID); getErr != nil {
			return getErr
		}
		return ErrStateConflict
	}
	return nil
}

func (s *PostgresStore) ListReleasable(ctx context.Context, before time.Time) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT appointment_id, amount, state, dispute_reason, completed_at, created_at, updated_at
		FROM escrow_records
		WHERE state = $1 AND completed_at <= $2
		ORDER BY completed_at ASC`, StateConsultationCompleted, before)
	if err != nil {
		return nil, fmt.Errorf("escrow: list releasable: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("escrow: scan releasable: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var reason *string
	err := row.Scan(&rec.AppointmentID, &rec.Amount, &rec.State, &reason, &rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		rec.DisputeReason = *reason
	}
	return &rec, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
