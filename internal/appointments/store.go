package appointments

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

// Store is the postgres-backed Repository.
type Store struct {
	db DB
}

// NewStore creates an appointment store over a pgx pool or transaction.
func NewStore(db DB) *Store {
	if db == nil {
		panic("appointments: db required")
	}
	return &Store{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, date, slot_start, slot_end, slot_available,
	       type, status, otp, otp_verified, rejection_reason,
	       consultation_fee, platform_fee, emergency_surcharge, subscription_discount,
	       total_amount, payment_status, payment_method, created_at, updated_at`

// Create inserts a new appointment row.
func (s *Store) Create(ctx context.Context, apt *Appointment) error {
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, slot_start, slot_end, slot_available,
			type, status, otp, otp_verified, rejection_reason,
			consultation_fee, platform_fee, emergency_surcharge, subscription_discount,
			total_amount, payment_status, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		apt.ID, apt.PatientID, apt.DoctorID, apt.Date, apt.TimeSlot.Start, apt.TimeSlot.End, apt.TimeSlot.Available,
		apt.Type, apt.Status, apt.OTP, apt.OTPVerified, nullIfEmpty(apt.RejectionReason),
		apt.Payment.ConsultationFee, apt.Payment.PlatformFee, apt.Payment.EmergencySurcharge, apt.Payment.SubscriptionDiscount,
		apt.Payment.TotalAmount, apt.Payment.Status, apt.Payment.PaymentMethod, apt.CreatedAt, apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// Get loads one appointment by id.
func (s *Store) Get(ctx context.Context, id string) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)
	apt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment", id)
		}
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	return apt, nil
}

// Update writes the mutable fields iff status still matches fromStatus.
func (s *Store) Update(ctx context.Context, apt *Appointment, fromStatus string) error {
	apt.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET status = $1, otp_verified = $2, rejection_reason = $3,
		    payment_status = $4, payment_method = $5, updated_at = $6
		WHERE id = $7 AND status = $8`,
		apt.Status, apt.OTPVerified, nullIfEmpty(apt.RejectionReason),
		apt.Payment.Status, apt.Payment.PaymentMethod, apt.UpdatedAt,
		apt.ID, fromStatus,
	)
	if err != nil {
		return fmt.Errorf("appointments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or its status moved under us.
		if _, getErr := s.Get(ctx, apt.ID); getErr != nil {
			return getErr
		}
		return ErrStatusConflict
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var apt Appointment
	var rejection *string
	err := row.Scan(
		&apt.ID, &apt.PatientID, &apt.DoctorID, &apt.Date,
		&apt.TimeSlot.Start, &apt.TimeSlot.End, &apt.TimeSlot.Available,
		&apt.Type, &apt.Status, &apt.OTP, &apt.OTPVerified, &rejection,
		&apt.Payment.ConsultationFee, &apt.Payment.PlatformFee,
		&apt.Payment.EmergencySurcharge, &apt.Payment.SubscriptionDiscount,
		&apt.Payment.TotalAmount, &apt.Payment.Status, &apt.Payment.PaymentMethod,
		&apt.CreatedAt, &apt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		apt.RejectionReason = *rejection
	}
	return &apt, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
