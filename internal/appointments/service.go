package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/internal/observability/metrics"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("carevault.internal.appointments")

// ErrSlotTaken is returned when another booking holds the doctor/date/slot.
var ErrSlotTaken = errors.New("appointments: slot already booked")

// SlotLocker arbitrates concurrent bookings for the same doctor/date/slot.
type SlotLocker interface {
	Acquire(ctx context.Context, doctorID, date, slotStart string) (bool, error)
	Release(ctx context.Context, doctorID, date, slotStart string) error
}

// EscrowOpener opens the payment-holding record for a new appointment.
type EscrowOpener interface {
	Open(ctx context.Context, appointmentID string, amount float64) error
}

// Service drives the appointment lifecycle:
// pending -> {confirmed, rejected}; confirmed -> {completed, cancelled}.
type Service struct {
	repo         Repository
	engine       *pricing.Engine
	locks        SlotLocker
	escrow       EscrowOpener
	clock        pricing.Clock
	cancelCutoff time.Duration
	logger       *logging.Logger
	metrics      *metrics.BookingMetrics
}

// NewService constructs the appointment service.
func NewService(repo Repository, engine *pricing.Engine, locks SlotLocker, escrow EscrowOpener, clock pricing.Clock, cancelCutoff time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if engine == nil {
		panic("appointments: pricing engine required")
	}
	if locks == nil {
		panic("appointments: slot locker required")
	}
	if clock == nil {
		clock = pricing.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:         repo,
		engine:       engine,
		locks:        locks,
		escrow:       escrow,
		clock:        clock,
		cancelCutoff: cancelCutoff,
		logger:       logger,
		metrics:      m,
	}
}

// Book prices the consultation, guards the slot, and creates the appointment
// in pending status with a fresh OTP and an initiated escrow record.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.doctor_id", req.DoctorID),
		attribute.String("appointment.type", req.Type),
	)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	acquired, err := s.locks.Acquire(ctx, req.DoctorID, req.Date, req.Slot.Start)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: slot lock: %w", err)
	}
	if !acquired {
		return nil, ErrSlotTaken
	}

	start := time.Now()
	payment, err := s.engine.Quote(ctx, req.ConsultationFee, req.Type == TypeEmergency, req.Patient, req.DoctorAvailability)
	s.metrics.ObserveQuoteLatency(time.Since(start).Seconds())
	if err != nil {
		_ = s.locks.Release(ctx, req.DoctorID, req.Date, req.Slot.Start)
		return nil, err
	}

	apt := &Appointment{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		Date:        req.Date,
		TimeSlot:    TimeSlot{Start: req.Slot.Start, End: req.Slot.End, Available: false},
		Type:        req.Type,
		Status:      StatusPending,
		OTP:         GenerateOTP(),
		OTPVerified: false,
		Payment:     *payment,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		span.RecordError(err)
		_ = s.locks.Release(ctx, req.DoctorID, req.Date, req.Slot.Start)
		return nil, err
	}

	if s.escrow != nil {
		if err := s.escrow.Open(ctx, apt.ID, payment.TotalAmount); err != nil {
			span.RecordError(err)
			// Roll the booking back so the slot is rebookable and no
			// appointment lingers without an escrow record.
			apt.Status = StatusCancelled
			if rbErr := s.repo.Update(ctx, apt, StatusPending); rbErr != nil {
				s.logger.Error("booking rollback failed", "appointment_id", apt.ID, "error", rbErr)
			}
			s.releaseSlot(ctx, apt)
			return nil, fmt.Errorf("appointments: open escrow: %w", err)
		}
	}

	s.metrics.ObserveAppointmentCreated(apt.Type)
	s.logger.Info("appointment booked",
		"appointment_id", apt.ID,
		"doctor_id", apt.DoctorID,
		"type", apt.Type,
		"total", payment.TotalAmount,
	)
	return apt, nil
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Accept moves a pending appointment to confirmed.
func (s *Service) Accept(ctx context.Context, id string) (*Appointment, error) {
	return s.transition(ctx, id, "accept", func(apt *Appointment) error {
		if apt.Status != StatusPending {
			return apperr.InvalidTransition("appointment", apt.Status, "accept")
		}
		apt.Status = StatusConfirmed
		return nil
	})
}

// Reject moves a pending appointment to rejected and frees the slot.
func (s *Service) Reject(ctx context.Context, id, reason string) (*Appointment, error) {
	apt, err := s.transition(ctx, id, "reject", func(apt *Appointment) error {
		if apt.Status != StatusPending {
			return apperr.InvalidTransition("appointment", apt.Status, "reject")
		}
		apt.Status = StatusRejected
		apt.RejectionReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseSlot(ctx, apt)
	return apt, nil
}

// Cancel moves a confirmed appointment to cancelled and frees the slot. When
// a cutoff is configured, cancellation must happen at least that long before
// the scheduled slot start.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	apt, err := s.transition(ctx, id, "cancel", func(apt *Appointment) error {
		if apt.Status != StatusConfirmed {
			return apperr.InvalidTransition("appointment", apt.Status, "cancel")
		}
		if s.cancelCutoff > 0 {
			start, err := apt.ScheduledStart(time.UTC)
			if err != nil {
				return apperr.Validation("timeSlot", "unparseable schedule")
			}
			if s.clock.Now().After(start.Add(-s.cancelCutoff)) {
				return apperr.Validation("cancel", "cancellation window has closed")
			}
		}
		apt.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseSlot(ctx, apt)
	return apt, nil
}

// VerifyOTP checks the doctor-entered code against the stored one. It only
// flips the flag; status is unchanged and treatment gating stays with the
// caller.
func (s *Service) VerifyOTP(ctx context.Context, id, code string) (*Appointment, error) {
	return s.transition(ctx, id, "verify_otp", func(apt *Appointment) error {
		if apt.Status != StatusConfirmed {
			return apperr.InvalidTransition("appointment", apt.Status, "verify_otp")
		}
		if code != apt.OTP {
			return apperr.Validation("otp", "code mismatch")
		}
		apt.OTPVerified = true
		return nil
	})
}

// Complete moves a confirmed appointment to completed. The OTP must have been
// verified first; completion is what lets escrow consultation flow finish.
func (s *Service) Complete(ctx context.Context, id string) (*Appointment, error) {
	return s.transition(ctx, id, "complete", func(apt *Appointment) error {
		if apt.Status != StatusConfirmed {
			return apperr.InvalidTransition("appointment", apt.Status, "complete")
		}
		if !apt.OTPVerified {
			return apperr.Validation("otpVerified", "otp must be verified before completion")
		}
		apt.Status = StatusCompleted
		return nil
	})
}

// transition applies mutate under compare-and-swap on status. A lost race is
// re-read and reported against the fresh state, never silently applied.
func (s *Service) transition(ctx context.Context, id, action string, mutate func(*Appointment) error) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments."+action)
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		s.metrics.ObserveTransition(action, "not_found")
		return nil, err
	}
	fromStatus := apt.Status

	if err := mutate(apt); err != nil {
		s.metrics.ObserveTransition(action, "rejected")
		return nil, err
	}

	if err := s.repo.Update(ctx, apt, fromStatus); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			fresh, getErr := s.repo.Get(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			s.metrics.ObserveTransition(action, "conflict")
			return nil, apperr.InvalidTransition("appointment", fresh.Status, action)
		}
		span.RecordError(err)
		s.metrics.ObserveTransition(action, "error")
		return nil, err
	}

	s.metrics.ObserveTransition(action, "ok")
	s.logger.Info("appointment transition",
		"appointment_id", id,
		"action", action,
		"from", fromStatus,
		"to", apt.Status,
	)
	return apt, nil
}

func (s *Service) releaseSlot(ctx context.Context, apt *Appointment) {
	if err := s.locks.Release(ctx, apt.DoctorID, apt.Date, apt.TimeSlot.Start); err != nil {
		s.logger.Error("slot release failed",
			"appointment_id", apt.ID,
			"doctor_id", apt.DoctorID,
			"error", err,
		)
	}
}
