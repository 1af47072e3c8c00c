package escrow

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/internal/observability/metrics"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/pkg/logging"
)

var escrowTracer = otel.Tracer("carevault.internal.escrow")

// Release triggers, recorded in metrics.
const (
	TriggerAdmin = "admin"
	TriggerAuto  = "auto"
)

// PaymentMarker propagates escrow outcomes back onto the appointment's
// embedded payment record.
type PaymentMarker interface {
	MarkPayment(ctx context.Context, appointmentID, status string) error
}

// Service drives the fund-holding lifecycle:
// INITIATED -> HELD_IN_ESCROW -> CONSULTATION_STARTED ->
// CONSULTATION_COMPLETED -> RELEASED_TO_DOCTOR, with DISPUTED/REFUNDED side
// branches. The machine never self-transitions; auto release is an explicit
// trigger from the worker.
type Service struct {
	store    Store
	payments PaymentMarker
	clock    pricing.Clock
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
}

// NewService constructs the escrow service.
func NewService(store Store, payments PaymentMarker, clock pricing.Clock, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if store == nil {
		panic("escrow: store required")
	}
	if clock == nil {
		clock = pricing.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, payments: payments, clock: clock, logger: logger, metrics: m}
}

// Open creates the INITIATED record for a freshly booked appointment.
func (s *Service) Open(ctx context.Context, appointmentID string, amount float64) error {
	rec := &Record{
		AppointmentID: appointmentID,
		Amount:        amount,
		State:         StateInitiated,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return err
	}
	s.logger.Info("escrow opened", "appointment_id", appointmentID, "amount", amount)
	return nil
}

// Get loads the escrow record for an appointment.
func (s *Service) Get(ctx context.Context, appointmentID string) (*Record, error) {
	return s.store.Get(ctx, appointmentID)
}

// CapturePayment marks funds as held after the gateway capture callback and
// flips the appointment's payment status to completed.
func (s *Service) CapturePayment(ctx context.Context, appointmentID string) (*Record, error) {
	rec, err := s.transition(ctx, appointmentID, "capture_payment", func(rec *Record) error {
		if rec.State != StateInitiated {
			return apperr.InvalidTransition("escrow", rec.State, "capture_payment")
		}
		rec.State = StateHeldInEscrow
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.markPayment(ctx, appointmentID, pricing.PaymentStatusCompleted)
	return rec, nil
}

// StartConsultation marks the session as begun.
func (s *Service) StartConsultation(ctx context.Context, appointmentID string) (*Record, error) {
	return s.transition(ctx, appointmentID, "start_consultation", func(rec *Record) error {
		if rec.State != StateHeldInEscrow {
			return apperr.InvalidTransition("escrow", rec.State, "start_consultation")
		}
		rec.State = StateConsultationStarted
		return nil
	})
}

// CompleteConsultation marks the session as finished and stamps the
// completion time the auto-release worker keys on.
func (s *Service) CompleteConsultation(ctx context.Context, appointmentID string) (*Record, error) {
	return s.transition(ctx, appointmentID, "complete_consultation", func(rec *Record) error {
		if rec.State != StateConsultationStarted {
			return apperr.InvalidTransition("escrow", rec.State, "complete_consultation")
		}
		now := s.clock.Now().UTC()
		rec.State = StateConsultationCompleted
		rec.CompletedAt = &now
		return nil
	})
}

// RaiseDispute freezes the funds pending admin resolution. The reason is
// mandatory and must not be blank.
func (s *Service) RaiseDispute(ctx context.Context, appointmentID, reason string) (*Record, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("reason", "dispute reason must not be empty")
	}
	return s.transition(ctx, appointmentID, "raise_dispute", func(rec *Record) error {
		if rec.State != StateHeldInEscrow && rec.State != StateConsultationStarted {
			return apperr.InvalidTransition("escrow", rec.State, "raise_dispute")
		}
		rec.State = StateDisputed
		rec.DisputeReason = reason
		return nil
	})
}

// ResolveDispute settles a dispute in the patient's favor (refund) or the
// doctor's favor (release).
func (s *Service) ResolveDispute(ctx context.Context, appointmentID, outcome string) (*Record, error) {
	if outcome != OutcomePatient && outcome != OutcomeDoctor {
		return nil, apperr.Validation("outcome", "must be patient or doctor")
	}
	rec, err := s.transition(ctx, appointmentID, "resolve_dispute", func(rec *Record) error {
		if rec.State != StateDisputed {
			return apperr.InvalidTransition("escrow", rec.State, "resolve_dispute")
		}
		if outcome == OutcomePatient {
			rec.State = StateRefunded
		} else {
			rec.State = StateReleasedToDoctor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome == OutcomePatient {
		s.markPayment(ctx, appointmentID, pricing.PaymentStatusRefunded)
	} else {
		s.metrics.ObserveRelease(TriggerAdmin)
	}
	return rec, nil
}

// ReleaseFunds pays the doctor out of a completed consultation.
func (s *Service) ReleaseFunds(ctx context.Context, appointmentID, trigger string) (*Record, error) {
	rec, err := s.transition(ctx, appointmentID, "release_funds", func(rec *Record) error {
		if rec.State != StateConsultationCompleted {
			return apperr.InvalidTransition("escrow", rec.State, "release_funds")
		}
		rec.State = StateReleasedToDoctor
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRelease(trigger)
	return rec, nil
}

// ReleaseDue releases every consultation completed at or before the given
// cutoff. Returns the number of records released.
func (s *Service) ReleaseDue(ctx context.Context, completedBefore time.Time) (int, error) {
	due, err := s.store.ListReleasable(ctx, completedBefore)
	if err != nil {
		return 0, err
	}
	released := 0
	for i := range due {
		if _, err := s.ReleaseFunds(ctx, due[i].AppointmentID, TriggerAuto); err != nil {
			s.logger.Error("auto release failed",
				"appointment_id", due[i].AppointmentID, "error", err)
			continue
		}
		released++
	}
	return released, nil
}

func (s *Service) transition(ctx context.Context, appointmentID, action string, mutate func(*Record) error) (*Record, error) {
	ctx, span := escrowTracer.Start(ctx, "escrow."+action)
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", appointmentID))

	rec, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		s.metrics.ObserveEscrowTransition(action, "not_found")
		return nil, err
	}
	fromState := rec.State

	if err := mutate(rec); err != nil {
		s.metrics.ObserveEscrowTransition(action, "rejected")
		return nil, err
	}

	if err := s.store.Update(ctx, rec, fromState); err != nil {
		if errors.Is(err, ErrStateConflict) {
			fresh, getErr := s.store.Get(ctx, appointmentID)
			if getErr != nil {
				return nil, getErr
			}
			s.metrics.ObserveEscrowTransition(action, "conflict")
			return nil, apperr.InvalidTransition("escrow", fresh.State, action)
		}
		span.RecordError(err)
		s.metrics.ObserveEscrowTransition(action, "error")
		return nil, err
	}

	s.metrics.ObserveEscrowTransition(action, "ok")
	s.logger.Info("escrow transition",
		"appointment_id", appointmentID,
		"action", action,
		"from", fromState,
		"to", rec.State,
	)
	return rec, nil
}

// markPayment is best effort; escrow state is authoritative and a failed
// payment-status write must not roll the transition back.
func (s *Service) markPayment(ctx context.Context, appointmentID, status string) {
	if s.payments == nil {
		return
	}
	if err := s.payments.MarkPayment(ctx, appointmentID, status); err != nil {
		s.logger.Error("payment status sync failed",
			"appointment_id", appointmentID, "status", status, "error", err)
	}
}
