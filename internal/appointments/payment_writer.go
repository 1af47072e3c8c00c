package appointments

import (
	"context"
	"fmt"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/internal/pricing"
)

// PaymentStatusWriter lets the escrow lifecycle stamp capture/refund outcomes
// onto the appointment's embedded payment without reaching into the full
// service.
type PaymentStatusWriter struct {
	repo Repository
}

// NewPaymentStatusWriter creates a writer over the appointment repository.
func NewPaymentStatusWriter(repo Repository) *PaymentStatusWriter {
	if repo == nil {
		panic("appointments: repository required")
	}
	return &PaymentStatusWriter{repo: repo}
}

// MarkPayment updates only the embedded payment's status; the appointment
// lifecycle status is untouched.
func (w *PaymentStatusWriter) MarkPayment(ctx context.Context, id, status string) error {
	switch status {
	case pricing.PaymentStatusPending, pricing.PaymentStatusCompleted, pricing.PaymentStatusRefunded:
	default:
		return apperr.Validation("paymentStatus", "unknown status "+status)
	}
	apt, err := w.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	apt.Payment.Status = status
	if err := w.repo.Update(ctx, apt, apt.Status); err != nil {
		return fmt.Errorf("appointments: mark payment: %w", err)
	}
	return nil
}
