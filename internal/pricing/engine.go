package pricing

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/pkg/logging"
)

var pricingTracer = otel.Tracer("carevault.internal.pricing")

// Time-of-day bands for emergency pricing. Night wins over peak.
const (
	nightStartHour = 22
	nightEndHour   = 6
	peakStartHour  = 18

	nightMultiplier = 1.5
	peakMultiplier  = 1.3
)

// Config holds the platform-wide pricing rates.
type Config struct {
	CommissionRate           float64
	SubscriptionDiscountRate float64
	EmergencyMultiplier      float64
}

// DefaultConfig returns the standard platform rates.
func DefaultConfig() Config {
	return Config{
		CommissionRate:           0.07,
		SubscriptionDiscountRate: 0.10,
		EmergencyMultiplier:      1.5,
	}
}

// Engine computes itemized payment breakdowns. It is stateless and safe for
// concurrent use; identical inputs produce identical outputs.
type Engine struct {
	cfg    Config
	clock  Clock
	logger *logging.Logger
}

// NewEngine constructs a pricing engine.
func NewEngine(cfg Config, clock Clock, logger *logging.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{cfg: cfg, clock: clock, logger: logger}
}

// roundMoney rounds to the smallest currency unit, half away from zero.
// Amounts here are never negative, so this is round-half-up.
func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// PlatformFee returns the commission retained on a consultation fee.
func (e *Engine) PlatformFee(consultationFee float64) float64 {
	return roundMoney(consultationFee * e.cfg.CommissionRate)
}

// SubscriptionDiscount returns the discount earned by an active subscription.
// Only Status is consulted; an active subscription with a past end date still
// earns the discount.
func (e *Engine) SubscriptionDiscount(consultationFee float64, patient *Patient) float64 {
	if patient == nil || patient.Subscription == nil {
		return 0
	}
	if patient.Subscription.Status != SubscriptionActive {
		return 0
	}
	return roundMoney(consultationFee * e.cfg.SubscriptionDiscountRate)
}

// EmergencySurcharge returns the additional amount, over the base fee, charged
// for an emergency booking. doctorAvailability is normalized to [0, 1] where
// 1 means fully available; lower availability scales the surcharge up to 1.5x.
func (e *Engine) EmergencySurcharge(consultationFee float64, isNight, isPeak bool, doctorAvailability float64) float64 {
	multiplier := e.cfg.EmergencyMultiplier
	if isNight {
		multiplier *= nightMultiplier
	} else if isPeak {
		multiplier *= peakMultiplier
	}
	availabilityMultiplier := 1 + (1-doctorAvailability)*0.5
	multiplier *= availabilityMultiplier
	return roundMoney(consultationFee * (multiplier - 1))
}

// IsNightHour reports whether the clock currently falls in [22:00, 06:00).
func (e *Engine) IsNightHour() bool {
	hour := e.clock.Now().Hour()
	return hour >= nightStartHour || hour < nightEndHour
}

// IsPeakHour reports whether the clock currently falls in [18:00, 22:00).
func (e *Engine) IsPeakHour() bool {
	hour := e.clock.Now().Hour()
	return hour >= peakStartHour && hour < nightStartHour
}

// Quote computes the full payment breakdown for a booking. The total is
// clamped at zero rather than rejected when the discount exceeds the fee.
func (e *Engine) Quote(ctx context.Context, consultationFee float64, isEmergency bool, patient *Patient, doctorAvailability float64) (*Payment, error) {
	_, span := pricingTracer.Start(ctx, "pricing.quote")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("pricing.consultation_fee", consultationFee),
		attribute.Bool("pricing.emergency", isEmergency),
	)

	if consultationFee < 0 {
		return nil, apperr.Validation("consultationFee", "must not be negative")
	}
	if doctorAvailability < 0 || doctorAvailability > 1 {
		return nil, apperr.Validation("doctorAvailability", "must be in [0, 1]")
	}

	platformFee := e.PlatformFee(consultationFee)
	discount := e.SubscriptionDiscount(consultationFee, patient)

	var surcharge float64
	if isEmergency {
		surcharge = e.EmergencySurcharge(consultationFee, e.IsNightHour(), e.IsPeakHour(), doctorAvailability)
	}

	total := consultationFee + surcharge + platformFee - discount
	if total < 0 {
		total = 0
	}

	payment := &Payment{
		ConsultationFee: consultationFee,
		PlatformFee:     platformFee,
		TotalAmount:     roundMoney(total),
		Status:          PaymentStatusPending,
		PaymentMethod:   MethodCard,
	}
	if isEmergency {
		payment.EmergencySurcharge = &surcharge
	}
	if discount > 0 {
		payment.SubscriptionDiscount = &discount
	}

	e.logger.Debug("quote computed",
		"consultation_fee", consultationFee,
		"platform_fee", platformFee,
		"emergency", isEmergency,
		"total", payment.TotalAmount,
	)
	return payment, nil
}
