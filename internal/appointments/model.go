package appointments

import (
	"strings"
	"time"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/internal/pricing"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// Appointment types.
const (
	TypeNormal    = "normal"
	TypeEmergency = "emergency"
)

// TimeSlot is a doctor's bookable window within a day.
type TimeSlot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// Appointment is the booking aggregate. It is never deleted, only
// status-transitioned; the embedded payment breakdown is computed once at
// booking time.
type Appointment struct {
	ID              string          `json:"id"`
	PatientID       string          `json:"patientId"`
	DoctorID        string          `json:"doctorId"`
	Date            string          `json:"date"`
	TimeSlot        TimeSlot        `json:"timeSlot"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	OTP             string          `json:"otp"`
	OTPVerified     bool            `json:"otpVerified"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	Payment         pricing.Payment `json:"payment"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ScheduledStart resolves the appointment's date and slot start to an instant
// in the given location.
func (a *Appointment) ScheduledStart(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.TimeSlot.Start, loc)
}

// Terminal reports whether the appointment accepts no further transitions.
func (a *Appointment) Terminal() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// BookingRequest carries everything the service needs to create an
// appointment. DoctorAvailability is normalized to [0, 1].
type BookingRequest struct {
	PatientID          string
	DoctorID           string
	Date               string
	Slot               TimeSlot
	Type               string
	ConsultationFee    float64
	Patient            *pricing.Patient
	DoctorAvailability float64
}

// Validate checks structural validity; pricing bounds are enforced by the
// engine itself.
func (r *BookingRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return apperr.Validation("patientId", "required")
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return apperr.Validation("doctorId", "required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return apperr.Validation("date", "must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", r.Slot.Start); err != nil {
		return apperr.Validation("timeSlot.start", "must be HH:MM")
	}
	if _, err := time.Parse("15:04", r.Slot.End); err != nil {
		return apperr.Validation("timeSlot.end", "must be HH:MM")
	}
	if r.Type != TypeNormal && r.Type != TypeEmergency {
		return apperr.Validation("type", "must be normal or emergency")
	}
	return nil
}
