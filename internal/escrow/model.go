package escrow

import "time"

// Escrow states. Funds move strictly forward; RELEASED_TO_DOCTOR and REFUNDED
// are terminal.
const (
	StateInitiated             = "INITIATED"
	StateHeldInEscrow          = "HELD_IN_ESCROW"
	StateConsultationStarted   = "CONSULTATION_STARTED"
	StateConsultationCompleted = "CONSULTATION_COMPLETED"
	StateReleasedToDoctor      = "RELEASED_TO_DOCTOR"
	StateDisputed              = "DISPUTED"
	StateRefunded              = "REFUNDED"
)

// Dispute resolution outcomes.
const (
	OutcomePatient = "patient"
	OutcomeDoctor  = "doctor"
)

// Record tracks the platform-held funds for one appointment (1:1).
type Record struct {
	AppointmentID string     `json:"appointmentId"`
	Amount        float64    `json:"amount"`
	State         string     `json:"state"`
	DisputeReason string     `json:"disputeReason,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Terminal reports whether the record accepts no further transitions.
func (r *Record) Terminal() bool {
	return r.State == StateReleasedToDoctor || r.State == StateRefunded
}

// Progress maps each state to a completion percentage for UI display.
func Progress(state string) int {
	switch state {
	case StateInitiated:
		return 10
	case StateHeldInEscrow:
		return 35
	case StateConsultationStarted:
		return 60
	case StateConsultationCompleted:
		return 85
	case StateReleasedToDoctor, StateRefunded:
		return 100
	case StateDisputed:
		return 50
	}
	return 0
}
