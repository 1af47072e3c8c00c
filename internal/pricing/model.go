package pricing

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
)

// Payment methods.
const (
	MethodCard   = "card"
	MethodUPI    = "upi"
	MethodWallet = "wallet"
)

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Payment is the itemized breakdown for a consultation. It is computed once
// by the engine and embedded immutably in the appointment; only Status and
// PaymentMethod change afterwards.
type Payment struct {
	ConsultationFee      float64  `json:"consultationFee"`
	PlatformFee          float64  `json:"platformFee"`
	EmergencySurcharge   *float64 `json:"emergencySurcharge,omitempty"`
	SubscriptionDiscount *float64 `json:"subscriptionDiscount,omitempty"`
	TotalAmount          float64  `json:"totalAmount"`
	Status               string   `json:"status"`
	PaymentMethod        string   `json:"paymentMethod"`
}

// Subscription is the patient's plan as known at evaluation time. Only Status
// gates the discount; the date window is informational.
type Subscription struct {
	Status    string  `json:"status"`
	Discount  float64 `json:"discount"`
	StartDate string  `json:"startDate,omitempty"`
	EndDate   string  `json:"endDate,omitempty"`
}

// Patient carries the slice of the patient record the engine needs.
type Patient struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
