package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/carevault/booking-platform/internal/api/respond"
	"github.com/carevault/booking-platform/pkg/logging"
)

// QuoteHandler exposes a pricing preview so the booking UI can show the
// itemized breakdown before the patient confirms.
type QuoteHandler struct {
	engine *Engine
	logger *logging.Logger
}

// NewQuoteHandler creates the quote HTTP handler.
func NewQuoteHandler(engine *Engine, logger *logging.Logger) *QuoteHandler {
	if engine == nil {
		panic("pricing: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QuoteHandler{engine: engine, logger: logger}
}

type quoteRequest struct {
	ConsultationFee    float64  `json:"consultationFee"`
	IsEmergency        bool     `json:"isEmergency"`
	Patient            *Patient `json:"patient,omitempty"`
	DoctorAvailability *float64 `json:"doctorAvailability,omitempty"`
}

// Quote computes a payment breakdown without creating anything.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	availability := 1.0
	if req.DoctorAvailability != nil {
		availability = *req.DoctorAvailability
	}
	payment, err := h.engine.Quote(r.Context(), req.ConsultationFee, req.IsEmergency, req.Patient, availability)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, payment)
}
