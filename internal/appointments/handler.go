package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carevault/booking-platform/internal/api/respond"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/pkg/logging"
)

// Handler exposes the appointment lifecycle over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type bookRequest struct {
	PatientID          string           `json:"patientId"`
	DoctorID           string           `json:"doctorId"`
	Date               string           `json:"date"`
	TimeSlot           TimeSlot         `json:"timeSlot"`
	Type               string           `json:"type"`
	ConsultationFee    float64          `json:"consultationFee"`
	Patient            *pricing.Patient `json:"patient,omitempty"`
	DoctorAvailability *float64         `json:"doctorAvailability,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type verifyOTPRequest struct {
	OTP string `json:"otp"`
}

// Book creates a pending appointment with an itemized payment.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	availability := 1.0
	if req.DoctorAvailability != nil {
		availability = *req.DoctorAvailability
	}
	apt, err := h.service.Book(r.Context(), &BookingRequest{
		PatientID:          req.PatientID,
		DoctorID:           req.DoctorID,
		Date:               req.Date,
		Slot:               req.TimeSlot,
		Type:               req.Type,
		ConsultationFee:    req.ConsultationFee,
		Patient:            req.Patient,
		DoctorAvailability: availability,
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			respond.Conflict(w, "slot already booked")
			return
		}
		h.logger.Error("booking failed", "error", err)
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, apt)
}

// Get returns one appointment.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	apt, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}

// Accept confirms a pending appointment.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	apt, err := h.service.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}

// Reject declines a pending appointment with an optional reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	apt, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}

// Cancel withdraws a confirmed appointment.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	apt, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}

// VerifyOTP checks the in-person code.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	apt, err := h.service.VerifyOTP(r.Context(), chi.URLParam(r, "id"), req.OTP)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}

// Complete finishes a confirmed, OTP-verified appointment.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	apt, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, apt)
}
