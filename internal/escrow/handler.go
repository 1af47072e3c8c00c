package escrow

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carevault/booking-platform/internal/api/respond"
	"github.com/carevault/booking-platform/pkg/logging"
)

// Handler exposes the escrow lifecycle over HTTP. Dispute resolution and
// manual release are mounted behind admin auth by the router.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the escrow HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("escrow: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

type escrowResponse struct {
	Escrow   *Record `json:"escrow"`
	Progress int     `json:"progress"`
}

// Routes mounts the patient/doctor-facing escrow endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Post("/capture", h.Capture)
	r.Post("/start", h.Start)
	r.Post("/complete", h.Complete)
	r.Post("/dispute", h.Dispute)
	return r
}

// AdminRoutes mounts the resolution/release endpoints.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/resolve", h.Resolve)
	r.Post("/release", h.Release)
	return r
}

func (h *Handler) respond(w http.ResponseWriter, rec *Record, err error) {
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, escrowResponse{Escrow: rec, Progress: Progress(rec.State)})
}

// Get returns the escrow record and its display progress.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, rec, err)
}

// Capture records the gateway's payment-captured callback.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.CapturePayment(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, rec, err)
}

// Start marks the consultation as begun.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.StartConsultation(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, rec, err)
}

// Complete marks the consultation as finished.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.CompleteConsultation(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, rec, err)
}

// Dispute freezes the funds with a mandatory reason.
func (h *Handler) Dispute(w http.ResponseWriter, r *http.Request) {
	var req disputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	rec, err := h.service.RaiseDispute(r.Context(), chi.URLParam(r, "id"), req.Reason)
	h.respond(w, rec, err)
}

// Resolve settles a dispute for the patient or the doctor.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	rec, err := h.service.ResolveDispute(r.Context(), chi.URLParam(r, "id"), req.Outcome)
	h.respond(w, rec, err)
}

// Release manually pays out a completed consultation.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.ReleaseFunds(r.Context(), chi.URLParam(r, "id"), TriggerAdmin)
	h.respond(w, rec, err)
}
