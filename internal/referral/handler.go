package referral

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/referral-service/pkg/logging"
)

// Handler handles HTTP requests for referrals.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new referral handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Submit handles POST /referrals. The body is an arbitrary JSON object; the
// extractor tolerates the agent's wrapped-scalar shapes, so no struct
// binding happens here.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode referral payload", "error", err)
		respondJSON(w, http.StatusBadRequest, &SubmitResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	resp, err := h.service.Submit(r.Context(), payload)
	if err != nil {
		if IsValidation(err) {
			respondJSON(w, http.StatusBadRequest, &SubmitResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		// Anything unexpected becomes a generic structured failure, never a
		// raw fault.
		h.logger.Error("referral submission failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, &SubmitResponse{
			Success: false,
			Message: "internal error processing referral",
		})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// LastGPDoctorResponse is the response for the doctor-history lookup.
type LastGPDoctorResponse struct {
	Success    bool   `json:"success"`
	DoctorName string `json:"doctor_name,omitempty"`
	Message    string `json:"message,omitempty"`
}

// LastGPDoctor handles GET /patients/{patientID}/gp-doctor.
func (h *Handler) LastGPDoctor(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		respondJSON(w, http.StatusBadRequest, &LastGPDoctorResponse{Success: false, Message: "missing patient id"})
		return
	}

	name, err := h.service.LastGPDoctor(r.Context(), patientID)
	if errors.Is(err, ErrNoDoctorFound) {
		respondJSON(w, http.StatusNotFound, &LastGPDoctorResponse{Success: false, Message: "not found"})
		return
	}
	if err != nil {
		h.logger.Error("gp doctor lookup failed", "error", err, "patient_id", patientID)
		respondJSON(w, http.StatusInternalServerError, &LastGPDoctorResponse{Success: false, Message: "internal error"})
		return
	}

	respondJSON(w, http.StatusOK, &LastGPDoctorResponse{Success: true, DoctorName: name})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
