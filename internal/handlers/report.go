package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// ReportHandler handles report lifecycle HTTP endpoints
type ReportHandler struct {
	svc    *services.ReportService
	logger *zap.SugaredLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *services.ReportService, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// File handles POST /api/v1/reports
func (h *ReportHandler) File(w http.ResponseWriter, r *http.Request) {
	var req models.FileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AuthorCPF == "" || req.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: author_cpf, category_id")
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category_id")
		return
	}

	report, err := h.svc.File(r.Context(), req.AuthorCPF, categoryID, req.Title, req.Location, req.Description)
	if err != nil {
		h.logger.Errorw("Failed to file report", "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// Get handles GET /api/v1/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Get(r.Context(), reportID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list reports", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// Transition handles POST /api/v1/reports/{id}/status
func (h *ReportHandler) Transition(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EmployeeCPF == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: employee_cpf")
		return
	}
	newStatus, ok := models.ParseStatus(req.NewStatus)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown status: "+req.NewStatus)
		return
	}

	if err := h.svc.TransitionStatus(r.Context(), reportID, newStatus, req.EmployeeCPF); err != nil {
		h.logger.Errorw("Failed to transition report", "report", reportID, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(newStatus)})
}

// Edit handles POST /api/v1/reports/{id}/edit
func (h *ReportHandler) Edit(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	var req models.EditAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Attribute == "" || req.EmployeeCPF == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: attribute, employee_cpf")
		return
	}

	if err := h.svc.EditAttribute(r.Context(), reportID, req.Attribute, req.NewValue, req.EmployeeCPF); err != nil {
		h.logger.Errorw("Failed to edit report", "report", reportID, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"edited": req.Attribute})
}

// History handles GET /api/v1/reports/{id}/history
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	history, err := h.svc.History(r.Context(), reportID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// reportIDParam parses the {id} URL parameter, responding 400 itself
// when the id is not a uuid.
func reportIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	reportID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid report id")
		return uuid.Nil, false
	}
	return reportID, true
}
