package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// InteractionHandler handles interaction and media endpoints
type InteractionHandler struct {
	svc    *services.InteractionService
	logger *zap.SugaredLogger
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(svc *services.InteractionService, logger *zap.SugaredLogger) *InteractionHandler {
	return &InteractionHandler{svc: svc, logger: logger}
}

// Record handles POST /api/v1/reports/{id}/interactions
func (h *InteractionHandler) Record(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	var req models.RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CitizenCPF == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: citizen_cpf")
		return
	}
	kind, ok := models.ParseKind(req.Kind)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown interaction kind: "+req.Kind)
		return
	}

	interaction, err := h.svc.Record(r.Context(), req.CitizenCPF, reportID, kind, req.Payload)
	if err != nil {
		h.logger.Errorw("Failed to record interaction", "report", reportID, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, interaction)
}

// List handles GET /api/v1/reports/{id}/interactions
func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	interactions, err := h.svc.ForReport(r.Context(), reportID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, interactions)
}

// AttachMedia handles POST /api/v1/reports/{id}/media
func (h *InteractionHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	var req models.AttachMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Link == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: link")
		return
	}

	media, err := h.svc.AttachMedia(r.Context(), reportID, req.Link)
	if err != nil {
		h.logger.Errorw("Failed to attach media", "report", reportID, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, media)
}

// ListMedia handles GET /api/v1/reports/{id}/media
func (h *InteractionHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	media, err := h.svc.MediaForReport(r.Context(), reportID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, media)
}
