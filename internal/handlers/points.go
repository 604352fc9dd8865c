package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// PointsHandler handles balance and redemption endpoints
type PointsHandler struct {
	svc    *services.PointsService
	logger *zap.SugaredLogger
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(svc *services.PointsService, logger *zap.SugaredLogger) *PointsHandler {
	return &PointsHandler{svc: svc, logger: logger}
}

// Balance handles GET /api/v1/citizens/{cpf}/balance
func (h *PointsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	cpf := chi.URLParam(r, "cpf")
	if cpf == "" {
		respondError(w, http.StatusBadRequest, "CPF required")
		return
	}

	balance, err := h.svc.Balance(r.Context(), cpf)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"points_balance": balance})
}

// Redeem handles POST /api/v1/citizens/{cpf}/redeem
func (h *PointsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	cpf := chi.URLParam(r, "cpf")
	if cpf == "" {
		respondError(w, http.StatusBadRequest, "CPF required")
		return
	}

	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BenefitName == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: benefit_name")
		return
	}

	redemption, err := h.svc.Redeem(r.Context(), cpf, req.BenefitName)
	if err != nil {
		h.logger.Errorw("Failed to redeem benefit", "citizen", cpf, "benefit", req.BenefitName, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, redemption)
}
