package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// CatalogHandler handles category and benefit reference-data endpoints
type CatalogHandler struct {
	svc    *services.CatalogService
	logger *zap.SugaredLogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *services.CatalogService, logger *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger}
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), req.Name, req.PointValue)
	if err != nil {
		h.logger.Errorw("Failed to create category", "name", req.Name, "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateBenefit handles POST /api/v1/benefits
func (h *CatalogHandler) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	benefit, err := h.svc.CreateBenefit(r.Context(), req.Name, req.PointCost, req.Description)
	if err != nil {
		h.logger.Errorw("Failed to create benefit", "name", req.Name, "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, benefit)
}

// ListBenefits handles GET /api/v1/benefits
func (h *CatalogHandler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	benefits, err := h.svc.ListBenefits(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, benefits)
}
