package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// IdentityHandler handles citizen and employee registration endpoints
type IdentityHandler struct {
	svc    *services.IdentityService
	logger *zap.SugaredLogger
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(svc *services.IdentityService, logger *zap.SugaredLogger) *IdentityHandler {
	return &IdentityHandler{svc: svc, logger: logger}
}

// RegisterCitizen handles POST /api/v1/citizens
func (h *IdentityHandler) RegisterCitizen(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterCitizenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	birthDate, ok := parseBirthDate(w, req.BirthDate)
	if !ok {
		return
	}

	citizen, err := h.svc.RegisterCitizen(r.Context(), req.CPF, req.Name, req.Email, birthDate)
	if err != nil {
		h.logger.Errorw("Failed to register citizen", "cpf", req.CPF, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, citizen)
}

// RegisterEmployee handles POST /api/v1/employees
func (h *IdentityHandler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	birthDate, ok := parseBirthDate(w, req.BirthDate)
	if !ok {
		return
	}

	employee, err := h.svc.RegisterEmployee(r.Context(), req.CPF, req.Name, req.Email, birthDate, req.Department, req.City)
	if err != nil {
		h.logger.Errorw("Failed to register employee", "cpf", req.CPF, "error", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, employee)
}

// ListCitizens handles GET /api/v1/citizens
func (h *IdentityHandler) ListCitizens(w http.ResponseWriter, r *http.Request) {
	citizens, err := h.svc.ListCitizens(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, citizens)
}

// GetCitizen handles GET /api/v1/citizens/{cpf}
func (h *IdentityHandler) GetCitizen(w http.ResponseWriter, r *http.Request) {
	cpf := chi.URLParam(r, "cpf")
	citizen, err := h.svc.GetCitizen(r.Context(), cpf)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, citizen)
}

func parseBirthDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: birth_date")
		return time.Time{}, false
	}
	birthDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid birth_date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return birthDate, true
}
