package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vozurbana/civic-server/internal/models"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

// AnalyticsHandler exposes the read-only analytic queries
type AnalyticsHandler struct {
	svc     *services.AnalyticsService
	hotspot *services.HotspotWorker
	logger  *zap.SugaredLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc *services.AnalyticsService, hotspot *services.HotspotWorker, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, hotspot: hotspot, logger: logger}
}

// InteractionCounts handles GET /api/v1/analytics/interaction-counts
func (h *AnalyticsHandler) InteractionCounts(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.InteractionCountsByReport(r.Context())
	if err != nil {
		h.logger.Errorw("Interaction counts failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Productivity handles GET /api/v1/analytics/productivity
func (h *AnalyticsHandler) Productivity(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.EmployeeProductivity(r.Context())
	if err != nil {
		h.logger.Errorw("Productivity query failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Quality handles GET /api/v1/analytics/quality?status=resolved,closed&min_avg=3.5
func (h *AnalyticsHandler) Quality(w http.ResponseWriter, r *http.Request) {
	var statuses []models.ReportStatus
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status, ok := models.ParseStatus(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "Unknown status: "+raw)
			return
		}
		statuses = append(statuses, status)
	}
	if len(statuses) == 0 {
		respondError(w, http.StatusBadRequest, "At least one status required")
		return
	}

	minAvg, err := strconv.ParseFloat(r.URL.Query().Get("min_avg"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid min_avg")
		return
	}

	results, err := h.svc.HighQualityCategories(r.Context(), statuses, minAvg)
	if err != nil {
		h.logger.Errorw("Quality query failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Experts handles GET /api/v1/analytics/experts
func (h *AnalyticsHandler) Experts(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.ExpertEmployees(r.Context())
	if err != nil {
		h.logger.Errorw("Experts query failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Critical handles GET /api/v1/analytics/critical?min_interactions=5&stale_hours=48
// stale_hours is required: there is no default staleness business rule.
func (h *AnalyticsHandler) Critical(w http.ResponseWriter, r *http.Request) {
	minInteractions, err := strconv.Atoi(r.URL.Query().Get("min_interactions"))
	if err != nil || minInteractions < 0 {
		respondError(w, http.StatusBadRequest, "Invalid min_interactions")
		return
	}
	staleHours, err := strconv.ParseFloat(r.URL.Query().Get("stale_hours"), 64)
	if err != nil || staleHours < 0 {
		respondError(w, http.StatusBadRequest, "Invalid stale_hours")
		return
	}

	results, err := h.svc.CriticalReports(r.Context(), minInteractions, time.Duration(staleHours*float64(time.Hour)))
	if err != nil {
		h.logger.Errorw("Critical reports query failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Hotspots handles GET /api/v1/analytics/hotspots?min_reports=3&limit=10
// Requests for the worker's default parameters are served from the
// redis cache when it is warm; anything else runs the live query.
func (h *AnalyticsHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	defaultMin, defaultLimit := h.hotspot.Defaults()

	minReports := defaultMin
	limit := defaultLimit
	if raw := r.URL.Query().Get("min_reports"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, http.StatusBadRequest, "Invalid min_reports")
			return
		}
		minReports = v
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = v
	}

	if minReports == defaultMin && limit == defaultLimit {
		if hotspots, ok := h.hotspot.CachedHotspots(r.Context()); ok {
			respondJSON(w, http.StatusOK, hotspots)
			return
		}
	}

	results, err := h.svc.HotspotLocations(r.Context(), minReports, limit)
	if err != nil {
		h.logger.Errorw("Hotspots query failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
