package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// hotspotCacheKey is where the worker publishes the latest ranking.
const hotspotCacheKey = "analytics:hotspots"

// HotspotWorker periodically recomputes the hotspot ranking and caches
// it in redis, so the hot read path does not hit the aggregate query on
// every request.
type HotspotWorker struct {
	analytics  *AnalyticsService
	rdb        *redis.Client
	logger     *zap.SugaredLogger
	minReports int
	limit      int
}

// NewHotspotWorker creates a new background hotspot worker
func NewHotspotWorker(analytics *AnalyticsService, rdb *redis.Client, minReports, limit int, logger *zap.SugaredLogger) *HotspotWorker {
	return &HotspotWorker{
		analytics:  analytics,
		rdb:        rdb,
		logger:     logger,
		minReports: minReports,
		limit:      limit,
	}
}

// Start begins the periodic refresh loop
func (w *HotspotWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial refresh
	w.refresh(ctx, interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Hotspot worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx, interval)
		}
	}
}

func (w *HotspotWorker) refresh(ctx context.Context, ttlBase time.Duration) {
	hotspots, err := w.analytics.HotspotLocations(ctx, w.minReports, w.limit)
	if err != nil {
		w.logger.Errorw("Hotspot refresh failed", "error", err)
		return
	}

	payload, err := json.Marshal(hotspots)
	if err != nil {
		w.logger.Errorw("Hotspot marshal failed", "error", err)
		return
	}

	// TTL outlives one interval so a slow refresh never leaves a gap.
	if err := w.rdb.Set(ctx, hotspotCacheKey, payload, 2*ttlBase).Err(); err != nil {
		w.logger.Warnw("Hotspot cache write failed", "error", err)
		return
	}

	w.logger.Infow("Hotspot cache refreshed", "locations", len(hotspots))
}

// CachedHotspots returns the last published ranking, or ok=false when
// the cache is cold or redis is unavailable.
func (w *HotspotWorker) CachedHotspots(ctx context.Context) ([]models.HotspotLocation, bool) {
	payload, err := w.rdb.Get(ctx, hotspotCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			w.logger.Warnw("Hotspot cache read failed", "error", err)
		}
		return nil, false
	}

	var hotspots []models.HotspotLocation
	if err := json.Unmarshal(payload, &hotspots); err != nil {
		w.logger.Warnw("Hotspot cache decode failed", "error", err)
		return nil, false
	}
	return hotspots, true
}

// Defaults returns the parameters the worker caches for, so the handler
// can decide whether a request is served from cache.
func (w *HotspotWorker) Defaults() (minReports, limit int) {
	return w.minReports, w.limit
}
