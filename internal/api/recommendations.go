package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/philiplawlor/fm-copilot/internal/cache"
	"github.com/philiplawlor/fm-copilot/internal/events"
	"github.com/philiplawlor/fm-copilot/internal/metrics"
	"github.com/philiplawlor/fm-copilot/internal/recommender"
)

type RecommendationsHandler struct {
	engine   *recommender.Engine
	cache    cache.Cache
	events   events.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewRecommendationsHandler(engine *recommender.Engine, c cache.Cache, ev events.Client, ttl time.Duration, logger *slog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{
		engine:   engine,
		cache:    c,
		events:   ev,
		cacheTTL: ttl,
		logger:   logger,
	}
}

type RecommendRequest struct {
	WorkOrderID int64 `json:"work_order_id"`
}

func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecommendationRequests.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.WorkOrderID <= 0 {
		metrics.RecommendationRequests.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "work_order_id required"})
		return
	}

	orgID := OrgID(r.Context())
	key := cache.RecommendationKey(orgID, req.WorkOrderID)

	if h.cache != nil {
		var cached recommender.Recommendation
		if h.cache.Get(r.Context(), key, &cached) {
			metrics.RecommendationRequests.WithLabelValues("cache_hit").Inc()
			writeJSON(w, http.StatusOK, &cached)
			return
		}
	}

	rec, err := h.engine.Recommend(r.Context(), req.WorkOrderID, orgID)
	if err != nil {
		switch {
		case errors.Is(err, recommender.ErrWorkOrderNotFound):
			metrics.RecommendationRequests.WithLabelValues("not_found").Inc()
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, recommender.ErrNoCandidates):
			metrics.RecommendationRequests.WithLabelValues("no_candidates").Inc()
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			metrics.RecommendationRequests.WithLabelValues("error").Inc()
			h.logger.Error("recommendation failed", "work_order_id", req.WorkOrderID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	if h.cache != nil {
		h.cache.Set(r.Context(), key, rec, h.cacheTTL)
	}

	if h.events != nil {
		evt := events.RecommendationProducedEvent{
			EventID:         uuid.NewString(),
			WorkOrderID:     req.WorkOrderID,
			OrganizationID:  orgID,
			AssigneeType:    string(rec.Recommended.Type),
			AssigneeID:      rec.Recommended.ID,
			ConfidenceScore: rec.Recommended.ConfidenceScore,
			Reasoning:       rec.Recommended.Reasoning,
			Timestamp:       time.Now().UTC(),
		}
		if err := h.events.Publish(events.SubjectWorkOrderRecommended(req.WorkOrderID), evt); err != nil {
			h.logger.Warn("failed to publish recommendation event", "work_order_id", req.WorkOrderID, "error", err)
		}
	}

	metrics.RecommendationRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, rec)
}
