package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/philiplawlor/fm-copilot/internal/cache"
	"github.com/philiplawlor/fm-copilot/internal/cmms"
	"github.com/philiplawlor/fm-copilot/internal/events"
	"github.com/philiplawlor/fm-copilot/internal/recommender"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

// Deps bundles the collaborators the router hands to its handlers. Events,
// Cache and Syncer are optional; nil disables the feature.
type Deps struct {
	Store    store.Store
	Engine   *recommender.Engine
	Events   events.Client
	Cache    cache.Cache
	Syncer   *cmms.Syncer
	CacheTTL time.Duration

	AdminToken string
	Logger     *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(RateLimitMiddleware(120))

	reco := NewRecommendationsHandler(d.Engine, d.Cache, d.Events, d.CacheTTL, d.Logger)
	workOrders := NewWorkOrdersHandler(d.Store, d.Events, d.Cache, d.Logger)
	admin := NewAdminHandler(d.Store, d.Syncer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(OrganizationMiddleware)

		r.Post("/ai/dispatch-recommendations", reco.Recommend)

		r.Post("/work-orders", workOrders.Create)
		r.Get("/work-orders", workOrders.List)
		r.Get("/work-orders/{id}", workOrders.Get)
		r.Post("/work-orders/{id}/assign", workOrders.Assign)
		r.Post("/work-orders/{id}/complete", workOrders.Complete)
		r.Post("/work-orders/{id}/feedback", workOrders.Feedback)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Post("/integrations/sync", admin.Sync)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
