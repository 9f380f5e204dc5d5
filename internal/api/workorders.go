package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/philiplawlor/fm-copilot/internal/cache"
	"github.com/philiplawlor/fm-copilot/internal/events"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

type WorkOrdersHandler struct {
	store  store.Store
	events events.Client
	cache  cache.Cache
	logger *slog.Logger
}

func NewWorkOrdersHandler(s store.Store, ev events.Client, c cache.Cache, logger *slog.Logger) *WorkOrdersHandler {
	return &WorkOrdersHandler{store: s, events: ev, cache: c, logger: logger}
}

type CreateWorkOrderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssetID     *int64 `json:"asset_id,omitempty"`
	SiteID      *int64 `json:"site_id,omitempty"`
}

func (h *WorkOrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title required"})
		return
	}

	wo := &store.WorkOrder{
		OrganizationID: OrgID(r.Context()),
		Title:          req.Title,
		Description:    req.Description,
		Status:         store.StatusOpen,
		Priority:       req.Priority,
		AssetID:        req.AssetID,
		SiteID:         req.SiteID,
	}
	if wo.Priority == "" {
		wo.Priority = "medium"
	}

	if err := h.store.CreateWorkOrder(r.Context(), wo); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (h *WorkOrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.WorkOrderFilter{
		Source: r.URL.Query().Get("source"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := store.WorkOrderStatus(s)
		filter.Status = &status
	}
	if s := r.URL.Query().Get("site_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.SiteID = &id
		}
	}
	if s := r.URL.Query().Get("technician_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.AssignedTechnicianID = &id
		}
	}
	if s := r.URL.Query().Get("vendor_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.AssignedVendorID = &id
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Offset = n
		}
	}

	orders, err := h.store.ListWorkOrders(r.Context(), OrgID(r.Context()), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if orders == nil {
		orders = []*store.WorkOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *WorkOrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := workOrderID(w, r)
	if !ok {
		return
	}

	wo, err := h.store.GetWorkOrder(r.Context(), id, OrgID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wo == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "work order not found"})
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

type AssignRequest struct {
	TechnicianID *int64 `json:"technician_id,omitempty"`
	VendorID     *int64 `json:"vendor_id,omitempty"`
}

func (h *WorkOrdersHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := workOrderID(w, r)
	if !ok {
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if (req.TechnicianID == nil) == (req.VendorID == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of technician_id or vendor_id required"})
		return
	}

	orgID := OrgID(r.Context())
	wo, err := h.store.AssignWorkOrder(r.Context(), id, orgID, req.TechnicianID, req.VendorID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wo == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "work order not found"})
		return
	}

	// Assignment changes technician workloads, so the cached recommendation
	// is stale.
	if h.cache != nil {
		h.cache.Delete(r.Context(), cache.RecommendationKey(orgID, id))
	}

	if h.events != nil {
		evt := events.WorkOrderAssignedEvent{
			EventID:        uuid.NewString(),
			WorkOrderID:    id,
			OrganizationID: orgID,
			TechnicianID:   req.TechnicianID,
			VendorID:       req.VendorID,
			Timestamp:      time.Now().UTC(),
		}
		if err := h.events.Publish(events.SubjectWorkOrderAssigned(id), evt); err != nil {
			h.logger.Warn("failed to publish assignment event", "work_order_id", id, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, wo)
}

func (h *WorkOrdersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := workOrderID(w, r)
	if !ok {
		return
	}

	orgID := OrgID(r.Context())
	wo, err := h.store.CompleteWorkOrder(r.Context(), id, orgID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wo == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "work order not found"})
		return
	}

	if h.cache != nil {
		h.cache.Delete(r.Context(), cache.RecommendationKey(orgID, id))
	}

	if h.events != nil {
		evt := events.WorkOrderCompletedEvent{
			EventID:        uuid.NewString(),
			WorkOrderID:    id,
			OrganizationID: orgID,
			Timestamp:      time.Now().UTC(),
		}
		if err := h.events.Publish(events.SubjectWorkOrderCompleted(id), evt); err != nil {
			h.logger.Warn("failed to publish completion event", "work_order_id", id, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, wo)
}

type FeedbackRequest struct {
	UserID   int64  `json:"user_id"`
	Feedback string `json:"feedback"`
	Comment  string `json:"comment,omitempty"`
}

func (h *WorkOrdersHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := workOrderID(w, r)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	switch req.Feedback {
	case "positive", "negative", "neutral":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback must be positive, negative or neutral"})
		return
	}

	wo, err := h.store.GetWorkOrder(r.Context(), id, OrgID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wo == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "work order not found"})
		return
	}

	fb := &store.WorkOrderFeedback{
		WorkOrderID: id,
		UserID:      req.UserID,
		Feedback:    req.Feedback,
		Comment:     req.Comment,
	}
	if err := h.store.CreateFeedback(r.Context(), fb); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

func workOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid work order id"})
		return 0, false
	}
	return id, true
}
