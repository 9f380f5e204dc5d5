package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/philiplawlor/fm-copilot/internal/cache"
	"github.com/philiplawlor/fm-copilot/internal/recommender"
	"github.com/philiplawlor/fm-copilot/internal/scoring"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

// Mocks

type mockStore struct {
	workOrders map[int64]*store.WorkOrder
	contexts   map[int64]*store.WorkOrderContext
	techs      []*store.Technician
	vendors    []*store.Vendor
	feedback   []*store.WorkOrderFeedback
	nextID     int64
}

func newMockStore() *mockStore {
	return &mockStore{
		workOrders: make(map[int64]*store.WorkOrder),
		contexts:   make(map[int64]*store.WorkOrderContext),
		nextID:     1,
	}
}

func (m *mockStore) GetWorkOrderContext(_ context.Context, id, orgID int64) (*store.WorkOrderContext, error) {
	wo := m.contexts[id]
	if wo == nil || wo.OrganizationID != orgID {
		return nil, nil
	}
	return wo, nil
}

func (m *mockStore) ListAvailableTechnicians(_ context.Context, _ int64) ([]*store.Technician, error) {
	return m.techs, nil
}

func (m *mockStore) ListActiveVendors(_ context.Context, _ int64) ([]*store.Vendor, error) {
	return m.vendors, nil
}

func (m *mockStore) GetRequiredSkills(_ context.Context, _ int64) (store.SkillList, error) {
	return nil, nil
}

func (m *mockStore) GetFeedbackScore(_ context.Context, _ int64, _ int) (*float64, error) {
	return nil, nil
}

func (m *mockStore) CreateWorkOrder(_ context.Context, wo *store.WorkOrder) error {
	wo.ID = m.nextID
	m.nextID++
	wo.CreatedAt = time.Now()
	wo.UpdatedAt = wo.CreatedAt
	m.workOrders[wo.ID] = wo
	return nil
}

func (m *mockStore) GetWorkOrder(_ context.Context, id, orgID int64) (*store.WorkOrder, error) {
	wo := m.workOrders[id]
	if wo == nil || wo.OrganizationID != orgID {
		return nil, nil
	}
	return wo, nil
}

func (m *mockStore) ListWorkOrders(_ context.Context, orgID int64, _ store.WorkOrderFilter) ([]*store.WorkOrder, error) {
	var out []*store.WorkOrder
	for _, wo := range m.workOrders {
		if wo.OrganizationID == orgID {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (m *mockStore) AssignWorkOrder(_ context.Context, id, orgID int64, technicianID, vendorID *int64) (*store.WorkOrder, error) {
	wo := m.workOrders[id]
	if wo == nil || wo.OrganizationID != orgID {
		return nil, nil
	}
	wo.AssignedTechnicianID = technicianID
	wo.AssignedVendorID = vendorID
	wo.Status = store.StatusAssigned
	return wo, nil
}

func (m *mockStore) CompleteWorkOrder(_ context.Context, id, orgID int64) (*store.WorkOrder, error) {
	wo := m.workOrders[id]
	if wo == nil || wo.OrganizationID != orgID {
		return nil, nil
	}
	now := time.Now()
	wo.Status = store.StatusCompleted
	wo.CompletedAt = &now
	return wo, nil
}

func (m *mockStore) ImportWorkOrder(_ context.Context, wo *store.WorkOrder) error {
	return m.CreateWorkOrder(context.Background(), wo)
}

func (m *mockStore) CreateFeedback(_ context.Context, fb *store.WorkOrderFeedback) error {
	fb.ID = int64(len(m.feedback) + 1)
	m.feedback = append(m.feedback, fb)
	return nil
}

func (m *mockStore) GetDispatchStats(_ context.Context, _ int64) (*store.DispatchStats, error) {
	return &store.DispatchStats{TotalOpen: 3}, nil
}

func (m *mockStore) Close() error { return nil }

type mockCache struct {
	entries map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string, v interface{}) bool {
	raw, ok := m.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (m *mockCache) Set(_ context.Context, key string, v interface{}, _ time.Duration) {
	raw, _ := json.Marshal(v)
	m.entries[key] = raw
}

func (m *mockCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(m.entries, k)
		m.deleted = append(m.deleted, k)
	}
}

func (m *mockCache) Close() error { return nil }

func setupTestRouter(t *testing.T, ms *mockStore, mc *mockCache) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer, err := scoring.NewScorer(scoring.DefaultTechnicianWeights(), scoring.DefaultVendorWeights())
	if err != nil {
		t.Fatal(err)
	}
	engine := recommender.NewEngine(ms, scorer, logger)

	deps := Deps{
		Store:      ms,
		Engine:     engine,
		CacheTTL:   time.Minute,
		AdminToken: "test-token",
		Logger:     logger,
	}
	if mc != nil {
		deps.Cache = mc
	}
	return NewRouter(deps)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("X-Organization-ID", "1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrganizationHeaderRequired(t *testing.T) {
	router := setupTestRouter(t, newMockStore(), nil)

	req := httptest.NewRequest("GET", "/api/v1/work-orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreateWorkOrder(t *testing.T) {
	router := setupTestRouter(t, newMockStore(), nil)

	w := doRequest(router, "POST", "/api/v1/work-orders", `{"title":"Broken AC","priority":"high"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var wo store.WorkOrder
	json.NewDecoder(w.Body).Decode(&wo)
	if wo.Title != "Broken AC" {
		t.Errorf("expected title 'Broken AC', got %q", wo.Title)
	}
	if wo.Status != store.StatusOpen {
		t.Errorf("expected status open, got %q", wo.Status)
	}
	if wo.OrganizationID != 1 {
		t.Errorf("expected org 1, got %d", wo.OrganizationID)
	}
}

func TestCreateWorkOrderRequiresTitle(t *testing.T) {
	router := setupTestRouter(t, newMockStore(), nil)

	w := doRequest(router, "POST", "/api/v1/work-orders", `{"priority":"high"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAssignRequiresExactlyOneAssignee(t *testing.T) {
	ms := newMockStore()
	ms.workOrders[1] = &store.WorkOrder{ID: 1, OrganizationID: 1, Status: store.StatusOpen}
	router := setupTestRouter(t, ms, nil)

	for _, body := range []string{`{}`, `{"technician_id":1,"vendor_id":2}`} {
		w := doRequest(router, "POST", "/api/v1/work-orders/1/assign", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}

	w := doRequest(router, "POST", "/api/v1/work-orders/1/assign", `{"technician_id":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var wo store.WorkOrder
	json.NewDecoder(w.Body).Decode(&wo)
	if wo.AssignedTechnicianID == nil || *wo.AssignedTechnicianID != 7 {
		t.Errorf("expected technician 7 assigned, got %+v", wo.AssignedTechnicianID)
	}
}

func TestAssignInvalidatesCachedRecommendation(t *testing.T) {
	ms := newMockStore()
	ms.workOrders[1] = &store.WorkOrder{ID: 1, OrganizationID: 1, Status: store.StatusOpen}
	mc := newMockCache()
	mc.entries[cache.RecommendationKey(1, 1)] = []byte(`{}`)
	router := setupTestRouter(t, ms, mc)

	w := doRequest(router, "POST", "/api/v1/work-orders/1/assign", `{"vendor_id":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := mc.entries[cache.RecommendationKey(1, 1)]; ok {
		t.Error("expected cached recommendation to be invalidated")
	}
}

func TestFeedbackValidation(t *testing.T) {
	ms := newMockStore()
	ms.workOrders[1] = &store.WorkOrder{ID: 1, OrganizationID: 1, Status: store.StatusCompleted}
	router := setupTestRouter(t, ms, nil)

	w := doRequest(router, "POST", "/api/v1/work-orders/1/feedback", `{"user_id":5,"feedback":"amazing"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown feedback value, got %d", w.Code)
	}

	w = doRequest(router, "POST", "/api/v1/work-orders/1/feedback", `{"user_id":5,"feedback":"positive"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(ms.feedback) != 1 {
		t.Fatalf("expected 1 feedback row, got %d", len(ms.feedback))
	}
}

func TestRecommendWorkOrderNotFound(t *testing.T) {
	router := setupTestRouter(t, newMockStore(), nil)

	w := doRequest(router, "POST", "/api/v1/ai/dispatch-recommendations", `{"work_order_id":42}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecommendNoCandidates(t *testing.T) {
	ms := newMockStore()
	ms.contexts[1] = &store.WorkOrderContext{WorkOrderID: 1, OrganizationID: 1}
	router := setupTestRouter(t, ms, nil)

	w := doRequest(router, "POST", "/api/v1/ai/dispatch-recommendations", `{"work_order_id":1}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] != "no suitable technicians or vendors available for assignment" {
		t.Errorf("unexpected error message: %q", resp["error"])
	}
}

func TestRecommendHappyPath(t *testing.T) {
	ms := newMockStore()
	ms.contexts[1] = &store.WorkOrderContext{WorkOrderID: 1, OrganizationID: 1, AssetLocation: "Building A"}
	ms.techs = []*store.Technician{
		{ID: 10, CurrentLocation: "Building A", CurrentWorkload: 0, IsAvailable: true},
	}
	router := setupTestRouter(t, ms, nil)

	w := doRequest(router, "POST", "/api/v1/ai/dispatch-recommendations", `{"work_order_id":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec recommender.Recommendation
	json.NewDecoder(w.Body).Decode(&rec)
	if rec.WorkOrderID != 1 {
		t.Errorf("expected work order 1, got %d", rec.WorkOrderID)
	}
	if rec.Recommended.Type != recommender.AssigneeTechnician {
		t.Errorf("expected technician assignment, got %q", rec.Recommended.Type)
	}
	if rec.Recommended.ID != 10 {
		t.Errorf("expected technician 10, got %d", rec.Recommended.ID)
	}
}

func TestRecommendServesFromCache(t *testing.T) {
	ms := newMockStore()
	mc := newMockCache()
	cached := recommender.Recommendation{
		WorkOrderID: 1,
		Recommended: recommender.Assignment{Type: recommender.AssigneeVendor, ID: 77},
	}
	raw, _ := json.Marshal(cached)
	mc.entries[cache.RecommendationKey(1, 1)] = raw
	// No work order in the store; only the cache can answer.
	router := setupTestRouter(t, ms, mc)

	w := doRequest(router, "POST", "/api/v1/ai/dispatch-recommendations", `{"work_order_id":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from cache, got %d: %s", w.Code, w.Body.String())
	}

	var rec recommender.Recommendation
	json.NewDecoder(w.Body).Decode(&rec)
	if rec.Recommended.ID != 77 {
		t.Errorf("expected cached vendor 77, got %d", rec.Recommended.ID)
	}
}

func TestStatsRequiresAdminToken(t *testing.T) {
	router := setupTestRouter(t, newMockStore(), nil)

	w := doRequest(router, "GET", "/api/v1/stats", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("X-Organization-ID", "1")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	var stats store.DispatchStats
	json.NewDecoder(rec.Body).Decode(&stats)
	if stats.TotalOpen != 3 {
		t.Errorf("expected 3 open, got %d", stats.TotalOpen)
	}
}
