package api

import (
	"net/http"

	"github.com/philiplawlor/fm-copilot/internal/cmms"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

type AdminHandler struct {
	store  store.Store
	syncer *cmms.Syncer
}

func NewAdminHandler(s store.Store, syncer *cmms.Syncer) *AdminHandler {
	return &AdminHandler{store: s, syncer: syncer}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetDispatchStats(r.Context(), OrgID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type SyncResponse struct {
	Integration string `json:"integration"`
	Fetched     int    `json:"fetched"`
	Error       string `json:"error,omitempty"`
}

// Sync triggers an immediate CMMS sync pass outside the cron schedule.
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no cmms integrations configured"})
		return
	}

	results := h.syncer.RunOnce(r.Context())
	out := make([]SyncResponse, 0, len(results))
	for _, res := range results {
		sr := SyncResponse{Integration: res.Integration, Fetched: len(res.Orders)}
		if res.Err != nil {
			sr.Error = res.Err.Error()
		}
		out = append(out, sr)
	}
	writeJSON(w, http.StatusOK, out)
}
