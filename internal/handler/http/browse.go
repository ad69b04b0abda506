package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/berkaykaya07/BerkayKayaCase/internal/browse"
	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httputil"
)

// BrowseHandler exposes the list-state coordinator over HTTP: a pull-based
// snapshot, input endpoints for each browsing event, and a server-sent
// event stream for push-based consumers.
type BrowseHandler struct {
	coordinator *browse.Coordinator
	logger      *slog.Logger
}

// NewBrowseHandler creates a browse HTTP handler.
func NewBrowseHandler(c *browse.Coordinator, logger *slog.Logger) *BrowseHandler {
	return &BrowseHandler{coordinator: c, logger: logger}
}

// --- Request DTOs ---

// SearchRequest carries a search text change.
type SearchRequest struct {
	Query string `json:"query"`
}

// SortRequest carries a sort selection. An empty sort clears it.
type SortRequest struct {
	Sort string `json:"sort"`
}

// snapshotResponse is the browse snapshot plus the consumed-once last
// fetch error.
type snapshotResponse struct {
	browse.Snapshot
	Error string `json:"error,omitempty"`
}

// --- Handlers ---

// GetSnapshot handles GET /api/v1/browse
func (h *BrowseHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	resp := snapshotResponse{Snapshot: h.coordinator.Snapshot()}
	if err := h.coordinator.ConsumeError(); err != nil {
		resp.Error = err.Error()
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// Search handles POST /api/v1/browse/search
func (h *BrowseHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	h.coordinator.SetSearchText(req.Query)
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// ClearSearch handles POST /api/v1/browse/search/clear
func (h *BrowseHandler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	h.coordinator.ClearSearch()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// Filter handles POST /api/v1/browse/filter. The body replaces the filter
// wholesale; an empty body clears all filtering.
func (h *BrowseHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req domain.FilterOptions
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	h.coordinator.SetFilter(req)
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// Sort handles POST /api/v1/browse/sort
func (h *BrowseHandler) Sort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	if req.Sort == "" {
		h.coordinator.SetSort(nil)
		httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
		return
	}

	sort, ok := domain.ParseSortOption(req.Sort)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown sort option: "+req.Sort), h.logger)
		return
	}
	h.coordinator.SetSort(&sort)
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// NextPage handles POST /api/v1/browse/next-page
func (h *BrowseHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.coordinator.LoadNextPage()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// Refresh handles POST /api/v1/browse/refresh
func (h *BrowseHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.coordinator.Refresh()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// Events handles GET /api/v1/browse/events. It streams coordinator state
// changes as server-sent events until the client disconnects. Subscribers
// receive the current products, loading, and empty values on connect.
func (h *BrowseHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, r, apperrors.Internal(fmt.Errorf("streaming unsupported")), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	products, cancelProducts := h.coordinator.ProductUpdates().Subscribe()
	defer cancelProducts()
	loading, cancelLoading := h.coordinator.LoadingUpdates().Subscribe()
	defer cancelLoading()
	empty, cancelEmpty := h.coordinator.EmptyUpdates().Subscribe()
	defer cancelEmpty()
	errs, cancelErrs := h.coordinator.Errors().Subscribe()
	defer cancelErrs()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-products:
			writeSSE(w, flusher, "products", v)
		case v := <-loading:
			writeSSE(w, flusher, "loading", v)
		case v := <-empty:
			writeSSE(w, flusher, "empty", v)
		case err := <-errs:
			writeSSE(w, flusher, "error", map[string]string{"message": err.Error()})
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
