package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/navtrend/navtrend/internal/dashboard"
	"github.com/navtrend/navtrend/internal/feed"
)

// StateSource is the display state the handlers render and refresh.
type StateSource interface {
	State() feed.State
	RefreshAsync(ctx context.Context) bool
}

// Handler provides HTTP endpoints for the dashboard.
type Handler struct {
	// ctx outlives individual requests; background refreshes run under it.
	ctx      context.Context
	source   StateSource
	baseline time.Time
}

// NewHandler creates a new API handler. Refreshes started through it are
// cancelled with ctx.
func NewHandler(ctx context.Context, source StateSource, baseline time.Time) *Handler {
	return &Handler{ctx: ctx, source: source, baseline: baseline}
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Build(h.source.State(), h.baseline))
}

// RefreshDashboard handles POST /api/v1/dashboard/refresh.
func (h *Handler) RefreshDashboard(w http.ResponseWriter, _ *http.Request) {
	if !h.source.RefreshAsync(h.ctx) {
		writeError(w, http.StatusConflict, "refresh already in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	st := h.source.State()
	resp := map[string]any{
		"status":  "ok",
		"funds":   len(st.Funds),
		"loading": st.Loading,
	}
	if st.Err != nil {
		resp["lastError"] = st.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
