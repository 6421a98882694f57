package api

import (
	"encoding/json"
	"net/http"
)

// StateHandler serves the latest loop snapshot and the enabled toggle.
type StateHandler struct {
	app Controller
}

// NewStateHandler creates a StateHandler for the given controller.
func NewStateHandler(c Controller) *StateHandler {
	return &StateHandler{app: c}
}

type updateStateRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and POST on /api/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Snapshot())
	case http.MethodPost:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles POST /api/state and toggles gesture detection.
func (h *StateHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.app.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}
