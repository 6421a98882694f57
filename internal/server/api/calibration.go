package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/calibration"
)

// CalibrationHandler reads and edits the calibration point set. Edits are
// queued and take effect on the next tick.
type CalibrationHandler struct {
	app Controller
}

// NewCalibrationHandler creates a CalibrationHandler for the given controller.
func NewCalibrationHandler(c Controller) *CalibrationHandler {
	return &CalibrationHandler{app: c}
}

type calibrationPointRequest struct {
	ID *int    `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type calibrationResponse struct {
	Calibrated bool                                    `json:"calibrated"`
	Points     [calibration.NumPoints]calibration.Slot `json:"points"`
}

// ServeHTTP routes /api/calibration by method.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.record(w, r)
	case http.MethodDelete:
		h.reset(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Snapshot()
	writeJSON(w, http.StatusOK, calibrationResponse{
		Calibrated: snap.Calibrated,
		Points:     snap.Calibration,
	})
}

// record handles POST /api/calibration with {id, x, y}.
func (h *CalibrationHandler) record(w http.ResponseWriter, r *http.Request) {
	var req calibrationPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.app.SubmitCalibration(*req.ID, req.X, req.Y); err != nil {
		writeQueueError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

// reset handles DELETE /api/calibration.
func (h *CalibrationHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ResetCalibration(); err != nil {
		writeQueueError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to queue calibration change")
	}
}
