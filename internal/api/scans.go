package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"assetdesk/internal/geo"
	"assetdesk/internal/model"
	"assetdesk/internal/qr"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

// ScansHandler handles QR scanning and the scan activity log.
type ScansHandler struct {
	DB      *sql.DB
	Engine  *workflow.Engine
	Locator geo.Provider
}

type recordScanRequest struct {
	AssetID   string   `json:"asset_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// scanResponse is what a scanner gets back: the decoded summary, the logged
// event, and the actions the operator's role may dispatch from it.
type scanResponse struct {
	Summary *model.AssetSummary `json:"summary"`
	Asset   *model.Asset        `json:"asset"`
	Scan    *model.ScanEvent    `json:"scan"`
	Actions []workflow.Action   `json:"actions"`
}

// Decode handles POST /api/scan/decode: a multipart QR image upload. The
// payload is decoded, the asset is looked up, and a scan event is appended.
// Location comes from explicit form fields when the client has them, else
// from the locator; a missing fix never blocks the scan.
func (h *ScansHandler) Decode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	summary, err := qr.DecodeBytes(data)
	if err != nil {
		switch {
		case errors.Is(err, qr.ErrNotFound):
			jsonError(w, http.StatusUnprocessableEntity, "no QR code found in image")
		case errors.Is(err, qr.ErrMalformedPayload):
			jsonError(w, http.StatusUnprocessableEntity, "QR code is not an asset label")
		default:
			jsonError(w, http.StatusBadRequest, "unreadable image")
		}
		return
	}

	lat, lon := h.location(r)

	h.logScan(w, r, summary, lat, lon)
}

// Record handles POST /api/scans for clients that decode QR labels locally
// and report the asset id directly.
func (h *ScansHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordScanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssetID == "" {
		jsonError(w, http.StatusBadRequest, "asset_id required")
		return
	}

	lat, lon := req.Latitude, req.Longitude
	if lat == nil || lon == nil {
		lat, lon = h.location(r)
	}

	h.logScan(w, r, &model.AssetSummary{AssetID: req.AssetID}, lat, lon)
}

// logScan resolves the asset, appends the event, and writes the response.
func (h *ScansHandler) logScan(w http.ResponseWriter, r *http.Request, summary *model.AssetSummary, lat, lon *float64) {
	claims := GetClaims(r.Context())

	asset, err := store.GetAsset(r.Context(), h.DB, summary.AssetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to look up asset")
		return
	}
	if asset == nil || asset.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "asset is not registered")
		return
	}

	event, err := store.RecordScan(r.Context(), h.DB, asset.ID, claims.UserID, time.Now(), lat, lon)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to record scan")
		return
	}

	slog.Info("asset scanned", "asset", asset.ID, "operator", claims.Username,
		"scan", event.ID, "located", lat != nil)
	jsonResponse(w, http.StatusCreated, scanResponse{
		Summary: summary,
		Asset:   asset,
		Scan:    event,
		Actions: workflow.AvailableActions(claims.Role),
	})
}

// location resolves a best-effort position fix within the locator's bounds.
func (h *ScansHandler) location(r *http.Request) (lat, lon *float64) {
	if v := r.FormValue("latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lat = &f
		}
	}
	if v := r.FormValue("longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lon = &f
		}
	}
	if lat != nil && lon != nil {
		return lat, lon
	}

	if h.Locator == nil {
		return nil, nil
	}
	fix, err := h.Locator.Current(r.Context())
	if err != nil {
		// Location is always optional.
		return nil, nil
	}
	return &fix.Latitude, &fix.Longitude
}

// List handles GET /api/scans.
func (h *ScansHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := store.ListRecentScans(r.Context(), h.DB, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if events == nil {
		events = []model.ScanEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Get handles GET /api/scans/{id}.
func (h *ScansHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := store.GetScanEvent(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get scan event")
		return
	}
	if event == nil {
		jsonError(w, http.StatusNotFound, "scan event not found")
		return
	}

	claims := GetClaims(r.Context())
	jsonResponse(w, http.StatusOK, map[string]any{
		"scan":    event,
		"actions": workflow.AvailableActions(claims.Role),
	})
}

// MarkViewed handles POST /api/scans/{id}/view.
func (h *ScansHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	operator, err := currentUser(r, h.DB)
	if err != nil || operator == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Engine.MarkViewed(r.Context(), operator, r.PathValue("id")); err != nil {
		workflowError(w, err)
		return
	}

	event, _ := store.GetScanEvent(r.Context(), h.DB, r.PathValue("id"))
	jsonResponse(w, http.StatusOK, event)
}
