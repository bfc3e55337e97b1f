package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"assetdesk/internal/model"
	"assetdesk/internal/qr"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

// AssetsHandler handles asset registry endpoints.
type AssetsHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

type createAssetRequest struct {
	AssetID          string `json:"asset_id"`
	Name             string `json:"name"`
	AssetType        string `json:"asset_type"`
	Category         string `json:"category"`
	RegistrationDate string `json:"registration_date"`
	Attributes       string `json:"attributes"`
}

type updateAssetRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Attributes string `json:"attributes"`
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	ScanEventID string `json:"scan_event_id"`
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	assetType := r.URL.Query().Get("type")

	assets, err := store.ListAssets(r.Context(), h.DB, status, assetType)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.AssetType == "" {
		req.AssetType = model.AssetTypePhysical
	}
	if req.AssetType != model.AssetTypePhysical && req.AssetType != model.AssetTypeDigital &&
		req.AssetType != model.AssetTypeConsumable {
		jsonError(w, http.StatusBadRequest, "invalid asset type")
		return
	}

	asset, err := store.CreateAsset(r.Context(), h.DB, req.AssetID, req.Name,
		req.AssetType, req.Category, req.RegistrationDate, req.Attributes)
	if err != nil {
		jsonError(w, http.StatusConflict, "asset id already exists")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset registered", "asset", asset.ID, "name", asset.Name, "by", claims.Username)
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := store.GetAsset(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{id}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateAsset(r.Context(), h.DB, id, req.Name, req.Category, req.Attributes); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}

	asset, _ := store.GetAsset(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, asset)
}

// UpdateStatus handles PUT /api/assets/{id}/status.
func (h *AssetsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operator, err := currentUser(r, h.DB)
	if err != nil || operator == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Engine.UpdateStatus(r.Context(), operator, id, req.Status, req.ScanEventID); err != nil {
		workflowError(w, err)
		return
	}

	asset, _ := store.GetAsset(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := store.DeleteAsset(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset retired from registry", "asset", id, "by", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// QRCode handles GET /api/assets/{id}/qr, returning a printable PNG label.
func (h *AssetsHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	asset, err := store.GetAsset(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	png, err := qr.Encode(asset.Summary())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to encode QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.png", asset.ID))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
