package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"assetdesk/internal/imaging"
	"assetdesk/internal/model"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

// HandoversHandler handles hand-over request endpoints.
type HandoversHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

type createHandoverRequest struct {
	AssetID         string `json:"asset_id"`
	PersonName      string `json:"person_name"`
	Department      string `json:"department"`
	Purpose         string `json:"purpose"`
	ConditionBefore string `json:"condition_before_handover"`
	ScanEventID     string `json:"scan_event_id"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Remarks  string `json:"remarks"`
}

// Create handles POST /api/handovers.
func (h *HandoversHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHandoverRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operator, err := currentUser(r, h.DB)
	if err != nil || operator == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	created, err := h.Engine.SubmitHandover(r.Context(), operator, &model.HandoverRequest{
		AssetID:         req.AssetID,
		PersonName:      req.PersonName,
		Department:      req.Department,
		Purpose:         req.Purpose,
		ConditionBefore: req.ConditionBefore,
		ScanEventID:     req.ScanEventID,
	})
	if err != nil {
		workflowError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/handovers.
func (h *HandoversHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	assetID := r.URL.Query().Get("asset_id")

	stage := 0
	if v := r.URL.Query().Get("stage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid stage")
			return
		}
		stage = n
	}

	requests, err := store.ListHandovers(r.Context(), h.DB, status, stage, assetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list handover requests")
		return
	}
	if requests == nil {
		requests = []model.HandoverRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Get handles GET /api/handovers/{id}.
func (h *HandoversHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := store.GetHandover(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get handover request")
		return
	}
	if req == nil {
		jsonError(w, http.StatusNotFound, "handover request not found")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Decide handles POST /api/handovers/{id}/decision: one reviewer decision at
// the request's current stage.
func (h *HandoversHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reviewer, err := currentUser(r, h.DB)
	if err != nil || reviewer == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	advanced, err := h.Engine.Advance(r.Context(), reviewer, r.PathValue("id"), req.Decision, req.Remarks)
	if err != nil {
		workflowError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, advanced)
}

// Reviews handles GET /api/handovers/{id}/reviews.
func (h *HandoversHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := store.ListHandoverReviews(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []model.HandoverReview{}
	}
	jsonResponse(w, http.StatusOK, reviews)
}

// Queue handles GET /api/handovers/queue.
func (h *HandoversHandler) Queue(w http.ResponseWriter, r *http.Request) {
	stage := 0
	if v := r.URL.Query().Get("stage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid stage")
			return
		}
		stage = n
	}

	entries, err := store.ListReviewQueue(r.Context(), h.DB, stage)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list review queue")
		return
	}
	if entries == nil {
		entries = []model.QueueEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// UploadPicture handles PUT /api/handovers/{id}/picture: the condition
// picture attached while the request is still pending.
func (h *HandoversHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("picture")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "picture file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetHandoverPicture(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusConflict, "request not found or already decided")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "picture uploaded"})
}

// GetPicture handles GET /api/handovers/{id}/picture.
func (h *HandoversHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetHandoverPicture(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get picture")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no picture")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(data)
}
