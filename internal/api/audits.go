package api

import (
	"database/sql"
	"net/http"

	"assetdesk/internal/model"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

// AuditsHandler handles audit record endpoints.
type AuditsHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

type createAuditRequest struct {
	AssetID            string `json:"asset_id"`
	AuditorName        string `json:"auditor_name"`
	AuditDate          string `json:"audit_date"`
	AuditType          string `json:"audit_type"`
	PhysicalCondition  string `json:"physical_condition"`
	FunctionalStatus   string `json:"functional_status"`
	Location           string `json:"location"`
	Discrepancies      string `json:"discrepancies"`
	RecommendedActions string `json:"recommended_actions"`
	ScanEventID        string `json:"scan_event_id"`
}

// Create handles POST /api/audits.
func (h *AuditsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operator, err := currentUser(r, h.DB)
	if err != nil || operator == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	created, err := h.Engine.SubmitAudit(r.Context(), operator, &model.AuditRecord{
		AssetID:            req.AssetID,
		AuditorName:        req.AuditorName,
		AuditDate:          req.AuditDate,
		AuditType:          req.AuditType,
		PhysicalCondition:  req.PhysicalCondition,
		FunctionalStatus:   req.FunctionalStatus,
		Location:           req.Location,
		Discrepancies:      req.Discrepancies,
		RecommendedActions: req.RecommendedActions,
		ScanEventID:        req.ScanEventID,
	})
	if err != nil {
		workflowError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/audits.
func (h *AuditsHandler) List(w http.ResponseWriter, r *http.Request) {
	assetID := r.URL.Query().Get("asset_id")

	records, err := store.ListAudits(r.Context(), h.DB, assetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list audits")
		return
	}
	if records == nil {
		records = []model.AuditRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Get handles GET /api/audits/{id}.
func (h *AuditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := store.GetAudit(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get audit record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "audit record not found")
		return
	}
	jsonResponse(w, http.StatusOK, record)
}
