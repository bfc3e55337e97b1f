// Package workflow implements the role-gated action router and the
// parameterized hand-over approval state machine:
//
//	Requested -> PendingReviewStage(n) -> Approved | Rejected
//
// where n walks a configured ordered chain of reviewer roles. Rejection at
// any stage is terminal; approval at the final stage is terminal.
package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"assetdesk/internal/model"
	"assetdesk/internal/store"
)

// Decisions a reviewer can make at a stage.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Engine threads hand-over requests and audits through the configured chain.
// Every operation takes the authenticated operator explicitly; nothing is
// read from ambient state.
type Engine struct {
	DB    *sql.DB
	Chain Chain
}

// ValidateHandover checks the fields a submission requires.
func ValidateHandover(req *model.HandoverRequest) error {
	if err := required("asset_id", req.AssetID); err != nil {
		return err
	}
	if err := required("person_name", req.PersonName); err != nil {
		return err
	}
	if err := required("department", req.Department); err != nil {
		return err
	}
	if err := required("purpose", req.Purpose); err != nil {
		return err
	}
	return required("condition_before_handover", req.ConditionBefore)
}

// ValidateAudit checks the fields an audit submission requires.
func ValidateAudit(rec *model.AuditRecord) error {
	if err := required("asset_id", rec.AssetID); err != nil {
		return err
	}
	if err := required("audit_date", rec.AuditDate); err != nil {
		return err
	}
	if err := required("auditor_name", rec.AuditorName); err != nil {
		return err
	}
	if err := required("location", rec.Location); err != nil {
		return err
	}
	if err := required("physical_condition", rec.PhysicalCondition); err != nil {
		return err
	}
	if err := required("functional_status", rec.FunctionalStatus); err != nil {
		return err
	}
	if !model.ValidAuditType(rec.AuditType) {
		return &ValidationError{Field: "audit_type", Reason: "must be routine, maintenance, incident or handover"}
	}
	return nil
}

// SubmitHandover validates and stores a new request at the first review
// stage. Validation failures are reported before anything is persisted, so a
// rejected submission never leaves a scan event actioned.
func (e *Engine) SubmitHandover(ctx context.Context, operator *model.User, req *model.HandoverRequest) (*model.HandoverRequest, error) {
	if !CanPerform(operator.Role, ActionRequestHandover) {
		return nil, ErrActionNotAllowed
	}
	if err := ValidateHandover(req); err != nil {
		return nil, err
	}

	asset, err := store.GetAsset(ctx, e.DB, req.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.DeletedAt != nil {
		return nil, &ValidationError{Field: "asset_id", Reason: "asset does not exist"}
	}

	req.RequestedBy = operator.ID
	if req.ScanEventID != "" {
		req.Source = model.HandoverSourceScan
	}

	created, err := store.CreateHandover(ctx, e.DB, req)
	if err != nil {
		return nil, err
	}

	slog.Info("handover requested", "request", created.ID, "asset", created.AssetID,
		"by", operator.Username, "recipient", created.PersonName, "source", created.Source)
	return created, nil
}

// Advance applies one reviewer decision to a pending request. Approve moves
// the request to the next stage, or to approved when no stages remain;
// reject is terminal at any stage. Exactly one of two concurrent calls at
// the same stage succeeds; the loser gets store.ErrConflict.
func (e *Engine) Advance(ctx context.Context, reviewer *model.User, requestID, decision, remarks string) (*model.HandoverRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, &ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}

	req, err := store.GetHandover(ctx, e.DB, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("handover request %s not found", requestID)
	}
	if req.Terminal() {
		return nil, ErrInvalidTransition
	}

	stageRole, err := e.Chain.ReviewerRole(req.Stage)
	if err != nil {
		return nil, err
	}
	if reviewer.Role != stageRole && reviewer.Role != model.RoleAdmin {
		return nil, ErrNotReviewer
	}

	// A request approved late in the chain for an asset that has since been
	// retired or deleted is surfaced as a conflict, not silently approved.
	asset, err := store.GetAsset(ctx, e.DB, req.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.DeletedAt != nil || asset.Status == model.AssetStatusRetired {
		return nil, fmt.Errorf("%w: asset %s is no longer active", store.ErrConflict, req.AssetID)
	}

	params := store.AdvanceParams{
		RequestID:  requestID,
		FromStage:  req.Stage,
		Decision:   decision,
		ReviewerID: reviewer.ID,
		Remarks:    remarks,
	}

	switch {
	case decision == DecisionReject:
		params.NextStage = req.Stage
		params.NextStatus = model.HandoverStatusRejected
	case req.Stage < len(e.Chain):
		params.NextStage = req.Stage + 1
		params.NextStatus = model.HandoverStatusPending
	default:
		params.NextStage = req.Stage
		params.NextStatus = model.HandoverStatusApproved
	}

	// Scanner-collected requests clearing their first review are handed off
	// to the next stage's general approval queue.
	if decision == DecisionApprove && req.Stage == 1 && req.Source == model.HandoverSourceScan &&
		params.NextStatus == model.HandoverStatusPending {
		params.EnqueueStage = params.NextStage
	}

	advanced, err := store.AdvanceHandover(ctx, e.DB, params)
	if err != nil {
		return nil, err
	}

	// Custody changes hands once the final stage approves.
	if advanced.Status == model.HandoverStatusApproved {
		if err := store.UpdateAssetStatus(ctx, e.DB, advanced.AssetID, model.AssetStatusHandedOver); err != nil {
			return nil, err
		}
	}

	slog.Info("handover advanced", "request", advanced.ID, "decision", decision,
		"reviewer", reviewer.Username, "stage", advanced.Stage, "status", advanced.Status)
	return advanced, nil
}

// SubmitAudit validates and stores an immutable condition assessment.
// Audits are terminal on submission; no approval chain follows.
func (e *Engine) SubmitAudit(ctx context.Context, operator *model.User, rec *model.AuditRecord) (*model.AuditRecord, error) {
	if !CanPerform(operator.Role, ActionStartAudit) {
		return nil, ErrActionNotAllowed
	}
	if err := ValidateAudit(rec); err != nil {
		return nil, err
	}

	asset, err := store.GetAsset(ctx, e.DB, rec.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.DeletedAt != nil {
		return nil, &ValidationError{Field: "asset_id", Reason: "asset does not exist"}
	}

	created, err := store.CreateAudit(ctx, e.DB, rec)
	if err != nil {
		return nil, err
	}

	slog.Info("audit recorded", "audit", created.ID, "asset", created.AssetID,
		"auditor", created.AuditorName, "type", created.AuditType)
	return created, nil
}

// UpdateStatus applies a status change to an asset, linking it to the
// originating scan event when one is given.
func (e *Engine) UpdateStatus(ctx context.Context, operator *model.User, assetID, status, scanEventID string) error {
	if !CanPerform(operator.Role, ActionUpdateStatus) {
		return ErrActionNotAllowed
	}
	if !model.ValidAssetStatus(status) {
		return &ValidationError{Field: "status", Reason: "unknown asset status"}
	}

	if scanEventID != "" {
		if err := store.UpdateAssetStatusFromScan(ctx, e.DB, assetID, status, scanEventID); err != nil {
			return err
		}
	} else {
		if err := store.UpdateAssetStatus(ctx, e.DB, assetID, status); err != nil {
			return err
		}
	}

	slog.Info("asset status updated", "asset", assetID, "status", status, "by", operator.Username)
	return nil
}

// MarkViewed attaches the view action to a scan event without creating any
// downstream record.
func (e *Engine) MarkViewed(ctx context.Context, operator *model.User, scanEventID string) error {
	if !CanPerform(operator.Role, ActionViewDetails) {
		return ErrActionNotAllowed
	}
	return store.AttachScanAction(ctx, e.DB, scanEventID, model.ScanActionView)
}
