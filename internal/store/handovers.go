package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"assetdesk/internal/model"
)

// CreateHandover stores a new hand-over request at stage 1, pending review.
// When the request originates from a scan, the scan event's action is
// attached in the same transaction, so a duplicate dispatch for the same
// event fails with ErrAlreadyActioned and leaves no request behind.
func CreateHandover(ctx context.Context, db *sql.DB, req *model.HandoverRequest) (*model.HandoverRequest, error) {
	req.ID = uuid.NewString()
	if req.Source == "" {
		req.Source = model.HandoverSourceDirect
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if req.ScanEventID != "" {
		if err := attachScanAction(ctx, tx, req.ScanEventID, model.ScanActionHandover); err != nil {
			return nil, err
		}
	}

	var scanEventID any
	if req.ScanEventID != "" {
		scanEventID = req.ScanEventID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO handover_requests
		     (id, asset_id, requested_by, person_name, department, purpose,
		      condition_before, source, scan_event_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.AssetID, req.RequestedBy, req.PersonName, req.Department,
		req.Purpose, req.ConditionBefore, req.Source, scanEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating handover request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing handover request: %w", err)
	}

	return GetHandover(ctx, db, req.ID)
}

// AdvanceParams describes one stage transition of a hand-over request.
// The workflow layer computes the target stage and status; the store only
// applies it atomically.
type AdvanceParams struct {
	RequestID  string
	FromStage  int
	NextStage  int
	NextStatus string
	Decision   string
	ReviewerID int64
	Remarks    string

	// EnqueueStage, when positive, hands a companion record off to that
	// stage's review queue (scanner-collected requests clearing their
	// first review).
	EnqueueStage int
}

// AdvanceHandover applies one stage transition. The UPDATE predicate on
// (stage, status) is the optimistic-concurrency check: of two racing
// reviewers at the same stage exactly one affects a row, the other gets
// ErrConflict and must re-fetch.
func AdvanceHandover(ctx context.Context, db *sql.DB, p AdvanceParams) (*model.HandoverRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	if p.NextStatus == model.HandoverStatusPending {
		result, err = tx.ExecContext(ctx,
			`UPDATE handover_requests SET stage = ?, status = ?
			 WHERE id = ? AND stage = ? AND status = 'pending_review'`,
			p.NextStage, p.NextStatus, p.RequestID, p.FromStage,
		)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE handover_requests SET stage = ?, status = ?, decided_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND stage = ? AND status = 'pending_review'`,
			p.NextStage, p.NextStatus, p.RequestID, p.FromStage,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("advancing handover request: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("advancing handover request: %w", err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM handover_requests WHERE id = ?`, p.RequestID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("advancing handover request: %w", err)
		}
		if exists == 0 {
			return nil, fmt.Errorf("advancing handover request: request %s not found", p.RequestID)
		}
		return nil, ErrConflict
	}

	// Record the decision in the stage history.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO handover_reviews (request_id, stage, decision, reviewed_by, remarks)
		 VALUES (?, ?, ?, ?, ?)`,
		p.RequestID, p.FromStage, p.Decision, p.ReviewerID, p.Remarks,
	)
	if err != nil {
		return nil, fmt.Errorf("recording handover review: %w", err)
	}

	if p.EnqueueStage > 0 {
		var assetID string
		if err := tx.QueryRowContext(ctx,
			`SELECT asset_id FROM handover_requests WHERE id = ?`, p.RequestID,
		).Scan(&assetID); err != nil {
			return nil, fmt.Errorf("reading handover asset: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_queue (request_id, asset_id, stage) VALUES (?, ?, ?)`,
			p.RequestID, assetID, p.EnqueueStage,
		)
		if err != nil {
			return nil, fmt.Errorf("enqueueing review: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing handover advance: %w", err)
	}

	return GetHandover(ctx, db, p.RequestID)
}

// GetHandover returns a hand-over request by ID.
func GetHandover(ctx context.Context, db *sql.DB, id string) (*model.HandoverRequest, error) {
	h := &model.HandoverRequest{}
	var pictureMime, scanEventID sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT h.id, h.asset_id, h.requested_by, h.person_name, h.department,
		        h.purpose, h.condition_before, h.picture_mime, h.request_date,
		        h.source, h.scan_event_id, h.stage, h.status, h.decided_at,
		        a.name, u.name
		 FROM handover_requests h
		 JOIN assets a ON a.id = h.asset_id
		 JOIN users u ON u.id = h.requested_by
		 WHERE h.id = ?`, id,
	).Scan(&h.ID, &h.AssetID, &h.RequestedBy, &h.PersonName, &h.Department,
		&h.Purpose, &h.ConditionBefore, &pictureMime, &h.RequestDate,
		&h.Source, &scanEventID, &h.Stage, &h.Status, &h.DecidedAt,
		&h.AssetName, &h.RequesterName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting handover request: %w", err)
	}
	h.PictureMime = pictureMime.String
	h.ScanEventID = scanEventID.String
	return h, nil
}

// ListHandovers returns requests, optionally filtered by status, stage and asset.
func ListHandovers(ctx context.Context, db *sql.DB, status string, stage int, assetID string) ([]model.HandoverRequest, error) {
	query := `SELECT h.id, h.asset_id, h.requested_by, h.person_name, h.department,
	                 h.purpose, h.condition_before, h.picture_mime, h.request_date,
	                 h.source, h.scan_event_id, h.stage, h.status, h.decided_at,
	                 a.name, u.name
	          FROM handover_requests h
	          JOIN assets a ON a.id = h.asset_id
	          JOIN users u ON u.id = h.requested_by
	          WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND h.status = ?`
		args = append(args, status)
	}
	if stage > 0 {
		query += ` AND h.stage = ?`
		args = append(args, stage)
	}
	if assetID != "" {
		query += ` AND h.asset_id = ?`
		args = append(args, assetID)
	}

	query += ` ORDER BY h.request_date DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing handover requests: %w", err)
	}
	defer rows.Close()

	var requests []model.HandoverRequest
	for rows.Next() {
		var h model.HandoverRequest
		var pictureMime, scanEventID sql.NullString
		if err := rows.Scan(&h.ID, &h.AssetID, &h.RequestedBy, &h.PersonName, &h.Department,
			&h.Purpose, &h.ConditionBefore, &pictureMime, &h.RequestDate,
			&h.Source, &scanEventID, &h.Stage, &h.Status, &h.DecidedAt,
			&h.AssetName, &h.RequesterName); err != nil {
			return nil, fmt.Errorf("scanning handover request: %w", err)
		}
		h.PictureMime = pictureMime.String
		h.ScanEventID = scanEventID.String
		requests = append(requests, h)
	}
	return requests, rows.Err()
}

// ListHandoverReviews returns a request's stage history, oldest first.
func ListHandoverReviews(ctx context.Context, db *sql.DB, requestID string) ([]model.HandoverReview, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.request_id, r.stage, r.decision, r.reviewed_by, r.remarks,
		        r.reviewed_at, u.name
		 FROM handover_reviews r
		 JOIN users u ON u.id = r.reviewed_by
		 WHERE r.request_id = ?
		 ORDER BY r.id`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing handover reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.HandoverReview
	for rows.Next() {
		var r model.HandoverReview
		var remarks sql.NullString
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Stage, &r.Decision, &r.ReviewedBy,
			&remarks, &r.ReviewedAt, &r.ReviewerName); err != nil {
			return nil, fmt.Errorf("scanning handover review: %w", err)
		}
		r.Remarks = remarks.String
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ListReviewQueue returns queue entries, oldest first, optionally filtered
// by stage.
func ListReviewQueue(ctx context.Context, db *sql.DB, stage int) ([]model.QueueEntry, error) {
	query := `SELECT id, request_id, asset_id, stage, enqueued_at
	          FROM review_queue`
	var args []any
	if stage > 0 {
		query += ` WHERE stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing review queue: %w", err)
	}
	defer rows.Close()

	var entries []model.QueueEntry
	for rows.Next() {
		var e model.QueueEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.AssetID, &e.Stage, &e.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("scanning queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetHandoverPicture stores a processed condition photo on a pending request.
func SetHandoverPicture(ctx context.Context, db *sql.DB, id string, picture []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE handover_requests SET picture = ?, picture_mime = ?
		 WHERE id = ? AND status = 'pending_review'`,
		picture, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting handover picture: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("setting handover picture: no pending request %s", id)
	}
	return nil
}

// GetHandoverPicture returns a request's condition photo and MIME type.
func GetHandoverPicture(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var picture []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT picture, picture_mime FROM handover_requests WHERE id = ?`, id,
	).Scan(&picture, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting handover picture: %w", err)
	}
	return picture, mime.String, nil
}
