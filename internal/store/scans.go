package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assetdesk/internal/model"
)

// RecordScan appends an immutable scan event and returns it. The action
// field starts empty and is set exactly once via AttachScanAction.
func RecordScan(ctx context.Context, db *sql.DB, assetID string, operatorID int64, scannedAt time.Time, lat, lon *float64) (*model.ScanEvent, error) {
	id := uuid.NewString()

	_, err := db.ExecContext(ctx,
		`INSERT INTO scan_events (id, asset_id, operator_id, scanned_at, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, assetID, operatorID, scannedAt.UTC(), lat, lon,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}

	return GetScanEvent(ctx, db, id)
}

// attachScanAction sets the event's action inside q. The UPDATE's
// action IS NULL predicate is the compare-and-swap: a second attach affects
// zero rows and fails with ErrAlreadyActioned, leaving the original action
// untouched.
func attachScanAction(ctx context.Context, q querier, id, action string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE scan_events SET action = ?, actioned_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND action IS NULL`,
		action, id,
	)
	if err != nil {
		return fmt.Errorf("attaching scan action: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("attaching scan action: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scan_events WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("attaching scan action: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("attaching scan action: scan event %s not found", id)
	}
	return ErrAlreadyActioned
}

// AttachScanAction sets a scan event's action exactly once.
func AttachScanAction(ctx context.Context, db *sql.DB, id, action string) error {
	return attachScanAction(ctx, db, id, action)
}

// GetScanEvent returns a scan event by ID.
func GetScanEvent(ctx context.Context, db *sql.DB, id string) (*model.ScanEvent, error) {
	e := &model.ScanEvent{}
	var action sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT s.id, s.asset_id, s.operator_id, s.scanned_at, s.latitude, s.longitude,
		        s.action, s.actioned_at, a.name, u.name
		 FROM scan_events s
		 JOIN assets a ON a.id = s.asset_id
		 JOIN users u ON u.id = s.operator_id
		 WHERE s.id = ?`, id,
	).Scan(&e.ID, &e.AssetID, &e.OperatorID, &e.ScannedAt, &e.Latitude, &e.Longitude,
		&action, &e.ActionedAt, &e.AssetName, &e.OperatorName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting scan event: %w", err)
	}
	e.Action = action.String
	return e, nil
}

// ListRecentScans returns up to limit scan events, newest first. Timestamp
// ties are broken by insertion order (later insert wins).
func ListRecentScans(ctx context.Context, db *sql.DB, limit int) ([]model.ScanEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx,
		`SELECT s.id, s.asset_id, s.operator_id, s.scanned_at, s.latitude, s.longitude,
		        s.action, s.actioned_at, a.name, u.name
		 FROM scan_events s
		 JOIN assets a ON a.id = s.asset_id
		 JOIN users u ON u.id = s.operator_id
		 ORDER BY s.scanned_at DESC, s.rowid DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	var events []model.ScanEvent
	for rows.Next() {
		var e model.ScanEvent
		var action sql.NullString
		if err := rows.Scan(&e.ID, &e.AssetID, &e.OperatorID, &e.ScannedAt, &e.Latitude, &e.Longitude,
			&action, &e.ActionedAt, &e.AssetName, &e.OperatorName); err != nil {
			return nil, fmt.Errorf("scanning scan event: %w", err)
		}
		e.Action = action.String
		events = append(events, e)
	}
	return events, rows.Err()
}
