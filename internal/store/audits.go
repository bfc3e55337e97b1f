package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"assetdesk/internal/model"
)

// CreateAudit stores an immutable audit record. When the audit originates
// from a scan, the scan event's action is attached in the same transaction.
func CreateAudit(ctx context.Context, db *sql.DB, rec *model.AuditRecord) (*model.AuditRecord, error) {
	rec.ID = uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if rec.ScanEventID != "" {
		if err := attachScanAction(ctx, tx, rec.ScanEventID, model.ScanActionAudit); err != nil {
			return nil, err
		}
	}

	var scanEventID any
	if rec.ScanEventID != "" {
		scanEventID = rec.ScanEventID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_records
		     (id, asset_id, auditor_name, audit_date, audit_type, physical_condition,
		      functional_status, location, discrepancies, recommended_actions,
		      scan_latitude, scan_longitude, scan_event_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AssetID, rec.AuditorName, rec.AuditDate, rec.AuditType,
		rec.PhysicalCondition, rec.FunctionalStatus, rec.Location,
		rec.Discrepancies, rec.RecommendedActions,
		rec.ScanLatitude, rec.ScanLongitude, scanEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating audit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing audit record: %w", err)
	}

	return GetAudit(ctx, db, rec.ID)
}

// GetAudit returns an audit record by ID.
func GetAudit(ctx context.Context, db *sql.DB, id string) (*model.AuditRecord, error) {
	rec := &model.AuditRecord{}
	var discrepancies, recommended, scanEventID sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.asset_id, r.auditor_name, r.audit_date, r.audit_type,
		        r.physical_condition, r.functional_status, r.location,
		        r.discrepancies, r.recommended_actions,
		        r.scan_latitude, r.scan_longitude, r.scan_event_id, r.created_at,
		        a.name
		 FROM audit_records r
		 JOIN assets a ON a.id = r.asset_id
		 WHERE r.id = ?`, id,
	).Scan(&rec.ID, &rec.AssetID, &rec.AuditorName, &rec.AuditDate, &rec.AuditType,
		&rec.PhysicalCondition, &rec.FunctionalStatus, &rec.Location,
		&discrepancies, &recommended,
		&rec.ScanLatitude, &rec.ScanLongitude, &scanEventID, &rec.CreatedAt,
		&rec.AssetName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting audit record: %w", err)
	}
	rec.Discrepancies = discrepancies.String
	rec.RecommendedActions = recommended.String
	rec.ScanEventID = scanEventID.String
	return rec, nil
}

// ListAudits returns audit records, optionally filtered by asset, newest first.
func ListAudits(ctx context.Context, db *sql.DB, assetID string) ([]model.AuditRecord, error) {
	query := `SELECT r.id, r.asset_id, r.auditor_name, r.audit_date, r.audit_type,
	                 r.physical_condition, r.functional_status, r.location,
	                 r.discrepancies, r.recommended_actions,
	                 r.scan_latitude, r.scan_longitude, r.scan_event_id, r.created_at,
	                 a.name
	          FROM audit_records r
	          JOIN assets a ON a.id = r.asset_id`
	var args []any

	if assetID != "" {
		query += ` WHERE r.asset_id = ?`
		args = append(args, assetID)
	}

	query += ` ORDER BY r.created_at DESC, r.rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	defer rows.Close()

	var records []model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		var discrepancies, recommended, scanEventID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.AssetID, &rec.AuditorName, &rec.AuditDate, &rec.AuditType,
			&rec.PhysicalCondition, &rec.FunctionalStatus, &rec.Location,
			&discrepancies, &recommended,
			&rec.ScanLatitude, &rec.ScanLongitude, &scanEventID, &rec.CreatedAt,
			&rec.AssetName); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		rec.Discrepancies = discrepancies.String
		rec.RecommendedActions = recommended.String
		rec.ScanEventID = scanEventID.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
