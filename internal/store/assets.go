package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetdesk/internal/model"
)

// NewAssetID generates a display asset id like AST-2024-1A2B3C4D.
func NewAssetID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("AST-%d-%s", time.Now().Year(), suffix)
}

// CreateAsset registers a new asset. If id is empty, one is generated.
// Type-specific attributes travel as an opaque JSON string.
func CreateAsset(ctx context.Context, db *sql.DB, id, name, assetType, category, registrationDate, attributes string) (*model.Asset, error) {
	if id == "" {
		id = NewAssetID()
	}
	if registrationDate == "" {
		registrationDate = time.Now().Format("2006-01-02")
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO assets (id, name, asset_type, category, registration_date, attributes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, assetType, category, registrationDate, attributes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	return GetAsset(ctx, db, id)
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, db *sql.DB, id string) (*model.Asset, error) {
	a := &model.Asset{}
	var category, attributes sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, asset_type, category, registration_date, attributes,
		        status, created_at, updated_at, deleted_at
		 FROM assets WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.AssetType, &category, &a.RegistrationDate, &attributes,
		&a.Status, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	a.Category = category.String
	a.Attributes = attributes.String
	return a, nil
}

// ListAssets returns all non-deleted assets, optionally filtered by status
// and/or type.
func ListAssets(ctx context.Context, db *sql.DB, status, assetType string) ([]model.Asset, error) {
	query := `SELECT id, name, asset_type, category, registration_date, attributes,
	                 status, created_at, updated_at, deleted_at
	          FROM assets WHERE deleted_at IS NULL`
	var args []any

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if assetType != "" {
		query += ` AND asset_type = ?`
		args = append(args, assetType)
	}

	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		var category, attributes sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.AssetType, &category, &a.RegistrationDate, &attributes,
			&a.Status, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.Category = category.String
		a.Attributes = attributes.String
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateAsset updates an asset's mutable metadata. Identity fields (id,
// registration date) are immutable after creation.
func UpdateAsset(ctx context.Context, db *sql.DB, id, name, category, attributes string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE assets SET name = ?, category = ?, attributes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, category, attributes, id,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	return nil
}

// updateAssetStatus sets an asset's status inside q.
func updateAssetStatus(ctx context.Context, q querier, id, status string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE assets SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating asset status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating asset status: asset %s not found", id)
	}
	return nil
}

// UpdateAssetStatus sets an asset's status.
func UpdateAssetStatus(ctx context.Context, db *sql.DB, id, status string) error {
	return updateAssetStatus(ctx, db, id, status)
}

// UpdateAssetStatusFromScan sets an asset's status and attaches the status
// action to the originating scan event in one transaction.
func UpdateAssetStatusFromScan(ctx context.Context, db *sql.DB, id, status, scanEventID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := attachScanAction(ctx, tx, scanEventID, model.ScanActionStatus); err != nil {
		return err
	}
	if err := updateAssetStatus(ctx, tx, id, status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status update: %w", err)
	}
	return nil
}

// DeleteAsset soft-deletes an asset.
func DeleteAsset(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE assets SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return nil
}
