package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"assetdesk/internal/db"
	"assetdesk/internal/model"
)

func TestCreateAssetGeneratesID(t *testing.T) {
	database := db.NewTestDB(t)

	asset, err := CreateAsset(context.Background(), database, "", "Projector",
		model.AssetTypePhysical, "AV Equipment", "", "")
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	if !strings.HasPrefix(asset.ID, "AST-") {
		t.Errorf("expected AST- prefix, got %s", asset.ID)
	}
	if asset.Status != model.AssetStatusActive {
		t.Errorf("expected active status, got %s", asset.Status)
	}
	if asset.RegistrationDate == "" {
		t.Error("expected registration date to default to today")
	}
}

func TestCreateAssetExplicitID(t *testing.T) {
	database := db.NewTestDB(t)

	asset, err := CreateAsset(context.Background(), database, "AST-2024-001", "Dell Laptop",
		model.AssetTypePhysical, "Lab Equipment", "2024-01-15", `{"gps_device_id":"GPS-42"}`)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if asset.ID != "AST-2024-001" {
		t.Errorf("expected explicit id, got %s", asset.ID)
	}
	if asset.Attributes == "" {
		t.Error("expected attributes to round-trip")
	}
}

func TestCreateAssetDuplicateIDRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateAsset(ctx, database, "AST-2024-001", "Laptop",
		model.AssetTypePhysical, "", "2024-01-15", ""); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	_, err := CreateAsset(ctx, database, "AST-2024-001", "Another",
		model.AssetTypeDigital, "", "2024-01-16", "")
	if err == nil {
		t.Error("expected error for duplicate asset id")
	}
}

func TestListAssetsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAsset(ctx, database, "", "Laptop", model.AssetTypePhysical, "", "", "")
	CreateAsset(ctx, database, "", "License", model.AssetTypeDigital, "", "", "")
	consumable, _ := CreateAsset(ctx, database, "", "Paper", model.AssetTypeConsumable, "", "", "")
	UpdateAssetStatus(ctx, database, consumable.ID, model.AssetStatusDamaged)

	all, err := ListAssets(ctx, database, "", "")
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 assets, got %d", len(all))
	}

	damaged, _ := ListAssets(ctx, database, model.AssetStatusDamaged, "")
	if len(damaged) != 1 {
		t.Errorf("expected 1 damaged asset, got %d", len(damaged))
	}

	physical, _ := ListAssets(ctx, database, "", model.AssetTypePhysical)
	if len(physical) != 1 {
		t.Errorf("expected 1 physical asset, got %d", len(physical))
	}
}

func TestUpdateAssetStatusFromScan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)
	event, _ := RecordScan(ctx, database, asset.ID, op.ID, time.Now(), nil, nil)

	if err := UpdateAssetStatusFromScan(ctx, database, asset.ID, model.AssetStatusDamaged, event.ID); err != nil {
		t.Fatalf("UpdateAssetStatusFromScan: %v", err)
	}

	got, _ := GetAsset(ctx, database, asset.ID)
	if got.Status != model.AssetStatusDamaged {
		t.Errorf("expected damaged, got %s", got.Status)
	}

	scan, _ := GetScanEvent(ctx, database, event.ID)
	if scan.Action != model.ScanActionStatus {
		t.Errorf("expected status action on scan, got %q", scan.Action)
	}
}

func TestUpdateAssetStatusFromScanRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)
	event, _ := RecordScan(ctx, database, asset.ID, op.ID, time.Now(), nil, nil)
	AttachScanAction(ctx, database, event.ID, model.ScanActionView)

	// Attach fails, so the status change must not apply.
	err := UpdateAssetStatusFromScan(ctx, database, asset.ID, model.AssetStatusDamaged, event.ID)
	if err == nil {
		t.Fatal("expected error for already-actioned event")
	}

	got, _ := GetAsset(ctx, database, asset.ID)
	if got.Status != model.AssetStatusActive {
		t.Errorf("status changed despite failed attach: %s", got.Status)
	}
}

func TestDeleteAssetSoft(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	asset := seedAsset(t, database)
	if err := DeleteAsset(ctx, database, asset.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}

	got, _ := GetAsset(ctx, database, asset.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted asset to remain readable with deleted_at set")
	}

	listed, _ := ListAssets(ctx, database, "", "")
	if len(listed) != 0 {
		t.Errorf("deleted asset should not be listed, got %d", len(listed))
	}
}
