package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"assetdesk/internal/db"
	"assetdesk/internal/model"
)

func seedOperator(t *testing.T, database *sql.DB, role string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), database, "op-"+role, "x", "Operator", role)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func seedAsset(t *testing.T, database *sql.DB) *model.Asset {
	t.Helper()
	asset, err := CreateAsset(context.Background(), database, "", "Dell Laptop",
		model.AssetTypePhysical, "Lab Equipment", "2024-01-15", "")
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	return asset
}

func TestRecordScan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)

	lat, lon := 19.0760, 72.8777
	event, err := RecordScan(ctx, database, asset.ID, op.ID, time.Now(), &lat, &lon)
	if err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	if event.AssetID != asset.ID {
		t.Errorf("expected asset %s, got %s", asset.ID, event.AssetID)
	}
	if event.Action != "" {
		t.Errorf("new scan should have no action, got %q", event.Action)
	}
	if event.Latitude == nil || *event.Latitude != lat {
		t.Errorf("expected latitude %v, got %v", lat, event.Latitude)
	}
}

func TestRecordScanWithoutLocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)

	event, err := RecordScan(ctx, database, asset.ID, op.ID, time.Now(), nil, nil)
	if err != nil {
		t.Fatalf("RecordScan: %v", err)
	}
	if event.Latitude != nil || event.Longitude != nil {
		t.Error("expected no location on event")
	}
}

func TestAttachScanActionOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)
	event, _ := RecordScan(ctx, database, asset.ID, op.ID, time.Now(), nil, nil)

	if err := AttachScanAction(ctx, database, event.ID, model.ScanActionHandover); err != nil {
		t.Fatalf("AttachScanAction: %v", err)
	}

	// Second attach must fail and leave the original action untouched.
	err := AttachScanAction(ctx, database, event.ID, model.ScanActionAudit)
	if !errors.Is(err, ErrAlreadyActioned) {
		t.Errorf("expected ErrAlreadyActioned, got %v", err)
	}

	got, _ := GetScanEvent(ctx, database, event.ID)
	if got.Action != model.ScanActionHandover {
		t.Errorf("action changed after failed attach: %q", got.Action)
	}
}

func TestAttachScanActionUnknownEvent(t *testing.T) {
	database := db.NewTestDB(t)

	err := AttachScanAction(context.Background(), database, "no-such-event", model.ScanActionView)
	if err == nil || errors.Is(err, ErrAlreadyActioned) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestListRecentScansOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first, _ := RecordScan(ctx, database, asset.ID, op.ID, base, nil, nil)
	second, _ := RecordScan(ctx, database, asset.ID, op.ID, base.Add(time.Minute), nil, nil)
	// Same timestamp as second: insertion order breaks the tie.
	third, _ := RecordScan(ctx, database, asset.ID, op.ID, base.Add(time.Minute), nil, nil)

	events, err := ListRecentScans(ctx, database, 10)
	if err != nil {
		t.Fatalf("ListRecentScans: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].ID != third.ID || events[1].ID != second.ID || events[2].ID != first.ID {
		t.Errorf("wrong order: got %s, %s, %s", events[0].ID, events[1].ID, events[2].ID)
	}
}

func TestListRecentScansLimit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	op := seedOperator(t, database, model.RoleFaculty)
	asset := seedAsset(t, database)

	for i := 0; i < 5; i++ {
		RecordScan(ctx, database, asset.ID, op.ID, time.Now(), nil, nil)
	}

	events, _ := ListRecentScans(ctx, database, 2)
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}
