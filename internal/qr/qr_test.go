package qr

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"assetdesk/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	summary := model.AssetSummary{
		AssetID:          "AST-2024-001",
		Name:             "Dell Laptop",
		AssetType:        "Physical",
		Category:         "Lab Equipment",
		RegistrationDate: "2024-01-15",
	}

	data, err := Encode(summary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if *decoded != summary {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *decoded, summary)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	summary := model.AssetSummary{
		AssetID:   "AST-2024-002",
		Name:      "Projector",
		AssetType: "physical",
	}

	first, err := Encode(summary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(summary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("expected identical images for identical input")
	}
}

func TestEncodeRequiresAssetID(t *testing.T) {
	_, err := Encode(model.AssetSummary{Name: "No ID"})
	if err == nil {
		t.Error("expected error for missing asset id")
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	// A blank frame contains no code region.
	blank := image.NewRGBA(image.Rect(0, 0, 200, 200))
	var buf bytes.Buffer
	png.Encode(&buf, blank)

	_, err := DecodeBytes(buf.Bytes())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodeGarbageBytes(t *testing.T) {
	_, err := DecodeBytes([]byte("definitely not an image"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "hello world"},
		{"wrong shape", `{"url": "https://example.com"}`},
		{"missing asset id", `{"v": 1, "name": "Laptop", "asset_type": "physical"}`},
		{"wrong version", `{"v": 99, "asset_id": "AST-1", "name": "Laptop", "asset_type": "physical"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePayload([]byte(tc.payload))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}
