// Package qr encodes asset summaries into scannable QR images and decodes
// captured frames back into structured payloads.
package qr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"

	"assetdesk/internal/model"
)

// ImageSize is the pixel width/height of generated QR images.
const ImageSize = 512

// payloadVersion guards against payload shape changes on printed labels
// that outlive the software that produced them.
const payloadVersion = 1

// Decode failures. ErrNotFound means no code region was detected in the
// frame; ErrMalformedPayload means a code was found but its payload is not
// an asset summary. Both are recovered by re-prompting the scan.
var (
	ErrNotFound         = errors.New("no QR code found in image")
	ErrMalformedPayload = errors.New("QR payload is not a valid asset summary")
)

// payload is the wire shape embedded in the QR image.
type payload struct {
	Version          int    `json:"v"`
	AssetID          string `json:"asset_id"`
	Name             string `json:"name"`
	AssetType        string `json:"asset_type"`
	Category         string `json:"category"`
	RegistrationDate string `json:"registration_date"`
}

// Encode serializes an asset summary into a printable PNG QR image.
// The same input always produces the same image.
func Encode(s model.AssetSummary) ([]byte, error) {
	if s.AssetID == "" {
		return nil, fmt.Errorf("encoding QR: asset id is required")
	}

	data, err := json.Marshal(payload{
		Version:          payloadVersion,
		AssetID:          s.AssetID,
		Name:             s.Name,
		AssetType:        s.AssetType,
		Category:         s.Category,
		RegistrationDate: s.RegistrationDate,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling QR payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("encoding QR image: %w", err)
	}
	return png, nil
}

// Decode locates and decodes a QR code in a captured frame. It never panics
// on garbage input; failures are reported as ErrNotFound or
// ErrMalformedPayload so the capture loop can prompt a retry.
func Decode(img image.Image) (*model.AssetSummary, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return parsePayload([]byte(result.GetText()))
}

// DecodeBytes decodes a QR code from raw PNG or JPEG image bytes.
func DecodeBytes(data []byte) (*model.AssetSummary, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return Decode(img)
}

func parsePayload(data []byte) (*model.AssetSummary, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if p.Version != payloadVersion {
		return nil, fmt.Errorf("%w: unsupported payload version %d", ErrMalformedPayload, p.Version)
	}
	if p.AssetID == "" {
		return nil, fmt.Errorf("%w: missing asset id", ErrMalformedPayload)
	}
	if p.Name == "" || p.AssetType == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrMalformedPayload)
	}

	return &model.AssetSummary{
		AssetID:          p.AssetID,
		Name:             p.Name,
		AssetType:        p.AssetType,
		Category:         p.Category,
		RegistrationDate: p.RegistrationDate,
	}, nil
}
