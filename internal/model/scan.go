package model

import "time"

// ScanEvent is the immutable fact that an asset's QR code was decoded by an
// operator at a time and (optionally) a location. The action field is filled
// in exactly once, when the operator commits to a downstream workflow.
type ScanEvent struct {
	ID         string     `json:"id"`
	AssetID    string     `json:"asset_id"`
	OperatorID int64      `json:"operator_id"`
	ScannedAt  time.Time  `json:"scanned_at"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Action     string     `json:"action,omitempty"`
	ActionedAt *time.Time `json:"actioned_at,omitempty"`

	// Joined fields (not always populated).
	AssetName    string `json:"asset_name,omitempty"`
	OperatorName string `json:"operator_name,omitempty"`
}

// Scan actions.
const (
	ScanActionView     = "view"
	ScanActionHandover = "handover"
	ScanActionAudit    = "audit"
	ScanActionStatus   = "status"
)
