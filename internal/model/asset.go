package model

import "time"

// Asset represents a trackable item (individually tracked, not quantity-based).
type Asset struct {
	ID               string     `json:"asset_id"`
	Name             string     `json:"name"`
	AssetType        string     `json:"asset_type"`
	Category         string     `json:"category"`
	RegistrationDate string     `json:"registration_date"`
	Attributes       string     `json:"attributes,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// Asset types.
const (
	AssetTypePhysical   = "physical"
	AssetTypeDigital    = "digital"
	AssetTypeConsumable = "consumable"
)

// Asset statuses.
const (
	AssetStatusActive     = "active"
	AssetStatusHandedOver = "handed_over"
	AssetStatusUnderAudit = "under_audit"
	AssetStatusDamaged    = "damaged"
	AssetStatusRetired    = "retired"
)

// ValidAssetStatus reports whether s is a known asset status.
func ValidAssetStatus(s string) bool {
	switch s {
	case AssetStatusActive, AssetStatusHandedOver, AssetStatusUnderAudit,
		AssetStatusDamaged, AssetStatusRetired:
		return true
	}
	return false
}

// AssetSummary is the subset of an asset that travels inside a QR payload.
type AssetSummary struct {
	AssetID          string `json:"asset_id"`
	Name             string `json:"name"`
	AssetType        string `json:"asset_type"`
	Category         string `json:"category"`
	RegistrationDate string `json:"registration_date"`
}

// Summary returns the QR payload view of an asset.
func (a *Asset) Summary() AssetSummary {
	return AssetSummary{
		AssetID:          a.ID,
		Name:             a.Name,
		AssetType:        a.AssetType,
		Category:         a.Category,
		RegistrationDate: a.RegistrationDate,
	}
}
