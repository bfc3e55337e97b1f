package model

import "time"

// AuditRecord is a point-in-time condition assessment of an asset. Records
// are immutable once stored; there is no edit or delete path.
type AuditRecord struct {
	ID                 string    `json:"id"`
	AssetID            string    `json:"asset_id"`
	AuditorName        string    `json:"auditor_name"`
	AuditDate          string    `json:"audit_date"`
	AuditType          string    `json:"audit_type"`
	PhysicalCondition  string    `json:"physical_condition"`
	FunctionalStatus   string    `json:"functional_status"`
	Location           string    `json:"location"`
	Discrepancies      string    `json:"discrepancies,omitempty"`
	RecommendedActions string    `json:"recommended_actions,omitempty"`
	ScanLatitude       *float64  `json:"scan_latitude,omitempty"`
	ScanLongitude      *float64  `json:"scan_longitude,omitempty"`
	ScanEventID        string    `json:"scan_event_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	AssetName string `json:"asset_name,omitempty"`
}

// Audit types.
const (
	AuditTypeRoutine     = "routine"
	AuditTypeMaintenance = "maintenance"
	AuditTypeIncident    = "incident"
	AuditTypeHandover    = "handover"
)

// ValidAuditType reports whether t is a known audit type.
func ValidAuditType(t string) bool {
	switch t {
	case AuditTypeRoutine, AuditTypeMaintenance, AuditTypeIncident, AuditTypeHandover:
		return true
	}
	return false
}
