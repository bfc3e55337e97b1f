package model

import "time"

// HandoverRequest is a request to transfer custody of an asset. It moves
// forward through a fixed ordered chain of review stages, one stage per
// reviewer decision, until approved at the final stage or rejected.
type HandoverRequest struct {
	ID              string     `json:"id"`
	AssetID         string     `json:"asset_id"`
	RequestedBy     int64      `json:"requested_by"`
	PersonName      string     `json:"person_name"`
	Department      string     `json:"department"`
	Purpose         string     `json:"purpose"`
	ConditionBefore string     `json:"condition_before_handover"`
	PictureMime     string     `json:"picture_mime,omitempty"`
	RequestDate     time.Time  `json:"request_date"`
	Source          string     `json:"source"`
	ScanEventID     string     `json:"scan_event_id,omitempty"`
	Stage           int        `json:"stage"`
	Status          string     `json:"status"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`

	// Joined fields (not always populated).
	AssetName     string `json:"asset_name,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
}

// Hand-over request statuses. Stage only advances while pending_review;
// approved and rejected are terminal.
const (
	HandoverStatusPending  = "pending_review"
	HandoverStatusApproved = "approved"
	HandoverStatusRejected = "rejected"
)

// Hand-over request sources.
const (
	HandoverSourceScan   = "scan"
	HandoverSourceDirect = "direct"
)

// Terminal reports whether the request accepts no further transitions.
func (h *HandoverRequest) Terminal() bool {
	return h.Status == HandoverStatusApproved || h.Status == HandoverStatusRejected
}

// HandoverReview is one reviewer decision in a request's stage history.
type HandoverReview struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Stage      int       `json:"stage"`
	Decision   string    `json:"decision"`
	ReviewedBy int64     `json:"reviewed_by"`
	Remarks    string    `json:"remarks,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`

	ReviewerName string `json:"reviewer_name,omitempty"`
}

// QueueEntry is a companion record handed off to a stage's review queue when
// a scanner-originated request clears its first review.
type QueueEntry struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	AssetID    string    `json:"asset_id"`
	Stage      int       `json:"stage"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
