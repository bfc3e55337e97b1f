package workflow

import (
	"assetdesk/internal/model"
)

// Action is something an operator can do with a freshly scanned asset.
type Action string

const (
	ActionViewDetails     Action = "view"
	ActionRequestHandover Action = "handover"
	ActionStartAudit      Action = "audit"
	ActionUpdateStatus    Action = "status"
)

// AvailableActions returns the actions an operator of the given role may take
// after scanning an asset. ViewDetails is always available; StartAudit is
// reserved for auditors.
func AvailableActions(role string) []Action {
	actions := []Action{ActionViewDetails, ActionRequestHandover, ActionUpdateStatus}
	if role == model.RoleAuditor {
		actions = append(actions, ActionStartAudit)
	}
	return actions
}

// CanPerform reports whether role is eligible for action.
func CanPerform(role string, action Action) bool {
	for _, a := range AvailableActions(role) {
		if a == action {
			return true
		}
	}
	return false
}
