package workflow

import (
	"fmt"

	"assetdesk/internal/model"
)

// Chain is the institution's ordered approval chain. The reviewer role for
// each stage is configuration data, not part of the state machine.
type Chain []string

// DefaultChain mirrors the default institutional review sequence.
func DefaultChain() Chain {
	return Chain{
		model.RoleHOD,
		model.RolePrincipal,
		model.RoleACC,
		model.RoleSecretary,
		model.RoleTrustManager,
	}
}

// ParseChain validates a configured chain of reviewer roles.
func ParseChain(roles []string) (Chain, error) {
	if len(roles) == 0 {
		return DefaultChain(), nil
	}
	for _, role := range roles {
		if !model.KnownRole(role) {
			return nil, fmt.Errorf("unknown reviewer role %q in approval chain", role)
		}
	}
	return Chain(roles), nil
}

// ReviewerRole returns the role configured to review the given 1-based stage.
func (c Chain) ReviewerRole(stage int) (string, error) {
	if stage < 1 || stage > len(c) {
		return "", fmt.Errorf("stage %d out of range (chain has %d stages)", stage, len(c))
	}
	return c[stage-1], nil
}
