package workflow

import (
	"testing"

	"assetdesk/internal/model"
)

func TestParseChainDefaults(t *testing.T) {
	chain, err := ParseChain(nil)
	if err != nil {
		t.Fatalf("ParseChain: %v", err)
	}
	if len(chain) != 5 {
		t.Fatalf("expected 5 default stages, got %d", len(chain))
	}
	if chain[0] != model.RoleHOD || chain[4] != model.RoleTrustManager {
		t.Errorf("unexpected default chain: %v", chain)
	}
}

func TestParseChainRejectsUnknownRole(t *testing.T) {
	if _, err := ParseChain([]string{model.RoleHOD, "janitor"}); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestReviewerRoleBounds(t *testing.T) {
	chain := Chain{model.RoleHOD, model.RolePrincipal}

	role, err := chain.ReviewerRole(2)
	if err != nil || role != model.RolePrincipal {
		t.Errorf("stage 2: got %q, %v", role, err)
	}
	if _, err := chain.ReviewerRole(0); err == nil {
		t.Error("stage 0 should be out of range")
	}
	if _, err := chain.ReviewerRole(3); err == nil {
		t.Error("stage 3 should be out of range")
	}
}
