package verification

import (
	"context"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

// OutcomeSink stores verification outcomes. Writes are best-effort from the
// orchestrator's point of view; the sink owns its own timeout.
type OutcomeSink interface {
	Save(ctx context.Context, o *Outcome) error
}

// OutcomeRepository is a sink that can also list what it stored.
type OutcomeRepository interface {
	OutcomeSink
	List(ctx context.Context, limit, offset int) ([]*OutcomeSummary, int, error)
}

// Provider is the live eligibility provider.
type Provider interface {
	HasCredential() bool
	ResolvePayerID(insuranceName, payerID string) (string, bool)
	CheckEligibility(ctx context.Context, req eligibility.ProviderRequest) (*eligibility.ProviderResult, error)
}
