package eval

import (
	"context"
	"errors"

	"verify-bot/models"
)

// ErrLookupUnavailable marks an auxiliary data source that could not be
// consulted. Rules translate it into a retryable issue.
var ErrLookupUnavailable = errors.New("eval: lookup unavailable")

// Evaluate classifies a profile snapshot against a requirement policy.
// It runs the rule list in order, short-circuiting on a fatal guild
// mismatch, then resolves the verdict under the fixed precedence
// FATAL > TRY_AGAIN > MANUAL > PASS. With CheckRequirements disabled the
// result is an unconditional pass.
func Evaluate(ctx context.Context, profile *models.PlayerProfile, policy models.RequirementPolicy, params Params, lookups Lookups) Result {
	if !policy.CheckRequirements {
		return Result{Verdict: VerdictPass}
	}

	in := &input{
		profile: profile,
		policy:  policy,
		lookups: lookups,
		aux:     prefetch(ctx, policy, lookups),
	}

	rep := &report{}
	for _, r := range rules {
		if r(ctx, in, rep) {
			break
		}
	}
	return rep.resolve(params.HasReviewQueue)
}
