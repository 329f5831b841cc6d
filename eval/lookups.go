package eval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"verify-bot/models"
)

// Lookups supplies the auxiliary data sources an evaluation may need.
// Each closure is invoked at most once, and only when the corresponding
// policy branch is active. A nil closure is treated as unavailable.
type Lookups struct {
	Graveyard   func(ctx context.Context) (*models.GraveyardSummary, error)
	Exaltations func(ctx context.Context) (*models.ExaltationRecord, error)
	// LoggedCompletions returns the subject's logged completion count
	// for one counter category within the scope under evaluation.
	LoggedCompletions func(ctx context.Context, category string) (int, error)
}

// fetched caches the prefetched auxiliary results for one evaluation.
type fetched struct {
	graveyard      *models.GraveyardSummary
	graveyardErr   error
	exaltations    *models.ExaltationRecord
	exaltationsErr error
}

// prefetch warms the graveyard and exaltation lookups concurrently when
// their policy branches are active. Fetch failures are recorded, not
// returned: each rule classifies its own source's unavailability.
func prefetch(ctx context.Context, policy models.RequirementPolicy, lookups Lookups) *fetched {
	f := &fetched{}

	needGraveyard := policy.Characters.CheckPastDeaths ||
		(policy.Graveyard.Enabled() && !policy.Graveyard.UseLoggedCounters)
	needExaltations := policy.Exaltations.Enabled()

	var g errgroup.Group
	if needGraveyard {
		g.Go(func() error {
			if lookups.Graveyard == nil {
				f.graveyardErr = ErrLookupUnavailable
				return nil
			}
			f.graveyard, f.graveyardErr = lookups.Graveyard(ctx)
			return nil
		})
	}
	if needExaltations {
		g.Go(func() error {
			if lookups.Exaltations == nil {
				f.exaltationsErr = ErrLookupUnavailable
				return nil
			}
			f.exaltations, f.exaltationsErr = lookups.Exaltations(ctx)
			return nil
		})
	}
	// The goroutines record per-source failures in f instead of
	// returning them; the group error is always nil.
	_ = g.Wait()
	return f
}
