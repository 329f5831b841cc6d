package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verify-bot/models"
)

func checkingPolicy() models.RequirementPolicy {
	p := models.DefaultPolicy("scope-1")
	p.CheckRequirements = true
	return p
}

func graveyardOf(sum *models.GraveyardSummary, err error) Lookups {
	return Lookups{
		Graveyard: func(context.Context) (*models.GraveyardSummary, error) {
			return sum, err
		},
	}
}

func exaltationsOf(rec *models.ExaltationRecord) Lookups {
	return Lookups{
		Exaltations: func(context.Context) (*models.ExaltationRecord, error) {
			return rec, nil
		},
	}
}

func TestEvaluateCheckingDisabledAlwaysPasses(t *testing.T) {
	policy := models.DefaultPolicy("scope-1")
	policy.MinRank = 90
	policy.Guild.Name = "Some Guild"

	profile := &models.PlayerProfile{Rank: 0, GuildName: "Wrong Guild"}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})

	assert.Equal(t, VerdictPass, result.Verdict)
	assert.Empty(t, result.Fatal)
	assert.Empty(t, result.Manual)
}

func TestEvaluateEmptyEnabledPolicyPasses(t *testing.T) {
	result := Evaluate(context.Background(), &models.PlayerProfile{}, checkingPolicy(), Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestGuildMismatchIsFatalAndShortCircuits(t *testing.T) {
	policy := checkingPolicy()
	policy.Guild.Name = "Sanctuary"
	policy.MinRank = 90 // below the wrong-guild finding, must never run

	profile := &models.PlayerProfile{GuildName: "Other", Rank: 10}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})

	assert.Equal(t, VerdictFail, result.Verdict)
	require.Len(t, result.Fatal, 1)
	assert.Equal(t, "Wrong Guild", result.Fatal[0].Key)
	assert.Empty(t, result.Manual, "rules after the guild check must not run")
}

func TestGuildNameMatchIsCaseInsensitive(t *testing.T) {
	policy := checkingPolicy()
	policy.Guild.Name = "Sanctuary"

	profile := &models.PlayerProfile{GuildName: "sanctuary"}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestGuildRankExactTakesPrecedenceOverMin(t *testing.T) {
	policy := checkingPolicy()
	policy.Guild.Name = "Sanctuary"
	policy.Guild.Rank.Exact = "Officer"
	policy.Guild.Rank.Min = "Initiate"

	// Leader beats the Min floor but is not the Exact rank.
	profile := &models.PlayerProfile{GuildName: "Sanctuary", GuildRank: "Leader"}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})

	assert.Equal(t, VerdictFail, result.Verdict)
	require.Len(t, result.Fatal, 1)
	assert.Equal(t, "Wrong Guild Rank", result.Fatal[0].Key)
}

func TestGuildRankMinFloor(t *testing.T) {
	policy := checkingPolicy()
	policy.Guild.Name = "Sanctuary"
	policy.Guild.Rank.Min = "Officer"

	for rank, ok := range map[string]bool{
		"Founder":  true,
		"Officer":  true,
		"Member":   false,
		"Initiate": false,
		"":         false,
	} {
		profile := &models.PlayerProfile{GuildName: "Sanctuary", GuildRank: rank}
		result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
		if ok {
			assert.Equal(t, VerdictPass, result.Verdict, "rank %q should pass", rank)
		} else {
			assert.Equal(t, VerdictFail, result.Verdict, "rank %q should fail", rank)
		}
	}
}

func TestLastSeenVisibleIsRetryable(t *testing.T) {
	policy := checkingPolicy()
	policy.LastSeen.MustBeHidden = true

	profile := &models.PlayerProfile{LastSeen: "nexus, 3 hours ago"}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})

	assert.Equal(t, VerdictTryAgain, result.Verdict)
	require.Len(t, result.TryAgain, 1)
	assert.Equal(t, "Last Seen Visible", result.TryAgain[0].Key)

	profile.LastSeen = "Hidden"
	result = Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestRankShortfallIsManual(t *testing.T) {
	policy := checkingPolicy()
	policy.MinRank = 80

	profile := &models.PlayerProfile{Rank: 70}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})

	assert.Equal(t, VerdictManual, result.Verdict)
	require.Len(t, result.Manual, 1)
	assert.Equal(t, "Rank Too Low", result.Manual[0].Key)
}

func TestManualDowngradesToFailWithoutReviewQueue(t *testing.T) {
	policy := checkingPolicy()
	policy.MinAliveFame = 5000

	profile := &models.PlayerProfile{AliveFame: 100}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: false}, Lookups{})

	assert.Equal(t, VerdictFail, result.Verdict)
	require.Len(t, result.Manual, 1)
	assert.Equal(t, "Not Enough Alive Fame", result.Manual[0].Key)
	assert.Empty(t, result.Fatal)
}

func TestTryAgainTakesPrecedenceOverManual(t *testing.T) {
	policy := checkingPolicy()
	policy.LastSeen.MustBeHidden = true
	policy.MinRank = 80

	profile := &models.PlayerProfile{LastSeen: "nexus", Rank: 10}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})

	assert.Equal(t, VerdictTryAgain, result.Verdict)
	assert.Len(t, result.TryAgain, 1)
	assert.Len(t, result.Manual, 1)
}

func TestFatalTakesPrecedenceOverTryAgain(t *testing.T) {
	policy := checkingPolicy()
	policy.LastSeen.MustBeHidden = true
	policy.Guild.Name = "Sanctuary"

	profile := &models.PlayerProfile{LastSeen: "nexus", GuildName: "Other"}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})

	assert.Equal(t, VerdictFail, result.Verdict)
	assert.Len(t, result.Fatal, 1)
	assert.Len(t, result.TryAgain, 1)
}

func TestCharactersExactTierFillsItsOwnSlot(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 0, 0, 1}

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 3}}}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestCharactersHigherTierCascadesDownward(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 0, 1}

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 6}}}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestCharactersNeverCascadeUpward(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 0, 0, 0, 0, 1}

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 3}, {Tier: 4}}}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})

	assert.Equal(t, VerdictManual, result.Verdict)
	require.Len(t, result.Manual, 1)
	assert.Equal(t, "Missing Characters", result.Manual[0].Key)
	assert.Contains(t, result.Manual[0].Detail, "1x T5")
}

func TestCharactersExactSlotPreferredBeforeCascade(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 1, 1}

	// Both T2 characters are needed: the first fills the T2 slot, the
	// second cascades down into the T1 slot.
	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 2}, {Tier: 2}}}
	result := Evaluate(context.Background(), profile, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestCharactersDeceasedAreIgnored(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 0, 1}

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 2, IsDeceased: true}}}
	result := Evaluate(context.Background(), profile, policy, Params{HasReviewQueue: true}, Lookups{})
	assert.Equal(t, VerdictManual, result.Verdict)
}

func TestCharactersPastDeathsCreditCompletions(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 0, 2}
	policy.Characters.CheckPastDeaths = true

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 2}}}
	lookups := graveyardOf(&models.GraveyardSummary{TierCompletions: []int{0, 0, 1}}, nil)

	result := Evaluate(context.Background(), profile, policy, Params{}, lookups)
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestCharactersPastDeathsUnavailableIsRetryable(t *testing.T) {
	policy := checkingPolicy()
	policy.Characters.StatsNeeded = []int{0, 1}
	policy.Characters.CheckPastDeaths = true

	profile := &models.PlayerProfile{Characters: []models.Character{{Tier: 1}}}
	lookups := graveyardOf(nil, errors.New("boom"))

	result := Evaluate(context.Background(), profile, policy, Params{}, lookups)
	assert.Equal(t, VerdictTryAgain, result.Verdict)
	require.Len(t, result.TryAgain, 1)
	assert.Equal(t, "Graveyard Unavailable", result.TryAgain[0].Key)
}

func TestExaltationsSummedAcrossCharacters(t *testing.T) {
	policy := checkingPolicy()
	policy.Exaltations.Minimums = map[string]int{"life": 4}

	lookups := exaltationsOf(&models.ExaltationRecord{Characters: []models.CharacterExaltations{
		{"life": 2}, {"life": 3},
	}})
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{}, lookups)
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestExaltationsOnOneCharacterRejectsSplit(t *testing.T) {
	policy := checkingPolicy()
	policy.Exaltations.Minimums = map[string]int{"life": 2, "mana": 2}
	policy.Exaltations.OnOneCharacter = true

	// Each stat is met somewhere, but no single character has both.
	lookups := exaltationsOf(&models.ExaltationRecord{Characters: []models.CharacterExaltations{
		{"life": 5}, {"mana": 5},
	}})
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{HasReviewQueue: true}, lookups)

	assert.Equal(t, VerdictManual, result.Verdict)
	require.Len(t, result.Manual, 1)
	assert.Equal(t, "Missing Exaltations", result.Manual[0].Key)
}

func TestExaltationsOnOneCharacterAcceptsSingleMatch(t *testing.T) {
	policy := checkingPolicy()
	policy.Exaltations.Minimums = map[string]int{"life": 2, "mana": 2}
	policy.Exaltations.OnOneCharacter = true

	lookups := exaltationsOf(&models.ExaltationRecord{Characters: []models.CharacterExaltations{
		{"life": 1}, {"life": 2, "mana": 3},
	}})
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{}, lookups)
	assert.Equal(t, VerdictPass, result.Verdict)
}

func TestExaltationsUnavailableIsRetryable(t *testing.T) {
	policy := checkingPolicy()
	policy.Exaltations.Minimums = map[string]int{"life": 1}

	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{}, Lookups{})
	assert.Equal(t, VerdictTryAgain, result.Verdict)
	require.Len(t, result.TryAgain, 1)
	assert.Equal(t, "Exaltations Unavailable", result.TryAgain[0].Key)
}

func TestGraveyardExternalHistoryTargets(t *testing.T) {
	policy := checkingPolicy()
	policy.Graveyard.Targets = map[string]int{"Void": 10, "Shatters": 5}

	lookups := graveyardOf(&models.GraveyardSummary{
		Achievements: map[string]int{"Void": 12, "Shatters": 3},
	}, nil)
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{HasReviewQueue: true}, lookups)

	assert.Equal(t, VerdictManual, result.Verdict)
	require.Len(t, result.Manual, 1)
	assert.Equal(t, "Missing Completions", result.Manual[0].Key)
	assert.Contains(t, result.Manual[0].Detail, "Shatters 3/5")
	assert.NotContains(t, result.Manual[0].Detail, "Void")
}

func TestGraveyardLoggedCountersMode(t *testing.T) {
	policy := checkingPolicy()
	policy.Graveyard.UseLoggedCounters = true
	policy.Graveyard.Targets = map[string]int{"Void": 3}

	var askedCategory string
	lookups := Lookups{
		LoggedCompletions: func(_ context.Context, category string) (int, error) {
			askedCategory = category
			return 3, nil
		},
	}
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{}, lookups)

	assert.Equal(t, VerdictPass, result.Verdict)
	assert.Equal(t, "Void", askedCategory)
}

func TestGraveyardLoggedCountersUnavailableIsRetryable(t *testing.T) {
	policy := checkingPolicy()
	policy.Graveyard.UseLoggedCounters = true
	policy.Graveyard.Targets = map[string]int{"Void": 3}

	lookups := Lookups{
		LoggedCompletions: func(context.Context, string) (int, error) {
			return 0, errors.New("db closed")
		},
	}
	result := Evaluate(context.Background(), &models.PlayerProfile{}, policy, Params{}, lookups)

	assert.Equal(t, VerdictTryAgain, result.Verdict)
	require.Len(t, result.TryAgain, 1)
	assert.Equal(t, "Completions Unavailable", result.TryAgain[0].Key)
}

func TestGraveyardLookupSkippedWhenBranchInactive(t *testing.T) {
	policy := checkingPolicy()
	policy.MinRank = 10

	called := false
	lookups := Lookups{
		Graveyard: func(context.Context) (*models.GraveyardSummary, error) {
			called = true
			return nil, nil
		},
	}
	profile := &models.PlayerProfile{Rank: 50}
	result := Evaluate(context.Background(), profile, policy, Params{}, lookups)

	assert.Equal(t, VerdictPass, result.Verdict)
	assert.False(t, called, "inactive policy branches must not trigger lookups")
}
