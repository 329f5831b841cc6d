package eval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verify-bot/models"
)

func TestDescribeDisabledPolicy(t *testing.T) {
	lines := Describe(models.DefaultPolicy("scope-1"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "any profile passes")
}

func TestDescribeListsActiveBranches(t *testing.T) {
	policy := checkingPolicy()
	policy.LastSeen.MustBeHidden = true
	policy.Guild.Name = "Sanctuary"
	policy.Guild.Rank.Min = "Officer"
	policy.MinRank = 75
	policy.Characters.StatsNeeded = []int{0, 0, 0, 0, 0, 0, 2}
	policy.Exaltations.Minimums = map[string]int{"life": 5}
	policy.Exaltations.OnOneCharacter = true
	policy.Graveyard.UseLoggedCounters = true
	policy.Graveyard.Targets = map[string]int{"Void": 10}

	text := strings.Join(Describe(policy), "\n")
	assert.Contains(t, text, "hidden")
	assert.Contains(t, text, "Sanctuary")
	assert.Contains(t, text, "Officer or higher")
	assert.Contains(t, text, "Rank 75")
	assert.Contains(t, text, "2x T6")
	assert.Contains(t, text, "life 5")
	assert.Contains(t, text, "all on one character")
	assert.Contains(t, text, "Void x10")
	assert.Contains(t, text, "as logged by this server")
	assert.NotContains(t, text, "fame", "inactive branches stay out of the list")
}
