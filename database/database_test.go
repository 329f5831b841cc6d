package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verify-bot/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetOrCreatePolicyCreatesDefault(t *testing.T) {
	store := testStore(t)

	policy, err := store.GetOrCreatePolicy("scope-1")
	require.NoError(t, err)
	assert.Equal(t, "scope-1", policy.ScopeID)
	assert.False(t, policy.CheckRequirements, "fresh scopes verify everyone until configured")
	assert.Len(t, policy.Characters.StatsNeeded, models.MaxTier+1)
}

func TestSavePolicyRoundTrip(t *testing.T) {
	store := testStore(t)

	policy := models.DefaultPolicy("scope-1")
	policy.CheckRequirements = true
	policy.MinRank = 75
	policy.Guild.Name = "Sanctuary"
	policy.Guild.Rank.Min = "Officer"
	policy.Exaltations.Minimums = map[string]int{"life": 5}
	require.NoError(t, store.SavePolicy(policy))

	loaded, err := store.GetOrCreatePolicy("scope-1")
	require.NoError(t, err)
	assert.Equal(t, policy, loaded)
}

func TestInsertManualEntryEnforcesUniquePair(t *testing.T) {
	store := testStore(t)

	entry := &models.ManualVerificationEntry{
		UserID: "user-1", GuildID: "guild-1", ScopeID: "scope-1", CandidateName: "Trogdor",
	}
	require.NoError(t, store.InsertManualEntry(entry))
	assert.NotZero(t, entry.ID)

	dup := &models.ManualVerificationEntry{
		UserID: "user-1", GuildID: "guild-1", ScopeID: "scope-1", CandidateName: "Other",
	}
	assert.ErrorIs(t, store.InsertManualEntry(dup), ErrDuplicateEntry)

	// A different scope for the same user is a different pair.
	other := &models.ManualVerificationEntry{
		UserID: "user-1", GuildID: "guild-1", ScopeID: "scope-2", CandidateName: "Trogdor",
	}
	assert.NoError(t, store.InsertManualEntry(other))
}

func TestManualEntryLifecycle(t *testing.T) {
	store := testStore(t)

	entry := &models.ManualVerificationEntry{
		UserID: "user-1", GuildID: "guild-1", ScopeID: "scope-1", CandidateName: "Trogdor",
	}
	require.NoError(t, store.InsertManualEntry(entry))
	require.NoError(t, store.SetQueueMessage(entry.ID, "chan-1", "msg-1"))

	loaded, err := store.GetManualEntry(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Trogdor", loaded.CandidateName)
	assert.Equal(t, "chan-1", loaded.QueueChannelID)
	assert.Equal(t, "msg-1", loaded.QueueMessageID)
	assert.False(t, loaded.CreatedAt.IsZero())

	deleted, err := store.DeleteManualEntry(entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// The second delete is a no-op; disposition races rely on this.
	deleted, err = store.DeleteManualEntry(entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	loaded, err = store.GetManualEntry(entry.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestListAndPurgeManualEntries(t *testing.T) {
	store := testStore(t)

	for _, e := range []*models.ManualVerificationEntry{
		{UserID: "user-1", GuildID: "guild-1", ScopeID: "guild-1", CandidateName: "A"},
		{UserID: "user-1", GuildID: "guild-1", ScopeID: "raiders", CandidateName: "A"},
		{UserID: "user-1", GuildID: "guild-2", ScopeID: "guild-2", CandidateName: "A"},
		{UserID: "user-2", GuildID: "guild-1", ScopeID: "guild-1", CandidateName: "B"},
	} {
		require.NoError(t, store.InsertManualEntry(e))
	}

	byGuild, err := store.ListEntriesForGuild("guild-1")
	require.NoError(t, err)
	assert.Len(t, byGuild, 3)

	byUser, err := store.ListEntriesForUser("guild-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byScope, err := store.ListEntriesForScope("raiders")
	require.NoError(t, err)
	assert.Len(t, byScope, 1)

	// The purge is per guild: the same user's entry in another guild
	// stays pending.
	require.NoError(t, store.DeleteEntriesForUser("guild-1", "user-1"))
	byUser, err = store.ListEntriesForUser("guild-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, byUser)
	byUser, err = store.ListEntriesForUser("guild-2", "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	require.NoError(t, store.DeleteEntriesForScope("guild-2"))
	byScope, err = store.ListEntriesForScope("guild-2")
	require.NoError(t, err)
	assert.Empty(t, byScope)
}

func TestVerifiedNames(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.SaveVerifiedName("user-1", "Trogdor"))
	require.NoError(t, store.SaveVerifiedName("user-1", "Burninator"))
	// Re-verifying must not create a duplicate row.
	require.NoError(t, store.SaveVerifiedName("user-1", "Trogdor"))

	names, err := store.KnownNames("user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Trogdor", "Burninator"}, names)

	names, err = store.KnownNames("user-2")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCountersSumOnlyCompletedOutcomes(t *testing.T) {
	store := testStore(t)

	key := models.CounterKey{
		ScopeID: "scope-1", Category: "Void", Subject: "user-1", Outcome: models.DungeonCompleted,
	}
	require.NoError(t, store.IncrementCounter(key, 2))
	require.NoError(t, store.IncrementCounter(key, 3))

	failedKey := key
	failedKey.Outcome = models.DungeonFailed
	require.NoError(t, store.IncrementCounter(failedKey, 10))

	count, err := store.CompletionCount("scope-1", "Void", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	count, err = store.CompletionCount("scope-1", "Shatters", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBlacklistMatchIsCaseInsensitive(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.AddToBlacklist("Trogdor", "case-77", "ban evasion"))

	hit, err := store.BlacklistMatch("trogdor")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "case-77", hit.ModerationRef)

	clean, err := store.BlacklistMatch("SomeoneElse")
	require.NoError(t, err)
	assert.Nil(t, clean)

	require.NoError(t, store.RemoveFromBlacklist("TROGDOR"))
	hit, err = store.BlacklistMatch("Trogdor")
	require.NoError(t, err)
	assert.Nil(t, hit)
}
