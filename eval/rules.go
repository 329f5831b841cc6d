package eval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"verify-bot/models"
)

// input bundles everything a rule may consume.
type input struct {
	profile *models.PlayerProfile
	policy  models.RequirementPolicy
	lookups Lookups
	aux     *fetched
}

// rule inspects the input and appends classified issues to the report.
// Returning true stops the rule list immediately (short-circuit).
type rule func(ctx context.Context, in *input, rep *report) bool

// rules run in a fixed order: privacy, guild identity (short-circuits),
// numeric thresholds, character tiers, exaltations, completions.
var rules = []rule{
	lastSeenRule,
	guildRule,
	rankRule,
	fameRule,
	charactersRule,
	exaltationsRule,
	graveyardRule,
}

// lastSeenRule flags a visible last-seen location when the policy wants
// it hidden. The player can fix this themselves, so it retries.
func lastSeenRule(_ context.Context, in *input, rep *report) bool {
	if !in.policy.LastSeen.MustBeHidden {
		return false
	}
	if !strings.EqualFold(in.profile.LastSeen, models.LastSeenHidden) {
		rep.addTryAgain("Last Seen Visible",
			"Your last-seen location must be hidden. Change the setting on your profile and check again.")
	}
	return false
}

// guildRule checks guild identity and rank. A mismatch is fatal and
// stops evaluation: nothing else can compensate for the wrong guild.
func guildRule(_ context.Context, in *input, rep *report) bool {
	p := in.policy.Guild
	if p.Name == "" {
		return false
	}
	if !strings.EqualFold(in.profile.GuildName, p.Name) {
		rep.addFatal("Wrong Guild",
			fmt.Sprintf("You must be a member of **%s** (found: %s).", p.Name, orNone(in.profile.GuildName)))
		return true
	}
	switch {
	case p.Rank.Exact != "":
		if !strings.EqualFold(in.profile.GuildRank, p.Rank.Exact) {
			rep.addFatal("Wrong Guild Rank",
				fmt.Sprintf("Your guild rank must be exactly **%s** (found: %s).", p.Rank.Exact, orNone(in.profile.GuildRank)))
			return true
		}
	case p.Rank.Min != "":
		if !models.GuildRankAtLeast(in.profile.GuildRank, p.Rank.Min) {
			rep.addFatal("Guild Rank Too Low",
				fmt.Sprintf("Your guild rank must be at least **%s** (found: %s).", p.Rank.Min, orNone(in.profile.GuildRank)))
			return true
		}
	}
	return false
}

// rankRule and fameRule flag threshold shortfalls for human judgment.
func rankRule(_ context.Context, in *input, rep *report) bool {
	if in.policy.MinRank > 0 && in.profile.Rank < in.policy.MinRank {
		rep.addManual("Rank Too Low",
			fmt.Sprintf("Rank %d is below the required %d.", in.profile.Rank, in.policy.MinRank))
	}
	return false
}

func fameRule(_ context.Context, in *input, rep *report) bool {
	if in.policy.MinAliveFame > 0 && in.profile.AliveFame < in.policy.MinAliveFame {
		rep.addManual("Not Enough Alive Fame",
			fmt.Sprintf("%d alive fame is below the required %d.", in.profile.AliveFame, in.policy.MinAliveFame))
	}
	return false
}

// charactersRule runs the cascading tier match. A higher-tier character
// may fill a lower unfulfilled slot, never the reverse.
func charactersRule(_ context.Context, in *input, rep *report) bool {
	p := in.policy.Characters
	if !p.Enabled() {
		return false
	}

	needed := make([]int, len(p.StatsNeeded))
	copy(needed, p.StatsNeeded)

	if p.CheckPastDeaths {
		if in.aux.graveyardErr != nil {
			rep.addTryAgain("Graveyard Unavailable",
				"Your graveyard could not be fetched, so past characters cannot be counted. Check again in a moment.")
		} else {
			subtractCompletions(needed, in.aux.graveyard.TierCompletions)
		}
	}

	cascade(needed, in.profile.Characters)

	var missing []string
	for tier, n := range needed {
		if n > 0 {
			missing = append(missing, fmt.Sprintf("%dx T%d", n, tier))
		}
	}
	if len(missing) > 0 {
		rep.addManual("Missing Characters",
			fmt.Sprintf("Still needed: %s.", strings.Join(missing, ", ")))
	}
	return false
}

// subtractCompletions credits historical per-tier completions against
// the needed counts before live characters are considered.
func subtractCompletions(needed, completions []int) {
	for tier := 0; tier < len(needed) && tier < len(completions); tier++ {
		needed[tier] -= completions[tier]
		if needed[tier] < 0 {
			needed[tier] = 0
		}
	}
}

// cascade walks live characters and decrements needed counts. A
// character of tier T fills the T slot if open, otherwise the first
// unfilled slot scanning downward from T-1.
func cascade(needed []int, chars []models.Character) {
	for _, c := range chars {
		if c.IsDeceased {
			continue
		}
		if c.Tier >= 0 && c.Tier < len(needed) && needed[c.Tier] > 0 {
			needed[c.Tier]--
			continue
		}
		start := c.Tier - 1
		if start >= len(needed) {
			start = len(needed) - 1
		}
		for tier := start; tier >= 0; tier-- {
			if needed[tier] > 0 {
				needed[tier]--
				break
			}
		}
	}
}

// exaltationsRule matches per-stat exaltation minimums, either on a
// single character or summed across all of them.
func exaltationsRule(_ context.Context, in *input, rep *report) bool {
	p := in.policy.Exaltations
	if !p.Enabled() {
		return false
	}
	if in.aux.exaltationsErr != nil {
		rep.addTryAgain("Exaltations Unavailable",
			"Your exaltations could not be fetched. Check again in a moment.")
		return false
	}

	stats := sortedStats(p.Minimums)

	if p.OnOneCharacter {
		for _, c := range in.aux.exaltations.Characters {
			if meetsAll(c, p.Minimums) {
				return false
			}
		}
		var parts []string
		for _, stat := range stats {
			parts = append(parts, fmt.Sprintf("%s %d", stat, p.Minimums[stat]))
		}
		rep.addManual("Missing Exaltations",
			fmt.Sprintf("No single character has all of: %s.", strings.Join(parts, ", ")))
		return false
	}

	totals := in.aux.exaltations.Totals()
	for _, stat := range stats {
		if totals[stat] < p.Minimums[stat] {
			rep.addManual("Missing Exaltations",
				fmt.Sprintf("%s exaltations: %d of %d required.", stat, totals[stat], p.Minimums[stat]))
		}
	}
	return false
}

func meetsAll(c models.CharacterExaltations, minimums map[string]int) bool {
	for stat, min := range minimums {
		if min > 0 && c[stat] < min {
			return false
		}
	}
	return true
}

// graveyardRule matches dungeon-completion targets against either the
// bot's own logged counters or the external achievement history.
func graveyardRule(ctx context.Context, in *input, rep *report) bool {
	p := in.policy.Graveyard
	if !p.Enabled() {
		return false
	}

	counts := make(map[string]int, len(p.Targets))
	if p.UseLoggedCounters {
		if in.lookups.LoggedCompletions == nil {
			rep.addTryAgain("Completions Unavailable",
				"Logged completions could not be read. Check again in a moment.")
			return false
		}
		for category := range p.Targets {
			n, err := in.lookups.LoggedCompletions(ctx, category)
			if err != nil {
				rep.addTryAgain("Completions Unavailable",
					"Logged completions could not be read. Check again in a moment.")
				return false
			}
			counts[category] = n
		}
	} else {
		if in.aux.graveyardErr != nil {
			rep.addTryAgain("Graveyard Unavailable",
				"Your graveyard could not be fetched. Check again in a moment.")
			return false
		}
		for category := range p.Targets {
			counts[category] = in.aux.graveyard.Achievements[category]
		}
	}

	var missing []string
	for _, category := range sortedStats(p.Targets) {
		if counts[category] < p.Targets[category] {
			missing = append(missing, fmt.Sprintf("%s %d/%d", category, counts[category], p.Targets[category]))
		}
	}
	if len(missing) > 0 {
		rep.addManual("Missing Completions",
			fmt.Sprintf("Completion targets not met: %s.", strings.Join(missing, ", ")))
	}
	return false
}

func sortedStats(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
