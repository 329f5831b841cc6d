package eval

import (
	"fmt"
	"strings"

	"verify-bot/models"
)

// Describe renders a policy as the human-readable requirement list shown
// in the proof prompt.
func Describe(policy models.RequirementPolicy) []string {
	if !policy.CheckRequirements {
		return []string{"No requirements — any profile passes."}
	}

	var lines []string
	if policy.LastSeen.MustBeHidden {
		lines = append(lines, "Last-seen location hidden")
	}
	if policy.Guild.Name != "" {
		line := "Member of the guild " + policy.Guild.Name
		switch {
		case policy.Guild.Rank.Exact != "":
			line += " with rank " + policy.Guild.Rank.Exact
		case policy.Guild.Rank.Min != "":
			line += " with rank " + policy.Guild.Rank.Min + " or higher"
		}
		lines = append(lines, line)
	}
	if policy.MinRank > 0 {
		lines = append(lines, fmt.Sprintf("Rank %d or higher", policy.MinRank))
	}
	if policy.MinAliveFame > 0 {
		lines = append(lines, fmt.Sprintf("%d alive fame or more", policy.MinAliveFame))
	}
	if policy.Characters.Enabled() {
		var parts []string
		for tier, n := range policy.Characters.StatsNeeded {
			if n > 0 {
				parts = append(parts, fmt.Sprintf("%dx T%d", n, tier))
			}
		}
		line := "Characters: " + strings.Join(parts, ", ") + " (higher tiers count down)"
		if policy.Characters.CheckPastDeaths {
			line += ", past characters included"
		}
		lines = append(lines, line)
	}
	if policy.Exaltations.Enabled() {
		var parts []string
		for _, stat := range sortedStats(policy.Exaltations.Minimums) {
			if policy.Exaltations.Minimums[stat] > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", stat, policy.Exaltations.Minimums[stat]))
			}
		}
		line := "Exaltations: " + strings.Join(parts, ", ")
		if policy.Exaltations.OnOneCharacter {
			line += " (all on one character)"
		}
		lines = append(lines, line)
	}
	if policy.Graveyard.Enabled() {
		var parts []string
		for _, category := range sortedStats(policy.Graveyard.Targets) {
			if policy.Graveyard.Targets[category] > 0 {
				parts = append(parts, fmt.Sprintf("%s x%d", category, policy.Graveyard.Targets[category]))
			}
		}
		line := "Completions: " + strings.Join(parts, ", ")
		if policy.Graveyard.UseLoggedCounters {
			line += " (as logged by this server)"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "No requirements — any profile passes.")
	}
	return lines
}
