package models

import (
	"strings"
	"time"
)

// LastSeenHidden is the visibility value reported when a player has
// hidden their last-seen location on the profile site.
const LastSeenHidden = "hidden"

// Character is one live character slot on a player's profile.
type Character struct {
	Tier       int  `json:"tier"`
	IsDeceased bool `json:"is_deceased"`
}

// PlayerProfile is a point-in-time snapshot of a player's public profile.
// It is immutable once fetched; a newer view requires a fresh fetch.
type PlayerProfile struct {
	Name        string      `json:"name"`
	Rank        int         `json:"rank"`
	AliveFame   int         `json:"alive_fame"`
	GuildName   string      `json:"guild_name"`
	GuildRank   string      `json:"guild_rank"`
	LastSeen    string      `json:"last_seen"`
	Characters  []Character `json:"characters"`
	Description []string    `json:"description"`
	FetchedAt   time.Time   `json:"-"`
}

// HasInDescription reports whether any description line contains the
// given token.
func (p *PlayerProfile) HasInDescription(token string) bool {
	if token == "" {
		return false
	}
	for _, line := range p.Description {
		if strings.Contains(line, token) {
			return true
		}
	}
	return false
}

// CharacterExaltations maps stat name to exaltation bonus for one character.
type CharacterExaltations map[string]int

// ExaltationRecord holds per-character exaltation bonuses for a player.
// Fetched independently of the base profile.
type ExaltationRecord struct {
	PlayerName string                 `json:"player_name"`
	Characters []CharacterExaltations `json:"characters"`
}

// Totals sums each stat's bonus across all characters.
func (r *ExaltationRecord) Totals() CharacterExaltations {
	totals := make(CharacterExaltations)
	for _, c := range r.Characters {
		for stat, amount := range c {
			totals[stat] += amount
		}
	}
	return totals
}

// GraveyardSummary holds per-achievement completion totals for a player,
// including per-tier character completion counts used by the past-deaths
// contribution of the tier match.
type GraveyardSummary struct {
	PlayerName string `json:"player_name"`
	// Achievements maps an achievement key (e.g. a dungeon name) to its
	// completion total.
	Achievements map[string]int `json:"achievements"`
	// TierCompletions[t] is how many tier-t characters the player has
	// previously completed (maxed and lost).
	TierCompletions []int `json:"tier_completions"`
}

// NameHistory is the ordered list of names a profile has carried.
type NameHistory struct {
	PlayerName string   `json:"player_name"`
	Names      []string `json:"names"`
}
