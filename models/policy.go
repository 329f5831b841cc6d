package models

// MaxTier is the highest character tier the game reports.
const MaxTier = 8

// GuildRankLadder orders guild ranks from highest to lowest. A rank
// satisfies an "at least" floor if it appears at or above the floor's
// position in this ladder.
var GuildRankLadder = []string{"Founder", "Leader", "Officer", "Member", "Initiate"}

// GuildRankAtLeast reports whether rank sits at or above floor in the
// ladder. Unknown ranks never satisfy a floor.
func GuildRankAtLeast(rank, floor string) bool {
	rankPos, floorPos := -1, -1
	for i, r := range GuildRankLadder {
		if r == rank {
			rankPos = i
		}
		if r == floor {
			floorPos = i
		}
	}
	if rankPos == -1 || floorPos == -1 {
		return false
	}
	return rankPos <= floorPos
}

// LastSeenPolicy configures the last-seen privacy check.
type LastSeenPolicy struct {
	MustBeHidden bool `json:"must_be_hidden" mapstructure:"must_be_hidden"`
}

// GuildRankPolicy configures the guild rank sub-check. Exact takes
// precedence over Min when both are set.
type GuildRankPolicy struct {
	Min   string `json:"min" mapstructure:"min"`
	Exact string `json:"exact" mapstructure:"exact"`
}

// GuildPolicy configures guild identity checks. An empty Name disables
// the whole branch.
type GuildPolicy struct {
	Name string          `json:"name" mapstructure:"name"`
	Rank GuildRankPolicy `json:"rank" mapstructure:"rank"`
}

// CharactersPolicy configures the character-tier match. StatsNeeded is
// indexed by tier: StatsNeeded[t] live characters of tier t (or higher,
// via cascading) are required.
type CharactersPolicy struct {
	StatsNeeded     []int `json:"stats_needed" mapstructure:"stats_needed"`
	CheckPastDeaths bool  `json:"check_past_deaths" mapstructure:"check_past_deaths"`
}

// Enabled reports whether any tier slot is required.
func (c CharactersPolicy) Enabled() bool {
	for _, n := range c.StatsNeeded {
		if n > 0 {
			return true
		}
	}
	return false
}

// ExaltationsPolicy configures per-stat exaltation minimums. With
// OnOneCharacter set, a single character must meet every minimum
// simultaneously; otherwise minimums apply to the sum across characters.
type ExaltationsPolicy struct {
	Minimums       map[string]int `json:"minimums" mapstructure:"minimums"`
	OnOneCharacter bool           `json:"on_one_character" mapstructure:"on_one_character"`
}

// Enabled reports whether any stat minimum is set.
func (e ExaltationsPolicy) Enabled() bool {
	for _, min := range e.Minimums {
		if min > 0 {
			return true
		}
	}
	return false
}

// GraveyardPolicy configures dungeon-completion targets. The two source
// modes are mutually exclusive: UseLoggedCounters matches against the
// bot's own per-user completion counters for the scope, otherwise the
// externally reported achievement history is used.
type GraveyardPolicy struct {
	UseLoggedCounters bool           `json:"use_logged_counters" mapstructure:"use_logged_counters"`
	Targets           map[string]int `json:"targets" mapstructure:"targets"`
}

// Enabled reports whether any completion target is set.
func (g GraveyardPolicy) Enabled() bool {
	for _, n := range g.Targets {
		if n > 0 {
			return true
		}
	}
	return false
}

// RequirementPolicy is the per-scope requirement configuration tree read
// by the evaluator. It is read-only during a single evaluation; a new
// session attempt re-reads it from the store.
type RequirementPolicy struct {
	ScopeID           string            `json:"scope_id" mapstructure:"scope_id"`
	CheckRequirements bool              `json:"check_requirements" mapstructure:"check_requirements"`
	LastSeen          LastSeenPolicy    `json:"last_seen" mapstructure:"last_seen"`
	MinRank           int               `json:"min_rank" mapstructure:"min_rank"`
	MinAliveFame      int               `json:"min_alive_fame" mapstructure:"min_alive_fame"`
	Guild             GuildPolicy       `json:"guild" mapstructure:"guild"`
	Characters        CharactersPolicy  `json:"characters" mapstructure:"characters"`
	Exaltations       ExaltationsPolicy `json:"exaltations" mapstructure:"exaltations"`
	Graveyard         GraveyardPolicy   `json:"graveyard" mapstructure:"graveyard"`
}

// DefaultPolicy returns the policy created for a scope that has none
// persisted yet. Requirement checking starts disabled so a fresh scope
// verifies everyone until configured.
func DefaultPolicy(scopeID string) RequirementPolicy {
	return RequirementPolicy{
		ScopeID:           scopeID,
		CheckRequirements: false,
		Characters:        CharactersPolicy{StatsNeeded: make([]int, MaxTier+1)},
	}
}
