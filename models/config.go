package models

// GuildsConfig represents the structure of the config/guilds.json file.
// It's a map where keys are guild IDs.
type GuildsConfig map[string]GuildConfig

// GuildConfig is the verification configuration for a single guild.
// The main scope is the guild itself; sub-scopes are additional sections
// (e.g. a veteran raiding section) with their own policy and roles.
type GuildConfig struct {
	Name      string                 `json:"name" mapstructure:"name"`
	MainScope ScopeConfig            `json:"main_scope" mapstructure:"main_scope"`
	SubScopes map[string]ScopeConfig `json:"sub_scopes" mapstructure:"sub_scopes"`
	// LogChannels maps a logical log role to a channel ID. Known roles:
	// "session-started", "step-update", "success", "failure".
	LogChannels map[string]string `json:"log_channels" mapstructure:"log_channels"`
	// ModeratorRoles may act on manual-review entries for this guild.
	ModeratorRoles []string `json:"moderator_roles" mapstructure:"moderator_roles"`
}

// ScopeConfig is the Discord wiring for one verification scope.
type ScopeConfig struct {
	Name string `json:"name" mapstructure:"name"`
	// MemberRoleID is the role granted on successful verification.
	// Disposition against a scope with an empty MemberRoleID is a
	// configuration error.
	MemberRoleID string `json:"member_role_id" mapstructure:"member_role_id"`
	// ReviewChannelID receives manual-review queue items. When empty, a
	// MANUAL verdict for this scope is downgraded to a failure.
	ReviewChannelID string `json:"review_channel_id" mapstructure:"review_channel_id"`
	// VerifyChannelID hosts the entry-point message for this scope.
	VerifyChannelID string `json:"verify_channel_id" mapstructure:"verify_channel_id"`
}

// Scope resolves a scope ID within the guild. The guild ID itself names
// the main scope.
func (g GuildConfig) Scope(guildID, scopeID string) (ScopeConfig, bool) {
	if IsMainScope(guildID, scopeID) {
		return g.MainScope, true
	}
	sc, ok := g.SubScopes[scopeID]
	return sc, ok
}

// IsMainScope reports whether scopeID names the guild's main scope.
func IsMainScope(guildID, scopeID string) bool {
	return scopeID == "" || scopeID == guildID
}

// AuthConfig holds the authorization lists read from config.
type AuthConfig struct {
	Developers []string `json:"developers" mapstructure:"developers"`
}

// CommandsConfig wraps command-related configuration.
type CommandsConfig struct {
	Auth AuthConfig `json:"auth" mapstructure:"auth"`
}
