package utils

import (
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"

	"verify-bot/models"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.CommandsConfig
	guilds models.GuildsConfig
}

// NewAuth creates a new Auth instance with the loaded configuration.
func NewAuth() (*Auth, error) {
	var commandsConfig models.CommandsConfig
	if err := viper.UnmarshalKey("commands", &commandsConfig); err != nil {
		return nil, err
	}
	var guilds models.GuildsConfig
	if err := viper.UnmarshalKey("guilds", &guilds); err != nil {
		return nil, err
	}
	return &Auth{config: commandsConfig, guilds: guilds}, nil
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	for _, devID := range a.config.Auth.Developers {
		if userID == devID {
			return true
		}
	}
	return false
}

// IsModerator checks if a member holds one of the guild's configured
// moderator roles.
func (a *Auth) IsModerator(guildID string, member *discordgo.Member) bool {
	guild, ok := a.guilds[guildID]
	if !ok || member == nil {
		return false
	}
	for _, modRoleID := range guild.ModeratorRoles {
		for _, userRoleID := range member.Roles {
			if userRoleID == modRoleID {
				return true
			}
		}
	}
	return false
}

// CheckPermission checks if a user has the required permission level.
func (a *Auth) CheckPermission(i *discordgo.InteractionCreate, requiredLevel string) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}
	user := i.Member.User

	switch requiredLevel {
	case "developer":
		return a.IsDeveloper(user.ID)
	case "moderator":
		return a.IsDeveloper(user.ID) || a.IsModerator(i.GuildID, i.Member)
	case "guest":
		return true // Everyone may start their own verification.
	default:
		return false
	}
}
