package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/config"
)

// MemberRemoveHandler purges a departing user's pending manual-review
// entries. Their queue items would otherwise point at a user nobody
// can grant a role to.
func MemberRemoveHandler(env *Env) func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.User == nil {
			return
		}
		logrus.Infof("member %s left guild %s, purging pending reviews", m.User.ID, m.GuildID)
		if err := env.Reviews.PurgeUser(m.GuildID, m.User.ID); err != nil {
			logrus.Errorf("failed to purge entries for departed member %s: %v", m.User.ID, err)
		}
	}
}

// GuildDeleteHandler purges all review state tied to a guild the bot
// was removed from, the main scope and every configured sub-scope.
func GuildDeleteHandler(env *Env) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			// An outage, not a removal. Entries stay.
			return
		}
		logrus.Infof("removed from guild %s, purging review state", g.ID)

		scopeIDs := []string{g.ID}
		if guild, ok := config.Guild(g.ID); ok {
			for scopeID := range guild.SubScopes {
				scopeIDs = append(scopeIDs, scopeID)
			}
		}
		for _, scopeID := range scopeIDs {
			if err := env.Reviews.PurgeScope(scopeID); err != nil {
				logrus.Errorf("failed to purge scope %s: %v", scopeID, err)
			}
		}
	}
}
