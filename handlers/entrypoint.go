package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/config"
	"verify-bot/models"
)

// PublishEntryPoints posts the "start verification" message to every
// configured verification channel that does not already carry one.
// Called once after the gateway connection is up.
func PublishEntryPoints(s *discordgo.Session) {
	for guildID, guild := range config.Guilds() {
		publishEntryPoint(s, guildID, guildID, guild.MainScope)
		for scopeID, scope := range guild.SubScopes {
			publishEntryPoint(s, guildID, scopeID, scope)
		}
	}
}

func publishEntryPoint(s *discordgo.Session, guildID, scopeID string, scope models.ScopeConfig) {
	if scope.VerifyChannelID == "" {
		return
	}
	if hasEntryPoint(s, scope.VerifyChannelID, scopeID) {
		return
	}

	name := scope.Name
	if name == "" {
		name = "this server"
	}
	_, err := s.ChannelMessageSendComplex(scope.VerifyChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Get verified",
			Description: "Press the button below to start verification for **" + name + "**. The bot will continue in your DMs.",
			Color:       0x00ff00,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Verify",
						Style:    discordgo.SuccessButton,
						CustomID: "verify:start:" + scopeID,
					},
				},
			},
		},
	})
	if err != nil {
		logrus.Errorf("failed to post entry point for scope %s in guild %s: %v", scopeID, guildID, err)
		return
	}
	logrus.Infof("posted verification entry point for scope %s", scopeID)
}

// hasEntryPoint reports whether a recent message in the channel already
// carries this scope's start button, so restarts do not stack duplicates.
func hasEntryPoint(s *discordgo.Session, channelID, scopeID string) bool {
	msgs, err := s.ChannelMessages(channelID, 25, "", "", "")
	if err != nil {
		logrus.Warnf("could not inspect channel %s for an entry point: %v", channelID, err)
		return false
	}
	for _, msg := range msgs {
		if msg.Author == nil || s.State.User == nil || msg.Author.ID != s.State.User.ID {
			continue
		}
		for _, row := range msg.Components {
			actionsRow, ok := row.(*discordgo.ActionsRow)
			if !ok {
				continue
			}
			for _, comp := range actionsRow.Components {
				if btn, ok := comp.(*discordgo.Button); ok &&
					strings.HasPrefix(btn.CustomID, "verify:start:") &&
					strings.TrimPrefix(btn.CustomID, "verify:start:") == scopeID {
					return true
				}
			}
		}
	}
	return false
}
