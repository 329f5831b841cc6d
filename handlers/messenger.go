package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"verify-bot/config"
	"verify-bot/eval"
	"verify-bot/models"
)

// discordMessenger implements the Discord surface the review
// coordinator and the session granter drive.
type discordMessenger struct {
	session *discordgo.Session
}

// PostQueueItem posts a review embed with disposition buttons and
// returns the created message's ID.
func (m *discordMessenger) PostQueueItem(channelID string, entry *models.ManualVerificationEntry, issues []eval.Issue) (string, error) {
	var lines []string
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("• **%s** — %s", issue.Key, issue.Detail))
	}
	if len(lines) == 0 {
		lines = append(lines, "No itemized issues recorded.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "Manual verification review",
		Description: fmt.Sprintf("<@%s> wants to verify as **%s** (scope `%s`).\n\n%s",
			entry.UserID, entry.CandidateName, entry.ScopeID, strings.Join(lines, "\n")),
		Color: 0xffff00,
	}

	msg, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Accept",
						Style:    discordgo.SuccessButton,
						CustomID: fmt.Sprintf("review:accept:%d", entry.ID),
					},
					discordgo.Button{
						Label:    "Deny",
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("review:deny:%d", entry.ID),
					},
					discordgo.Button{
						Label:    "Discuss",
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("review:discuss:%d", entry.ID),
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// DeleteQueueItem removes a posted review item.
func (m *discordMessenger) DeleteQueueItem(channelID, messageID string) error {
	return m.session.ChannelMessageDelete(channelID, messageID)
}

// OpenDiscussion starts a thread on the review item for human-to-human
// follow-up.
func (m *discordMessenger) OpenDiscussion(channelID, messageID string, entry *models.ManualVerificationEntry) error {
	_, err := m.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                fmt.Sprintf("Review: %s", entry.CandidateName),
		AutoArchiveDuration: 1440,
	})
	return err
}

// NotifyUser sends a direct message. Best effort; users may have DMs
// closed.
func (m *discordMessenger) NotifyUser(userID, content string) error {
	ch, err := m.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = m.session.ChannelMessageSend(ch.ID, content)
	return err
}

// GrantRole adds the role configured for a scope. Implements both the
// coordinator's role grant and the session's membership grant.
func (m *discordMessenger) GrantRole(guildID, userID, roleID string) error {
	if roleID == "" {
		return fmt.Errorf("no member role configured")
	}
	return m.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// Grant applies a successful verification outcome for a scope.
func (m *discordMessenger) Grant(userID, guildID, scopeID string) error {
	scope, ok := config.Scope(guildID, scopeID)
	if !ok {
		return fmt.Errorf("unknown scope %s in guild %s", scopeID, guildID)
	}
	return m.GrantRole(guildID, userID, scope.MemberRoleID)
}

// IsMember reports whether the user is still present in the guild.
func (m *discordMessenger) IsMember(guildID, userID string) bool {
	if member, err := m.session.State.Member(guildID, userID); err == nil && member != nil {
		return true
	}
	member, err := m.session.GuildMember(guildID, userID)
	return err == nil && member != nil
}
