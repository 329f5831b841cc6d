package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"verify-bot/models"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// Logical channel roles for protocol events. Each guild maps roles to
// channel IDs in its config; an unmapped role drops the message.
const (
	RoleSessionStarted = "session-started"
	RoleStepUpdate     = "step-update"
	RoleSuccess        = "success"
	RoleFailure        = "failure"
)

// Notifier sends protocol events to per-guild log channels. Sends are
// fire-and-forget: an unconfigured role or a failed send is never fatal
// to the verification protocol.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a notifier bound to a Discord session.
func NewNotifier(s *discordgo.Session) *Notifier {
	return &Notifier{session: s}
}

// Event sends one protocol event to the guild's channel for the given
// role, falling back to the process log when no channel is configured.
func (n *Notifier) Event(guildID, role, summary, detail string) {
	channelID := n.channelFor(guildID, role)
	if n.session == nil || channelID == "" {
		logrus.WithFields(logrus.Fields{
			"guild": guildID,
			"role":  role,
		}).Infof("%s: %s", summary, detail)
		return
	}

	var color int
	switch role {
	case RoleSuccess:
		color = ColorInfo
	case RoleFailure:
		color = ColorError
	default:
		color = ColorWarn
	}

	embed := &discordgo.MessageEmbed{
		Title:     summary,
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Event",
				Value:  role,
				Inline: true,
			},
			{
				Name:  "Details",
				Value: detail,
			},
		},
	}

	if _, err := n.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		logrus.Errorf("failed to send log embed to channel %s: %v", channelID, err)
	}
}

func (n *Notifier) channelFor(guildID, role string) string {
	var guilds models.GuildsConfig
	if err := viper.UnmarshalKey("guilds", &guilds); err != nil {
		logrus.Errorf("failed to read guild config for logging: %v", err)
		return ""
	}
	guild, ok := guilds[guildID]
	if !ok {
		return ""
	}
	return guild.LogChannels[role]
}
