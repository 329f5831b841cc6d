package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Register wires all event handlers onto the Discord session.
func Register(s *discordgo.Session, env *Env) {
	s.AddHandler(InteractionCreate(env))
	s.AddHandler(MemberRemoveHandler(env))
	s.AddHandler(GuildDeleteHandler(env))

	// Log when the bot is connected.
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logrus.Infof("logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
