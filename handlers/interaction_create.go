package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// InteractionCreate routes slash commands, component clicks and modal
// submissions.
func InteractionCreate(env *Env) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			CommandDispatcher(env, s, i)
		case discordgo.InteractionApplicationCommandAutocomplete:
			HandleAutocomplete(s, i)
		case discordgo.InteractionMessageComponent:
			HandleComponent(env, s, i)
		case discordgo.InteractionModalSubmit:
			HandleModal(env, s, i)
		}
	}
}

// interactionUser resolves the acting user for both guild and DM
// interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// respondEphemeral sends a short ephemeral reply to an interaction.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// ackComponent acknowledges a component click without changing the
// message.
func ackComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}
