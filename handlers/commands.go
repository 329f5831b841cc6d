package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/utils"
)

// CommandDispatcher is the central handler for all application command
// interactions. It performs permission checks and then dispatches the
// interaction to the appropriate handler.
func CommandDispatcher(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	auth, err := utils.NewAuth()
	if err != nil {
		logrus.Errorf("failed to create auth instance: %v", err)
		return
	}

	commandPermissions := map[string]string{
		"verify":    "guest",
		"pending":   "moderator",
		"blacklist": "moderator",
		"ping":      "guest",
	}

	commandName := i.ApplicationCommandData().Name
	requiredLevel, ok := commandPermissions[commandName]

	if ok {
		if !auth.CheckPermission(i, requiredLevel) {
			respondEphemeral(s, i, "🚫 You do not have permission to run this command.")
			return
		}
	}

	switch commandName {
	case "verify":
		HandleVerify(env, s, i)
	case "pending":
		HandlePending(env, s, i)
	case "blacklist":
		HandleBlacklist(env, s, i)
	case "ping":
		HandlePing(s, i)
	default:
		respondEphemeral(s, i, "🚫 Internal error: unknown command.")
	}
}
