package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/config"
)

// HandleAutocomplete suggests scope choices for /verify from the
// guild's configuration.
func HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "verify" {
		return
	}

	var partial string
	for _, opt := range data.Options {
		if opt.Name == "scope" && opt.Focused {
			partial = strings.ToLower(opt.StringValue())
		}
	}

	guild, ok := config.Guild(i.GuildID)
	if !ok {
		respondChoices(s, i, nil)
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	mainName := guild.MainScope.Name
	if mainName == "" {
		mainName = guild.Name
	}
	if partial == "" || strings.Contains(strings.ToLower(mainName), partial) {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  mainName + " (server)",
			Value: i.GuildID,
		})
	}
	for scopeID, scope := range guild.SubScopes {
		if partial != "" && !strings.Contains(strings.ToLower(scope.Name), partial) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  scope.Name,
			Value: scopeID,
		})
		if len(choices) == 25 {
			break
		}
	}

	respondChoices(s, i, choices)
}

func respondChoices(s *discordgo.Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logrus.Warnf("failed to send autocomplete choices: %v", err)
	}
}
