package command

import "github.com/bwmarrin/discordgo"

// VerifyCommand defines the structure for the /verify command.
type VerifyCommand struct{}

// Definition returns the application command definition.
func (c *VerifyCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "verify",
		Description: "Start verification for this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "scope",
				Description:  "The section to verify for (defaults to the whole server)",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     false,
				Autocomplete: true,
			},
		},
	}
}

// PendingCommand defines the structure for the /pending command.
type PendingCommand struct{}

// Definition returns the application command definition.
func (c *PendingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "pending",
		Description: "List open manual-review entries for this server",
	}
}

// BlacklistCommand defines the structure for the /blacklist command.
type BlacklistCommand struct{}

// Definition returns the application command definition.
func (c *BlacklistCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "blacklist",
		Description: "Manage the profile blacklist",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "action",
				Description: "What to do",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{
						Name:  "Add",
						Value: "add",
					},
					{
						Name:  "Remove",
						Value: "remove",
					},
				},
			},
			{
				Name:        "name",
				Description: "The profile name",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
			{
				Name:        "reference",
				Description: "Moderation case reference (required for add)",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    false,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
