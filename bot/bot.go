package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"verify-bot/command"
	"verify-bot/review"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session *discordgo.Session
}

// NewBot creates and initializes a new Bot instance. Configuration must
// already be loaded.
func NewBot() (*Bot, error) {
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsDirectMessages

	return &Bot{Session: dg}, nil
}

// Start opens the session, registers the slash commands and starts the
// periodic review-queue sweep.
func (b *Bot) Start(reviews *review.Coordinator) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for _, def := range command.GetCommandDefinitions() {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", def); err != nil {
			logrus.Errorf("cannot create '%v' command: %v", def.Name, err)
		}
	}

	startScheduler(reviews)

	logrus.Info("bot is now running")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	logrus.Info("bot stopped gracefully")
}
