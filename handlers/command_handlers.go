package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/config"
	"verify-bot/models"
	"verify-bot/session"
)

// HandleVerify starts a verification session for the invoking user.
// All validation happens here, before any session exists: the scope
// must be configured, membership must not already be granted, and a
// sub-scope needs a previously verified name to check against.
func HandleVerify(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	scopeID := i.GuildID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "scope" {
			scopeID = opt.StringValue()
		}
	}
	startVerification(env, s, i, scopeID)
}

// startVerification is the shared entry path behind /verify and the
// verification-channel button.
func startVerification(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate, scopeID string) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "🚫 Run this inside the server you want to verify for.")
		return
	}
	user := interactionUser(i)
	if user == nil {
		return
	}

	guild, ok := config.Guild(i.GuildID)
	if !ok {
		respondEphemeral(s, i, "🚫 This server is not set up for verification yet.")
		return
	}

	scope, ok := guild.Scope(i.GuildID, scopeID)
	if !ok {
		respondEphemeral(s, i, "🚫 Unknown scope. Pick one from the suggestions.")
		return
	}
	if scopeID == "" {
		scopeID = i.GuildID
	}

	if scope.MemberRoleID != "" && i.Member != nil {
		for _, roleID := range i.Member.Roles {
			if roleID == scope.MemberRoleID {
				respondEphemeral(s, i, "✅ You are already verified for this scope.")
				return
			}
		}
	}

	mainScope := models.IsMainScope(i.GuildID, scopeID)

	// Sub-scope sessions skip name selection and reuse the most recent
	// name verified against the main scope.
	var name string
	if !mainScope {
		known, err := env.Store.KnownNames(user.ID)
		if err != nil {
			logrus.Errorf("known-name lookup failed for %s: %v", user.ID, err)
			respondEphemeral(s, i, "🚫 Something went wrong. Try again in a moment.")
			return
		}
		if len(known) == 0 {
			respondEphemeral(s, i, "🚫 Verify for the server itself first, then come back for this scope.")
			return
		}
		name = known[0]
	}

	prompter, err := newDMPrompter(s, user.ID, scopeID)
	if err != nil {
		respondEphemeral(s, i, "🚫 I could not DM you. Open your direct messages for this server and try again.")
		return
	}

	_, err = env.Sessions.Start(context.Background(), session.Config{
		UserID:         user.ID,
		GuildID:        i.GuildID,
		ScopeID:        scopeID,
		UserName:       user.Username,
		MainScope:      mainScope,
		Name:           name,
		HasReviewQueue: scope.ReviewChannelID != "",
		Prompter:       prompter,
	})
	if errors.Is(err, session.ErrSessionActive) {
		respondEphemeral(s, i, "🚫 You already have a verification in progress for this scope. Finish or cancel it first.")
		return
	}
	if err != nil {
		logrus.Errorf("failed to start session for %s/%s: %v", user.ID, scopeID, err)
		respondEphemeral(s, i, "🚫 Verification could not be started. Try again in a moment.")
		return
	}

	respondEphemeral(s, i, "📬 Check your DMs to continue verification.")
}

// HandlePending lists the guild's open manual-review entries.
func HandlePending(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries, err := env.Reviews.Pending(i.GuildID)
	if err != nil {
		logrus.Errorf("failed to list pending entries for %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "🚫 Could not load the pending list.")
		return
	}
	if len(entries) == 0 {
		respondEphemeral(s, i, "✅ No verifications are waiting for review.")
		return
	}

	var lines []string
	for _, e := range entries {
		line := fmt.Sprintf("`#%d` <@%s> as **%s** (scope `%s`, since <t:%d:R>)",
			e.ID, e.UserID, e.CandidateName, e.ScopeID, e.CreatedAt.Unix())
		if e.QueueChannelID != "" && e.QueueMessageID != "" {
			line += fmt.Sprintf(" — https://discord.com/channels/%s/%s/%s",
				e.GuildID, e.QueueChannelID, e.QueueMessageID)
		}
		lines = append(lines, line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Pending manual reviews (%d)", len(entries)),
		Description: strings.Join(lines, "\n"),
		Color:       0xffff00,
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// HandleBlacklist adds or removes a profile name on the blacklist.
func HandleBlacklist(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	var action, name, reference string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "action":
			action = opt.StringValue()
		case "name":
			name = strings.TrimSpace(opt.StringValue())
		case "reference":
			reference = opt.StringValue()
		}
	}
	if name == "" {
		respondEphemeral(s, i, "🚫 A profile name is required.")
		return
	}

	switch action {
	case "add":
		if err := env.Store.AddToBlacklist(name, reference, ""); err != nil {
			logrus.Errorf("failed to blacklist %s: %v", name, err)
			respondEphemeral(s, i, "🚫 The name could not be blacklisted.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ **%s** is now blacklisted (ref: %s).", name, orDash(reference)))
	case "remove":
		if err := env.Store.RemoveFromBlacklist(name); err != nil {
			logrus.Errorf("failed to remove %s from blacklist: %v", name, err)
			respondEphemeral(s, i, "🚫 The name could not be removed.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ **%s** was removed from the blacklist.", name))
	default:
		respondEphemeral(s, i, "🚫 Unknown action.")
	}
}

// HandlePing answers the liveness check.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEphemeral(s, i, fmt.Sprintf("🏓 Pong! Gateway latency: %dms", s.HeartbeatLatency().Milliseconds()))
}

func orDash(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
