package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"verify-bot/review"
	"verify-bot/session"
	"verify-bot/utils"
)

// HandleComponent routes button clicks and select-menu picks. Custom
// IDs follow "verify:<action>:<scopeID>" for session events and
// "review:<action>:<entryID>" for moderator dispositions.
func HandleComponent(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 3)
	if len(parts) != 3 {
		return
	}
	switch parts[0] {
	case "verify":
		handleSessionComponent(env, s, i, parts[1], parts[2])
	case "review":
		handleReviewComponent(env, s, i, parts[1], parts[2])
	}
}

func handleSessionComponent(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate, action, scopeID string) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	// The entry-point button in a verification channel starts a session
	// the same way /verify does.
	if action == "start" {
		startVerification(env, s, i, scopeID)
		return
	}

	// The new-name button opens a modal instead of delivering an event;
	// the modal submission carries the name.
	if action == "name_new" {
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: "verify:name_modal:" + scopeID,
				Title:    "Profile name",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:  "name",
								Label:     "Name to verify",
								Style:     discordgo.TextInputShort,
								Required:  true,
								MaxLength: 16,
							},
						},
					},
				},
			},
		})
		if err != nil {
			logrus.Warnf("failed to open name modal for %s: %v", user.ID, err)
		}
		return
	}

	var ev session.Event
	switch action {
	case "name_pick":
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return
		}
		ev = session.NameSelected{Name: values[0]}
	case "check":
		ev = session.ProofCheckRequested{}
	case "cancel":
		ev = session.Canceled{}
	case "manual_yes":
		ev = session.ManualConsent{Accept: true}
	case "manual_no":
		ev = session.ManualConsent{Accept: false}
	default:
		return
	}

	if !env.Sessions.Deliver(user.ID, scopeID, ev) {
		respondEphemeral(s, i, "🚫 No verification is running for that button anymore. Start over with `/verify`.")
		return
	}
	ackComponent(s, i)
}

func handleReviewComponent(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate, action, rawEntryID string) {
	auth, err := utils.NewAuth()
	if err != nil {
		logrus.Errorf("failed to create auth instance: %v", err)
		return
	}
	if !auth.CheckPermission(i, "moderator") {
		respondEphemeral(s, i, "🚫 Only moderators can act on review items.")
		return
	}
	moderator := interactionUser(i)
	if moderator == nil {
		return
	}

	entryID, err := strconv.ParseInt(rawEntryID, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "🚫 Malformed review item.")
		return
	}

	switch action {
	case "accept":
		err = env.Reviews.Accept(moderator.ID, entryID)
	case "deny":
		err = env.Reviews.Deny(moderator.ID, entryID)
	case "discuss":
		err = env.Reviews.Discuss(moderator.ID, entryID)
	default:
		return
	}

	switch {
	case errors.Is(err, review.ErrEntryNotFound):
		respondEphemeral(s, i, "🚫 This review was already handled.")
	case errors.Is(err, review.ErrConfig):
		respondEphemeral(s, i, "🚫 The scope's configuration is incomplete. Fix it and press the button again; the entry is kept.")
	case err != nil:
		logrus.Errorf("review %s failed for entry %d: %v", action, entryID, err)
		respondEphemeral(s, i, "🚫 The action could not be completed.")
	default:
		ackComponent(s, i)
	}
}

// HandleModal receives the typed profile name from the new-name modal
// and delivers it to the session.
func HandleModal(env *Env, s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.ModalSubmitData().CustomID, ":", 3)
	if len(parts) != 3 || parts[0] != "verify" || parts[1] != "name_modal" {
		return
	}
	scopeID := parts[2]
	user := interactionUser(i)
	if user == nil {
		return
	}

	var name string
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == "name" {
				name = strings.TrimSpace(input.Value)
			}
		}
	}
	if name == "" {
		respondEphemeral(s, i, "🚫 A profile name is required.")
		return
	}

	if !env.Sessions.Deliver(user.ID, scopeID, session.NameSelected{Name: name}) {
		respondEphemeral(s, i, "🚫 That verification is no longer running. Start over with `/verify`.")
		return
	}
	respondEphemeral(s, i, "✅ Name received. Follow the next message to continue.")
}
