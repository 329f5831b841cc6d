package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"verify-bot/eval"
	"verify-bot/session"
)

// dmPrompter delivers a session's prompts over a direct-message
// channel. Component custom IDs carry the scope so the component
// handler can route replies back to the right session.
type dmPrompter struct {
	session   *discordgo.Session
	channelID string
	scopeID   string
}

// newDMPrompter opens (or reuses) the user's DM channel.
func newDMPrompter(s *discordgo.Session, userID, scopeID string) (*dmPrompter, error) {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("could not open a DM channel: %w", err)
	}
	return &dmPrompter{session: s, channelID: ch.ID, scopeID: scopeID}, nil
}

// PromptNameSelection offers previously verified names plus a
// new-name option, or jumps straight to name entry when none are known.
func (p *dmPrompter) PromptNameSelection(known []string) error {
	components := []discordgo.MessageComponent{}

	if len(known) > 0 {
		options := make([]discordgo.SelectMenuOption, 0, len(known))
		for _, name := range known {
			options = append(options, discordgo.SelectMenuOption{Label: name, Value: name})
		}
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "verify:name_pick:" + p.scopeID,
					Placeholder: "Pick a name you verified before",
					Options:     options,
				},
			},
		})
	}
	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Use a new name",
				Style:    discordgo.PrimaryButton,
				CustomID: "verify:name_new:" + p.scopeID,
			},
			cancelButton(p.scopeID),
		},
	})

	content := "Which profile name should be verified?"
	if len(known) == 0 {
		content = "Enter the profile name you want to verify."
	}

	_, err := p.session.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Content:    content,
		Components: components,
	})
	return err
}

// PromptProof shows the one-time code, the requirement list and any
// issues from the previous attempt.
func (p *dmPrompter) PromptProof(code string, requirements []string, issues []eval.Issue) error {
	embed := &discordgo.MessageEmbed{
		Title: "Prove profile ownership",
		Description: fmt.Sprintf(
			"Put the code `%s` anywhere in your profile description, wait for the profile to update, then press **Check now**.",
			code),
		Color: 0xffff00,
	}
	if len(requirements) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Requirements",
			Value: "• " + strings.Join(requirements, "\n• "),
		})
	}
	if len(issues) > 0 {
		var lines []string
		for _, issue := range issues {
			lines = append(lines, fmt.Sprintf("**%s** — %s", issue.Key, issue.Detail))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Last check",
			Value: strings.Join(lines, "\n"),
		})
	}

	_, err := p.session.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Check now",
						Style:    discordgo.SuccessButton,
						CustomID: "verify:check:" + p.scopeID,
					},
					cancelButton(p.scopeID),
				},
			},
		},
	})
	return err
}

// PromptManualConsent offers escalation to human review.
func (p *dmPrompter) PromptManualConsent(issues []eval.Issue) error {
	var lines []string
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("**%s** — %s", issue.Key, issue.Detail))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Some requirements were not met",
		Description: strings.Join(lines, "\n") +
			"\n\nA moderator can still review your profile by hand. Send it to them?",
		Color: 0xffff00,
	}

	_, err := p.session.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Yes, request review",
						Style:    discordgo.SuccessButton,
						CustomID: "verify:manual_yes:" + p.scopeID,
					},
					discordgo.Button{
						Label:    "No, stop here",
						Style:    discordgo.DangerButton,
						CustomID: "verify:manual_no:" + p.scopeID,
					},
				},
			},
		},
	})
	return err
}

// NotifyOutcome reports a terminal disposition.
func (p *dmPrompter) NotifyOutcome(outcome session.Outcome, issues []eval.Issue, detail string) error {
	var title string
	color := 0xff0000
	switch outcome {
	case session.OutcomeSuccess:
		title, color = "Verification successful", 0x00ff00
	case session.OutcomeEscalated:
		title, color = "Sent to manual review", 0xffff00
	case session.OutcomeCanceled:
		title = "Verification canceled"
	case session.OutcomeTimedOut:
		title = "Verification timed out"
	default:
		title = "Verification failed"
	}

	embed := &discordgo.MessageEmbed{Title: title, Color: color}
	var parts []string
	for _, issue := range issues {
		parts = append(parts, fmt.Sprintf("**%s** — %s", issue.Key, issue.Detail))
	}
	if detail != "" {
		parts = append(parts, detail)
	}
	embed.Description = strings.Join(parts, "\n")

	_, err := p.session.ChannelMessageSendEmbed(p.channelID, embed)
	return err
}

func cancelButton(scopeID string) discordgo.Button {
	return discordgo.Button{
		Label:    "Cancel",
		Style:    discordgo.SecondaryButton,
		CustomID: "verify:cancel:" + scopeID,
	}
}
