package handlers

import (
	"github.com/bwmarrin/discordgo"

	"verify-bot/config"
	"verify-bot/database"
	"verify-bot/realmeye"
	"verify-bot/review"
	"verify-bot/session"
	"verify-bot/utils"
)

// Env holds the wired verification components the handlers dispatch to.
type Env struct {
	Store    *database.Store
	Profiles realmeye.Service
	Sessions *session.Manager
	Reviews  *review.Coordinator
	Notifier *utils.Notifier
}

// NewEnv wires the verification core onto a Discord session.
func NewEnv(s *discordgo.Session, store *database.Store, profiles realmeye.Service) *Env {
	notifier := utils.NewNotifier(s)
	msgr := &discordMessenger{session: s}

	reviews := review.NewCoordinator(store, msgr, config.Scope, notifier)

	sessions := session.NewManager(session.Deps{
		Profiles:  profiles,
		Store:     store,
		Granter:   msgr,
		Escalator: reviews,
		Audit:     notifier,
	})

	return &Env{
		Store:    store,
		Profiles: profiles,
		Sessions: sessions,
		Reviews:  reviews,
		Notifier: notifier,
	}
}
