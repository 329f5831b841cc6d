package models

import "time"

// ManualVerificationEntry is one pending human-review item. Durable:
// it survives restarts and is deleted exactly once, on moderator
// disposition or on a cleanup trigger (subject left, scope removed).
// Unique per (UserID, ScopeID).
type ManualVerificationEntry struct {
	ID            int64
	UserID        string
	GuildID       string
	ScopeID       string
	CandidateName string
	// QueueChannelID/QueueMessageID reference the review item posted to
	// the moderator queue, kept so cleanup can best-effort delete it.
	QueueChannelID string
	QueueMessageID string
	CreatedAt      time.Time
}

// DungeonOutcome labels a logged dungeon-completion counter record.
type DungeonOutcome string

const (
	DungeonCompleted DungeonOutcome = "completed"
	DungeonFailed    DungeonOutcome = "failed"
	DungeonAssisted  DungeonOutcome = "assisted"
)

// CounterKey is the structured composite key for logged completion
// counters: which scope the counter belongs to, the counter category
// (e.g. a dungeon name), the subject user, and the outcome label.
type CounterKey struct {
	ScopeID  string
	Category string
	Subject  string
	Outcome  DungeonOutcome
}
