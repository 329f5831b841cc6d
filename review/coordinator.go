// Package review implements the manual-review escalation workflow: the
// durable queue of pending verification entries and their disposition
// by human moderators.
package review

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"verify-bot/eval"
	"verify-bot/metrics"
	"verify-bot/models"
	"verify-bot/utils"
)

// ErrConfig marks a disposition refused because of missing scope
// configuration. The entry is retained so the action can be retried
// once configuration is fixed.
var ErrConfig = errors.New("review: configuration error")

var (
	// ErrNoReviewChannel means the scope has no review destination.
	ErrNoReviewChannel = fmt.Errorf("%w: scope has no review channel", ErrConfig)
	// ErrMissingMemberRole means the scope no longer grants a valid
	// membership role.
	ErrMissingMemberRole = fmt.Errorf("%w: scope has no member role", ErrConfig)
	// ErrEntryNotFound means the entry was already disposed or purged.
	ErrEntryNotFound = errors.New("review: entry not found")
)

// Store is the durable slice of the identity store the coordinator uses.
type Store interface {
	InsertManualEntry(entry *models.ManualVerificationEntry) error
	SetQueueMessage(entryID int64, channelID, messageID string) error
	GetManualEntry(entryID int64) (*models.ManualVerificationEntry, error)
	DeleteManualEntry(entryID int64) (bool, error)
	ListEntriesForGuild(guildID string) ([]*models.ManualVerificationEntry, error)
	ListEntriesForUser(guildID, userID string) ([]*models.ManualVerificationEntry, error)
	ListEntriesForScope(scopeID string) ([]*models.ManualVerificationEntry, error)
	DeleteEntriesForUser(guildID, userID string) error
	DeleteEntriesForScope(scopeID string) error
	SaveVerifiedName(userID, name string) error
}

// Messenger is the Discord surface the coordinator drives. Implemented
// by the handlers package; tests use a fake.
type Messenger interface {
	// PostQueueItem posts a review item with disposition controls and
	// returns the created message's ID.
	PostQueueItem(channelID string, entry *models.ManualVerificationEntry, issues []eval.Issue) (string, error)
	// DeleteQueueItem removes a posted review item. Best effort.
	DeleteQueueItem(channelID, messageID string) error
	// OpenDiscussion starts a discussion thread on a review item.
	OpenDiscussion(channelID, messageID string, entry *models.ManualVerificationEntry) error
	NotifyUser(userID, content string) error
	GrantRole(guildID, userID, roleID string) error
	// IsMember reports whether the user is still present in the guild.
	IsMember(guildID, userID string) bool
}

// ScopeLookup resolves a scope's Discord wiring from configuration.
type ScopeLookup func(guildID, scopeID string) (models.ScopeConfig, bool)

// AuditLog receives moderator-facing events keyed by logical role.
type AuditLog interface {
	Event(guildID, role, summary, detail string)
}

// Coordinator owns the manual-review queue.
type Coordinator struct {
	store  Store
	msgr   Messenger
	scopes ScopeLookup
	audit  AuditLog
}

// NewCoordinator wires a coordinator.
func NewCoordinator(store Store, msgr Messenger, scopes ScopeLookup, audit AuditLog) *Coordinator {
	return &Coordinator{store: store, msgr: msgr, scopes: scopes, audit: audit}
}

// Escalate durably records a manual-review handoff and posts the review
// item to the scope's moderator queue. The handoff is complete once the
// entry is persisted; a failed queue post is logged and recovered by
// the /pending listing, not retried here.
func (c *Coordinator) Escalate(entry *models.ManualVerificationEntry, issues []eval.Issue) error {
	scope, ok := c.scopes(entry.GuildID, entry.ScopeID)
	if !ok || scope.ReviewChannelID == "" {
		return ErrNoReviewChannel
	}

	if err := c.store.InsertManualEntry(entry); err != nil {
		return err
	}

	messageID, err := c.msgr.PostQueueItem(scope.ReviewChannelID, entry, issues)
	if err != nil {
		logrus.Errorf("failed to post review item for %s/%s: %v", entry.UserID, entry.ScopeID, err)
		return nil
	}
	if err := c.store.SetQueueMessage(entry.ID, scope.ReviewChannelID, messageID); err != nil {
		logrus.Errorf("failed to record queue message for entry %d: %v", entry.ID, err)
	}
	return nil
}

// Accept grants membership for a pending entry and closes it.
func (c *Coordinator) Accept(moderatorID string, entryID int64) error {
	entry, scope, err := c.loadForDisposition(entryID)
	if err != nil {
		return err
	}

	if err := c.msgr.GrantRole(entry.GuildID, entry.UserID, scope.MemberRoleID); err != nil {
		// Best effort: the accept stands even if the grant failed.
		logrus.Errorf("role grant failed for %s in %s: %v", entry.UserID, entry.GuildID, err)
	}
	if models.IsMainScope(entry.GuildID, entry.ScopeID) {
		if err := c.store.SaveVerifiedName(entry.UserID, entry.CandidateName); err != nil {
			logrus.Errorf("verified-name save failed for %s: %v", entry.UserID, err)
		}
	}

	c.close(entry)
	c.notify(entry.UserID,
		fmt.Sprintf("A moderator approved your verification as **%s**. Welcome!", entry.CandidateName))
	c.audit.Event(entry.GuildID, utils.RoleSuccess, "Manual review accepted",
		fmt.Sprintf("user %s as %s, scope %s, by moderator %s",
			entry.UserID, entry.CandidateName, entry.ScopeID, moderatorID))
	metrics.ManualDispositions.WithLabelValues("accept").Inc()
	return nil
}

// Deny closes a pending entry without granting membership. No
// moderation reference is attached; the user may verify again later.
func (c *Coordinator) Deny(moderatorID string, entryID int64) error {
	entry, _, err := c.loadForDisposition(entryID)
	if err != nil {
		return err
	}

	c.close(entry)
	c.notify(entry.UserID,
		"A moderator reviewed your verification and did not approve it. You may try again later.")
	c.audit.Event(entry.GuildID, utils.RoleFailure, "Manual review denied",
		fmt.Sprintf("user %s as %s, scope %s, by moderator %s",
			entry.UserID, entry.CandidateName, entry.ScopeID, moderatorID))
	metrics.ManualDispositions.WithLabelValues("deny").Inc()
	return nil
}

// Discuss opens a discussion thread on the review item. The entry stays
// pending until a later accept or deny.
func (c *Coordinator) Discuss(moderatorID string, entryID int64) error {
	entry, _, err := c.loadForDisposition(entryID)
	if err != nil {
		return err
	}
	if entry.QueueChannelID == "" || entry.QueueMessageID == "" {
		return fmt.Errorf("review: entry %d has no queue message to discuss", entryID)
	}
	if err := c.msgr.OpenDiscussion(entry.QueueChannelID, entry.QueueMessageID, entry); err != nil {
		return fmt.Errorf("failed to open discussion for entry %d: %w", entryID, err)
	}
	metrics.ManualDispositions.WithLabelValues("discuss").Inc()
	return nil
}

// Pending lists a guild's open entries, oldest first.
func (c *Coordinator) Pending(guildID string) ([]*models.ManualVerificationEntry, error) {
	return c.store.ListEntriesForGuild(guildID)
}

// PurgeUser removes a departed user's entries across the guild's scopes
// and best-effort deletes their queue messages. Entries the user holds
// in other guilds stay pending; a departure is per guild.
func (c *Coordinator) PurgeUser(guildID, userID string) error {
	entries, err := c.store.ListEntriesForUser(guildID, userID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		c.deleteQueueMessage(entry)
	}
	if err := c.store.DeleteEntriesForUser(guildID, userID); err != nil {
		return err
	}
	if len(entries) > 0 {
		logrus.Infof("purged %d manual entries for departed user %s in guild %s", len(entries), userID, guildID)
	}
	return nil
}

// PurgeScope removes every entry tied to a deleted scope.
func (c *Coordinator) PurgeScope(scopeID string) error {
	entries, err := c.store.ListEntriesForScope(scopeID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		c.deleteQueueMessage(entry)
	}
	return c.store.DeleteEntriesForScope(scopeID)
}

// SweepOrphans purges entries whose subject is no longer present in the
// guild. Run periodically; membership changes missed by the gateway
// (downtime, dropped events) are caught here.
func (c *Coordinator) SweepOrphans(guildID string) {
	entries, err := c.store.ListEntriesForGuild(guildID)
	if err != nil {
		logrus.Errorf("orphan sweep failed to list entries for %s: %v", guildID, err)
		return
	}
	for _, entry := range entries {
		if c.msgr.IsMember(entry.GuildID, entry.UserID) {
			continue
		}
		if err := c.PurgeUser(guildID, entry.UserID); err != nil {
			logrus.Errorf("orphan sweep failed to purge user %s: %v", entry.UserID, err)
		}
	}
}

// loadForDisposition loads the entry and refuses to act when the scope
// no longer grants a valid membership role, leaving the entry in place.
func (c *Coordinator) loadForDisposition(entryID int64) (*models.ManualVerificationEntry, models.ScopeConfig, error) {
	entry, err := c.store.GetManualEntry(entryID)
	if err != nil {
		return nil, models.ScopeConfig{}, err
	}
	if entry == nil {
		return nil, models.ScopeConfig{}, ErrEntryNotFound
	}
	scope, ok := c.scopes(entry.GuildID, entry.ScopeID)
	if !ok || scope.MemberRoleID == "" {
		return nil, models.ScopeConfig{}, ErrMissingMemberRole
	}
	return entry, scope, nil
}

// close deletes the entry and its queue message. Deletion happens
// exactly once; a concurrent disposition finds the entry gone.
func (c *Coordinator) close(entry *models.ManualVerificationEntry) {
	deleted, err := c.store.DeleteManualEntry(entry.ID)
	if err != nil {
		logrus.Errorf("failed to delete manual entry %d: %v", entry.ID, err)
		return
	}
	if deleted {
		c.deleteQueueMessage(entry)
	}
}

func (c *Coordinator) deleteQueueMessage(entry *models.ManualVerificationEntry) {
	if entry.QueueChannelID == "" || entry.QueueMessageID == "" {
		return
	}
	if err := c.msgr.DeleteQueueItem(entry.QueueChannelID, entry.QueueMessageID); err != nil {
		logrus.Warnf("failed to delete queue message for entry %d: %v", entry.ID, err)
	}
}

func (c *Coordinator) notify(userID, content string) {
	if err := c.msgr.NotifyUser(userID, content); err != nil {
		logrus.Warnf("failed to notify user %s: %v", userID, err)
	}
}
