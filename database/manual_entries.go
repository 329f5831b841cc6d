package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"verify-bot/models"
)

// ErrDuplicateEntry is returned when a manual-review entry already
// exists for the (user, scope) pair.
var ErrDuplicateEntry = errors.New("database: manual entry already exists")

// InsertManualEntry atomically creates a pending manual-review entry.
// The UNIQUE(user_id, scope_id) index enforces at-most-one entry per
// pair; a conflicting insert returns ErrDuplicateEntry.
func (s *Store) InsertManualEntry(entry *models.ManualVerificationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `INSERT INTO manual_entries
		(user_id, guild_id, scope_id, candidate_name, queue_channel_id, queue_message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query,
		entry.UserID, entry.GuildID, entry.ScopeID, entry.CandidateName,
		entry.QueueChannelID, entry.QueueMessageID, entry.CreatedAt.Unix())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert manual entry for user %s: %w", entry.UserID, err)
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

// SetQueueMessage records the moderator-queue message posted for an entry.
func (s *Store) SetQueueMessage(entryID int64, channelID, messageID string) error {
	_, err := s.db.Exec(
		"UPDATE manual_entries SET queue_channel_id = ?, queue_message_id = ? WHERE id = ?",
		channelID, messageID, entryID)
	if err != nil {
		return fmt.Errorf("failed to set queue message for entry %d: %w", entryID, err)
	}
	return nil
}

// GetManualEntry loads one entry by ID. A missing entry returns
// (nil, nil).
func (s *Store) GetManualEntry(entryID int64) (*models.ManualVerificationEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, guild_id, scope_id, candidate_name, queue_channel_id, queue_message_id, created_at
		 FROM manual_entries WHERE id = ?`, entryID)
	return scanEntry(row)
}

// DeleteManualEntry removes an entry by ID and reports whether a row
// was actually deleted.
func (s *Store) DeleteManualEntry(entryID int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM manual_entries WHERE id = ?", entryID)
	if err != nil {
		return false, fmt.Errorf("failed to delete manual entry %d: %w", entryID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListEntriesForGuild returns the pending entries for a guild, oldest
// first.
func (s *Store) ListEntriesForGuild(guildID string) ([]*models.ManualVerificationEntry, error) {
	return s.listEntries("guild_id = ?", guildID)
}

// ListEntriesForUser returns a user's pending entries across one
// guild's scopes.
func (s *Store) ListEntriesForUser(guildID, userID string) ([]*models.ManualVerificationEntry, error) {
	return s.listEntries("guild_id = ? AND user_id = ?", guildID, userID)
}

// ListEntriesForScope returns the pending entries for one scope.
func (s *Store) ListEntriesForScope(scopeID string) ([]*models.ManualVerificationEntry, error) {
	return s.listEntries("scope_id = ?", scopeID)
}

// DeleteEntriesForUser purges a user's entries across one guild's
// scopes. Entries the user holds in other guilds are untouched.
func (s *Store) DeleteEntriesForUser(guildID, userID string) error {
	if _, err := s.db.Exec("DELETE FROM manual_entries WHERE guild_id = ? AND user_id = ?", guildID, userID); err != nil {
		return fmt.Errorf("failed to purge manual entries for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// DeleteEntriesForScope purges every entry tied to a removed scope.
func (s *Store) DeleteEntriesForScope(scopeID string) error {
	if _, err := s.db.Exec("DELETE FROM manual_entries WHERE scope_id = ?", scopeID); err != nil {
		return fmt.Errorf("failed to purge manual entries for scope %s: %w", scopeID, err)
	}
	return nil
}

func (s *Store) listEntries(where string, args ...interface{}) ([]*models.ManualVerificationEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, guild_id, scope_id, candidate_name, queue_channel_id, queue_message_id, created_at
		 FROM manual_entries WHERE `+where+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ManualVerificationEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.ManualVerificationEntry, error) {
	var entry models.ManualVerificationEntry
	var createdAt int64
	err := row.Scan(&entry.ID, &entry.UserID, &entry.GuildID, &entry.ScopeID,
		&entry.CandidateName, &entry.QueueChannelID, &entry.QueueMessageID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan manual entry: %w", err)
	}
	entry.CreatedAt = time.Unix(createdAt, 0)
	return &entry, nil
}
