package database

import (
	"database/sql"
	"fmt"
)

// BlacklistEntry is one blocked profile name with the moderation case
// reference surfaced to the user on denial.
type BlacklistEntry struct {
	Name          string
	ModerationRef string
	Reason        string
}

// BlacklistMatch looks up a profile name on the blacklist. Matching is
// case-insensitive; a clean name returns (nil, nil).
func (s *Store) BlacklistMatch(name string) (*BlacklistEntry, error) {
	var entry BlacklistEntry
	err := s.db.QueryRow(
		"SELECT name, moderation_ref, reason FROM blacklist WHERE name = ? COLLATE NOCASE", name).
		Scan(&entry.Name, &entry.ModerationRef, &entry.Reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query blacklist for %s: %w", name, err)
	}
	return &entry, nil
}

// AddToBlacklist blocks a profile name, replacing any previous record.
func (s *Store) AddToBlacklist(name, moderationRef, reason string) error {
	query := "INSERT OR REPLACE INTO blacklist (name, moderation_ref, reason) VALUES (?, ?, ?)"
	if _, err := s.db.Exec(query, name, moderationRef, reason); err != nil {
		return fmt.Errorf("failed to blacklist %s: %w", name, err)
	}
	return nil
}

// RemoveFromBlacklist clears a name from the blacklist.
func (s *Store) RemoveFromBlacklist(name string) error {
	if _, err := s.db.Exec("DELETE FROM blacklist WHERE name = ? COLLATE NOCASE", name); err != nil {
		return fmt.Errorf("failed to remove %s from blacklist: %w", name, err)
	}
	return nil
}
