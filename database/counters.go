package database

import (
	"fmt"

	"verify-bot/models"
)

// IncrementCounter adds n to a logged completion counter, creating the
// row on first use. The raid subsystem calls this as runs conclude; the
// evaluator's logged-counters mode reads the totals back.
func (s *Store) IncrementCounter(key models.CounterKey, n int) error {
	query := `INSERT INTO dungeon_counters (scope_id, category, subject, outcome, count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(scope_id, category, subject, outcome) DO UPDATE SET count = count + excluded.count`
	if _, err := s.db.Exec(query, key.ScopeID, key.Category, key.Subject, string(key.Outcome), n); err != nil {
		return fmt.Errorf("failed to increment counter %s/%s for %s: %w",
			key.ScopeID, key.Category, key.Subject, err)
	}
	return nil
}

// CompletionCount returns a subject's logged "completed" total for one
// category within a scope. Missing rows count as zero.
func (s *Store) CompletionCount(scopeID, category, subject string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(count), 0) FROM dungeon_counters
		 WHERE scope_id = ? AND category = ? AND subject = ? AND outcome = ?`,
		scopeID, category, subject, string(models.DungeonCompleted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query completion count %s/%s for %s: %w",
			scopeID, category, subject, err)
	}
	return count, nil
}
