package database

import "fmt"

// KnownNames returns the game names previously verified for a user,
// most recent first. Used to offer candidates during name selection.
func (s *Store) KnownNames(userID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM verified_names WHERE user_id = ? ORDER BY verified_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query known names for user %s: %w", userID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan known name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveVerifiedName records a verified user→name mapping. Re-verifying
// the same name refreshes its timestamp.
func (s *Store) SaveVerifiedName(userID, name string) error {
	query := `INSERT INTO verified_names (user_id, name) VALUES (?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET verified_at = CURRENT_TIMESTAMP`
	if _, err := s.db.Exec(query, userID, name); err != nil {
		return fmt.Errorf("failed to save verified name for user %s: %w", userID, err)
	}
	return nil
}
