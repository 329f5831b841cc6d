package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"verify-bot/models"
)

// GetOrCreatePolicy returns the requirement policy for a scope,
// inserting a default one on first access.
func (s *Store) GetOrCreatePolicy(scopeID string) (models.RequirementPolicy, error) {
	var raw string
	err := s.db.QueryRow("SELECT config FROM policies WHERE scope_id = ?", scopeID).Scan(&raw)
	if err == sql.ErrNoRows {
		policy := models.DefaultPolicy(scopeID)
		if err := s.SavePolicy(policy); err != nil {
			return models.RequirementPolicy{}, err
		}
		return policy, nil
	}
	if err != nil {
		return models.RequirementPolicy{}, fmt.Errorf("failed to query policy for scope %s: %w", scopeID, err)
	}

	var policy models.RequirementPolicy
	if err := json.Unmarshal([]byte(raw), &policy); err != nil {
		return models.RequirementPolicy{}, fmt.Errorf("failed to decode policy for scope %s: %w", scopeID, err)
	}
	policy.ScopeID = scopeID
	return policy, nil
}

// SavePolicy upserts a scope's requirement policy.
func (s *Store) SavePolicy(policy models.RequirementPolicy) error {
	raw, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to encode policy for scope %s: %w", policy.ScopeID, err)
	}

	query := `INSERT INTO policies (scope_id, config, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope_id) DO UPDATE SET config = excluded.config, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.Exec(query, policy.ScopeID, string(raw)); err != nil {
		return fmt.Errorf("failed to save policy for scope %s: %w", policy.ScopeID, err)
	}
	return nil
}
