package repository

import (
	"context"
	"database/sql"
	"fmt"

	"center-directory-service/internal/models"
)

type RuleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// GetActiveRules returns all active recommendation rules.
func (r *RuleRepository) GetActiveRules(ctx context.Context) ([]models.RecommendationRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, weight, rule_type, is_active, created_at
		FROM recommendation_rules
		WHERE is_active = TRUE
		ORDER BY rule_type, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active rules: %w", err)
	}
	defer rows.Close()

	rules := []models.RecommendationRule{}
	for rows.Next() {
		var rule models.RecommendationRule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Weight,
			&rule.RuleType, &rule.IsActive, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
