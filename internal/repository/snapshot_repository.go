package repository

import (
	"context"
	"database/sql"
	"fmt"

	"center-directory-service/internal/models"
)

// SnapshotRepository persists the last computed recommendation list per user.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ReplaceSnapshots swaps the user's stored recommendations for scores.
func (r *SnapshotRepository) ReplaceSnapshots(ctx context.Context, userID int, scores map[int]float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendation_snapshots WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendation_snapshots (user_id, center_id, score, generated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, center_id)
		DO UPDATE SET score = EXCLUDED.score, generated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for centerID, score := range scores {
		if _, err := stmt.ExecContext(ctx, userID, centerID, score); err != nil {
			return fmt.Errorf("upsert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}
	return nil
}

// GetSnapshots returns the user's top N stored recommendations.
func (r *SnapshotRepository) GetSnapshots(ctx context.Context, userID, limit int) ([]models.RecommendationSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, center_id, score, generated_at
		FROM recommendation_snapshots
		WHERE user_id = $1
		ORDER BY score DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.RecommendationSnapshot{}
	for rows.Next() {
		var s models.RecommendationSnapshot
		if err := rows.Scan(&s.ID, &s.UserID, &s.CenterID, &s.Score, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
