package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"center-directory-service/internal/models"
)

type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// GetReactions returns the ids of centers the user liked and disliked.
func (r *InteractionRepository) GetReactions(ctx context.Context, userID int) (*models.UserReactions, error) {
	liked, err := r.centerIDs(ctx, `SELECT center_id FROM likes WHERE user_id = $1 ORDER BY center_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	disliked, err := r.centerIDs(ctx, `SELECT center_id FROM dislikes WHERE user_id = $1 ORDER BY center_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query dislikes: %w", err)
	}
	return &models.UserReactions{UserID: userID, Liked: liked, Disliked: disliked}, nil
}

func (r *InteractionRepository) centerIDs(ctx context.Context, query string, userID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetReaction makes reaction the user's only reaction to the center. Likes
// and dislikes are mutually exclusive, so both tables change in one transaction.
func (r *InteractionRepository) SetReaction(ctx context.Context, userID, centerID int, reaction models.Reaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reaction tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var drop []string
	var insert string
	switch reaction {
	case models.ReactionLike:
		drop, insert = []string{"dislikes"}, "likes"
	case models.ReactionDislike:
		drop, insert = []string{"likes"}, "dislikes"
	case models.ReactionNone:
		drop = []string{"likes", "dislikes"}
	default:
		return fmt.Errorf("unknown reaction %q", reaction)
	}

	for _, table := range drop {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE user_id = $1 AND center_id = $2`, userID, centerID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	if insert != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO `+insert+` (user_id, center_id) VALUES ($1, $2)
			ON CONFLICT (user_id, center_id) DO NOTHING
		`, userID, centerID); err != nil {
			return fmt.Errorf("insert into %s: %w", insert, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reaction: %w", err)
	}
	return nil
}

// RecordFilterInteraction increments the user's click count for a tag.
func (r *InteractionRepository) RecordFilterInteraction(ctx context.Context, userID, tagID int) (*models.FilterInteraction, error) {
	var fi models.FilterInteraction
	err := r.db.QueryRowContext(ctx, `
		WITH up AS (
			INSERT INTO filter_interactions (user_id, tag_id, click_count, last_used)
			VALUES ($1, $2, 1, NOW())
			ON CONFLICT (user_id, tag_id) DO UPDATE SET
				click_count = filter_interactions.click_count + 1,
				last_used = NOW()
			RETURNING user_id, tag_id, click_count, last_used
		)
		SELECT up.user_id, up.tag_id, t.name, up.click_count, up.last_used
		FROM up JOIN tags t ON t.id = up.tag_id
	`, userID, tagID).Scan(&fi.UserID, &fi.TagID, &fi.TagName, &fi.ClickCount, &fi.LastUsed)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("tag %d: %w", tagID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert filter interaction: %w", err)
	}
	return &fi, nil
}

// RecordPageInteraction merges engagement signals into the (user, center) row.
// Scroll depth keeps its maximum; click counters are summed.
func (r *InteractionRepository) RecordPageInteraction(ctx context.Context, userID, centerID int, s models.PageSignals) (*models.PageInteraction, error) {
	var pi models.PageInteraction
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO page_interactions
			(user_id, center_id, visit_count, scroll_depth, map_clicks, review_clicks, similar_clicks, last_visited)
		VALUES ($1, $2, 1, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, center_id) DO UPDATE SET
			visit_count = page_interactions.visit_count + 1,
			scroll_depth = GREATEST(page_interactions.scroll_depth, EXCLUDED.scroll_depth),
			map_clicks = page_interactions.map_clicks + EXCLUDED.map_clicks,
			review_clicks = page_interactions.review_clicks + EXCLUDED.review_clicks,
			similar_clicks = page_interactions.similar_clicks + EXCLUDED.similar_clicks,
			last_visited = NOW()
		RETURNING user_id, center_id, visit_count, scroll_depth, map_clicks, review_clicks, similar_clicks, last_visited
	`, userID, centerID, valueOr(s.ScrollDepth), valueOr(s.MapClicks), valueOr(s.ReviewClicks), valueOr(s.SimilarClicks),
	).Scan(
		&pi.UserID, &pi.CenterID, &pi.VisitCount, &pi.ScrollDepth,
		&pi.MapClicks, &pi.ReviewClicks, &pi.SimilarClicks, &pi.LastVisited,
	)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("center %d: %w", centerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert page interaction: %w", err)
	}
	return &pi, nil
}

// MostClickedFilters returns the user's top tags by click count, most recent first on ties.
func (r *InteractionRepository) MostClickedFilters(ctx context.Context, userID, limit int) ([]models.FilterInteraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fi.user_id, fi.tag_id, t.name, fi.click_count, fi.last_used
		FROM filter_interactions fi
		JOIN tags t ON t.id = fi.tag_id
		WHERE fi.user_id = $1
		ORDER BY fi.click_count DESC, fi.last_used DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query filter interactions: %w", err)
	}
	defer rows.Close()

	out := []models.FilterInteraction{}
	for rows.Next() {
		var fi models.FilterInteraction
		if err := rows.Scan(&fi.UserID, &fi.TagID, &fi.TagName, &fi.ClickCount, &fi.LastUsed); err != nil {
			return nil, fmt.Errorf("scan filter interaction: %w", err)
		}
		out = append(out, fi)
	}
	return out, rows.Err()
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func valueOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
