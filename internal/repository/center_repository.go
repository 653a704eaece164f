package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"center-directory-service/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type CenterRepository struct {
	db *sql.DB
}

func NewCenterRepository(db *sql.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

const centerColumns = `id, name, address, description, phone, website, latitude, longitude, timezone`

// ListCenters returns every center with hours, tags and reviews attached.
func (r *CenterRepository) ListCenters(ctx context.Context) ([]models.Center, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+centerColumns+` FROM centers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query centers: %w", err)
	}
	centers, err := scanCenters(rows)
	if err != nil {
		return nil, err
	}
	return centers, r.attach(ctx, centers)
}

// GetCentersByIDs returns the given centers, fully loaded, in id order.
func (r *CenterRepository) GetCentersByIDs(ctx context.Context, ids []int) ([]models.Center, error) {
	if len(ids) == 0 {
		return []models.Center{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+centerColumns+` FROM centers WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query centers by id: %w", err)
	}
	centers, err := scanCenters(rows)
	if err != nil {
		return nil, err
	}
	return centers, r.attach(ctx, centers)
}

// GetCenter returns one fully loaded center or ErrNotFound.
func (r *CenterRepository) GetCenter(ctx context.Context, id int) (*models.Center, error) {
	centers, err := r.GetCentersByIDs(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("center %d: %w", id, ErrNotFound)
	}
	return &centers[0], nil
}

// ListTags returns all tags ordered by name.
func (r *CenterRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTag returns one tag or ErrNotFound.
func (r *CenterRepository) GetTag(ctx context.Context, id int) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	return &t, nil
}

func scanCenters(rows *sql.Rows) ([]models.Center, error) {
	defer rows.Close()

	centers := []models.Center{}
	for rows.Next() {
		var (
			c        models.Center
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Address, &c.Description, &c.Phone,
			&c.Website, &lat, &lng, &c.Timezone,
		); err != nil {
			return nil, fmt.Errorf("scan center: %w", err)
		}
		if lat.Valid {
			c.Latitude = &lat.Float64
		}
		if lng.Valid {
			c.Longitude = &lng.Float64
		}
		centers = append(centers, c)
	}
	return centers, rows.Err()
}

// attach loads hours, tags and reviews for centers in three queries.
func (r *CenterRepository) attach(ctx context.Context, centers []models.Center) error {
	if len(centers) == 0 {
		return nil
	}

	ids := make([]int, len(centers))
	index := make(map[int]int, len(centers))
	for i, c := range centers {
		ids[i] = c.ID
		index[c.ID] = i
		centers[i].Hours = []models.DayHours{}
		centers[i].Tags = []models.Tag{}
		centers[i].Reviews = []models.Review{}
	}

	if err := r.attachHours(ctx, centers, index, ids); err != nil {
		return err
	}
	if err := r.attachTags(ctx, centers, index, ids); err != nil {
		return err
	}
	return r.attachReviews(ctx, centers, index, ids)
}

func (r *CenterRepository) attachHours(ctx context.Context, centers []models.Center, index map[int]int, ids []int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT center_id, day, open_time, close_time, is_closed
		FROM center_hours
		WHERE center_id = ANY($1)
		ORDER BY center_id, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			centerID         int
			h                models.DayHours
			openAt, closedAt sql.NullString
		)
		if err := rows.Scan(&centerID, &h.Day, &openAt, &closedAt, &h.IsClosed); err != nil {
			return fmt.Errorf("scan hours: %w", err)
		}
		h.OpenTime, h.CloseTime = openAt.String, closedAt.String
		if i, ok := index[centerID]; ok {
			centers[i].Hours = append(centers[i].Hours, h)
		}
	}
	return rows.Err()
}

func (r *CenterRepository) attachTags(ctx context.Context, centers []models.Center, index map[int]int, ids []int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ct.center_id, t.id, t.name
		FROM center_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.center_id = ANY($1)
		ORDER BY ct.center_id, t.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query center tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			centerID int
			t        models.Tag
		)
		if err := rows.Scan(&centerID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("scan center tag: %w", err)
		}
		if i, ok := index[centerID]; ok {
			centers[i].Tags = append(centers[i].Tags, t)
		}
	}
	return rows.Err()
}

func (r *CenterRepository) attachReviews(ctx context.Context, centers []models.Center, index map[int]int, ids []int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, center_id, rating, created_at
		FROM reviews
		WHERE center_id = ANY($1)
		ORDER BY center_id, created_at DESC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.CenterID, &rv.Rating, &rv.CreatedAt); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		if i, ok := index[rv.CenterID]; ok {
			centers[i].Reviews = append(centers[i].Reviews, rv)
		}
	}
	return rows.Err()
}
