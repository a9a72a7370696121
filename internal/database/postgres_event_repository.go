package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/familyscout/familyscout/internal/models"
)

// PostgresEventRepository implements the pipeline's EventRepository contract
// using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

const eventColumns = `
	id, title, description, date_start, date_end, location_name, address,
	city, latitude, longitude, age_group, categories, price_type,
	source_url, image_url, fingerprint, active, last_updated_at
`

// Insert stores a new event and returns the storage-assigned ID.
func (r *PostgresEventRepository) Insert(ctx context.Context, event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (
			title, description, date_start, date_end, location_name, address,
			city, latitude, longitude, age_group, categories, price_type,
			source_url, image_url, fingerprint, active, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, TRUE, NOW())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.DateStart,
		event.DateEnd,
		event.LocationName,
		event.Address,
		event.City,
		event.Latitude,
		event.Longitude,
		event.AgeGroup,
		pq.Array(event.Categories),
		event.PriceType,
		event.SourceURL,
		event.ImageURL,
		event.Fingerprint,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	return id, nil
}

// UpdateBySourceURL overwrites the row holding the event's source URL.
func (r *PostgresEventRepository) UpdateBySourceURL(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			title = $2, description = $3, date_start = $4, date_end = $5,
			location_name = $6, address = $7, city = $8, latitude = $9,
			longitude = $10, age_group = $11, categories = $12,
			price_type = $13, image_url = $14, fingerprint = $15,
			active = TRUE, last_updated_at = NOW()
		WHERE source_url = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		event.SourceURL,
		event.Title,
		event.Description,
		event.DateStart,
		event.DateEnd,
		event.LocationName,
		event.Address,
		event.City,
		event.Latitude,
		event.Longitude,
		event.AgeGroup,
		pq.Array(event.Categories),
		event.PriceType,
		event.ImageURL,
		event.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no event with source_url %s", event.SourceURL)
	}

	return nil
}

// FindBySourceURL returns the event for a source URL, or nil.
func (r *PostgresEventRepository) FindBySourceURL(ctx context.Context, url string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE source_url = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, url))
}

// FindActiveByFingerprint returns the active event for a fingerprint, or nil.
func (r *PostgresEventRepository) FindActiveByFingerprint(ctx context.Context, fingerprint string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE fingerprint = $1 AND active = TRUE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, fingerprint))
}

// Enrich fills empty description/image columns on an existing row without
// overwriting data that is already present.
func (r *PostgresEventRepository) Enrich(ctx context.Context, id int64, description, imageURL string) error {
	query := `
		UPDATE events SET
			description = CASE WHEN description = '' AND $2 <> '' THEN $2 ELSE description END,
			image_url = CASE WHEN image_url IS NULL AND $3 <> '' THEN $3 ELSE image_url END,
			last_updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, description, imageURL); err != nil {
		return fmt.Errorf("failed to enrich event %d: %w", id, err)
	}

	return nil
}

// ListAll returns events matching the filter, soonest first.
func (r *PostgresEventRepository) ListAll(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.City != "" {
		conditions = append(conditions, "LOWER(city) = LOWER("+arg(filter.City)+")")
	}
	if filter.AgeGroup != "" {
		conditions = append(conditions, "age_group = "+arg(filter.AgeGroup))
	}
	if filter.Category != "" {
		conditions = append(conditions, arg(filter.Category)+" = ANY(categories)")
	}
	if filter.From != nil {
		conditions = append(conditions, "date_start >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "date_start <= "+arg(*filter.To))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date_start ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresEventRepository) scanOne(row *sql.Row) (*models.Event, error) {
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var lat, lon sql.NullFloat64
	var imageURL sql.NullString
	var categories pq.StringArray

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.DateStart,
		&event.DateEnd,
		&event.LocationName,
		&event.Address,
		&event.City,
		&lat,
		&lon,
		&event.AgeGroup,
		&categories,
		&event.PriceType,
		&event.SourceURL,
		&imageURL,
		&event.Fingerprint,
		&event.Active,
		&event.LastUpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Categories = categories
	if lat.Valid {
		event.Latitude = &lat.Float64
	}
	if lon.Valid {
		event.Longitude = &lon.Float64
	}
	if imageURL.Valid {
		event.ImageURL = &imageURL.String
	}

	return &event, nil
}
