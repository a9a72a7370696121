package ingestion

import (
	"context"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

// EventRepository is the narrow storage contract the pipeline writes through.
// Schema and connection management live behind it; the pipeline never issues
// raw queries.
type EventRepository interface {
	// Insert stores a new event and returns the storage-assigned ID.
	Insert(ctx context.Context, event *models.Event) (int64, error)

	// UpdateBySourceURL overwrites the row holding the event's source URL and
	// refreshes its last_updated_at.
	UpdateBySourceURL(ctx context.Context, event *models.Event) error

	// FindBySourceURL returns the event for a source URL, or nil.
	FindBySourceURL(ctx context.Context, url string) (*models.Event, error)

	// FindActiveByFingerprint returns the active event for a fingerprint, or nil.
	FindActiveByFingerprint(ctx context.Context, fingerprint string) (*models.Event, error)

	// ListAll returns events matching the filter.
	ListAll(ctx context.Context, filter models.EventFilter) ([]models.Event, error)

	// Enrich fills the given fields on an existing row. Empty arguments leave
	// the stored value untouched; non-empty arguments only land on columns
	// that are currently empty.
	Enrich(ctx context.Context, id int64, description, imageURL string) error
}

// RunLogRepository records run summaries for the status surface and for the
// scheduler's catch-up decision.
type RunLogRepository interface {
	// Store persists a finalized run report summary.
	Store(ctx context.Context, report *models.RunReport) error

	// LastStartedAt returns when the most recent run started, or the zero
	// time when no run has ever been recorded.
	LastStartedAt(ctx context.Context) (time.Time, error)
}
