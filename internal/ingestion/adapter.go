package ingestion

import (
	"context"

	"github.com/familyscout/familyscout/internal/models"
)

// SourceAdapter is the contract every upstream event source implements. New
// sources are added by implementing this interface; shared pipeline code
// never branches on source identity.
type SourceAdapter interface {
	// Name returns the unique identifier for this source.
	Name() string

	// Venue returns the adapter's static venue metadata, used to backfill
	// fields the upstream omits and as the classification default.
	Venue() models.VenueInfo

	// Fetch retrieves the raw upstream payload. It performs network I/O and
	// must respect the context deadline. Errors are classified as transient
	// or permanent by the shared Fetcher.
	Fetch(ctx context.Context) ([]byte, error)

	// Parse converts a payload into raw event records. It is pure: no I/O,
	// and it never fails the whole payload for one malformed fragment.
	// Malformed items are dropped and returned as the second value.
	Parse(payload []byte) ([]models.RawEvent, int)
}
