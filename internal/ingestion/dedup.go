package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Decision is the dedup outcome for one incoming event.
type Decision int

const (
	DecisionInserted Decision = iota
	DecisionUpdated
	DecisionSkippedDuplicate
)

func (d Decision) String() string {
	switch d {
	case DecisionInserted:
		return "inserted"
	case DecisionUpdated:
		return "updated"
	case DecisionSkippedDuplicate:
		return "skipped_duplicate"
	default:
		return "unknown"
	}
}

// Deduplicator decides insert-vs-update-vs-skip for classified events against
// current storage. Callers must serialize Apply within a run; the orchestrator
// holds a mutex around it so two sources cannot race on the same fingerprint.
type Deduplicator struct {
	repo   EventRepository
	loc    *time.Location
	enrich bool
}

// NewDeduplicator creates a deduplicator writing through repo. When enrich is
// true, a skipped duplicate may fill empty description/image fields on the
// stored row from the incoming record.
func NewDeduplicator(repo EventRepository, loc *time.Location, enrich bool) *Deduplicator {
	return &Deduplicator{repo: repo, loc: loc, enrich: enrich}
}

// Apply runs the decision policy in order: same source URL updates in place;
// same active fingerprint from any source skips (optionally enriching); an
// unseen event inserts. Re-applying identical input against identical storage
// yields the same decisions and no additional rows.
func (d *Deduplicator) Apply(ctx context.Context, event *models.Event) (Decision, error) {
	event.Fingerprint = d.Fingerprint(event.Title, event.DateStart, event.LocationName)

	existing, err := d.repo.FindBySourceURL(ctx, event.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("lookup by source url: %w", err)
	}
	if existing != nil {
		event.ID = existing.ID
		if err := d.repo.UpdateBySourceURL(ctx, event); err != nil {
			return 0, &StorageWriteError{SourceURL: event.SourceURL, Err: err}
		}
		return DecisionUpdated, nil
	}

	dup, err := d.repo.FindActiveByFingerprint(ctx, event.Fingerprint)
	if err != nil {
		return 0, fmt.Errorf("lookup by fingerprint: %w", err)
	}
	if dup != nil {
		if d.enrich {
			if err := d.enrichExisting(ctx, dup, event); err != nil {
				return 0, &StorageWriteError{SourceURL: event.SourceURL, Err: err}
			}
		}
		return DecisionSkippedDuplicate, nil
	}

	id, err := d.repo.Insert(ctx, event)
	if err != nil {
		return 0, &StorageWriteError{SourceURL: event.SourceURL, Err: err}
	}
	event.ID = id
	return DecisionInserted, nil
}

// enrichExisting copies richer fields from the incoming duplicate onto the
// stored row, but only into fields the stored row leaves empty. Existing data
// is never overwritten.
func (d *Deduplicator) enrichExisting(ctx context.Context, existing *models.Event, incoming *models.Event) error {
	description := ""
	if existing.Description == "" && incoming.Description != "" {
		description = incoming.Description
	}

	imageURL := ""
	if existing.ImageURL == nil && incoming.ImageURL != nil {
		imageURL = *incoming.ImageURL
	}

	if description == "" && imageURL == "" {
		return nil
	}

	return d.repo.Enrich(ctx, existing.ID, description, imageURL)
}

// Fingerprint computes the stable cross-source identity of a real-world
// event: normalized title, start date truncated to the day in the serving
// region, and normalized venue name. Two sites listing the same event with
// slightly different phrasing collide here.
func (d *Deduplicator) Fingerprint(title string, start time.Time, venue string) string {
	day := start.In(d.loc).Format("2006-01-02")
	data := fmt.Sprintf("%s|%s|%s", normalizeKey(title), day, normalizeKey(venue))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// normalizeKey lower-cases the text, strips punctuation and collapses
// whitespace.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}
