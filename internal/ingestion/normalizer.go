package ingestion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalizer converts raw adapter records into the canonical Event shape.
// All timestamps are anchored to the serving region's local time.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewNormalizer creates a normalizer anchored to the named timezone.
func NewNormalizer(timezone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Normalizer{loc: loc, now: time.Now}, nil
}

// Date layouts seen across the upstream sites, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 3:04 PM",
	"01/02/2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 at 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"Monday, January 2, 2006 3:04 PM",
	"Monday, January 2, 2006",
}

// Normalize validates and canonicalizes one raw record. Fields the upstream
// omitted are backfilled from the adapter's venue metadata. A record missing
// its required fields is rejected with a ValidationError.
func (n *Normalizer) Normalize(raw models.RawEvent, venue models.VenueInfo) (models.Event, error) {
	title := CollapseWhitespace(raw.Title)
	if title == "" {
		return models.Event{}, &ValidationError{Field: "title", Reason: "is empty"}
	}

	sourceURL := strings.TrimSpace(raw.SourceURL)
	if sourceURL == "" {
		return models.Event{}, &ValidationError{Field: "source_url", Reason: "is empty"}
	}

	start, startOK := n.parseDate(raw.StartText)
	schedule := CollapseWhitespace(raw.ScheduleText)
	if !startOK && schedule == "" {
		return models.Event{}, &ValidationError{Field: "date_start", Reason: "is missing and no recurring schedule given"}
	}
	if !startOK {
		// Recurring listings without an explicit date anchor to today.
		now := n.now().In(n.loc)
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, n.loc)
	}

	end, endOK := n.parseDate(raw.EndText)
	if !endOK || end.Before(start) {
		end = start
	}

	description := CollapseWhitespace(raw.Description)
	if schedule != "" && !strings.Contains(description, schedule) {
		description = strings.TrimSpace(description + " " + schedule)
	}

	event := models.Event{
		Title:        title,
		Description:  description,
		DateStart:    start,
		DateEnd:      end,
		LocationName: firstNonEmpty(CollapseWhitespace(raw.LocationName), venue.Name),
		Address:      firstNonEmpty(CollapseWhitespace(raw.Address), venue.Address),
		City:         firstNonEmpty(CollapseWhitespace(raw.City), venue.City),
		Latitude:     raw.Latitude,
		Longitude:    raw.Longitude,
		PriceType:    parsePrice(raw.PriceText),
		SourceURL:    sourceURL,
		Active:       true,
	}

	if event.Latitude == nil && event.Longitude == nil {
		event.Latitude = venue.Latitude
		event.Longitude = venue.Longitude
	}

	if img := strings.TrimSpace(raw.ImageURL); img != "" {
		event.ImageURL = &img
	}

	return event, nil
}

// parseDate tries all known layouts in the normalizer's location.
func (n *Normalizer) parseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, n.loc); err == nil {
			return t.In(n.loc), true
		}
	}

	return time.Time{}, false
}

// parsePrice maps upstream price prose onto the free/paid split. Anything
// that names an amount counts as paid; everything else defaults to free,
// which matches how the upstream sites label their listings.
func parsePrice(text string) models.PriceType {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "":
		return models.PriceTypeFree
	case strings.Contains(lower, "free"):
		return models.PriceTypeFree
	case strings.Contains(lower, "$"), strings.Contains(lower, "paid"),
		strings.Contains(lower, "admission"), strings.Contains(lower, "ticket"):
		return models.PriceTypePaid
	}
	// Bare numeric amounts come from structured data offers.
	if amount, err := strconv.ParseFloat(lower, 64); err == nil && amount > 0 {
		return models.PriceTypePaid
	}
	return models.PriceTypeFree
}

// CollapseWhitespace trims the string and folds internal whitespace runs into
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
