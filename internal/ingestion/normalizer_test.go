package ingestion

import (
	"errors"
	"testing"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer("America/Denver")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalizeRejectsMissingRequiredFields(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name  string
		raw   models.RawEvent
		field string
	}{
		{
			name:  "empty title",
			raw:   models.RawEvent{Title: "   ", StartText: "2026-04-01", SourceURL: "https://example.org/a"},
			field: "title",
		},
		{
			name:  "empty source url",
			raw:   models.RawEvent{Title: "Storytime", StartText: "2026-04-01"},
			field: "source_url",
		},
		{
			name:  "no date and no schedule",
			raw:   models.RawEvent{Title: "Storytime", StartText: "sometime soon", SourceURL: "https://example.org/a"},
			field: "date_start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw, models.VenueInfo{})
			if err == nil {
				t.Fatal("expected validation error")
			}
			var v *ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if v.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, v.Field)
			}
		})
	}
}

func TestNormalizeParsesCommonDateLayouts(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		text string
		want time.Time
	}{
		{"2026-04-01T10:30:00", time.Date(2026, 4, 1, 10, 30, 0, 0, n.loc)},
		{"2026-04-01", time.Date(2026, 4, 1, 0, 0, 0, 0, n.loc)},
		{"04/01/2026 10:30 AM", time.Date(2026, 4, 1, 10, 30, 0, 0, n.loc)},
		{"April 1, 2026 10:30 AM", time.Date(2026, 4, 1, 10, 30, 0, 0, n.loc)},
		{"Wed, 01 Apr 2026 10:30:00 MDT", time.Date(2026, 4, 1, 10, 30, 0, 0, n.loc)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			event, err := n.Normalize(models.RawEvent{
				Title:     "Storytime",
				StartText: tt.text,
				SourceURL: "https://example.org/a",
			}, models.VenueInfo{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !event.DateStart.Equal(tt.want) {
				t.Errorf("DateStart = %v, want %v", event.DateStart, tt.want)
			}
		})
	}
}

func TestNormalizeScheduleOnlyAnchorsToToday(t *testing.T) {
	n := newTestNormalizer(t)
	n.now = func() time.Time {
		return time.Date(2026, 4, 15, 13, 45, 0, 0, n.loc)
	}

	event, err := n.Normalize(models.RawEvent{
		Title:        "Weekly Storytime",
		ScheduleText: "Every Tuesday at 10:30 AM",
		SourceURL:    "https://example.org/weekly",
	}, models.VenueInfo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 4, 15, 0, 0, 0, 0, n.loc)
	if !event.DateStart.Equal(want) {
		t.Errorf("DateStart = %v, want today's midnight %v", event.DateStart, want)
	}
	if event.Description != "Every Tuesday at 10:30 AM" {
		t.Errorf("schedule text not carried into description: %q", event.Description)
	}
}

func TestNormalizeEndDefaultsToStart(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name    string
		endText string
	}{
		{"missing end", ""},
		{"end before start", "2026-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := n.Normalize(models.RawEvent{
				Title:     "Storytime",
				StartText: "2026-04-01",
				EndText:   tt.endText,
				SourceURL: "https://example.org/a",
			}, models.VenueInfo{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !event.DateEnd.Equal(event.DateStart) {
				t.Errorf("DateEnd = %v, want DateStart %v", event.DateEnd, event.DateStart)
			}
		})
	}
}

func TestNormalizeBackfillsVenueMetadata(t *testing.T) {
	n := newTestNormalizer(t)

	lat, lon := 39.7508, -104.9490
	venue := models.VenueInfo{
		Name:      "Denver Zoo",
		Address:   "2300 Steele St",
		City:      "Denver",
		Latitude:  &lat,
		Longitude: &lon,
	}

	event, err := n.Normalize(models.RawEvent{
		Title:     "Animal Encounter",
		StartText: "2026-04-01",
		SourceURL: "https://example.org/a",
	}, venue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.LocationName != venue.Name || event.Address != venue.Address || event.City != venue.City {
		t.Errorf("venue fields not backfilled: %+v", event)
	}
	if event.Latitude == nil || *event.Latitude != lat {
		t.Error("latitude not backfilled from venue")
	}
}

func TestNormalizeKeepsRecordLocationOverVenue(t *testing.T) {
	n := newTestNormalizer(t)

	venue := models.VenueInfo{Name: "Denver Zoo", City: "Denver"}
	event, err := n.Normalize(models.RawEvent{
		Title:        "Offsite Safari",
		StartText:    "2026-04-01",
		LocationName: "City Park Pavilion",
		SourceURL:    "https://example.org/a",
	}, venue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.LocationName != "City Park Pavilion" {
		t.Errorf("record location overridden: %q", event.LocationName)
	}
	if event.City != "Denver" {
		t.Errorf("missing city should still backfill: %q", event.City)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want models.PriceType
	}{
		{"", models.PriceTypeFree},
		{"Free", models.PriceTypeFree},
		{"FREE admission", models.PriceTypeFree},
		{"$12 at the door", models.PriceTypePaid},
		{"Admission required", models.PriceTypePaid},
		{"Tickets on sale now", models.PriceTypePaid},
		{"15", models.PriceTypePaid},
		{"0", models.PriceTypeFree},
		{"Donations welcome", models.PriceTypeFree},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := parsePrice(tt.text); got != tt.want {
				t.Errorf("parsePrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Story   Time \n at  the\tLibrary ", "Story Time at the Library"},
		{"already clean", "already clean"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
