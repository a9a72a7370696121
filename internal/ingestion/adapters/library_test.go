package adapters

import (
	"testing"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const libraryFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Denver Public Library Events</title>
    <item>
      <title>Baby &amp; Toddler Storytime</title>
      <link>https://denverlibrary.libcal.com/event/1001</link>
      <description>&lt;p&gt;Songs, rhymes and stories.&lt;/p&gt;</description>
      <date>2026-04-02 10:30:00</date>
      <location>Central Library</location>
      <audience>Ages 0-3</audience>
      <enclosure url="https://denverlibrary.libcal.com/img/1001.jpg" />
    </item>
    <item>
      <title>Lego Club</title>
      <link>https://denverlibrary.libcal.com/event/1002</link>
      <description>Free build for school age kids.</description>
      <pubDate>Thu, 02 Apr 2026 16:00:00 MDT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://denverlibrary.libcal.com/event/1003</link>
    </item>
  </channel>
</rss>`

func TestLibraryParse(t *testing.T) {
	l := NewLibrary(ingestion.NewFetcher(0))

	raws, dropped := l.Parse([]byte(libraryFixture))

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 for the untitled item", dropped)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d records, want 2", len(raws))
	}

	first := raws[0]
	if first.Title != "Baby & Toddler Storytime" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Description != "Songs, rhymes and stories." {
		t.Errorf("Description = %q, markup should be stripped", first.Description)
	}
	if first.StartText != "2026-04-02 10:30:00" {
		t.Errorf("StartText = %q, want the LibCal date field", first.StartText)
	}
	if first.LocationName != "Central Library" {
		t.Errorf("LocationName = %q", first.LocationName)
	}
	if first.AgeText != "Ages 0-3" {
		t.Errorf("AgeText = %q", first.AgeText)
	}
	if first.ImageURL != "https://denverlibrary.libcal.com/img/1001.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}

	// No LibCal date falls back to pubDate.
	if raws[1].StartText != "Thu, 02 Apr 2026 16:00:00 MDT" {
		t.Errorf("StartText = %q, want the pubDate fallback", raws[1].StartText)
	}
}

func TestLibraryVenueDefaults(t *testing.T) {
	l := NewLibrary(ingestion.NewFetcher(0))

	venue := l.Venue()
	if venue.DefaultAgeGroup != models.AgeGroupToddler {
		t.Errorf("DefaultAgeGroup = %v, want toddler", venue.DefaultAgeGroup)
	}
	if venue.City != "Denver" {
		t.Errorf("City = %q", venue.City)
	}
	if venue.Latitude == nil || venue.Longitude == nil {
		t.Error("library venue should carry coordinates")
	}
}
