package adapters

import (
	"testing"

	"github.com/familyscout/familyscout/internal/ingestion"
)

const cityEventsFixture = `<!DOCTYPE html>
<html>
<head>
<script type="application/ld+json">
{
  "@type": "Event",
  "name": "Family Fun Day at City Park",
  "description": "Games, food trucks and &lt;b&gt;live music&lt;/b&gt;.",
  "startDate": "2026-04-04T11:00:00-06:00",
  "endDate": "2026-04-04T15:00:00-06:00",
  "url": "/events/family-fun-day/",
  "image": "https://www.denver.org/img/fun-day.jpg",
  "location": {
    "name": "City Park",
    "address": {
      "streetAddress": "2001 Colorado Blvd",
      "addressLocality": "Denver"
    }
  },
  "offers": {"price": "0"}
}
</script>
<script type="application/ld+json">
[
  {
    "@type": "Event",
    "name": "Spring Carnival",
    "startDate": "2026-04-05T10:00:00-06:00",
    "url": "https://www.denver.org/events/spring-carnival/",
    "offers": {"price": "15"}
  },
  {
    "@type": "Organization",
    "name": "Visit Denver",
    "url": "https://www.denver.org"
  }
]
</script>
<script type="application/ld+json">
{"@type": "Event", "name": "", "url": "https://www.denver.org/events/unnamed/"}
</script>
</head>
<body></body>
</html>`

func TestCityEventsParse(t *testing.T) {
	c := NewCityEvents(ingestion.NewFetcher(0))

	raws, dropped := c.Parse([]byte(cityEventsFixture))

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 for the unnamed event", dropped)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d records, want 2", len(raws))
	}

	first := raws[0]
	if first.Title != "Family Fun Day at City Park" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != "https://www.denver.org/events/family-fun-day/" {
		t.Errorf("SourceURL = %q, relative links should be resolved", first.SourceURL)
	}
	if first.LocationName != "City Park" || first.Address != "2001 Colorado Blvd" || first.City != "Denver" {
		t.Errorf("location not extracted: %+v", first)
	}
	if first.PriceText != "0" {
		t.Errorf("PriceText = %q", first.PriceText)
	}

	// The org entry in the array block is not an Event and is neither
	// emitted nor counted as dropped.
	second := raws[1]
	if second.Title != "Spring Carnival" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.PriceText != "15" {
		t.Errorf("PriceText = %q", second.PriceText)
	}
}

func TestCityEventsParseIgnoresBrokenBlocks(t *testing.T) {
	c := NewCityEvents(ingestion.NewFetcher(0))

	page := `<script type="application/ld+json">{broken json</script>
<script type="application/ld+json">{"@type":"Event","name":"Good One","url":"https://www.denver.org/events/good/"}</script>`

	raws, dropped := c.Parse([]byte(page))
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 for the broken block", dropped)
	}
	if len(raws) != 1 || raws[0].Title != "Good One" {
		t.Fatalf("expected the valid block to survive, got %+v", raws)
	}
}
