package adapters

import (
	"testing"

	"github.com/familyscout/familyscout/internal/ingestion"
)

const cinemaFixture = `{
  "movies": [
    {
      "title": "The Brave Little Robot",
      "synopsis": "A tiny robot saves the day.",
      "rating": "G",
      "url": "https://www.cinemark.com/movies/brave-little-robot",
      "poster_url": "https://www.cinemark.com/img/brave.jpg",
      "showtimes": ["2026-04-03T10:00:00", "2026-04-03T13:00:00", "2026-04-05T16:30:00"]
    },
    {
      "title": "Sold Out Feature",
      "rating": "PG",
      "url": "https://www.cinemark.com/movies/sold-out",
      "showtimes": []
    },
    {
      "title": "",
      "url": "https://www.cinemark.com/movies/blank",
      "showtimes": ["2026-04-03T10:00:00"]
    }
  ]
}`

func TestCinemaParse(t *testing.T) {
	c := NewCinema(ingestion.NewFetcher(0))

	raws, dropped := c.Parse([]byte(cinemaFixture))

	if dropped != 2 {
		t.Errorf("dropped = %d, want 2 for missing showtimes and empty title", dropped)
	}
	if len(raws) != 1 {
		t.Fatalf("got %d records, want 1", len(raws))
	}

	raw := raws[0]
	if raw.Title != "The Brave Little Robot" {
		t.Errorf("Title = %q", raw.Title)
	}
	if raw.StartText != "2026-04-03T10:00:00" {
		t.Errorf("StartText = %q, want the first showtime", raw.StartText)
	}
	if raw.EndText != "2026-04-05T16:30:00" {
		t.Errorf("EndText = %q, want the last showtime", raw.EndText)
	}
	if raw.PriceText != "ticket" {
		t.Errorf("PriceText = %q, showtimes are always paid", raw.PriceText)
	}
	if raw.Description != "A tiny robot saves the day. Rated G." {
		t.Errorf("Description = %q", raw.Description)
	}
}
