package adapters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const cinemaShowtimesURL = "https://www.cinemark.com/api/showtimes?theater=cinemark-denver&rating=G,PG"

// Cinema ingests family-friendly showtimes from the Cinemark showtimes API.
// The endpoint returns JSON, so Parse is a straight decode with per-item
// validation.
type Cinema struct {
	fetcher *ingestion.Fetcher
}

func NewCinema(fetcher *ingestion.Fetcher) *Cinema {
	return &Cinema{fetcher: fetcher}
}

func (c *Cinema) Name() string { return "cinemark_movies" }

func (c *Cinema) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Cinemark Denver",
		Address:           "3790 Quebec St, Denver, CO 80207",
		City:              "Denver",
		Latitude:          floatPtr(39.7696),
		Longitude:         floatPtr(-104.9030),
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"movies"},
	}
}

func (c *Cinema) Fetch(ctx context.Context) ([]byte, error) {
	return c.fetcher.Get(ctx, cinemaShowtimesURL)
}

type cinemaResponse struct {
	Movies []cinemaMovie `json:"movies"`
}

type cinemaMovie struct {
	Title     string   `json:"title"`
	Synopsis  string   `json:"synopsis"`
	Rating    string   `json:"rating"`
	URL       string   `json:"url"`
	PosterURL string   `json:"poster_url"`
	Showtimes []string `json:"showtimes"` // "2006-01-02T15:04:05"
}

func (c *Cinema) Parse(payload []byte) ([]models.RawEvent, int) {
	var resp cinemaResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		// Undecodable payloads count as a parse failure so the run report
		// distinguishes a broken API from an empty schedule.
		return nil, 1
	}

	var raws []models.RawEvent
	dropped := 0

	for _, movie := range resp.Movies {
		if strings.TrimSpace(movie.Title) == "" || movie.URL == "" || len(movie.Showtimes) == 0 {
			dropped++
			continue
		}

		// Only the first and last showtime matter for the catalog entry; each
		// movie becomes one event spanning its run.
		raws = append(raws, models.RawEvent{
			Source:      c.Name(),
			Title:       movie.Title,
			Description: movie.Synopsis + " Rated " + movie.Rating + ".",
			StartText:   movie.Showtimes[0],
			EndText:     movie.Showtimes[len(movie.Showtimes)-1],
			PriceText:   "ticket",
			SourceURL:   movie.URL,
			ImageURL:    movie.PosterURL,
		})
	}

	return raws, dropped
}
