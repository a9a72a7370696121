package adapters

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const cityEventsURL = "https://www.denver.org/events/"

// CityEvents ingests the Visit Denver events calendar. The page embeds
// schema.org Event objects as JSON-LD, which is far more stable than the
// surrounding markup.
type CityEvents struct {
	fetcher *ingestion.Fetcher
}

func NewCityEvents(fetcher *ingestion.Fetcher) *CityEvents {
	return &CityEvents{fetcher: fetcher}
}

func (c *CityEvents) Name() string { return "denver_events" }

func (c *CityEvents) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Denver",
		City:              "Denver",
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"events"},
	}
}

func (c *CityEvents) Fetch(ctx context.Context) ([]byte, error) {
	return c.fetcher.Get(ctx, cityEventsURL)
}

var jsonLDRe = regexp.MustCompile(`(?s)<script[^>]*type="application/ld\+json"[^>]*>(.*?)</script>`)

type ldEvent struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Location    struct {
		Name    string `json:"name"`
		Address struct {
			StreetAddress   string `json:"streetAddress"`
			AddressLocality string `json:"addressLocality"`
		} `json:"address"`
	} `json:"location"`
	Offers struct {
		Price string `json:"price"`
	} `json:"offers"`
}

func (c *CityEvents) Parse(payload []byte) ([]models.RawEvent, int) {
	blocks := jsonLDRe.FindAllStringSubmatch(string(payload), -1)

	var raws []models.RawEvent
	dropped := 0

	for _, block := range blocks {
		// A block is either a single object or an array of them.
		var events []ldEvent
		data := strings.TrimSpace(block[1])
		if strings.HasPrefix(data, "[") {
			if err := json.Unmarshal([]byte(data), &events); err != nil {
				dropped++
				continue
			}
		} else {
			var single ldEvent
			if err := json.Unmarshal([]byte(data), &single); err != nil {
				dropped++
				continue
			}
			events = []ldEvent{single}
		}

		for _, ev := range events {
			if !strings.EqualFold(ev.Type, "Event") {
				continue
			}
			if ev.Name == "" || ev.URL == "" {
				dropped++
				continue
			}

			raws = append(raws, models.RawEvent{
				Source:       c.Name(),
				Title:        ev.Name,
				Description:  stripTags(ev.Description),
				StartText:    ev.StartDate,
				EndText:      ev.EndDate,
				LocationName: ev.Location.Name,
				Address:      ev.Location.Address.StreetAddress,
				City:         ev.Location.Address.AddressLocality,
				PriceText:    ev.Offers.Price,
				SourceURL:    absoluteURL("https://www.denver.org", ev.URL),
				ImageURL:     ev.Image,
			})
		}
	}

	return raws, dropped
}
