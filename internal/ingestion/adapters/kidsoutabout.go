package adapters

import (
	"context"
	"regexp"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const kidsOutAboutURL = "https://denver.kidsoutandabout.com/things-to-do"

// KidsOutAbout ingests the Kids Out and About Denver activity directory, an
// aggregator that lists events held at many different venues.
type KidsOutAbout struct {
	fetcher *ingestion.Fetcher
}

func NewKidsOutAbout(fetcher *ingestion.Fetcher) *KidsOutAbout {
	return &KidsOutAbout{fetcher: fetcher}
}

func (k *KidsOutAbout) Name() string { return "kids_out_about" }

func (k *KidsOutAbout) Venue() models.VenueInfo {
	// Aggregator listings carry their own venue; only the city default
	// applies when a listing omits it.
	return models.VenueInfo{
		Name:              "Kids Out and About Denver",
		City:              "Denver",
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"general"},
	}
}

func (k *KidsOutAbout) Fetch(ctx context.Context) ([]byte, error) {
	return k.fetcher.Get(ctx, kidsOutAboutURL)
}

var (
	koaRowRe   = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*views-row[^"]*"[^>]*>(.*?)</div>\s*(?:</div>|<div[^>]*class="[^"]*views-row)`)
	koaLinkRe  = regexp.MustCompile(`(?s)<a\s+[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	koaDateRe  = regexp.MustCompile(`(?s)<span[^>]*class="[^"]*date-display[^"]*"[^>]*>(.*?)</span>`)
	koaVenueRe = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*venue[^"]*"[^>]*>(.*?)</div>`)
	koaDescRe  = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*field-body[^"]*"[^>]*>(.*?)</div>`)
)

func (k *KidsOutAbout) Parse(payload []byte) ([]models.RawEvent, int) {
	rows := koaRowRe.FindAllStringSubmatch(string(payload), -1)

	var raws []models.RawEvent
	dropped := 0

	for _, row := range rows {
		body := row[1]

		link := koaLinkRe.FindStringSubmatch(body)
		if len(link) < 3 {
			dropped++
			continue
		}

		title := stripTags(link[2])
		if title == "" {
			dropped++
			continue
		}

		raws = append(raws, models.RawEvent{
			Source:       k.Name(),
			Title:        title,
			Description:  firstMatch(koaDescRe, body),
			StartText:    firstMatch(koaDateRe, body),
			LocationName: firstMatch(koaVenueRe, body),
			SourceURL:    absoluteURL("https://denver.kidsoutandabout.com", link[1]),
		})
	}

	return raws, dropped
}
