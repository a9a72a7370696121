package adapters

import (
	"context"
	"regexp"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const zooEventsURL = "https://denverzoo.org/events/"

// Zoo ingests the Denver Zoo events page. The page is server-rendered HTML,
// so parsing extracts the event cards directly.
type Zoo struct {
	fetcher *ingestion.Fetcher
}

func NewZoo(fetcher *ingestion.Fetcher) *Zoo {
	return &Zoo{fetcher: fetcher}
}

func (z *Zoo) Name() string { return "denver_zoo" }

func (z *Zoo) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Denver Zoo",
		Address:           "2300 Steele St, Denver, CO 80205",
		City:              "Denver",
		Latitude:          floatPtr(39.7496),
		Longitude:         floatPtr(-104.9511),
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"animals"},
	}
}

func (z *Zoo) Fetch(ctx context.Context) ([]byte, error) {
	return z.fetcher.Get(ctx, zooEventsURL)
}

var (
	zooCardRe  = regexp.MustCompile(`(?s)<(?:article|div)[^>]*class="[^"]*event[^"]*"[^>]*>(.*?)</(?:article|div)>`)
	zooTitleRe = regexp.MustCompile(`(?s)<h[23][^>]*>(.*?)</h[23]>`)
	zooLinkRe  = regexp.MustCompile(`<a\s+[^>]*href="([^"]+)"`)
	zooDateRe  = regexp.MustCompile(`(?s)<(?:time|span)[^>]*class="[^"]*date[^"]*"[^>]*>(.*?)</(?:time|span)>`)
	zooDescRe  = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	zooImgRe   = regexp.MustCompile(`<img\s+[^>]*src="([^"]+)"`)
	zooPriceRe = regexp.MustCompile(`(?s)<(?:span|div)[^>]*class="[^"]*price[^"]*"[^>]*>(.*?)</(?:span|div)>`)
)

func (z *Zoo) Parse(payload []byte) ([]models.RawEvent, int) {
	cards := zooCardRe.FindAllStringSubmatch(string(payload), -1)

	var raws []models.RawEvent
	dropped := 0

	for _, card := range cards {
		body := card[1]

		title := firstMatch(zooTitleRe, body)
		link := firstMatch(zooLinkRe, body)
		if title == "" || link == "" {
			dropped++
			continue
		}

		raws = append(raws, models.RawEvent{
			Source:      z.Name(),
			Title:       title,
			Description: firstMatch(zooDescRe, body),
			StartText:   firstMatch(zooDateRe, body),
			PriceText:   firstMatch(zooPriceRe, body),
			SourceURL:   absoluteURL("https://denverzoo.org", link),
			ImageURL:    firstMatch(zooImgRe, body),
		})
	}

	return raws, dropped
}

// firstMatch returns the first capture group of re in body, tag-stripped.
func firstMatch(re *regexp.Regexp, body string) string {
	m := re.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return stripTags(m[1])
}
