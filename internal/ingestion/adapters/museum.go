package adapters

import (
	"context"
	"regexp"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const museumURL = "https://www.mychildsmuseum.org/whats-happening"

// ChildrensMuseum ingests the Children's Museum of Denver program page.
type ChildrensMuseum struct {
	fetcher *ingestion.Fetcher
}

func NewChildrensMuseum(fetcher *ingestion.Fetcher) *ChildrensMuseum {
	return &ChildrensMuseum{fetcher: fetcher}
}

func (m *ChildrensMuseum) Name() string { return "childrens_museum" }

func (m *ChildrensMuseum) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Children's Museum of Denver",
		Address:           "2121 Children's Museum Drive, Denver, CO 80211",
		City:              "Denver",
		Latitude:          floatPtr(39.7858),
		Longitude:         floatPtr(-105.0178),
		DefaultAgeGroup:   models.AgeGroupToddler,
		DefaultCategories: []string{"museum"},
	}
}

func (m *ChildrensMuseum) Fetch(ctx context.Context) ([]byte, error) {
	return m.fetcher.Get(ctx, museumURL)
}

var (
	museumBlockRe = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*(?:program|happening)[^"]*"[^>]*>(.*?)</div>\s*</div>`)
	museumTitleRe = regexp.MustCompile(`(?s)<h[234][^>]*>(.*?)</h[234]>`)
	museumDateRe  = regexp.MustCompile(`(?s)<(?:span|div)[^>]*class="[^"]*(?:date|when)[^"]*"[^>]*>(.*?)</(?:span|div)>`)
	museumAgeRe   = regexp.MustCompile(`(?s)<(?:span|div)[^>]*class="[^"]*age[^"]*"[^>]*>(.*?)</(?:span|div)>`)
	museumDescRe  = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	museumLinkRe  = regexp.MustCompile(`<a\s+[^>]*href="([^"]+)"`)
	museumImgRe   = regexp.MustCompile(`<img\s+[^>]*src="([^"]+)"`)
)

func (m *ChildrensMuseum) Parse(payload []byte) ([]models.RawEvent, int) {
	blocks := museumBlockRe.FindAllStringSubmatch(string(payload), -1)

	var raws []models.RawEvent
	dropped := 0

	for _, block := range blocks {
		body := block[1]

		title := firstMatch(museumTitleRe, body)
		if title == "" {
			dropped++
			continue
		}

		// Programs without a detail page get a fragment on the listing URL so
		// each listing keeps a distinct source URL.
		link := firstMatch(museumLinkRe, body)
		if link == "" {
			link = museumURL + "#" + slugify(title)
		} else {
			link = absoluteURL("https://www.mychildsmuseum.org", link)
		}

		raws = append(raws, models.RawEvent{
			Source:      m.Name(),
			Title:       title,
			Description: firstMatch(museumDescRe, body),
			StartText:   firstMatch(museumDateRe, body),
			AgeText:     firstMatch(museumAgeRe, body),
			SourceURL:   link,
			ImageURL:    firstMatch(museumImgRe, body),
			PriceText:   "admission",
		})
	}

	return raws, dropped
}
