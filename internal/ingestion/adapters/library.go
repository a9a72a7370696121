package adapters

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const libraryFeedURL = "https://denverlibrary.libcal.com/rss.php?cid=-1&audience=family"

// Library ingests children's programs from the Denver Public Library LibCal
// RSS feed.
type Library struct {
	fetcher *ingestion.Fetcher
}

func NewLibrary(fetcher *ingestion.Fetcher) *Library {
	return &Library{fetcher: fetcher}
}

func (l *Library) Name() string { return "denver_library" }

func (l *Library) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Denver Public Library",
		Address:           "10 W 14th Ave Pkwy, Denver, CO 80204",
		City:              "Denver",
		Latitude:          floatPtr(39.7372),
		Longitude:         floatPtr(-104.9882),
		DefaultAgeGroup:   models.AgeGroupToddler,
		DefaultCategories: []string{"reading"},
	}
}

func (l *Library) Fetch(ctx context.Context) ([]byte, error) {
	return l.fetcher.Get(ctx, libraryFeedURL)
}

type libcalFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []libcalItem `xml:"item"`
	} `xml:"channel"`
}

type libcalItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Date        string `xml:"date"` // LibCal extension, "2006-01-02 15:04:05"
	PubDate     string `xml:"pubDate"`
	Location    string `xml:"location"`
	Audience    string `xml:"audience"`
	Enclosure   struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

func (l *Library) Parse(payload []byte) ([]models.RawEvent, int) {
	var feed libcalFeed
	if err := xml.Unmarshal(payload, &feed); err != nil {
		// An undecodable payload must show up in the parse-failure counter,
		// otherwise a feed format change looks like an empty healthy listing.
		return nil, 1
	}

	var raws []models.RawEvent
	dropped := 0

	for _, item := range feed.Channel.Items {
		title := stripTags(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			dropped++
			continue
		}

		start := item.Date
		if start == "" {
			start = item.PubDate
		}

		raws = append(raws, models.RawEvent{
			Source:       l.Name(),
			Title:        title,
			Description:  stripTags(item.Description),
			StartText:    start,
			LocationName: stripTags(item.Location),
			AgeText:      stripTags(item.Audience),
			SourceURL:    link,
			ImageURL:     strings.TrimSpace(item.Enclosure.URL),
		})
	}

	return raws, dropped
}
