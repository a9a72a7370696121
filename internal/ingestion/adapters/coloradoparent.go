package adapters

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const coloradoParentFeedURL = "https://www.coloradoparent.com/calendar/feed/"

// ColoradoParent ingests the Colorado Parent magazine event calendar RSS
// feed.
type ColoradoParent struct {
	fetcher *ingestion.Fetcher
}

func NewColoradoParent(fetcher *ingestion.Fetcher) *ColoradoParent {
	return &ColoradoParent{fetcher: fetcher}
}

func (c *ColoradoParent) Name() string { return "colorado_parent" }

func (c *ColoradoParent) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Colorado Parent",
		City:              "Denver",
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"community"},
	}
}

func (c *ColoradoParent) Fetch(ctx context.Context) ([]byte, error) {
	return c.fetcher.Get(ctx, coloradoParentFeedURL)
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
	Category    string `xml:"category"`
}

func (c *ColoradoParent) Parse(payload []byte) ([]models.RawEvent, int) {
	var feed rssFeed
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
		if link == "" {
			link = strings.TrimSpace(item.GUID)
		}
		if title == "" || !strings.HasPrefix(link, "http") {
			dropped++
			continue
		}

		description := stripTags(item.Description)
		if item.Category != "" {
			description = strings.TrimSpace(description + " " + item.Category)
		}

		raws = append(raws, models.RawEvent{
			Source:      c.Name(),
			Title:       title,
			Description: description,
			StartText:   item.PubDate,
			SourceURL:   link,
		})
	}

	return raws, dropped
}
