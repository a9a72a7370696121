package adapters

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const macaroniFeedURL = "https://denver.macaronikid.com/events/rss"

// MacaroniKid ingests the Macaroni KID Denver community calendar Atom feed.
type MacaroniKid struct {
	fetcher *ingestion.Fetcher
}

func NewMacaroniKid(fetcher *ingestion.Fetcher) *MacaroniKid {
	return &MacaroniKid{fetcher: fetcher}
}

func (m *MacaroniKid) Name() string { return "macaroni_kid" }

func (m *MacaroniKid) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Macaroni KID Denver",
		City:              "Denver",
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"community"},
	}
}

func (m *MacaroniKid) Fetch(ctx context.Context) ([]byte, error) {
	return m.fetcher.Get(ctx, macaroniFeedURL)
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Content struct {
		Value string `xml:",chardata"`
	} `xml:"content"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

func (m *MacaroniKid) Parse(payload []byte) ([]models.RawEvent, int) {
	var feed atomFeed
	if err := xml.Unmarshal(payload, &feed); err != nil {
		// An undecodable payload must show up in the parse-failure counter,
		// otherwise a feed format change looks like an empty healthy listing.
		return nil, 1
	}

	var raws []models.RawEvent
	dropped := 0

	for _, entry := range feed.Entries {
		title := stripTags(entry.Title)
		link := strings.TrimSpace(entry.Link.Href)
		if title == "" || link == "" {
			dropped++
			continue
		}

		published := entry.Published
		if published == "" {
			published = entry.Updated
		}

		raws = append(raws, models.RawEvent{
			Source:      m.Name(),
			Title:       title,
			Description: stripTags(entry.Content.Value),
			StartText:   published,
			SourceURL:   link,
		})
	}

	return raws, dropped
}
