package adapters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const recreationProgramsURL = "https://www.denvergov.org/api/recreation/programs?audience=youth"

// Recreation ingests youth programs from the Denver Parks & Recreation
// activity registration API.
type Recreation struct {
	fetcher *ingestion.Fetcher
}

func NewRecreation(fetcher *ingestion.Fetcher) *Recreation {
	return &Recreation{fetcher: fetcher}
}

func (r *Recreation) Name() string { return "denver_recreation" }

func (r *Recreation) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Denver Parks & Recreation",
		Address:           "201 W Colfax Ave, Denver, CO 80202",
		City:              "Denver",
		Latitude:          floatPtr(39.7392),
		Longitude:         floatPtr(-104.9903),
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"active"},
	}
}

func (r *Recreation) Fetch(ctx context.Context) ([]byte, error) {
	return r.fetcher.Get(ctx, recreationProgramsURL)
}

type recreationProgram struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Schedule    string `json:"schedule"`
	AgeRange    string `json:"age_range"`
	Facility    struct {
		Name    string  `json:"name"`
		Address string  `json:"address"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"facility"`
	Fee          float64 `json:"fee"`
	DetailURL    string  `json:"detail_url"`
	ImageURL     string  `json:"image_url"`
	Registerable bool    `json:"registerable"`
}

func (r *Recreation) Parse(payload []byte) ([]models.RawEvent, int) {
	var programs []recreationProgram
	if err := json.Unmarshal(payload, &programs); err != nil {
		// Undecodable payloads count as a parse failure so the run report
		// distinguishes a broken API from an empty program list.
		return nil, 1
	}

	var raws []models.RawEvent
	dropped := 0

	for _, p := range programs {
		if strings.TrimSpace(p.Name) == "" || p.DetailURL == "" {
			dropped++
			continue
		}

		price := "free"
		if p.Fee > 0 {
			price = "paid"
		}

		raw := models.RawEvent{
			Source:       r.Name(),
			Title:        p.Name,
			Description:  p.Description,
			StartText:    p.StartDate,
			EndText:      p.EndDate,
			ScheduleText: p.Schedule,
			LocationName: p.Facility.Name,
			Address:      p.Facility.Address,
			AgeText:      p.AgeRange,
			PriceText:    price,
			SourceURL:    absoluteURL("https://www.denvergov.org", p.DetailURL),
			ImageURL:     p.ImageURL,
		}

		if p.Facility.Lat != 0 && p.Facility.Lon != 0 {
			raw.Latitude = floatPtr(p.Facility.Lat)
			raw.Longitude = floatPtr(p.Facility.Lon)
		}

		raws = append(raws, raw)
	}

	return raws, dropped
}
