package models

// RawEvent is the loosely-typed output of a source adapter's Parse step.
// Every field except Source and Title may be empty; the normalizer decides
// what is usable. RawEvents live only for the duration of the run that
// produced them and are never persisted.
type RawEvent struct {
	Source       string // adapter name that produced this record
	Title        string
	Description  string
	StartText    string // date/time as the upstream printed it
	EndText      string
	ScheduleText string // recurring-schedule prose, e.g. "Every Tuesday at 10am"
	LocationName string
	Address      string
	City         string
	AgeText      string // upstream age hint, e.g. "Ages 4-6", "toddlers"
	PriceText    string // upstream price hint, e.g. "Free", "$12"
	SourceURL    string
	ImageURL     string
	Latitude     *float64
	Longitude    *float64
}

// VenueInfo carries the static metadata an adapter knows about its own venue.
// It backfills fields the upstream listing omits and supplies the default
// classification when the text carries no signal.
type VenueInfo struct {
	Name              string
	Address           string
	City              string
	Latitude          *float64
	Longitude         *float64
	DefaultAgeGroup   AgeGroup
	DefaultCategories []string
}
