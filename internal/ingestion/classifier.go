package ingestion

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/familyscout/familyscout/internal/models"
)

// ageRangeRe matches explicit numeric age ranges: "ages 7-10", "age 2 to 3",
// "4-6 years", "0-18 months". A bare number range without an age marker (a
// time like "7-10 pm") does not match.
var ageRangeRe = regexp.MustCompile(`(?i)(?:ages?\s+(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})|(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*(months?|years?|yrs?))`)

// Classifier derives an age band and a category set from event text by
// consulting a declarative lexicon. Classification is deterministic:
// identical input text always yields identical output.
type Classifier struct {
	lexicon Lexicon
}

// NewClassifier creates a classifier over the given lexicon.
func NewClassifier(lexicon Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Classify assigns exactly one age band and at least one category.
//
// Age tie-break order: when the text signals more than one band, the
// narrowest explicit numeric range wins; absent a range, the adapter's
// configured default applies; absent that, kid.
func (c *Classifier) Classify(title, description string, venue models.VenueInfo) (models.AgeGroup, []string) {
	text := strings.ToLower(title + " " + description)

	return c.classifyAge(text, venue), c.classifyCategories(text, venue)
}

func (c *Classifier) classifyAge(text string, venue models.VenueInfo) models.AgeGroup {
	candidates := make(map[models.AgeGroup]bool)
	for _, rule := range c.lexicon.Ages {
		if strings.Contains(text, rule.Phrase) {
			candidates[rule.Band] = true
		}
	}

	rangeBand, hasRange := narrowestRangeBand(text)
	if hasRange {
		candidates[rangeBand] = true
	}

	switch {
	case len(candidates) == 1:
		for band := range candidates {
			return band
		}
	case len(candidates) > 1 && hasRange:
		return rangeBand
	}

	// No usable signal, or conflicting keywords without a numeric range.
	if venue.DefaultAgeGroup.Valid() {
		return venue.DefaultAgeGroup
	}
	return models.AgeGroupKid
}

func (c *Classifier) classifyCategories(text string, venue models.VenueInfo) []string {
	matched := make(map[string]bool)
	for _, rule := range c.lexicon.Categories {
		if strings.Contains(text, rule.Phrase) {
			for _, tag := range rule.Tags {
				matched[tag] = true
			}
		}
	}

	if len(matched) == 0 {
		if len(venue.DefaultCategories) > 0 {
			out := make([]string, len(venue.DefaultCategories))
			copy(out, venue.DefaultCategories)
			sort.Strings(out)
			return out
		}
		return []string{"general"}
	}

	out := make([]string, 0, len(matched))
	for tag := range matched {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// narrowestRangeBand finds all explicit age ranges in the text and maps the
// narrowest one onto a band by its midpoint.
func narrowestRangeBand(text string) (models.AgeGroup, bool) {
	matches := ageRangeRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}

	bestWidth := -1.0
	var bestBand models.AgeGroup

	for _, m := range matches {
		lowStr, highStr, unit := m[1], m[2], ""
		if lowStr == "" {
			lowStr, highStr, unit = m[3], m[4], strings.ToLower(m[5])
		}

		low, err1 := strconv.Atoi(lowStr)
		high, err2 := strconv.Atoi(highStr)
		if err1 != nil || err2 != nil || high < low {
			continue
		}

		lowYears, highYears := float64(low), float64(high)
		if strings.HasPrefix(unit, "month") {
			lowYears /= 12
			highYears /= 12
		}

		width := highYears - lowYears
		if bestWidth < 0 || width < bestWidth {
			bestWidth = width
			bestBand = bandForMidpoint((lowYears + highYears) / 2)
		}
	}

	if bestWidth < 0 {
		return "", false
	}
	return bestBand, true
}

func bandForMidpoint(mid float64) models.AgeGroup {
	switch {
	case mid <= 1.5:
		return models.AgeGroupBaby
	case mid <= 3.5:
		return models.AgeGroupToddler
	case mid <= 6.5:
		return models.AgeGroupKid
	default:
		return models.AgeGroupYouth
	}
}
