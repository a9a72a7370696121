package ingestion

import (
	"reflect"
	"testing"

	"github.com/familyscout/familyscout/internal/models"
)

func TestClassifyAgeKeywords(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	tests := []struct {
		name        string
		title       string
		description string
		venue       models.VenueInfo
		want        models.AgeGroup
	}{
		{
			name:  "baby keyword",
			title: "Baby Bounce and Rhyme",
			want:  models.AgeGroupBaby,
		},
		{
			name:  "toddler keyword",
			title: "Toddler Art Splash",
			want:  models.AgeGroupToddler,
		},
		{
			name:        "preschool maps to toddler",
			title:       "Morning Movers",
			description: "A preschool movement class.",
			want:        models.AgeGroupToddler,
		},
		{
			name:  "youth keyword",
			title: "Youth Climbing Night",
			want:  models.AgeGroupYouth,
		},
		{
			name:        "explicit range midpoint",
			title:       "Chess Club",
			description: "For ages 4-6.",
			want:        models.AgeGroupKid,
		},
		{
			name:        "month range maps to baby",
			title:       "Sensory Play",
			description: "Best for 0-18 months.",
			want:        models.AgeGroupBaby,
		},
		{
			name:  "no signal falls back to venue default",
			title: "Weekend Wander",
			venue: models.VenueInfo{DefaultAgeGroup: models.AgeGroupToddler},
			want:  models.AgeGroupToddler,
		},
		{
			name:  "no signal and no venue default falls back to kid",
			title: "Weekend Wander",
			want:  models.AgeGroupKid,
		},
		{
			name:        "conflicting keywords resolved by numeric range",
			title:       "Big Kids Book Club",
			description: "Toddler siblings welcome. Designed for ages 7-10.",
			want:        models.AgeGroupYouth,
		},
		{
			name:        "time range is not an age range",
			title:       "Family Movie Night",
			description: "Doors 7-10 pm.",
			want:        models.AgeGroupKid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(tt.title, tt.description, tt.venue)
			if got != tt.want {
				t.Errorf("Classify(%q, %q) age = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyCategories(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	tests := []struct {
		name        string
		title       string
		description string
		venue       models.VenueInfo
		want        []string
	}{
		{
			name:        "dinosaur themed",
			title:       "Dinosaur Discovery Day",
			description: "Dig for fossils with museum paleontologists. Ages 4-6.",
			want:        []string{"museum", "science"},
		},
		{
			name:  "storytime",
			title: "Preschool Storytime",
			want:  []string{"reading"},
		},
		{
			name:  "trail hike",
			title: "Family Trail Hike at Green Mountain",
			want:  []string{"nature", "outdoor"},
		},
		{
			name:  "no match uses venue defaults sorted",
			title: "Open Play",
			venue: models.VenueInfo{DefaultCategories: []string{"outdoor", "animals"}},
			want:  []string{"animals", "outdoor"},
		},
		{
			name:  "no match and no defaults yields general",
			title: "Open Play",
			want:  []string{"general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := c.Classify(tt.title, tt.description, tt.venue)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q, %q) categories = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(DefaultLexicon())
	venue := models.VenueInfo{DefaultAgeGroup: models.AgeGroupKid}

	title := "Dino Storytime and Craft Hour"
	description := "Dinosaur stories, a fossil craft and outdoor play for ages 2 to 5."

	firstAge, firstCats := c.Classify(title, description, venue)
	for i := 0; i < 50; i++ {
		age, cats := c.Classify(title, description, venue)
		if age != firstAge || !reflect.DeepEqual(cats, firstCats) {
			t.Fatalf("iteration %d: got (%v, %v), want (%v, %v)", i, age, cats, firstAge, firstCats)
		}
	}
}

func TestNarrowestRangeWins(t *testing.T) {
	// Two ranges: the narrower one should decide the band.
	band, ok := narrowestRangeBand("great for ages 1-12, ideal for ages 2-3")
	if !ok {
		t.Fatal("expected a range match")
	}
	if band != models.AgeGroupToddler {
		t.Errorf("expected toddler from the narrow 2-3 range, got %v", band)
	}
}
