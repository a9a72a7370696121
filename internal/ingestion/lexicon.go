package ingestion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/familyscout/familyscout/internal/models"
)

// Lexicon is the declarative ruleset the classifier consults: phrases mapped
// to topical categories and to age-band signals. Entries are matched in
// order, so the lexicon fully determines classification output.
type Lexicon struct {
	Categories []CategoryRule `yaml:"categories"`
	Ages       []AgeRule      `yaml:"ages"`
}

// CategoryRule maps a phrase to one or more category tags.
type CategoryRule struct {
	Phrase string   `yaml:"phrase"`
	Tags   []string `yaml:"tags"`
}

// AgeRule maps a phrase to an age band.
type AgeRule struct {
	Phrase string          `yaml:"phrase"`
	Band   models.AgeGroup `yaml:"band"`
}

// LoadLexicon reads a lexicon from a YAML file.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon: %w", err)
	}

	for _, rule := range lex.Ages {
		if !rule.Band.Valid() {
			return Lexicon{}, fmt.Errorf("lexicon age rule %q: unknown band %q", rule.Phrase, rule.Band)
		}
	}

	return lex, nil
}

// DefaultLexicon returns the built-in ruleset covering the phrases the
// configured sources actually use.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Categories: []CategoryRule{
			{Phrase: "dinosaur", Tags: []string{"science"}},
			{Phrase: "paleontology", Tags: []string{"science"}},
			{Phrase: "stem", Tags: []string{"science", "education"}},
			{Phrase: "robotics", Tags: []string{"science"}},
			{Phrase: "science", Tags: []string{"science"}},
			{Phrase: "experiment", Tags: []string{"science"}},
			{Phrase: "trail", Tags: []string{"nature", "outdoor"}},
			{Phrase: "hike", Tags: []string{"nature", "outdoor"}},
			{Phrase: "hiking", Tags: []string{"nature", "outdoor"}},
			{Phrase: "nature", Tags: []string{"nature"}},
			{Phrase: "garden", Tags: []string{"nature", "outdoor"}},
			{Phrase: "wildlife", Tags: []string{"nature", "animals"}},
			{Phrase: "storytime", Tags: []string{"reading"}},
			{Phrase: "story time", Tags: []string{"reading"}},
			{Phrase: "book", Tags: []string{"reading"}},
			{Phrase: "library", Tags: []string{"reading"}},
			{Phrase: "reading", Tags: []string{"reading"}},
			{Phrase: "craft", Tags: []string{"art"}},
			{Phrase: "art", Tags: []string{"art"}},
			{Phrase: "painting", Tags: []string{"art"}},
			{Phrase: "maker", Tags: []string{"art", "education"}},
			{Phrase: "music", Tags: []string{"music"}},
			{Phrase: "concert", Tags: []string{"music"}},
			{Phrase: "sing", Tags: []string{"music"}},
			{Phrase: "dance", Tags: []string{"music", "active"}},
			{Phrase: "zoo", Tags: []string{"animals"}},
			{Phrase: "animal", Tags: []string{"animals"}},
			{Phrase: "safari", Tags: []string{"animals"}},
			{Phrase: "movie", Tags: []string{"movies"}},
			{Phrase: "film", Tags: []string{"movies"}},
			{Phrase: "cinema", Tags: []string{"movies"}},
			{Phrase: "screening", Tags: []string{"movies"}},
			{Phrase: "swim", Tags: []string{"active"}},
			{Phrase: "gymnastics", Tags: []string{"active"}},
			{Phrase: "climbing", Tags: []string{"active", "outdoor"}},
			{Phrase: "sports", Tags: []string{"active"}},
			{Phrase: "festival", Tags: []string{"festival"}},
			{Phrase: "fair", Tags: []string{"festival"}},
			{Phrase: "carnival", Tags: []string{"festival"}},
			{Phrase: "museum", Tags: []string{"museum"}},
			{Phrase: "exhibit", Tags: []string{"museum"}},
			{Phrase: "workshop", Tags: []string{"education"}},
			{Phrase: "camp", Tags: []string{"education"}},
			{Phrase: "class", Tags: []string{"education"}},
			{Phrase: "holiday", Tags: []string{"holiday"}},
			{Phrase: "halloween", Tags: []string{"holiday"}},
			{Phrase: "christmas", Tags: []string{"holiday"}},
		},
		Ages: []AgeRule{
			{Phrase: "baby", Band: models.AgeGroupBaby},
			{Phrase: "babies", Band: models.AgeGroupBaby},
			{Phrase: "infant", Band: models.AgeGroupBaby},
			{Phrase: "newborn", Band: models.AgeGroupBaby},
			{Phrase: "toddler", Band: models.AgeGroupToddler},
			{Phrase: "preschool", Band: models.AgeGroupToddler},
			{Phrase: "pre-k", Band: models.AgeGroupToddler},
			{Phrase: "elementary", Band: models.AgeGroupKid},
			{Phrase: "school age", Band: models.AgeGroupKid},
			{Phrase: "youth", Band: models.AgeGroupYouth},
			{Phrase: "tween", Band: models.AgeGroupYouth},
			{Phrase: "big kids", Band: models.AgeGroupYouth},
		},
	}
}
