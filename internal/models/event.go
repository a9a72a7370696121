package models

import (
	"time"
)

// Event represents a canonical family event after normalization, classification
// and deduplication. Rows are created and updated exclusively by the ingestion
// pipeline; they are never deleted by it.
type Event struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DateStart     time.Time  `json:"date_start"`
	DateEnd       time.Time  `json:"date_end"`
	LocationName  string     `json:"location_name"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	AgeGroup      AgeGroup   `json:"age_group"`
	Categories    []string   `json:"categories"`
	PriceType     PriceType  `json:"price_type"`
	SourceURL     string     `json:"source_url"`
	ImageURL      *string    `json:"image_url,omitempty"`
	Fingerprint   string     `json:"-"`
	Active        bool       `json:"active"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

// AgeGroup is the single age band assigned to an event.
type AgeGroup string

const (
	AgeGroupBaby    AgeGroup = "baby"    // 0-1y
	AgeGroupToddler AgeGroup = "toddler" // 2-3y
	AgeGroupKid     AgeGroup = "kid"     // 4-6y
	AgeGroupYouth   AgeGroup = "youth"   // 7-10y
)

// Valid reports whether the age group is one of the four known bands.
func (a AgeGroup) Valid() bool {
	switch a {
	case AgeGroupBaby, AgeGroupToddler, AgeGroupKid, AgeGroupYouth:
		return true
	}
	return false
}

// PriceType indicates whether attending costs money.
type PriceType string

const (
	PriceTypeFree PriceType = "free"
	PriceTypePaid PriceType = "paid"
)

// EventFilter narrows ListAll queries on the repository.
type EventFilter struct {
	City       string
	AgeGroup   AgeGroup
	Category   string
	From       *time.Time
	To         *time.Time
	ActiveOnly bool
	Limit      int
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}
