package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

// fakeEventRepository is an in-memory EventRepository for pipeline tests.
type fakeEventRepository struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*models.Event

	insertErr error
}

func newFakeEventRepository() *fakeEventRepository {
	return &fakeEventRepository{events: make(map[int64]*models.Event)}
}

func (r *fakeEventRepository) Insert(ctx context.Context, event *models.Event) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		return 0, r.insertErr
	}

	r.nextID++
	stored := *event
	stored.ID = r.nextID
	r.events[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeEventRepository) UpdateBySourceURL(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, stored := range r.events {
		if stored.SourceURL == event.SourceURL {
			updated := *event
			updated.ID = id
			r.events[id] = &updated
			return nil
		}
	}
	return errors.New("no event with source url " + event.SourceURL)
}

func (r *fakeEventRepository) FindBySourceURL(ctx context.Context, url string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.events {
		if stored.SourceURL == url {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepository) FindActiveByFingerprint(ctx context.Context, fingerprint string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.events {
		if stored.Active && stored.Fingerprint == fingerprint {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepository) ListAll(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Event, 0, len(r.events))
	for _, stored := range r.events {
		out = append(out, *stored)
	}
	return out, nil
}

func (r *fakeEventRepository) Enrich(ctx context.Context, id int64, description, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[id]
	if !ok {
		return errors.New("no such event")
	}
	if description != "" && stored.Description == "" {
		stored.Description = description
	}
	if imageURL != "" && stored.ImageURL == nil {
		stored.ImageURL = &imageURL
	}
	return nil
}

func (r *fakeEventRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *fakeEventRepository) bySourceURL(url string) *models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.events {
		if stored.SourceURL == url {
			copied := *stored
			return &copied
		}
	}
	return nil
}

func denverLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestFingerprintIgnoresFormattingDifferences(t *testing.T) {
	d := NewDeduplicator(newFakeEventRepository(), denverLoc(t), false)

	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	laterSameDay := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	a := d.Fingerprint("Story Time at Main Library", start, "Denver Public Library")
	b := d.Fingerprint("story time  at  main library!!", laterSameDay, "denver public library")

	if a != b {
		t.Errorf("expected matching fingerprints, got %s and %s", a, b)
	}
}

func TestFingerprintSeparatesDistinctEvents(t *testing.T) {
	d := NewDeduplicator(newFakeEventRepository(), denverLoc(t), false)

	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	nextDay := start.AddDate(0, 0, 1)

	base := d.Fingerprint("Story Time", start, "Main Library")

	if got := d.Fingerprint("Story Time", nextDay, "Main Library"); got == base {
		t.Error("different days should produce different fingerprints")
	}
	if got := d.Fingerprint("Story Time", start, "Branch Library"); got == base {
		t.Error("different venues should produce different fingerprints")
	}
	if got := d.Fingerprint("Puppet Show", start, "Main Library"); got == base {
		t.Error("different titles should produce different fingerprints")
	}
}

func TestApplyInsertsNewEvent(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), false)

	event := models.Event{
		Title:        "Toddler Music Hour",
		DateStart:    time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		LocationName: "Main Library",
		SourceURL:    "https://example.org/music",
		Active:       true,
	}

	decision, err := d.Apply(context.Background(), &event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != DecisionInserted {
		t.Fatalf("expected insert, got %v", decision)
	}
	if event.ID == 0 {
		t.Error("expected event ID to be assigned")
	}
	if event.Fingerprint == "" {
		t.Error("expected fingerprint to be set")
	}
}

func TestApplyUpdatesSameSourceURL(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), false)

	event := models.Event{
		Title:        "Toddler Music Hour",
		DateStart:    time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		LocationName: "Main Library",
		SourceURL:    "https://example.org/music",
		Active:       true,
	}
	if _, err := d.Apply(context.Background(), &event); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	refreshed := event
	refreshed.ID = 0
	refreshed.Description = "Now with more cowbell"

	decision, err := d.Apply(context.Background(), &refreshed)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if decision != DecisionUpdated {
		t.Fatalf("expected update, got %v", decision)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored event, got %d", repo.count())
	}
	if stored := repo.bySourceURL(event.SourceURL); stored.Description != "Now with more cowbell" {
		t.Errorf("expected refreshed description, got %q", stored.Description)
	}
}

func TestApplySkipsCrossSourceDuplicate(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), false)

	original := models.Event{
		Title:        "Dino Discovery Day",
		DateStart:    time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		LocationName: "Nature Museum",
		SourceURL:    "https://example.org/dino",
		Active:       true,
	}
	if _, err := d.Apply(context.Background(), &original); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	// Same real-world event listed on another site.
	duplicate := models.Event{
		Title:        "Dino Discovery Day!",
		DateStart:    time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
		LocationName: "nature museum",
		SourceURL:    "https://other.example.com/dino-day",
		Active:       true,
	}

	decision, err := d.Apply(context.Background(), &duplicate)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if decision != DecisionSkippedDuplicate {
		t.Fatalf("expected skip, got %v", decision)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored event, got %d", repo.count())
	}
}

func TestApplyEnrichesSkippedDuplicate(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), true)

	original := models.Event{
		Title:        "Dino Discovery Day",
		DateStart:    time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		LocationName: "Nature Museum",
		SourceURL:    "https://example.org/dino",
		Active:       true,
	}
	if _, err := d.Apply(context.Background(), &original); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	img := "https://other.example.com/dino.jpg"
	duplicate := models.Event{
		Title:        "Dino Discovery Day",
		Description:  "Fossil digs and a puppet T-rex.",
		DateStart:    original.DateStart,
		LocationName: "Nature Museum",
		SourceURL:    "https://other.example.com/dino-day",
		ImageURL:     &img,
		Active:       true,
	}

	decision, err := d.Apply(context.Background(), &duplicate)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if decision != DecisionSkippedDuplicate {
		t.Fatalf("expected skip, got %v", decision)
	}

	stored := repo.bySourceURL(original.SourceURL)
	if stored.Description != duplicate.Description {
		t.Errorf("expected empty description to be filled, got %q", stored.Description)
	}
	if stored.ImageURL == nil || *stored.ImageURL != img {
		t.Error("expected empty image url to be filled")
	}
}

func TestApplyEnrichNeverOverwrites(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), true)

	original := models.Event{
		Title:        "Dino Discovery Day",
		Description:  "The original description.",
		DateStart:    time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		LocationName: "Nature Museum",
		SourceURL:    "https://example.org/dino",
		Active:       true,
	}
	if _, err := d.Apply(context.Background(), &original); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	duplicate := original
	duplicate.ID = 0
	duplicate.Description = "A competing description."
	duplicate.SourceURL = "https://other.example.com/dino-day"

	if _, err := d.Apply(context.Background(), &duplicate); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	if stored := repo.bySourceURL(original.SourceURL); stored.Description != "The original description." {
		t.Errorf("existing description was overwritten: %q", stored.Description)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	repo := newFakeEventRepository()
	d := NewDeduplicator(repo, denverLoc(t), true)

	event := models.Event{
		Title:        "Trailhead Ramble",
		DateStart:    time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		LocationName: "Green Mountain",
		SourceURL:    "https://example.org/ramble",
		Active:       true,
	}

	for i := 0; i < 3; i++ {
		fresh := event
		fresh.ID = 0
		decision, err := d.Apply(context.Background(), &fresh)
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
		want := DecisionUpdated
		if i == 0 {
			want = DecisionInserted
		}
		if decision != want {
			t.Fatalf("apply %d: expected %v, got %v", i, want, decision)
		}
	}

	if repo.count() != 1 {
		t.Fatalf("expected 1 stored event after repeated applies, got %d", repo.count())
	}
}
