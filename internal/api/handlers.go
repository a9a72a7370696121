package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

// EventLister serves event queries; satisfied by the Postgres repository
// directly or by the Redis read-through cache in front of it.
type EventLister interface {
	ListAll(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// RunController is the orchestrator surface the API needs.
type RunController interface {
	State() models.RunState
	LastReport() *models.RunReport
	TriggerRun(trigger string) error
}

// RunLister serves run history queries.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.RunReport, error)
}

type Handler struct {
	events    EventLister
	runs      RunController
	runLog    RunLister
	adapters  []ingestion.SourceAdapter
	logger    *slog.Logger
	startTime time.Time
}

func NewHandler(events EventLister, runs RunController, runLog RunLister, adapters []ingestion.SourceAdapter, logger *slog.Logger) *Handler {
	return &Handler{
		events:    events,
		runs:      runs,
		runLog:    runLog,
		adapters:  adapters,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetEventsHandler handles GET /api/events
func (h *Handler) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := h.parseEventFilter(r)

	events, err := h.events.ListAll(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Events: events,
		Count:  len(events),
	})
}

// HandleRuns handles GET /api/runs and POST /api/runs
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRunsHandler(w, r)
	case http.MethodPost:
		h.triggerRunHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listRunsHandler handles GET /api/runs
func (h *Handler) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	reports, err := h.runLog.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RunsResponse{
		Runs:  reports,
		Count: len(reports),
	})
}

// triggerRunHandler handles POST /api/runs. The run executes in the
// background; 202 means accepted, 409 means one is already in flight.
func (h *Handler) triggerRunHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.runs.TriggerRun("manual"); err != nil {
		if errors.Is(err, ingestion.ErrRunInProgress) {
			http.Error(w, "A run is already in progress", http.StatusConflict)
			return
		}
		h.logger.Error("failed to trigger run", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("manual ingestion run triggered")

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// GetLatestRunHandler handles GET /api/runs/latest
func (h *Handler) GetLatestRunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.runs.LastReport()
	if report == nil {
		http.Error(w, "No runs have completed yet", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetStatusHandler handles GET /api/status
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := StatusResponse{
		State:         h.runs.State(),
		SourceCount:   len(h.adapters),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if report := h.runs.LastReport(); report != nil {
		totals := report.Totals()
		status.LastRun = &LastRunSummary{
			RunID:            report.RunID,
			Trigger:          report.Trigger,
			State:            report.State,
			StartedAt:        report.StartedAt,
			FinishedAt:       report.FinishedAt,
			Fetched:          totals.Fetched,
			Inserted:         totals.Inserted,
			Updated:          totals.Updated,
			SkippedDuplicate: totals.SkippedDuplicate,
			Failed:           totals.Failed,
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// GetSourcesHandler handles GET /api/sources: the configured source
// adapters and their venue metadata.
func (h *Handler) GetSourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources := make([]SourceInfo, 0, len(h.adapters))
	for _, adapter := range h.adapters {
		sources = append(sources, SourceInfo{
			Name:  adapter.Name(),
			Venue: adapter.Venue(),
		})
	}

	writeJSON(w, http.StatusOK, SourcesResponse{
		Sources: sources,
		Count:   len(sources),
	})
}

// parseEventFilter converts URL query parameters to an EventFilter
func (h *Handler) parseEventFilter(r *http.Request) models.EventFilter {
	q := r.URL.Query()
	filter := models.EventFilter{
		ActiveOnly: true,
		Limit:      100,
	}

	filter.City = q.Get("city")

	if ageGroup := q.Get("age_group"); ageGroup != "" {
		ag := models.AgeGroup(strings.ToLower(ageGroup))
		if ag.Valid() {
			filter.AgeGroup = ag
		}
	}

	filter.Category = q.Get("category")

	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	if active := q.Get("active"); active != "" {
		filter.ActiveOnly = active != "false"
	}

	if limit := q.Get("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 && val <= 500 {
			filter.Limit = val
		}
	}

	return filter
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Response types
type EventsResponse struct {
	Events []models.Event `json:"events"`
	Count  int            `json:"count"`
}

type RunsResponse struct {
	Runs  []models.RunReport `json:"runs"`
	Count int                `json:"count"`
}

type SourceInfo struct {
	Name  string           `json:"name"`
	Venue models.VenueInfo `json:"venue"`
}

type SourcesResponse struct {
	Sources []SourceInfo `json:"sources"`
	Count   int          `json:"count"`
}

type LastRunSummary struct {
	RunID            string          `json:"run_id"`
	Trigger          string          `json:"trigger"`
	State            models.RunState `json:"state"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
	Fetched          int             `json:"fetched"`
	Inserted         int             `json:"inserted"`
	Updated          int             `json:"updated"`
	SkippedDuplicate int             `json:"skipped_duplicate"`
	Failed           int             `json:"failed"`
}

type StatusResponse struct {
	State         models.RunState `json:"state"`
	SourceCount   int             `json:"source_count"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	LastRun       *LastRunSummary `json:"last_run,omitempty"`
}
