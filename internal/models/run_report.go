package models

import (
	"time"
)

// RunState is the lifecycle state of the run orchestrator.
type RunState string

const (
	RunStateIdle            RunState = "idle"
	RunStateRunning         RunState = "running"
	RunStateCompleted       RunState = "completed"
	RunStatePartiallyFailed RunState = "partially_failed"
	RunStateFailed          RunState = "failed" // every source failed
)

// RunReport summarizes one orchestrated ingestion run. It is built
// incrementally by the orchestrator and handed to the status surface and the
// run log when the run finishes; it is not part of the durable catalog.
type RunReport struct {
	RunID      string                   `json:"run_id"`
	Trigger    string                   `json:"trigger"` // "scheduled", "manual" or "catchup"
	State      RunState                 `json:"state"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Sources    map[string]*SourceReport `json:"sources"`
}

// SourceReport holds the per-source ingestion counters for one run.
type SourceReport struct {
	Fetched          int    `json:"fetched"`
	Inserted         int    `json:"inserted"`
	Updated          int    `json:"updated"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	Failed           int    `json:"failed"`
	ParseFailures    int    `json:"parse_failures"`
	Err              string `json:"error,omitempty"` // set when the whole source failed
}

// NewRunReport creates a report in the Running state with empty counters.
func NewRunReport(runID, trigger string, startedAt time.Time) *RunReport {
	return &RunReport{
		RunID:     runID,
		Trigger:   trigger,
		State:     RunStateRunning,
		StartedAt: startedAt,
		Sources:   make(map[string]*SourceReport),
	}
}

// SourceFailed reports whether the named source failed as a whole.
func (r *RunReport) SourceFailed(name string) bool {
	sr, ok := r.Sources[name]
	return ok && sr.Err != ""
}

// Finalize sets the terminal state from the per-source outcomes: Failed when
// every source failed, PartiallyFailed when at least one did, Completed
// otherwise.
func (r *RunReport) Finalize(finishedAt time.Time) {
	r.FinishedAt = finishedAt

	failed := 0
	for _, sr := range r.Sources {
		if sr.Err != "" {
			failed++
		}
	}

	switch {
	case len(r.Sources) > 0 && failed == len(r.Sources):
		r.State = RunStateFailed
	case failed > 0:
		r.State = RunStatePartiallyFailed
	default:
		r.State = RunStateCompleted
	}
}

// Totals sums the counters across all sources.
func (r *RunReport) Totals() SourceReport {
	var t SourceReport
	for _, sr := range r.Sources {
		t.Fetched += sr.Fetched
		t.Inserted += sr.Inserted
		t.Updated += sr.Updated
		t.SkippedDuplicate += sr.SkippedDuplicate
		t.Failed += sr.Failed
		t.ParseFailures += sr.ParseFailures
	}
	return t
}
