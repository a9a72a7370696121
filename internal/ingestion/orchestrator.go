package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/familyscout/familyscout/internal/models"
)

// RunObserver receives ingestion outcomes for metrics export. All methods
// must be safe for concurrent use.
type RunObserver interface {
	ObserveDecision(source string, decision Decision)
	ObserveSourceFailure(source string)
	ObserveRun(state models.RunState, duration time.Duration)
}

// CacheInvalidator drops cached query results after a run mutates storage.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// OrchestratorConfig holds tuning knobs for the run orchestrator.
type OrchestratorConfig struct {
	Concurrency    int // bounded worker pool for source adapters
	Retry          RetryPolicy
	RetryOverrides map[string]RetryPolicy // per-adapter-name, overrides Retry
	Observer       RunObserver            // optional
	Invalidator    CacheInvalidator       // optional
}

// Orchestrator drives one full ingestion run: fan-out over source adapters,
// per-record normalize/classify/dedup, fan-in into a RunReport. It is the
// sole writer of the report and the sole caller of repository mutations;
// dedup decisions are serialized even though sources fetch concurrently.
type Orchestrator struct {
	adapters   []SourceAdapter
	normalizer *Normalizer
	classifier *Classifier
	dedup      *Deduplicator
	runLog     RunLogRepository
	logger     *slog.Logger
	cfg        OrchestratorConfig

	mu         sync.Mutex // guards state and lastReport
	state      models.RunState
	lastReport *models.RunReport

	writeMu sync.Mutex // dedup-then-write critical section
}

// NewOrchestrator wires the pipeline stages together. runLog may be nil when
// run history persistence is not wanted (tests).
func NewOrchestrator(
	adapters []SourceAdapter,
	normalizer *Normalizer,
	classifier *Classifier,
	dedup *Deduplicator,
	runLog RunLogRepository,
	logger *slog.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Orchestrator{
		adapters:   adapters,
		normalizer: normalizer,
		classifier: classifier,
		dedup:      dedup,
		runLog:     runLog,
		logger:     logger,
		cfg:        cfg,
		state:      models.RunStateIdle,
	}
}

// State returns the current orchestration state.
func (o *Orchestrator) State() models.RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastReport returns the most recent run report, or nil before the first run.
func (o *Orchestrator) LastReport() *models.RunReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastReport
}

// TriggerRun starts a run in the background and returns immediately. A run
// already in progress is rejected with ErrRunInProgress, never interleaved.
func (o *Orchestrator) TriggerRun(trigger string) error {
	if !o.begin() {
		return ErrRunInProgress
	}

	go func() {
		report := o.execute(context.Background(), trigger)
		o.finish(report)
	}()

	return nil
}

// Run executes a full run synchronously. The scheduler uses this path.
func (o *Orchestrator) Run(ctx context.Context, trigger string) (*models.RunReport, error) {
	if !o.begin() {
		return nil, ErrRunInProgress
	}

	report := o.execute(ctx, trigger)
	o.finish(report)
	return report, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == models.RunStateRunning {
		return false
	}
	o.state = models.RunStateRunning
	return true
}

func (o *Orchestrator) finish(report *models.RunReport) {
	o.mu.Lock()
	o.state = report.State
	o.lastReport = report
	o.mu.Unlock()
}

func (o *Orchestrator) execute(ctx context.Context, trigger string) *models.RunReport {
	started := time.Now()
	report := models.NewRunReport(uuid.NewString(), trigger, started)

	o.logger.Info("starting ingestion run",
		"run_id", report.RunID,
		"trigger", trigger,
		"sources", len(o.adapters),
	)

	for _, adapter := range o.adapters {
		report.Sources[adapter.Name()] = &models.SourceReport{}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.cfg.Concurrency)

	for _, adapter := range o.adapters {
		wg.Add(1)

		go func(a SourceAdapter) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			o.processSource(ctx, a, report.Sources[a.Name()])
		}(adapter)
	}

	wg.Wait()

	report.Finalize(time.Now())

	totals := report.Totals()
	o.logger.Info("ingestion run finished",
		"run_id", report.RunID,
		"state", report.State,
		"fetched", totals.Fetched,
		"inserted", totals.Inserted,
		"updated", totals.Updated,
		"skipped_duplicate", totals.SkippedDuplicate,
		"failed", totals.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	if o.cfg.Observer != nil {
		o.cfg.Observer.ObserveRun(report.State, report.FinishedAt.Sub(report.StartedAt))
	}

	if o.runLog != nil {
		if err := o.runLog.Store(ctx, report); err != nil {
			o.logger.Error("failed to store run report", "run_id", report.RunID, "error", err)
		}
	}

	if o.cfg.Invalidator != nil && (totals.Inserted > 0 || totals.Updated > 0) {
		if err := o.cfg.Invalidator.Invalidate(ctx); err != nil {
			o.logger.Warn("failed to invalidate event cache", "error", err)
		}
	}

	return report
}

// processSource runs fetch→parse→normalize→classify→dedup for one source.
// Any failure here stays at the source boundary: it is recorded in the
// source report and siblings keep running.
func (o *Orchestrator) processSource(ctx context.Context, adapter SourceAdapter, sr *models.SourceReport) {
	defer func() {
		if r := recover(); r != nil {
			sr.Err = fmt.Sprintf("panic: %v", r)
			o.logger.Error("source adapter panicked", "source", adapter.Name(), "panic", r)
			o.observeFailure(adapter.Name())
		}
	}()

	var payload []byte
	err := Retry(ctx, o.retryPolicyFor(adapter.Name()), func() error {
		var fetchErr error
		payload, fetchErr = adapter.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		sr.Err = err.Error()
		o.logger.Error("source fetch failed", "source", adapter.Name(), "error", err)
		o.observeFailure(adapter.Name())
		return
	}

	raws, dropped := adapter.Parse(payload)
	sr.Fetched = len(raws)
	sr.ParseFailures = dropped

	o.logger.Info("source parsed",
		"source", adapter.Name(),
		"records", len(raws),
		"parse_failures", dropped,
	)

	venue := adapter.Venue()

	for _, raw := range raws {
		event, err := o.normalizer.Normalize(raw, venue)
		if err != nil {
			sr.Failed++
			if IsValidationError(err) {
				o.logger.Debug("record rejected", "source", adapter.Name(), "title", raw.Title, "error", err)
			} else {
				o.logger.Warn("normalization failed", "source", adapter.Name(), "title", raw.Title, "error", err)
			}
			continue
		}

		// Upstream age hints participate in classification even though they
		// are not part of the stored description.
		classifyText := strings.TrimSpace(event.Description + " " + raw.AgeText)
		event.AgeGroup, event.Categories = o.classifier.Classify(event.Title, classifyText, venue)

		decision, err := o.applySerialized(ctx, &event)
		if err != nil {
			sr.Failed++
			o.logger.Error("event write failed", "source", adapter.Name(), "source_url", event.SourceURL, "error", err)
			continue
		}

		switch decision {
		case DecisionInserted:
			sr.Inserted++
		case DecisionUpdated:
			sr.Updated++
		case DecisionSkippedDuplicate:
			sr.SkippedDuplicate++
		}

		if o.cfg.Observer != nil {
			o.cfg.Observer.ObserveDecision(adapter.Name(), decision)
		}
	}
}

// applySerialized holds the per-run write lock around the fingerprint
// lookup+write so two sources cannot both win an insert race for the same
// fingerprint.
func (o *Orchestrator) applySerialized(ctx context.Context, event *models.Event) (Decision, error) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	return o.dedup.Apply(ctx, event)
}

func (o *Orchestrator) retryPolicyFor(source string) RetryPolicy {
	if policy, ok := o.cfg.RetryOverrides[source]; ok {
		return policy
	}
	return o.cfg.Retry
}

func (o *Orchestrator) observeFailure(source string) {
	if o.cfg.Observer != nil {
		o.cfg.Observer.ObserveSourceFailure(source)
	}
}
