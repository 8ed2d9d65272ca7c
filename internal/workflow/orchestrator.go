package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/trialbench/trialbench/internal/catalog"
	"github.com/trialbench/trialbench/internal/jobs"
	"github.com/trialbench/trialbench/internal/models"
	"github.com/trialbench/trialbench/internal/session"
	"github.com/trialbench/trialbench/internal/synthdata"
)

var (
	// ErrInvalidTransition is returned when a command does not apply to the
	// session's current phase.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrEmptyQuestion is returned when a research question is blank.
	ErrEmptyQuestion = errors.New("research question is empty")
	// ErrEmptyQuery is returned when a patient lookup query is blank.
	ErrEmptyQuery = errors.New("patient query is empty")
	// ErrEmptyEntity is returned when an analysis entity id is blank.
	ErrEmptyEntity = errors.New("analysis entity id is empty")
)

const (
	defaultPollInterval = 2 * time.Second
	defaultEHRLoadDelay = 2 * time.Second
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithJobClient wires a remote job service. Without one the orchestrator
// runs the simulated pipeline against the example catalog.
func WithJobClient(c jobs.Client) Option {
	return func(o *Orchestrator) { o.jobs = c }
}

// WithSynthStore sets the synthetic trial-data store used by the patient
// branch.
func WithSynthStore(s *synthdata.Store) Option {
	return func(o *Orchestrator) { o.synth = s }
}

// WithClock overrides the time source. Tests use this to drive the
// simulated pipeline deterministically.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithPollInterval sets the job polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithEventLogger sets the session event logger.
func WithEventLogger(l session.Logger) Option {
	return func(o *Orchestrator) { o.events = l }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTimeScale accelerates the simulated pipeline and EHR load by the
// given factor. A scale of 10 makes a 48 second pipeline finish in 4.8.
func WithTimeScale(scale float64) Option {
	return func(o *Orchestrator) {
		if scale > 0 {
			o.timeScale = scale
		}
	}
}

// WithEHRLoadDelay sets the synthetic EHR loading delay for the patient
// branch.
func WithEHRLoadDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.ehrLoadDelay = d }
}

// Orchestrator owns the single live workflow session and serializes every
// state change behind one mutex. Background work (job polling, the EHR load
// timer) runs outside the lock and revalidates a generation counter before
// touching the session, so a callback scheduled before a reset can never
// move the new session backward.
type Orchestrator struct {
	catalog      *catalog.Catalog
	jobs         jobs.Client
	synth        *synthdata.Store
	events       session.Logger
	logger       *slog.Logger
	clock        func() time.Time
	pollInterval time.Duration
	timeScale    float64
	ehrLoadDelay time.Duration

	mu           sync.Mutex
	sess         *Session
	epoch        int
	poller       *pollTask
	ehrTimer     *time.Timer
	pollFailures int

	listenersMu sync.Mutex
	listeners   []TransitionListener
}

// New creates an orchestrator with an idle session. The catalog is required;
// everything else has defaults.
func New(cat *catalog.Catalog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:      cat,
		events:       session.NopLogger{},
		logger:       slog.Default(),
		clock:        time.Now,
		pollInterval: defaultPollInterval,
		timeScale:    1,
		ehrLoadDelay: defaultEHRLoadDelay,
		sess:         newSession(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.synth == nil {
		o.synth = synthdata.New()
	}
	o.logEvent(session.EventSessionStart, map[string]any{"session_id": o.sess.ID})
	return o
}

// OnTransition registers a listener for phase transitions.
func (o *Orchestrator) OnTransition(l TransitionListener) {
	o.listenersMu.Lock()
	defer o.listenersMu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Snapshot returns a copy of the current session state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sess.snapshot()
}

// Store exposes the synthetic trial-data store backing the patient branch.
func (o *Orchestrator) Store() *synthdata.Store { return o.synth }

// Catalog exposes the example-trial catalog.
func (o *Orchestrator) Catalog() *catalog.Catalog { return o.catalog }

// StartResearch moves an idle session to the research question prompt.
func (o *Orchestrator) StartResearch() error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseIdle {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseResearchPrompt)
	}
	ev := o.transitionLocked(models.PhaseResearchPrompt)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// SubmitQuestion submits a research question and starts the pipeline. It is
// valid from the prompt, and from processing as a resubmission; the previous
// polling task is cancelled before the new one starts, so there is exactly
// one live poller afterwards. If a job client is configured the question is
// sent to the job service; a submission failure returns the session to the
// prompt with a notice. Without a client the catalog-driven simulated
// pipeline runs instead.
func (o *Orchestrator) SubmitQuestion(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	o.mu.Lock()
	switch o.sess.Phase {
	case models.PhaseResearchPrompt:
	case models.PhaseResearchProcessing:
		o.cancelAsyncLocked()
	default:
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseResearchProcessing)
	}

	o.sess.Thesis = question
	o.sess.StartedAt = o.clock()
	o.sess.Steps = models.PipelineSteps()
	o.sess.Artifact = models.Artifact{}
	o.sess.Results = nil
	o.sess.pendingResults = nil
	o.sess.Notice = nil
	o.sess.ExternalJobID = ""
	o.sess.MatchedExampleID = o.catalog.Match(question).ID
	o.pollFailures = 0
	ev := o.transitionLocked(models.PhaseResearchProcessing)

	if o.jobs == nil {
		o.logEvent(session.EventJobSubmitted, session.JobSubmittedData(o.sess.ID, "", true))
		o.startPollingLocked("")
		o.mu.Unlock()
		o.emit(ev)
		return nil
	}

	// The submission round-trip runs outside the lock so snapshots and
	// other commands stay responsive while it is in flight. Entering the
	// processing phase first means a concurrent submission takes the
	// resubmission path and bumps the epoch, which this call revalidates
	// before touching the session again.
	epoch := o.epoch
	o.mu.Unlock()
	o.emit(ev)

	jobID, err := o.jobs.Submit(ctx, question)

	o.mu.Lock()
	if epoch != o.epoch {
		o.mu.Unlock()
		o.logger.Warn("submission superseded by reset or resubmission", "job_id", jobID)
		if err != nil {
			return fmt.Errorf("submitting question: %w", err)
		}
		return nil
	}
	if err != nil {
		o.sess.Notice = &Notice{
			Kind:    NoticeSubmissionFailed,
			Message: fmt.Sprintf("could not submit trial job: %v", err),
		}
		o.logEvent(session.EventError, map[string]any{
			"session_id": o.sess.ID,
			"error":      err.Error(),
		})
		fallback := o.transitionLocked(models.PhaseResearchPrompt)
		o.mu.Unlock()
		o.emit(fallback)
		o.logger.Warn("job submission failed", "error", err)
		return fmt.Errorf("submitting question: %w", err)
	}

	o.sess.ExternalJobID = jobID
	o.logEvent(session.EventJobSubmitted, session.JobSubmittedData(o.sess.ID, jobID, false))
	o.startPollingLocked(jobID)
	o.mu.Unlock()
	return nil
}

// AcknowledgeArtifact moves from the generated-code view to the data prompt.
func (o *Orchestrator) AcknowledgeArtifact() error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseResearchCodeReady {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseResearchAwaitingData)
	}
	ev := o.transitionLocked(models.PhaseResearchAwaitingData)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// SupplyData accepts caller-provided trial results and moves to the results
// view.
func (o *Orchestrator) SupplyData(trialName string, data map[string]any) error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseResearchAwaitingData {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseResearchResults)
	}
	o.sess.Results = &models.ResultsPayload{
		Source:    models.SourceUploaded,
		TrialName: trialName,
		Data:      data,
	}
	o.logEvent(session.EventDataReceived, map[string]any{
		"session_id": o.sess.ID,
		"source":     string(models.SourceUploaded),
	})
	ev := o.transitionLocked(models.PhaseResearchResults)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// SupplyExampleData substitutes catalog data for the matched example and
// moves to the results view. If the remote job returned a payload of its
// own, that payload wins over the catalog entry.
func (o *Orchestrator) SupplyExampleData() error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseResearchAwaitingData {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseResearchResults)
	}
	if o.sess.pendingResults != nil {
		o.sess.Results = o.sess.pendingResults
	} else {
		payload := o.catalog.Get(o.sess.MatchedExampleID).ResultsPayload()
		o.sess.Results = &payload
	}
	o.logEvent(session.EventDataReceived, map[string]any{
		"session_id": o.sess.ID,
		"source":     string(o.sess.Results.Source),
		"example_id": o.sess.Results.ExampleID,
	})
	ev := o.transitionLocked(models.PhaseResearchResults)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// StartPatientFlow moves an idle session to the patient cohort search.
func (o *Orchestrator) StartPatientFlow() error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseIdle {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhasePatientSearch)
	}
	ev := o.transitionLocked(models.PhasePatientSearch)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// SearchPatient starts a cohort lookup. The EHR view becomes available after
// a short synthetic load delay.
func (o *Orchestrator) SearchPatient(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	o.mu.Lock()
	if o.sess.Phase != models.PhasePatientSearch {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseEHRLoading)
	}
	o.sess.PatientQuery = query
	ev := o.transitionLocked(models.PhaseEHRLoading)

	epoch := o.epoch
	o.ehrTimer = time.AfterFunc(o.scaled(o.ehrLoadDelay), func() {
		o.completeEHRLoad(epoch)
	})
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

func (o *Orchestrator) completeEHRLoad(epoch int) {
	o.mu.Lock()
	if epoch != o.epoch || o.sess.Phase != models.PhaseEHRLoading {
		o.mu.Unlock()
		return
	}
	o.ehrTimer = nil
	ev := o.transitionLocked(models.PhaseEHRDisplay)
	o.mu.Unlock()
	o.emit(ev)
}

// ProceedToDrugSelection moves from the EHR view to drug selection.
func (o *Orchestrator) ProceedToDrugSelection() error {
	o.mu.Lock()
	if o.sess.Phase != models.PhaseEHRDisplay {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseDrugSelection)
	}
	ev := o.transitionLocked(models.PhaseDrugSelection)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// RunAnalysis synthesizes trial data for the selected drug and moves to the
// analysis results view. recordCount scales the synthetic cohort.
func (o *Orchestrator) RunAnalysis(entityID, displayName string, recordCount int) error {
	if strings.TrimSpace(entityID) == "" {
		return ErrEmptyEntity
	}

	o.mu.Lock()
	if o.sess.Phase != models.PhaseDrugSelection {
		defer o.mu.Unlock()
		return o.invalidLocked(models.PhaseAnalysisResults)
	}
	record := o.synth.Get(entityID, displayName, recordCount)
	o.sess.Results = &models.ResultsPayload{
		Source:    models.SourceSynthetic,
		TrialName: displayName,
		Record:    record,
	}
	o.logEvent(session.EventDataReceived, map[string]any{
		"session_id": o.sess.ID,
		"source":     string(models.SourceSynthetic),
		"entity_id":  entityID,
	})
	ev := o.transitionLocked(models.PhaseAnalysisResults)
	o.mu.Unlock()
	o.emit(ev)
	return nil
}

// Reset abandons the current session and installs a fresh idle one. Any
// in-flight polling task or EHR timer is cancelled first; a tick that
// already fired observes a stale generation and does nothing.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.cancelAsyncLocked()
	old := o.sess
	o.sess = newSession()
	o.pollFailures = 0
	o.logEvent(session.EventSessionReset, map[string]any{
		"old_session_id": old.ID,
		"session_id":     o.sess.ID,
	})
	ev := TransitionEvent{
		SessionID: o.sess.ID,
		From:      old.Phase,
		To:        models.PhaseIdle,
		Steps:     models.CloneSteps(o.sess.Steps),
	}
	o.mu.Unlock()
	o.emit(ev)
}

// Close cancels background work. The session is left as-is.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	o.cancelAsyncLocked()
	o.mu.Unlock()
	return o.events.Close()
}

// cancelAsyncLocked stops the polling task and EHR timer and advances the
// generation counter so late callbacks become no-ops.
func (o *Orchestrator) cancelAsyncLocked() {
	if o.poller != nil {
		o.poller.cancel()
		o.poller = nil
	}
	if o.ehrTimer != nil {
		o.ehrTimer.Stop()
		o.ehrTimer = nil
	}
	o.epoch++
}

func (o *Orchestrator) transitionLocked(to models.Phase) TransitionEvent {
	from := o.sess.Phase
	o.sess.Phase = to
	o.logEvent(session.EventPhaseChange, session.PhaseChangeData(o.sess.ID, string(from), string(to)))
	o.logger.Debug("phase transition", "session_id", o.sess.ID, "from", from, "to", to)
	return TransitionEvent{
		SessionID: o.sess.ID,
		From:      from,
		To:        to,
		Steps:     models.CloneSteps(o.sess.Steps),
	}
}

func (o *Orchestrator) invalidLocked(to models.Phase) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.sess.Phase, to)
}

func (o *Orchestrator) emit(ev TransitionEvent) {
	o.listenersMu.Lock()
	listeners := make([]TransitionListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.listenersMu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}

func (o *Orchestrator) logEvent(t session.EventType, data map[string]any) {
	if err := o.events.Log(session.NewEvent(t, data)); err != nil {
		o.logger.Warn("session event log failed", "type", t, "error", err)
	}
}

// scaled divides a wall-clock duration by the time scale.
func (o *Orchestrator) scaled(d time.Duration) time.Duration {
	if o.timeScale == 1 {
		return d
	}
	return time.Duration(float64(d) / o.timeScale)
}
