// Package workflow owns the research-session state machine: a single live
// session advanced through a closed set of phases by user commands and by
// one background polling task.
package workflow

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/trialbench/trialbench/internal/models"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	// NoticeSubmissionFailed means the job could not be created; the user
	// retries from the prompt.
	NoticeSubmissionFailed NoticeKind = "submission_failed"
	// NoticeJobFailed means the remote pipeline reported failure.
	NoticeJobFailed NoticeKind = "job_failed"
	// NoticeResultsUnavailable means the job completed but results could not
	// be fetched. Completed step indicators are preserved.
	NoticeResultsUnavailable NoticeKind = "results_unavailable"
)

// Notice is a user-visible error surfaced by the orchestrator.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Session is the single workflow session owned by an Orchestrator. All
// fields are guarded by the orchestrator's mutex; callers only ever see
// copies via Snapshot.
type Session struct {
	ID            string
	Phase         models.Phase
	Thesis        string
	StartedAt     time.Time
	Steps         []models.AgentStep
	ExternalJobID string
	Artifact      models.Artifact
	Results       *models.ResultsPayload
	Notice        *Notice

	// MatchedExampleID is the catalog entry driving the simulated pipeline
	// and the example-data substitution.
	MatchedExampleID string

	// PatientQuery is the cohort lookup string for the patient branch.
	PatientQuery string

	// pendingResults holds a payload returned by the remote job, kept aside
	// until the user asks for data in the awaiting-data phase.
	pendingResults *models.ResultsPayload
}

func newSession() *Session {
	return &Session{
		ID:    ulid.Make().String(),
		Phase: models.PhaseIdle,
		Steps: models.PipelineSteps(),
	}
}

// Snapshot is an immutable copy of session state handed to the presentation
// layer.
type Snapshot struct {
	SessionID        string                 `json:"session_id"`
	Phase            models.Phase           `json:"phase"`
	Thesis           string                 `json:"thesis,omitempty"`
	Steps            []models.AgentStep     `json:"agent_steps"`
	ExternalJobID    string                 `json:"external_job_id,omitempty"`
	Artifact         models.Artifact        `json:"artifact"`
	Results          *models.ResultsPayload `json:"results,omitempty"`
	Notice           *Notice                `json:"notice,omitempty"`
	MatchedExampleID string                 `json:"matched_example_id,omitempty"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:        s.ID,
		Phase:            s.Phase,
		Thesis:           s.Thesis,
		Steps:            models.CloneSteps(s.Steps),
		ExternalJobID:    s.ExternalJobID,
		Artifact:         s.Artifact,
		MatchedExampleID: s.MatchedExampleID,
	}
	if s.Results != nil {
		r := *s.Results
		snap.Results = &r
	}
	if s.Notice != nil {
		n := *s.Notice
		snap.Notice = &n
	}
	return snap
}

// TransitionEvent describes one phase transition.
type TransitionEvent struct {
	SessionID string
	From      models.Phase
	To        models.Phase
	Steps     []models.AgentStep
}

// TransitionListener receives phase transition events. Listeners are invoked
// outside the orchestrator's lock; they must not assume ordering with
// concurrent Snapshot calls.
type TransitionListener func(event TransitionEvent)
