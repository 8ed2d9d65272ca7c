// Package models holds the shared domain types for trialbench: workflow
// phases, agent pipeline steps, job states, artifacts, and the synthetic
// trial dataset record.
package models

// Phase is a named, mutually exclusive state of a workflow session.
type Phase string

const (
	PhaseIdle Phase = "idle"

	// Research branch: question submission through results rendering.
	PhaseResearchPrompt       Phase = "research-prompt"
	PhaseResearchProcessing   Phase = "research-processing"
	PhaseResearchCodeReady    Phase = "research-code-ready"
	PhaseResearchAwaitingData Phase = "research-awaiting-data"
	PhaseResearchResults      Phase = "research-results"

	// Patient branch: cohort lookup through drug analysis.
	PhasePatientSearch   Phase = "patient-search"
	PhaseEHRLoading      Phase = "ehr-loading"
	PhaseEHRDisplay      Phase = "ehr-display"
	PhaseDrugSelection   Phase = "drug-selection"
	PhaseAnalysisResults Phase = "analysis-results"
)

// AllPhases lists every phase in declaration order.
var AllPhases = []Phase{
	PhaseIdle,
	PhaseResearchPrompt,
	PhaseResearchProcessing,
	PhaseResearchCodeReady,
	PhaseResearchAwaitingData,
	PhaseResearchResults,
	PhasePatientSearch,
	PhaseEHRLoading,
	PhaseEHRDisplay,
	PhaseDrugSelection,
	PhaseAnalysisResults,
}

// Valid reports whether p is a member of the closed phase set.
func (p Phase) Valid() bool {
	for _, known := range AllPhases {
		if p == known {
			return true
		}
	}
	return false
}

// Idle reports whether p is the idle phase.
func (p Phase) Idle() bool { return p == PhaseIdle }

// Research reports whether p belongs to the research branch.
func (p Phase) Research() bool {
	switch p {
	case PhaseResearchPrompt, PhaseResearchProcessing, PhaseResearchCodeReady,
		PhaseResearchAwaitingData, PhaseResearchResults:
		return true
	}
	return false
}

// Patient reports whether p belongs to the patient branch.
func (p Phase) Patient() bool {
	switch p {
	case PhasePatientSearch, PhaseEHRLoading, PhaseEHRDisplay,
		PhaseDrugSelection, PhaseAnalysisResults:
		return true
	}
	return false
}

// JobState is the remote pipeline job status reported by the job service.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)
