// Package session records workflow session events as an NDJSON audit log.
package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart  EventType = "session_start"
	EventPhaseChange   EventType = "phase_change"
	EventJobSubmitted  EventType = "job_submitted"
	EventPollError     EventType = "poll_error"
	EventArtifactReady EventType = "artifact_ready"
	EventDataReceived  EventType = "data_received"
	EventSessionReset  EventType = "session_reset"
	EventError         EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// PhaseChangeData returns event data for a phase transition.
func PhaseChangeData(sessionID, from, to string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"from":       from,
		"to":         to,
	}
}

// JobSubmittedData returns event data for a job submission.
func JobSubmittedData(sessionID, jobID string, simulated bool) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"job_id":     jobID,
		"simulated":  simulated,
	}
}

// PollErrorData returns event data for a transient polling error.
func PollErrorData(sessionID, jobID string, attempt int, errMsg string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"job_id":     jobID,
		"attempt":    attempt,
		"error":      errMsg,
	}
}

// ArtifactReadyData returns event data for artifact availability.
func ArtifactReadyData(sessionID, runID string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"run_id":     runID,
	}
}
