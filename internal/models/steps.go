package models

// StepStatus is the state of a single agent pipeline step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepActive   StepStatus = "active"
	StepComplete StepStatus = "complete"
	StepFailed   StepStatus = "failed"
)

// AgentStep is one stage of the multi-agent pipeline, carrying its own status.
type AgentStep struct {
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Step IDs for the five pipeline stages.
const (
	StepQuestion  = "question"
	StepDesign    = "design"
	StepValidator = "validator"
	StepOMOP      = "omop"
	StepCode      = "code"
)

// PipelineSteps returns a fresh all-pending step sequence for the five-agent
// pipeline: causal question framing, protocol design, design validation,
// OMOP concept mapping, and code generation. The cardinality and order are
// fixed at session creation and never change.
func PipelineSteps() []AgentStep {
	return []AgentStep{
		{ID: StepQuestion, Label: "Question Agent", Status: StepPending},
		{ID: StepDesign, Label: "Design Agent", Status: StepPending},
		{ID: StepValidator, Label: "Validator Agent", Status: StepPending},
		{ID: StepOMOP, Label: "OMOP Lookup Agent", Status: StepPending},
		{ID: StepCode, Label: "Code Agent", Status: StepPending},
	}
}

// CloneSteps returns a deep copy of steps so callers can hand out snapshots
// without sharing the session's backing slice.
func CloneSteps(steps []AgentStep) []AgentStep {
	out := make([]AgentStep, len(steps))
	copy(out, steps)
	return out
}
