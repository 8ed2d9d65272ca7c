package models

// Artifact is the generated code/text artifact produced once the pipeline
// completes. Fields mirror the per-step output files the pipeline writes:
// the causal question, the trial protocol spec, the analysis code, the OMOP
// concept mappings, and the validator's feedback.
type Artifact struct {
	RunID             string `json:"run_id,omitempty"`
	TrialName         string `json:"trial_name,omitempty"`
	CausalQuestion    string `json:"causal_question,omitempty"`
	DesignSpec        string `json:"design_spec,omitempty"`
	Code              string `json:"code"`
	OMOPMappings      string `json:"omop_mappings,omitempty"`
	ValidatorFeedback string `json:"validator_feedback,omitempty"`
}

// Empty reports whether the artifact carries no generated output.
func (a Artifact) Empty() bool {
	return a.Code == "" && a.DesignSpec == "" && a.CausalQuestion == ""
}

// ResultsSource identifies where a results payload came from.
type ResultsSource string

const (
	// SourceExample means the payload was substituted from the example-trial
	// catalog.
	SourceExample ResultsSource = "example"
	// SourceUploaded means the caller supplied the data.
	SourceUploaded ResultsSource = "uploaded"
	// SourceSynthetic means the payload was produced by the deterministic
	// synthesizer.
	SourceSynthetic ResultsSource = "synthetic"
)

// ResultsPayload is the final analytics payload consumed by the results view.
type ResultsPayload struct {
	Source    ResultsSource    `json:"source"`
	ExampleID string           `json:"example_id,omitempty"`
	TrialName string           `json:"trial_name,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
	Record    *TrialDataRecord `json:"record,omitempty"`
	Images    []string         `json:"images,omitempty"`
}
