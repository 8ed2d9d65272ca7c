package webapi

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// QuestionRequest submits a research question.
type QuestionRequest struct {
	Question string `json:"question"`
}

// DataRequest supplies uploaded trial results.
type DataRequest struct {
	TrialName string         `json:"trial_name"`
	Data      map[string]any `json:"data"`
}

// SearchRequest starts a patient cohort lookup.
type SearchRequest struct {
	Query string `json:"query"`
}

// AnalysisRequest runs the synthetic analysis for a selected drug.
type AnalysisRequest struct {
	EntityID    string `json:"entity_id"`
	DisplayName string `json:"display_name"`
	RecordCount int    `json:"record_count"`
}

// ExampleSummary is the list view of a catalog example.
type ExampleSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// ArtifactHTML is the rendered artifact view.
type ArtifactHTML struct {
	TrialName  string `json:"trial_name"`
	DesignHTML string `json:"design_html"`
	Code       string `json:"code"`
}

// ClearResponse reports a cache clear.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}
