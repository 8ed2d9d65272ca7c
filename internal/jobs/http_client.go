package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/trialbench/trialbench/internal/models"
)

// HTTPClient talks to the pipeline backend's REST API
// (POST /api/trials, GET /api/trials/{id}/status, GET /api/trials/{id}/results).
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPTimeout overrides the default per-request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// NewHTTPClient creates a client for the job service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit creates a trial job and returns the service-assigned run id.
func (c *HTTPClient) Submit(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", fmt.Errorf("encoding submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/trials", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: submit returned %s", ErrUnavailable, resp.Status)
	}

	var out struct {
		RunID  string `json:"run_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding submit response: %w", err)
	}
	if out.RunID == "" {
		return "", fmt.Errorf("%w: submit response missing run_id", ErrUnavailable)
	}
	return out.RunID, nil
}

// GetStatus returns the current job state.
func (c *HTTPClient) GetStatus(ctx context.Context, jobID string) (Status, error) {
	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/trials/%s/status", url.PathEscape(jobID)), &out); err != nil {
		return Status{}, err
	}

	state := models.JobState(out.Status)
	switch state {
	case models.JobQueued, models.JobRunning, models.JobCompleted, models.JobFailed:
	default:
		return Status{}, fmt.Errorf("job service reported unknown status %q", out.Status)
	}
	return Status{State: state, Error: out.Error}, nil
}

// GetResults fetches the output files of a completed job.
func (c *HTTPClient) GetResults(ctx context.Context, jobID string) (*Results, error) {
	var out struct {
		RunID             string `json:"run_id"`
		Question          string `json:"question"`
		CausalQuestion    string `json:"causal_question"`
		DesignSpec        string `json:"design_spec"`
		Code              string `json:"code"`
		OMOPMappings      string `json:"omop_mappings"`
		ValidatorFeedback string `json:"validator_feedback"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/trials/%s/results", url.PathEscape(jobID)), &out); err != nil {
		return nil, err
	}

	return &Results{
		Artifact: models.Artifact{
			RunID:             out.RunID,
			CausalQuestion:    out.CausalQuestion,
			DesignSpec:        out.DesignSpec,
			Code:              out.Code,
			OMOPMappings:      out.OMOPMappings,
			ValidatorFeedback: out.ValidatorFeedback,
		},
	}, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrJobNotFound
	default:
		return fmt.Errorf("%w: %s returned %s", ErrUnavailable, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
