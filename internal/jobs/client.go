// Package jobs defines the narrow interface to the remote pipeline job
// service and an HTTP implementation of it. The workflow orchestrator only
// ever sees the Client interface.
package jobs

import (
	"context"
	"errors"

	"github.com/trialbench/trialbench/internal/models"
)

//go:generate mockgen -destination=jobsmock/mock_client.go -package=jobsmock github.com/trialbench/trialbench/internal/jobs Client

// ErrUnavailable indicates the job service could not be reached or refused
// the request. Submission failures with this cause are recoverable: the user
// retries, or the caller falls back to the simulated pipeline.
var ErrUnavailable = errors.New("job service unavailable")

// ErrJobNotFound indicates the service has no record of the job id.
var ErrJobNotFound = errors.New("job not found")

// Status is one poll observation of a remote job.
type Status struct {
	State models.JobState `json:"status"`
	// Error carries the failure context when State is JobFailed.
	Error string `json:"error,omitempty"`
}

// Results is the final output of a completed job.
type Results struct {
	Artifact models.Artifact        `json:"artifact"`
	Payload  *models.ResultsPayload `json:"payload,omitempty"`
}

// Client is the job-service boundary.
type Client interface {
	// Submit creates a job for the question and returns its opaque id.
	Submit(ctx context.Context, question string) (string, error)
	// GetStatus returns the job's current state.
	GetStatus(ctx context.Context, jobID string) (Status, error)
	// GetResults returns the artifacts of a completed job.
	GetResults(ctx context.Context, jobID string) (*Results, error)
}
