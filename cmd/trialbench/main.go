package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess        = 0 // Command completed
	ExitPipelineFailed = 1 // The trial pipeline reported failure
	ExitError          = 2 // Configuration or runtime error
)

// PipelineFailureError indicates the workflow ran but the trial pipeline
// itself failed.
type PipelineFailureError struct {
	Message string
}

func (e *PipelineFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var pipelineErr *PipelineFailureError
		if errors.As(err, &pipelineErr) {
			os.Exit(ExitPipelineFailed)
		}

		os.Exit(ExitError)
	}
}
