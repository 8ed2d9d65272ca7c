package workflow

import (
	"context"
	"math"
	"time"

	"github.com/trialbench/trialbench/internal/jobs"
	"github.com/trialbench/trialbench/internal/models"
	"github.com/trialbench/trialbench/internal/session"
)

// pollTask is the handle for the single background polling goroutine. At
// most one exists per orchestrator; starting a new one always cancels the
// previous one first.
type pollTask struct {
	jobID  string
	cancel context.CancelFunc
}

// startPollingLocked launches the polling goroutine for the current
// submission. An empty jobID selects the simulated pipeline. Callers hold
// the orchestrator lock.
func (o *Orchestrator) startPollingLocked(jobID string) {
	ctx, cancel := context.WithCancel(context.Background())
	o.poller = &pollTask{jobID: jobID, cancel: cancel}
	epoch := o.epoch
	go o.runPoller(ctx, epoch, jobID)
}

func (o *Orchestrator) runPoller(ctx context.Context, epoch int, jobID string) {
	ticker := time.NewTicker(o.scaled(o.pollInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.pollOnce(ctx, epoch, jobID)
		}
	}
}

// pollOnce performs one poll observation. The epoch captured at task start
// is revalidated under the lock before any session mutation, so a tick that
// raced a reset or resubmission is dropped on the floor.
func (o *Orchestrator) pollOnce(ctx context.Context, epoch int, jobID string) {
	if !o.epochValid(epoch) {
		return
	}
	if jobID == "" {
		o.advanceSimulated(epoch)
		return
	}

	st, err := o.jobs.GetStatus(ctx, jobID)
	if err != nil {
		o.recordPollError(epoch, jobID, err)
		return
	}

	switch st.State {
	case models.JobQueued, models.JobRunning:
		o.advanceObserved(epoch)
	case models.JobCompleted:
		res, rerr := o.jobs.GetResults(ctx, jobID)
		o.finishJob(epoch, res, rerr)
	case models.JobFailed:
		o.failJob(epoch, st.Error)
	}
}

// advanceSimulated recomputes step statuses from elapsed time and, once the
// timeline is exhausted, installs the matched example's artifact and moves
// to the code-ready view.
func (o *Orchestrator) advanceSimulated(epoch int) {
	o.mu.Lock()
	if epoch != o.epoch || o.sess.Phase != models.PhaseResearchProcessing {
		o.mu.Unlock()
		return
	}

	elapsed := o.elapsedLocked()
	if elapsed < pipelineDuration {
		o.sess.Steps = statusAt(elapsed)
		o.mu.Unlock()
		return
	}

	ex := o.catalog.Get(o.sess.MatchedExampleID)
	o.sess.Artifact = ex.Artifact()
	o.sess.Steps = completeSteps(o.sess.Steps)
	o.logEvent(session.EventArtifactReady, session.ArtifactReadyData(o.sess.ID, ex.ID))
	ev := o.transitionLocked(models.PhaseResearchCodeReady)
	o.cancelAsyncLocked()
	o.mu.Unlock()
	o.emit(ev)
}

// advanceObserved recomputes step statuses while a remote job is queued or
// running. Elapsed time is clamped below the final threshold so the last
// step stays active until the job itself reports completion.
func (o *Orchestrator) advanceObserved(epoch int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if epoch != o.epoch || o.sess.Phase != models.PhaseResearchProcessing {
		return
	}
	elapsed := math.Min(o.elapsedLocked(), pipelineDuration-1)
	o.sess.Steps = statusAt(elapsed)
}

// finishJob installs the completed job's artifact and moves to code-ready.
// A results-fetch failure keeps the completed step indicators and surfaces
// a notice instead; the user recovers via reset or resubmission.
func (o *Orchestrator) finishJob(epoch int, res *jobs.Results, rerr error) {
	o.mu.Lock()
	if epoch != o.epoch || o.sess.Phase != models.PhaseResearchProcessing {
		o.mu.Unlock()
		return
	}

	o.sess.Steps = completeSteps(o.sess.Steps)
	if rerr != nil {
		o.sess.Notice = &Notice{
			Kind:    NoticeResultsUnavailable,
			Message: "trial job completed but results could not be retrieved",
		}
		o.logEvent(session.EventError, map[string]any{
			"session_id": o.sess.ID,
			"job_id":     o.sess.ExternalJobID,
			"error":      rerr.Error(),
		})
		o.cancelAsyncLocked()
		o.mu.Unlock()
		o.logger.Warn("results fetch failed", "job_id", o.sess.ExternalJobID, "error", rerr)
		return
	}

	o.sess.Artifact = res.Artifact
	o.sess.pendingResults = res.Payload
	o.logEvent(session.EventArtifactReady, session.ArtifactReadyData(o.sess.ID, res.Artifact.RunID))
	ev := o.transitionLocked(models.PhaseResearchCodeReady)
	o.cancelAsyncLocked()
	o.mu.Unlock()
	o.emit(ev)
}

// failJob marks the active step failed, surfaces the failure, and returns
// the session to the question prompt with the thesis intact for editing.
func (o *Orchestrator) failJob(epoch int, jobErr string) {
	o.mu.Lock()
	if epoch != o.epoch || o.sess.Phase != models.PhaseResearchProcessing {
		o.mu.Unlock()
		return
	}

	if jobErr == "" {
		jobErr = "pipeline failed"
	}
	o.sess.Steps = failActiveSteps(o.sess.Steps, jobErr)
	o.sess.Notice = &Notice{
		Kind:    NoticeJobFailed,
		Message: "trial pipeline failed: " + jobErr,
	}
	o.logEvent(session.EventError, map[string]any{
		"session_id": o.sess.ID,
		"job_id":     o.sess.ExternalJobID,
		"error":      jobErr,
	})
	ev := o.transitionLocked(models.PhaseResearchPrompt)
	o.cancelAsyncLocked()
	o.mu.Unlock()
	o.emit(ev)
}

// recordPollError counts a transient polling failure. Polling is not
// abandoned; the next tick retries.
func (o *Orchestrator) recordPollError(epoch int, jobID string, err error) {
	o.mu.Lock()
	if epoch != o.epoch {
		o.mu.Unlock()
		return
	}
	o.pollFailures++
	attempt := o.pollFailures
	o.logEvent(session.EventPollError, session.PollErrorData(o.sess.ID, jobID, attempt, err.Error()))
	o.mu.Unlock()
	o.logger.Warn("job poll failed", "job_id", jobID, "attempt", attempt, "error", err)
}

func (o *Orchestrator) epochValid(epoch int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return epoch == o.epoch
}

// elapsedLocked returns scaled pipeline seconds since submission.
func (o *Orchestrator) elapsedLocked() float64 {
	return o.clock().Sub(o.sess.StartedAt).Seconds() * o.timeScale
}
