package workflow

import "github.com/trialbench/trialbench/internal/models"

// stepWindow is the interval, in pipeline seconds, during which one agent
// step is active. Steps before the window are complete, steps after it are
// pending.
type stepWindow struct {
	id      string
	startAt float64
	endAt   float64
	working string
}

// pipelineTimeline mirrors the pacing of the real agent pipeline. Windows
// are contiguous and ordered, which is what makes statusAt monotone.
var pipelineTimeline = []stepWindow{
	{models.StepQuestion, 0, 8, "Framing the causal question"},
	{models.StepDesign, 8, 20, "Drafting the target trial protocol"},
	{models.StepValidator, 20, 30, "Checking design feasibility"},
	{models.StepOMOP, 30, 38, "Mapping concepts to OMOP vocabularies"},
	{models.StepCode, 38, 48, "Emitting the analysis pipeline"},
}

// pipelineDuration is the elapsed time, in seconds, after which every step
// reports complete.
const pipelineDuration = 48.0

// statusAt returns the step statuses for a pipeline that has been running
// for elapsed seconds. It is a pure function of elapsed time; for any
// t2 >= t1 the result at t2 never moves a step backward relative to t1.
func statusAt(elapsed float64) []models.AgentStep {
	steps := models.PipelineSteps()
	for i, w := range pipelineTimeline {
		switch {
		case elapsed >= w.endAt:
			steps[i].Status = models.StepComplete
		case elapsed >= w.startAt:
			steps[i].Status = models.StepActive
			steps[i].Message = w.working
		}
	}
	return steps
}

// completeSteps returns a copy of steps with every step marked complete and
// working messages cleared.
func completeSteps(steps []models.AgentStep) []models.AgentStep {
	out := models.CloneSteps(steps)
	for i := range out {
		out[i].Status = models.StepComplete
		out[i].Message = ""
	}
	return out
}

// failActiveSteps returns a copy of steps with the active step marked failed
// and the failure message attached. Completed steps are left untouched.
func failActiveSteps(steps []models.AgentStep, msg string) []models.AgentStep {
	out := models.CloneSteps(steps)
	for i := range out {
		if out[i].Status == models.StepActive {
			out[i].Status = models.StepFailed
			out[i].Message = msg
		}
	}
	return out
}
