package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbench/trialbench/internal/models"
)

func statusRank(s models.StepStatus) int {
	switch s {
	case models.StepPending:
		return 0
	case models.StepActive:
		return 1
	case models.StepComplete:
		return 2
	}
	return -1
}

func TestStatusAt_Monotone(t *testing.T) {
	prev := statusAt(0)
	for elapsed := 0.5; elapsed <= 60; elapsed += 0.5 {
		cur := statusAt(elapsed)
		require.Len(t, cur, len(prev))
		for i := range cur {
			assert.GreaterOrEqual(t, statusRank(cur[i].Status), statusRank(prev[i].Status),
				"step %s regressed at t=%.1f", cur[i].ID, elapsed)
		}
		prev = cur
	}
}

func TestStatusAt_Windows(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		want    []models.StepStatus
	}{
		{"start", 0, []models.StepStatus{models.StepActive, models.StepPending, models.StepPending, models.StepPending, models.StepPending}},
		{"design", 10, []models.StepStatus{models.StepComplete, models.StepActive, models.StepPending, models.StepPending, models.StepPending}},
		{"validator", 25, []models.StepStatus{models.StepComplete, models.StepComplete, models.StepActive, models.StepPending, models.StepPending}},
		{"omop", 35, []models.StepStatus{models.StepComplete, models.StepComplete, models.StepComplete, models.StepActive, models.StepPending}},
		{"code", 40, []models.StepStatus{models.StepComplete, models.StepComplete, models.StepComplete, models.StepComplete, models.StepActive}},
		{"done", 48, []models.StepStatus{models.StepComplete, models.StepComplete, models.StepComplete, models.StepComplete, models.StepComplete}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := statusAt(tt.elapsed)
			require.Len(t, steps, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, steps[i].Status, "step %s", steps[i].ID)
			}
		})
	}
}

func TestStatusAt_ActiveStepCarriesMessage(t *testing.T) {
	steps := statusAt(10)
	assert.NotEmpty(t, steps[1].Message)
	assert.Empty(t, steps[0].Message)
}

func TestCompleteSteps(t *testing.T) {
	steps := completeSteps(statusAt(10))
	for _, s := range steps {
		assert.Equal(t, models.StepComplete, s.Status)
		assert.Empty(t, s.Message)
	}
}

func TestFailActiveSteps(t *testing.T) {
	steps := failActiveSteps(statusAt(25), "timeout")
	assert.Equal(t, models.StepComplete, steps[0].Status)
	assert.Equal(t, models.StepComplete, steps[1].Status)
	assert.Equal(t, models.StepFailed, steps[2].Status)
	assert.Equal(t, "timeout", steps[2].Message)
	assert.Equal(t, models.StepPending, steps[3].Status)
}
