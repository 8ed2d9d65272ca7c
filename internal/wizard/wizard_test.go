package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIntakeWizard_Research(t *testing.T) {
	in := strings.NewReader("research\nDoes metformin reduce MACE in type 2 diabetes?\n")
	out := &bytes.Buffer{}

	intake, err := RunIntakeWizard(in, out)
	require.NoError(t, err)

	assert.Equal(t, FlowResearch, intake.Flow)
	assert.Equal(t, "Does metformin reduce MACE in type 2 diabetes?", intake.Question)
	assert.Empty(t, intake.Query)
	assert.Contains(t, out.String(), "Research question:")
}

func TestRunIntakeWizard_Patient(t *testing.T) {
	in := strings.NewReader("patient\nMargaret Chen\n")
	out := &bytes.Buffer{}

	intake, err := RunIntakeWizard(in, out)
	require.NoError(t, err)

	assert.Equal(t, FlowPatient, intake.Flow)
	assert.Equal(t, "Margaret Chen", intake.Query)
	assert.Empty(t, intake.Question)
}

func TestRunIntakeWizard_InvalidFlow(t *testing.T) {
	in := strings.NewReader("banana\n")
	out := &bytes.Buffer{}

	_, err := RunIntakeWizard(in, out)
	assert.EqualError(t, err, `invalid flow "banana"`)
}

func TestRunIntakeWizard_EmptyQuestion(t *testing.T) {
	in := strings.NewReader("research\n   \n")
	out := &bytes.Buffer{}

	_, err := RunIntakeWizard(in, out)
	assert.EqualError(t, err, "research question is required")
}

func TestRunIntakeWizard_EmptyQuery(t *testing.T) {
	in := strings.NewReader("patient\n\n")
	out := &bytes.Buffer{}

	_, err := RunIntakeWizard(in, out)
	assert.EqualError(t, err, "patient query is required")
}

func TestRunIntakeWizard_UnexpectedEOF(t *testing.T) {
	in := strings.NewReader("research\n")
	out := &bytes.Buffer{}

	_, err := RunIntakeWizard(in, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of input")
}

func TestGenerateIntakeSummary_Research(t *testing.T) {
	summary, err := GenerateIntakeSummary(&Intake{
		Flow:     FlowResearch,
		Question: "Does drug X work?",
	})
	require.NoError(t, err)

	assert.Contains(t, summary, "flow: research")
	assert.Contains(t, summary, "question: Does drug X work?")
	assert.NotContains(t, summary, "query:")
}

func TestGenerateIntakeSummary_Patient(t *testing.T) {
	summary, err := GenerateIntakeSummary(&Intake{
		Flow:  FlowPatient,
		Query: "Chen",
	})
	require.NoError(t, err)

	assert.Contains(t, summary, "flow: patient")
	assert.Contains(t, summary, "query: Chen")
}
