package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbench/trialbench/internal/models"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	examples := c.List()
	require.Len(t, examples, 4)

	// Filename order fixes catalog order.
	assert.Equal(t, "aki-contrast-trial", examples[0].ID)
	assert.Equal(t, "valor-trial", examples[len(examples)-1].ID)

	for _, ex := range examples {
		assert.NotEmpty(t, ex.Name, "example %s", ex.ID)
		assert.NotEmpty(t, ex.Keywords, "example %s", ex.ID)
		assert.NotEmpty(t, ex.Code, "example %s", ex.ID)
		assert.NotEmpty(t, ex.EntityID, "example %s", ex.ID)
		assert.Greater(t, ex.RecordCount, 0, "example %s", ex.ID)
	}
}

func TestGet(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.NotNil(t, c.Get("nephric-trial"))
	assert.Nil(t, c.Get("no-such-trial"))
}

func TestMatch(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		question string
		wantID   string
	}{
		{
			name:     "heart failure selects the cardiovascular example",
			question: "Does sacubitril reduce mortality in heart failure patients?",
			wantID:   "valor-trial",
		},
		{
			name:     "diabetic nephropathy selects nephric",
			question: "contrast nephropathy risk in diabetic patients with renal impairment",
			wantID:   "nephric-trial",
		},
		{
			name:     "egfr subgroups select predict",
			question: "how are eGFR subgroups in chronic kidney disease affected",
			wantID:   "predict-trial",
		},
		{
			name:     "imaging question selects aki-contrast",
			question: "Does contrast-enhanced CT imaging cause acute kidney injury?",
			wantID:   "aki-contrast-trial",
		},
		{
			name:     "case insensitive",
			question: "HEART FAILURE and CORONARY outcomes",
			wantID:   "valor-trial",
		},
		{
			name:     "no keyword hits falls back to first entry",
			question: "completely unrelated question about beekeeping",
			wantID:   "aki-contrast-trial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantID, c.Match(tt.question).ID)
		})
	}
}

func TestArtifactAndResultsPayload(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	ex := c.Get("valor-trial")
	require.NotNil(t, ex)

	art := ex.Artifact()
	assert.False(t, art.Empty())
	assert.Equal(t, "valor-trial", art.RunID)
	assert.Contains(t, art.Code, "IODIXANOL_CONCEPT_ID")

	payload := ex.ResultsPayload()
	assert.Equal(t, models.SourceExample, payload.Source)
	assert.Equal(t, "valor-trial", payload.ExampleID)
	assert.NotEmpty(t, payload.Data)
}

func TestSummaryDecoding(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	s, err := c.Get("valor-trial").Summary()
	require.NoError(t, err)

	assert.Equal(t, "VALOR", s.TrialName)
	assert.InDelta(t, 0.82, s.HazardRatio, 1e-9)
	assert.InDelta(t, 0.008, s.PValue, 1e-9)
	assert.Equal(t, 4821, s.SampleSize)
}

func TestValidateExampleBytes_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing required fields", "id: x\nname: y\n"},
		{"empty keywords", "id: x\nname: y\nkeywords: []\nentity_id: e\nrecord_count: 10\ncode: c\n"},
		{"bad record count", "id: x\nname: y\nkeywords: [a]\nentity_id: e\nrecord_count: 0\ncode: c\n"},
		{"unknown field", "id: x\nname: y\nkeywords: [a]\nentity_id: e\nrecord_count: 10\ncode: c\nextra: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateExampleBytes([]byte(tt.doc))
			assert.NotEmpty(t, errs)
		})
	}
}
