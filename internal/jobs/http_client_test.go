package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbench/trialbench/internal/models"
)

func TestHTTPClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/trials", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "does iodixanol reduce AKI risk", body["question"])

		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"run_id": "run_20260826_120000",
			"status": "queued",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	id, err := c.Submit(context.Background(), "does iodixanol reduce AKI risk")
	require.NoError(t, err)
	assert.Equal(t, "run_20260826_120000", id)
}

func TestHTTPClient_Submit_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Submit(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_Submit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Submit(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_GetStatus(t *testing.T) {
	tests := []struct {
		name      string
		response  map[string]string
		wantState models.JobState
		wantError string
	}{
		{
			name:      "running",
			response:  map[string]string{"status": "running"},
			wantState: models.JobRunning,
		},
		{
			name:      "completed",
			response:  map[string]string{"status": "completed"},
			wantState: models.JobCompleted,
		},
		{
			name:      "failed with context",
			response:  map[string]string{"status": "failed", "error": "timeout"},
			wantState: models.JobFailed,
			wantError: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/trials/run-1/status", r.URL.Path)
				json.NewEncoder(w).Encode(tt.response) //nolint:errcheck
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL)
			st, err := c.GetStatus(context.Background(), "run-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, st.State)
			assert.Equal(t, tt.wantError, st.Error)
		})
	}
}

func TestHTTPClient_GetStatus_UnknownState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "exploded"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.GetStatus(context.Background(), "run-1")
	assert.ErrorContains(t, err, "unknown status")
}

func TestHTTPClient_GetStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestHTTPClient_GetResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/trials/run-1/results", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"run_id":          "run-1",
			"causal_question": "Does X reduce Y?",
			"design_spec":     "# Protocol",
			"code":            "import pandas as pd",
			"omop_mappings":   "| concept | id |",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	res, err := c.GetResults(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.Artifact.RunID)
	assert.Equal(t, "Does X reduce Y?", res.Artifact.CausalQuestion)
	assert.Equal(t, "import pandas as pd", res.Artifact.Code)
	assert.False(t, res.Artifact.Empty())
}
