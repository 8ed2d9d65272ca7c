// Package webapi exposes the workflow orchestrator and its data sources over
// a JSON REST surface.
package webapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/trialbench/trialbench/internal/workflow"
)

// Version is set at build time or defaults to dev.
var Version = "0.2.0"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	orch *workflow.Orchestrator
}

// NewHandlers creates Handlers over the given orchestrator.
func NewHandlers(orch *workflow.Orchestrator) *Handlers {
	return &Handlers{orch: orch}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSession returns the current session snapshot.
func (h *Handlers) HandleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.orch.Snapshot())
}

// HandleReset abandons the session and returns the fresh snapshot.
func (h *Handlers) HandleReset(w http.ResponseWriter, _ *http.Request) {
	h.orch.Reset()
	writeJSON(w, http.StatusOK, h.orch.Snapshot())
}

// HandleStartResearch enters the research branch.
func (h *Handlers) HandleStartResearch(w http.ResponseWriter, _ *http.Request) {
	h.command(w, h.orch.StartResearch())
}

// HandleSubmitQuestion submits the research question and starts the pipeline.
func (h *Handlers) HandleSubmitQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.command(w, h.orch.SubmitQuestion(r.Context(), req.Question))
}

// HandleAcknowledge moves from the code view to the data prompt.
func (h *Handlers) HandleAcknowledge(w http.ResponseWriter, _ *http.Request) {
	h.command(w, h.orch.AcknowledgeArtifact())
}

// HandleSupplyData accepts uploaded trial results.
func (h *Handlers) HandleSupplyData(w http.ResponseWriter, r *http.Request) {
	var req DataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.command(w, h.orch.SupplyData(req.TrialName, req.Data))
}

// HandleSupplyExampleData substitutes catalog data for the matched example.
func (h *Handlers) HandleSupplyExampleData(w http.ResponseWriter, _ *http.Request) {
	h.command(w, h.orch.SupplyExampleData())
}

// HandleStartPatient enters the patient branch.
func (h *Handlers) HandleStartPatient(w http.ResponseWriter, _ *http.Request) {
	h.command(w, h.orch.StartPatientFlow())
}

// HandleSearchPatient starts a cohort lookup.
func (h *Handlers) HandleSearchPatient(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.command(w, h.orch.SearchPatient(req.Query))
}

// HandleProceedToDrugs moves from the EHR view to drug selection.
func (h *Handlers) HandleProceedToDrugs(w http.ResponseWriter, _ *http.Request) {
	h.command(w, h.orch.ProceedToDrugSelection())
}

// HandleRunAnalysis synthesizes trial data for the selected drug.
func (h *Handlers) HandleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "entity_id is required")
		return
	}
	h.command(w, h.orch.RunAnalysis(req.EntityID, req.DisplayName, req.RecordCount))
}

// HandleExamples lists the catalog examples.
func (h *Handlers) HandleExamples(w http.ResponseWriter, _ *http.Request) {
	examples := h.orch.Catalog().List()
	out := make([]ExampleSummary, 0, len(examples))
	for _, ex := range examples {
		out = append(out, ExampleSummary{
			ID:          ex.ID,
			Name:        ex.Name,
			Description: ex.Description,
			Keywords:    ex.Keywords,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleExampleDetail returns one full catalog example.
func (h *Handlers) HandleExampleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ex := h.orch.Catalog().Get(id)
	if ex == nil {
		writeError(w, http.StatusNotFound, "example not found")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// HandleArtifact returns the session artifact with its protocol rendered to
// HTML.
func (h *Handlers) HandleArtifact(w http.ResponseWriter, _ *http.Request) {
	snap := h.orch.Snapshot()
	if snap.Artifact.Empty() {
		writeError(w, http.StatusNotFound, "no artifact available")
		return
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(snap.Artifact.DesignSpec), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "rendering design spec: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ArtifactHTML{
		TrialName:  snap.Artifact.TrialName,
		DesignHTML: buf.String(),
		Code:       snap.Artifact.Code,
	})
}

// HandleTrialData returns the deterministic synthetic record for an entity.
// The name and count query parameters feed first-time generation.
func (h *Handlers) HandleTrialData(w http.ResponseWriter, r *http.Request) {
	entityID := r.PathValue("entityID")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "entity id is required")
		return
	}
	name := r.URL.Query().Get("name")
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	writeJSON(w, http.StatusOK, h.orch.Store().Get(entityID, name, count))
}

// HandleClearTrialData empties the synthetic record cache.
func (h *Handlers) HandleClearTrialData(w http.ResponseWriter, _ *http.Request) {
	n := h.orch.Store().Len()
	h.orch.Store().Clear()
	writeJSON(w, http.StatusOK, ClearResponse{Cleared: n})
}

// command writes the post-command snapshot, mapping workflow errors to
// status codes.
func (h *Handlers) command(w http.ResponseWriter, err error) {
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, workflow.ErrEmptyQuestion),
			errors.Is(err, workflow.ErrEmptyQuery),
			errors.Is(err, workflow.ErrEmptyEntity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, h.orch.Snapshot())
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, orch *workflow.Orchestrator) {
	h := NewHandlers(orch)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/session", h.HandleSession)
	mux.HandleFunc("POST /api/session/reset", h.HandleReset)

	mux.HandleFunc("POST /api/research", h.HandleStartResearch)
	mux.HandleFunc("POST /api/research/question", h.HandleSubmitQuestion)
	mux.HandleFunc("POST /api/research/acknowledge", h.HandleAcknowledge)
	mux.HandleFunc("POST /api/research/data", h.HandleSupplyData)
	mux.HandleFunc("POST /api/research/example-data", h.HandleSupplyExampleData)

	mux.HandleFunc("POST /api/patient", h.HandleStartPatient)
	mux.HandleFunc("POST /api/patient/search", h.HandleSearchPatient)
	mux.HandleFunc("POST /api/patient/drugs", h.HandleProceedToDrugs)
	mux.HandleFunc("POST /api/patient/analysis", h.HandleRunAnalysis)

	mux.HandleFunc("GET /api/examples", h.HandleExamples)
	mux.HandleFunc("GET /api/examples/{id}", h.HandleExampleDetail)
	mux.HandleFunc("GET /api/artifact", h.HandleArtifact)
	mux.HandleFunc("GET /api/trialdata/{entityID}", h.HandleTrialData)
	mux.HandleFunc("DELETE /api/trialdata", h.HandleClearTrialData)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
