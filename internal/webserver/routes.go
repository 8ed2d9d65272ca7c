package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/trialbench/trialbench/internal/webapi"
)

// registerRoutes sets up the API routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, cfg.Orchestrator)
	mux.HandleFunc("/api/", handleAPINotFound)
}

// webapiHandler applies CORS when origins are configured.
func webapiHandler(mux *http.ServeMux, allowedOrigins ...string) http.Handler {
	if len(allowedOrigins) == 0 {
		return mux
	}
	return webapi.CORSMiddleware(mux, allowedOrigins...)
}

// handleAPINotFound catches unknown API paths with a JSON body instead of the
// default plain-text 404.
func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "unknown endpoint"}) //nolint:errcheck
}
