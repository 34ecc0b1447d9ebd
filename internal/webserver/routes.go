package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/mentorinc/rolecoach/internal/webapi"
)

// registerRoutes sets up the API routes and a JSON 404 for everything else.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, cfg.Handlers)
	mux.HandleFunc("/", handleNotFound)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.ErrorResponse{ //nolint:errcheck
		Error: "no route for " + r.Method + " " + r.URL.Path,
		Code:  http.StatusNotFound,
	})
}
