package tickets_api

import (
	"encoding/json"
	"net/http"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

// Lookup routes served by the gateway mux. /api/ticket keeps the path older clients use.
var LookupPaths = []string{"/ticket", "/api/ticket"}

type lookupResponse struct {
	OK     bool           `json:"ok"`
	Ticket *models.Ticket `json:"ticket,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// NewGatewayMux returns the HTTP side of the API.
func (a *TicketsAPI) NewGatewayMux() (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()
	for _, p := range LookupPaths {
		if err := mux.HandlePath(http.MethodGet, p, a.handleLookup); err != nil {
			return nil, err
		}
	}
	return mux, nil
}

func (a *TicketsAPI) handleLookup(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	t, err := a.lookup(r.Context(), "http", r.URL.Query().Get("code"))
	if err != nil {
		writeJSON(w, httpStatus(err), lookupResponse{OK: false, Error: lookup.MessageFor(err)})
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{OK: true, Ticket: t})
}

func httpStatus(err error) int {
	switch outcomeOf(err) {
	case "invalid_input":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
