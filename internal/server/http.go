package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/alfredjeanlab/gatewatch/internal/model"
	"github.com/alfredjeanlab/gatewatch/internal/monitor"
)

const maxTransitionLimit = 1000

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *GateServer) NewHTTPHandler(authToken string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/logs", s.handleListLogs).Methods(http.MethodGet)
	r.HandleFunc("/v1/logs", s.handleClearLogs).Methods(http.MethodDelete)
	r.HandleFunc("/v1/transitions", s.handleListTransitions).Methods(http.MethodGet)
	r.HandleFunc("/v1/events/stream", s.handleEventStream).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return AuthMiddleware(authToken, r)
}

// handleHealth handles GET /v1/health.
func (s *GateServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus handles GET /v1/status.
func (s *GateServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

// logsResponse is the body of GET /v1/logs.
type logsResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Cap     int              `json:"cap"`
}

// handleListLogs handles GET /v1/logs.
func (s *GateServer) handleListLogs(w http.ResponseWriter, _ *http.Request) {
	entries := s.monitor.Logs()
	if entries == nil {
		entries = []model.LogEntry{}
	}
	writeJSON(w, http.StatusOK, logsResponse{Entries: entries, Cap: s.monitor.LogCap()})
}

// handleClearLogs handles DELETE /v1/logs.
func (s *GateServer) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.monitor.ClearLogs(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleListTransitions handles GET /v1/transitions.
func (s *GateServer) handleListTransitions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter model.TransitionFilter

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxTransitionLimit)
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = t
	}
	if v := q.Get("to"); v != "" {
		st := model.GateState(v)
		if !st.IsValid() {
			writeError(w, http.StatusBadRequest, "to must be open or closed")
			return
		}
		filter.To = st
	}

	rows, err := s.monitor.Transitions(r.Context(), filter)
	if errors.Is(err, monitor.ErrNoJournal) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("list transitions", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list transitions")
		return
	}
	if rows == nil {
		rows = []*model.Transition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transitions": rows})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
