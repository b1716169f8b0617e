package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/skillcoder/podstream/internal/infra/pinger"
)

type statusResponse struct {
	State       string                        `json:"state"`
	Uptime      string                        `json:"uptime"`
	StartTime   time.Time                     `json:"startTime"`
	UptimeSec   float64                       `json:"uptimeSeconds"`
	SyncState   string                        `json:"syncState"`
	Pods        int                           `json:"pods"`
	Subscribers int                           `json:"subscribers"`
	Pingers     map[string]*pinger.Statistics `json:"pingers"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if !s.appState.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.appState.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	uptime := s.appState.GetUptime()

	s.writeJSON(w, r, http.StatusOK, statusResponse{
		State:       string(s.appState.GetState()),
		Uptime:      uptime.String(),
		StartTime:   s.appState.GetStartTime(),
		UptimeSec:   uptime.Seconds(),
		SyncState:   string(s.pods.State()),
		Pods:        len(s.pods.Pods()),
		Subscribers: s.pods.Subscribers(),
		Pingers:     s.appState.GetAllStats(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response",
			"path", r.URL.Path,
			"reason", err,
		)
	}
}
