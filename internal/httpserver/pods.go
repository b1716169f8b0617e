package httpserver

import (
	"net/http"
	"time"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

type resourceUsageResponse struct {
	CPUMilli    int64 `json:"cpuMilli"`
	MemoryBytes int64 `json:"memoryBytes"`
}

type podResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Namespace     string                 `json:"namespace"`
	Phase         string                 `json:"phase"`
	AgeSeconds    int64                  `json:"ageSeconds"`
	RestartCount  int32                  `json:"restartCount"`
	ResourceUsage *resourceUsageResponse `json:"resourceUsage,omitempty"`
}

type podsResponse struct {
	Pods []podResponse `json:"pods"`
}

type podUpdateResponse struct {
	Type string      `json:"type"`
	Pod  podResponse `json:"pod"`
}

type terminatedResponse struct {
	Reason string `json:"reason"`
}

type resyncResponse struct {
	Status string `json:"status"`
}

func toPodResponse(pod podsync.Pod, now time.Time) podResponse {
	out := podResponse{
		ID:           pod.ID(),
		Name:         pod.Name,
		Namespace:    pod.Namespace,
		Phase:        string(pod.Phase),
		AgeSeconds:   int64(pod.Age(now) / time.Second),
		RestartCount: pod.RestartCount,
	}

	if pod.Usage != nil {
		out.ResourceUsage = &resourceUsageResponse{
			CPUMilli:    pod.Usage.CPUMilli,
			MemoryBytes: pod.Usage.MemoryBytes,
		}
	}

	return out
}

func toPodsResponse(pods []podsync.Pod, now time.Time) podsResponse {
	out := podsResponse{Pods: make([]podResponse, 0, len(pods))}
	for i := range pods {
		out.Pods = append(out.Pods, toPodResponse(pods[i], now))
	}

	return out
}

func (s *Server) handlePods(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, toPodsResponse(s.pods.Pods(), time.Now()))
}

func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	s.pods.RequestResync()

	s.logger.InfoContext(r.Context(), "resync requested over http")
	s.writeJSON(w, r, http.StatusAccepted, resyncResponse{Status: "accepted"})
}
