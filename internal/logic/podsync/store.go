package podsync

import (
	"slices"
	"strings"
	"sync"
)

// Store is the canonical id -> Pod map. Only the supervisor's consumption
// path writes to it; readers get copies.
type Store struct {
	mu   sync.RWMutex
	pods map[string]Pod
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		pods: make(map[string]Pod),
	}
}

// Apply applies a single event and returns the event as stored.
// The bool is false when the event changed nothing (delete of an unknown id).
func (s *Store) Apply(ev Event) (Event, bool) {
	id := ev.Pod.ID()
	pod := ev.Pod.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventAdded, EventModified:
		if prev, ok := s.pods[id]; ok {
			pod.RestartCount = keepRestartCount(prev, pod)
		}

		s.pods[id] = pod

		return Event{Type: ev.Type, Pod: pod.clone()}, true
	case EventDeleted:
		prev, ok := s.pods[id]
		if !ok {
			return ev, false
		}

		delete(s.pods, id)

		return Event{Type: EventDeleted, Pod: prev}, true
	default:
		return ev, false
	}
}

// ReplaceAll swaps the whole content for pods and returns the events that
// turn the previous content into the new one, ordered by id.
func (s *Store) ReplaceAll(pods []Pod) []Event {
	next := make(map[string]Pod, len(pods))
	for i := range pods {
		next[pods[i].ID()] = pods[i].clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.pods
	diff := make([]Event, 0)

	for id, pod := range next {
		old, ok := prev[id]
		if !ok {
			diff = append(diff, Event{Type: EventAdded, Pod: pod.clone()})

			continue
		}

		pod.RestartCount = keepRestartCount(old, pod)
		next[id] = pod

		if !old.equal(pod) {
			diff = append(diff, Event{Type: EventModified, Pod: pod.clone()})
		}
	}

	for id, old := range prev {
		if _, ok := next[id]; !ok {
			diff = append(diff, Event{Type: EventDeleted, Pod: old})
		}
	}

	s.pods = next

	slices.SortFunc(diff, func(a, b Event) int {
		return strings.Compare(a.Pod.ID(), b.Pod.ID())
	})

	return diff
}

// Snapshot returns a copy of the current pod set sorted by id.
func (s *Store) Snapshot() []Pod {
	s.mu.RLock()
	out := make([]Pod, 0, len(s.pods))

	for _, pod := range s.pods {
		out = append(out, pod.clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Pod) int {
		return strings.Compare(a.ID(), b.ID())
	})

	return out
}

// Get returns a copy of the pod stored under id.
func (s *Store) Get(id string) (Pod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pod, ok := s.pods[id]
	if !ok {
		return Pod{}, false
	}

	return pod.clone(), true
}

// Len returns the number of stored pods.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pods)
}

// keepRestartCount never lets the restart count of the same pod instance go
// backwards. A recreated pod (new UID) starts over.
func keepRestartCount(prev, next Pod) int32 {
	if prev.UID == next.UID && prev.RestartCount > next.RestartCount {
		return prev.RestartCount
	}

	return next.RestartCount
}
