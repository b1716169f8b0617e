package podsync

import "time"

// Phase is the lifecycle phase reported by the control plane.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseUnknown   Phase = "Unknown"
)

// EventType is the kind of change carried by an Event.
type EventType string

const (
	EventAdded    EventType = "Added"
	EventModified EventType = "Modified"
	EventDeleted  EventType = "Deleted"
)

// ResourceUsage is the pod-wide usage reported by metrics.k8s.io.
type ResourceUsage struct {
	CPUMilli    int64
	MemoryBytes int64
}

// Pod represents a Kubernetes pod in the domain layer.
type Pod struct {
	Name         string
	Namespace    string
	UID          string
	Phase        Phase
	CreatedAt    time.Time
	RestartCount int32
	// Usage is nil unless the cluster supplies metrics.
	Usage *ResourceUsage
}

// PodID builds the composite namespace/name key.
func PodID(namespace, name string) string {
	return namespace + "/" + name
}

// ID returns the composite namespace/name key of the pod.
func (p Pod) ID() string {
	return PodID(p.Namespace, p.Name)
}

// Age returns how long the pod has existed at now.
func (p Pod) Age(now time.Time) time.Duration {
	if p.CreatedAt.IsZero() {
		return 0
	}

	age := now.Sub(p.CreatedAt)
	if age < 0 {
		return 0
	}

	return age
}

func (p Pod) clone() Pod {
	if p.Usage != nil {
		usage := *p.Usage
		p.Usage = &usage
	}

	return p
}

func (p Pod) equal(other Pod) bool {
	if p.Name != other.Name ||
		p.Namespace != other.Namespace ||
		p.UID != other.UID ||
		p.Phase != other.Phase ||
		!p.CreatedAt.Equal(other.CreatedAt) ||
		p.RestartCount != other.RestartCount {
		return false
	}

	if p.Usage == nil || other.Usage == nil {
		return p.Usage == nil && other.Usage == nil
	}

	return *p.Usage == *other.Usage
}

// Event is a single change to the pod set.
type Event struct {
	Type EventType
	Pod  Pod
}

// PodList is the result of a full listing.
type PodList struct {
	Pods []Pod
	// ResourceVersion is the list revision the following watch starts from.
	ResourceVersion string
}
