package k8s

import (
	corev1 "k8s.io/api/core/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

func toDomainPod(pod *corev1.Pod, usage *podsync.ResourceUsage) podsync.Pod {
	var restarts int32
	for i := range pod.Status.ContainerStatuses {
		restarts += pod.Status.ContainerStatuses[i].RestartCount
	}

	out := podsync.Pod{
		Name:         pod.Name,
		Namespace:    pod.Namespace,
		UID:          string(pod.UID),
		Phase:        toDomainPhase(pod.Status.Phase),
		CreatedAt:    pod.CreationTimestamp.Time,
		RestartCount: restarts,
	}

	if usage != nil {
		u := *usage
		out.Usage = &u
	}

	return out
}

func toDomainPhase(phase corev1.PodPhase) podsync.Phase {
	switch phase {
	case corev1.PodPending:
		return podsync.PhasePending
	case corev1.PodRunning:
		return podsync.PhaseRunning
	case corev1.PodSucceeded:
		return podsync.PhaseSucceeded
	case corev1.PodFailed:
		return podsync.PhaseFailed
	default:
		return podsync.PhaseUnknown
	}
}

func toDomainUsage(podMetrics *metricsv1beta1.PodMetrics) podsync.ResourceUsage {
	var usage podsync.ResourceUsage

	for i := range podMetrics.Containers {
		usage.CPUMilli += podMetrics.Containers[i].Usage.Cpu().MilliValue()
		usage.MemoryBytes += podMetrics.Containers[i].Usage.Memory().Value()
	}

	return usage
}
