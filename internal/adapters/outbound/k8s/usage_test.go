package k8s_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/skillcoder/podstream/internal/adapters/outbound/k8s"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

func podMetrics(namespace, name, cpu, memory string) metricsv1beta1.PodMetrics {
	return metricsv1beta1.PodMetrics{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Containers: []metricsv1beta1.ContainerMetrics{
			{
				Name: "app",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse(cpu),
					corev1.ResourceMemory: resource.MustParse(memory),
				},
			},
			{
				Name: "sidecar",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("5m"),
					corev1.ResourceMemory: resource.MustParse("1Mi"),
				},
			},
		},
	}
}

func TestAdapter_ListPodsQueryUsage(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	clientset := fake.NewSimpleClientset(
		newPod("default", "web", corev1.PodRunning),
		newPod("default", "worker", corev1.PodRunning),
	)

	// the metrics tracker cannot map PodMetrics to the "pods" resource
	metricsClient := &metricsfake.Clientset{}
	failing := false
	metricsClient.AddReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		if failing {
			return true, nil, errors.New("metrics api unavailable")
		}

		return true, &metricsv1beta1.PodMetricsList{
			Items: []metricsv1beta1.PodMetrics{podMetrics("default", "web", "250m", "64Mi")},
		}, nil
	})

	repo := k8s.New(logger, clientset, metricsClient, "default", "")

	list, err := repo.ListPodsQuery(t.Context())
	require.NoError(t, err)

	pods := byID(list.Pods)
	require.Equal(t, &podsync.ResourceUsage{CPUMilli: 255, MemoryBytes: 65 << 20}, pods["default/web"].Usage)
	require.Nil(t, pods["default/worker"].Usage)

	// a failed refresh keeps the last known usage
	failing = true

	list, err = repo.ListPodsQuery(t.Context())
	require.NoError(t, err)
	require.NotNil(t, byID(list.Pods)["default/web"].Usage)
}
