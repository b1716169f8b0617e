package k8s

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

func Test_toDomainPhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give corev1.PodPhase
		want podsync.Phase
	}{
		{give: corev1.PodPending, want: podsync.PhasePending},
		{give: corev1.PodRunning, want: podsync.PhaseRunning},
		{give: corev1.PodSucceeded, want: podsync.PhaseSucceeded},
		{give: corev1.PodFailed, want: podsync.PhaseFailed},
		{give: corev1.PodUnknown, want: podsync.PhaseUnknown},
		{give: "", want: podsync.PhaseUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.want)+"/"+string(tt.give), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, toDomainPhase(tt.give))
		})
	}
}

func Test_toDomainPod(t *testing.T) {
	t.Parallel()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default", UID: "uid-1"},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "app", RestartCount: 2},
				{Name: "sidecar", RestartCount: 3},
			},
		},
	}

	t.Run("without usage", func(t *testing.T) {
		t.Parallel()

		got := toDomainPod(pod, nil)
		require.Equal(t, "default/web", got.ID())
		require.Equal(t, int32(5), got.RestartCount)
		require.Nil(t, got.Usage)
	})

	t.Run("usage is copied", func(t *testing.T) {
		t.Parallel()

		usage := &podsync.ResourceUsage{CPUMilli: 250, MemoryBytes: 1024}
		got := toDomainPod(pod, usage)

		usage.CPUMilli = 0

		require.NotNil(t, got.Usage)
		require.Equal(t, int64(250), got.Usage.CPUMilli)
	})
}

func Test_toDomainUsage(t *testing.T) {
	t.Parallel()

	podMetrics := &metricsv1beta1.PodMetrics{
		Containers: []metricsv1beta1.ContainerMetrics{
			{
				Name: "app",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("250m"),
					corev1.ResourceMemory: resource.MustParse("64Mi"),
				},
			},
			{
				Name: "sidecar",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU: resource.MustParse("50m"),
				},
			},
		},
	}

	got := toDomainUsage(podMetrics)
	require.Equal(t, int64(300), got.CPUMilli)
	require.Equal(t, int64(64*1024*1024), got.MemoryBytes)
}

func Test_classifyAPIError(t *testing.T) {
	t.Parallel()

	require.NoError(t, classifyAPIError(nil))

	var authErr *AuthError
	require.ErrorAs(t, classifyAPIError(apierrors.NewUnauthorized("x")), &authErr)

	var closedErr *StreamClosedError
	require.ErrorAs(t, classifyAPIError(apierrors.NewResourceExpired("too old")), &closedErr)

	var connErr *ConnectionError
	require.ErrorAs(t, classifyAPIError(apierrors.NewInternalError(errors.New("boom"))), &connErr)
}

func TestAdapterErrors_MatchDomainSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give error
		want error
	}{
		{name: "auth", give: classifyAPIError(apierrors.NewUnauthorized("token expired")), want: podsync.ErrAuth},
		{name: "gone", give: classifyAPIError(apierrors.NewGone("gone")), want: podsync.ErrStreamClosed},
		{name: "connection", give: classifyAPIError(errors.New("dial tcp: refused")), want: podsync.ErrConnection},
		{name: "parse", give: &ParseError{reason: "unexpected object"}, want: podsync.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, tt.give, tt.want)
			require.NotErrorIs(t, tt.give, podsync.ErrSubscriberOverflow)
		})
	}
}
