package k8s_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/skillcoder/podstream/internal/adapters/outbound/k8s"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

func newPod(namespace, name string, phase corev1.PodPhase, restarts ...int32) *corev1.Pod {
	statuses := make([]corev1.ContainerStatus, 0, len(restarts))
	for i, r := range restarts {
		statuses = append(statuses, corev1.ContainerStatus{
			Name:         "c" + string(rune('0'+i)),
			RestartCount: r,
		})
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         namespace,
			UID:               types.UID(namespace + "-" + name),
			CreationTimestamp: metav1.NewTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		Status: corev1.PodStatus{
			Phase:             phase,
			ContainerStatuses: statuses,
		},
	}
}

func byID(pods []podsync.Pod) map[string]podsync.Pod {
	out := make(map[string]podsync.Pod, len(pods))
	for _, p := range pods {
		out[p.ID()] = p
	}

	return out
}

func nextEvent(t *testing.T, s podsync.Stream) (podsync.Event, bool) {
	t.Helper()

	select {
	case ev, ok := <-s.Events():
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream event")
	}

	return podsync.Event{}, false
}

func TestAdapter_ListPodsQuery(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("lists pods of all namespaces", func(t *testing.T) {
		t.Parallel()

		clientset := fake.NewSimpleClientset(
			newPod("default", "web", corev1.PodRunning, 1, 2),
			newPod("kube-system", "dns", corev1.PodPending),
		)
		repo := k8s.New(logger, clientset, nil, "", "")

		list, err := repo.ListPodsQuery(t.Context())
		require.NoError(t, err)
		require.Len(t, list.Pods, 2)

		pods := byID(list.Pods)

		web := pods["default/web"]
		require.Equal(t, podsync.PhaseRunning, web.Phase)
		require.Equal(t, int32(3), web.RestartCount)
		require.Equal(t, "default-web", web.UID)
		require.Nil(t, web.Usage)

		require.Equal(t, podsync.PhasePending, pods["kube-system/dns"].Phase)
	})

	t.Run("namespace restricts listing", func(t *testing.T) {
		t.Parallel()

		clientset := fake.NewSimpleClientset(
			newPod("default", "web", corev1.PodRunning),
			newPod("kube-system", "dns", corev1.PodRunning),
		)
		repo := k8s.New(logger, clientset, nil, "default", "")

		list, err := repo.ListPodsQuery(t.Context())
		require.NoError(t, err)
		require.Len(t, list.Pods, 1)
		require.Equal(t, "default/web", list.Pods[0].ID())
	})

	t.Run("unauthorized is an auth error", func(t *testing.T) {
		t.Parallel()

		clientset := fake.NewSimpleClientset()
		clientset.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewUnauthorized("token expired")
		})
		repo := k8s.New(logger, clientset, nil, "", "")

		_, err := repo.ListPodsQuery(t.Context())

		var authErr *k8s.AuthError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("server failure is a connection error", func(t *testing.T) {
		t.Parallel()

		clientset := fake.NewSimpleClientset()
		clientset.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewServiceUnavailable("restarting")
		})
		repo := k8s.New(logger, clientset, nil, "", "")

		_, err := repo.ListPodsQuery(t.Context())

		var connErr *k8s.ConnectionError
		require.ErrorAs(t, err, &connErr)
	})
}

func TestAdapter_WatchPodsQuery(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	newWatch := func(t *testing.T) (*watch.FakeWatcher, podsync.Stream) {
		t.Helper()

		clientset := fake.NewSimpleClientset()
		fakeWatcher := watch.NewFake()
		clientset.PrependWatchReactor("pods", k8stesting.DefaultWatchReactor(fakeWatcher, nil))

		repo := k8s.New(logger, clientset, nil, "", "")

		s, err := repo.WatchPodsQuery(t.Context(), "42")
		require.NoError(t, err)

		return fakeWatcher, s
	}

	t.Run("translates events and skips malformed ones", func(t *testing.T) {
		t.Parallel()

		fakeWatcher, s := newWatch(t)
		defer s.Stop()

		go func() {
			fakeWatcher.Add(newPod("default", "web", corev1.PodPending))
			fakeWatcher.Modify(&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "not-a-pod"}})
			fakeWatcher.Modify(newPod("default", "web", corev1.PodRunning, 1))
			fakeWatcher.Delete(newPod("default", "web", corev1.PodRunning, 1))
		}()

		wantTypes := []podsync.EventType{podsync.EventAdded, podsync.EventModified, podsync.EventDeleted}
		for _, want := range wantTypes {
			ev, ok := nextEvent(t, s)
			require.True(t, ok)
			require.Equal(t, want, ev.Type)
			require.Equal(t, "default/web", ev.Pod.ID())
		}
	})

	t.Run("server close ends stream", func(t *testing.T) {
		t.Parallel()

		fakeWatcher, s := newWatch(t)
		defer s.Stop()

		fakeWatcher.Stop()

		_, ok := nextEvent(t, s)
		require.False(t, ok)

		var closedErr *k8s.StreamClosedError
		require.ErrorAs(t, s.Err(), &closedErr)
	})

	t.Run("expired resource version ends stream", func(t *testing.T) {
		t.Parallel()

		fakeWatcher, s := newWatch(t)
		defer s.Stop()

		go fakeWatcher.Error(&metav1.Status{
			Status:  metav1.StatusFailure,
			Code:    410,
			Reason:  metav1.StatusReasonGone,
			Message: "too old resource version",
		})

		_, ok := nextEvent(t, s)
		require.False(t, ok)

		var closedErr *k8s.StreamClosedError
		require.ErrorAs(t, s.Err(), &closedErr)
	})

	t.Run("forbidden status ends stream with auth error", func(t *testing.T) {
		t.Parallel()

		fakeWatcher, s := newWatch(t)
		defer s.Stop()

		go fakeWatcher.Error(&apierrors.NewForbidden(
			schema.GroupResource{Resource: "pods"}, "", errors.New("no access"),
		).ErrStatus)

		_, ok := nextEvent(t, s)
		require.False(t, ok)

		var authErr *k8s.AuthError
		require.ErrorAs(t, s.Err(), &authErr)
	})

	t.Run("stop closes stream", func(t *testing.T) {
		t.Parallel()

		_, s := newWatch(t)

		s.Stop()
		s.Stop()

		_, ok := nextEvent(t, s)
		require.False(t, ok)
		require.Error(t, s.Err())
	})

	t.Run("watch refused is an auth error", func(t *testing.T) {
		t.Parallel()

		clientset := fake.NewSimpleClientset()
		clientset.PrependWatchReactor("pods", func(k8stesting.Action) (bool, watch.Interface, error) {
			return true, nil, apierrors.NewUnauthorized("bad token")
		})
		repo := k8s.New(logger, clientset, nil, "", "")

		_, err := repo.WatchPodsQuery(t.Context(), "")

		var authErr *k8s.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}
