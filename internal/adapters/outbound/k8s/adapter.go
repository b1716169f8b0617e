package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

const streamBufferSize = 64

type adapter struct {
	logger           *slog.Logger
	clientset        kubernetes.Interface
	metricsClientset metricsv.Interface
	namespace        string
	labelSelector    string
	usageMu          sync.RWMutex
	usage            map[string]podsync.ResourceUsage
}

// New creates a new K8s adapter. metricsClientset may be nil, in which
// case pods carry no resource usage. An empty namespace watches all.
func New(
	logger *slog.Logger,
	clientset kubernetes.Interface,
	metricsClientset metricsv.Interface,
	namespace string,
	labelSelector string,
) podsync.Repository {
	return &adapter{
		logger:           logger.With("component", "k8s-adapter"),
		clientset:        clientset,
		metricsClientset: metricsClientset,
		namespace:        namespace,
		labelSelector:    labelSelector,
		usage:            make(map[string]podsync.ResourceUsage),
	}
}

var _ podsync.Repository = (*adapter)(nil)

func (a *adapter) ListPodsQuery(ctx context.Context) (*podsync.PodList, error) {
	podList, err := a.clientset.CoreV1().Pods(a.namespace).List(
		ctx,
		metav1.ListOptions{
			LabelSelector: a.labelSelector,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", classifyAPIError(err))
	}

	a.refreshUsage(ctx)

	pods := make([]podsync.Pod, 0, len(podList.Items))
	for i := range podList.Items {
		pods = append(pods, a.convert(&podList.Items[i]))
	}

	return &podsync.PodList{
		Pods:            pods,
		ResourceVersion: podList.ResourceVersion,
	}, nil
}

func (a *adapter) WatchPodsQuery(
	ctx context.Context,
	resourceVersion string,
) (podsync.Stream, error) {
	watcher, err := a.clientset.CoreV1().Pods(a.namespace).Watch(
		ctx,
		metav1.ListOptions{
			LabelSelector:   a.labelSelector,
			ResourceVersion: resourceVersion,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("watch pods: %w", classifyAPIError(err))
	}

	s := newStream(a.logger, watcher, a.convert, streamBufferSize)

	go s.run(ctx)

	return s, nil
}

func (a *adapter) convert(pod *corev1.Pod) podsync.Pod {
	a.usageMu.RLock()
	usage, ok := a.usage[podsync.PodID(pod.Namespace, pod.Name)]
	a.usageMu.RUnlock()

	if !ok {
		return toDomainPod(pod, nil)
	}

	return toDomainPod(pod, &usage)
}

// refreshUsage reloads pod metrics. Failures keep the previous values:
// usage is optional and metrics-server may not be installed.
func (a *adapter) refreshUsage(ctx context.Context) {
	if a.metricsClientset == nil {
		return
	}

	metricsList, err := a.metricsClientset.MetricsV1beta1().PodMetricses(a.namespace).List(
		ctx,
		metav1.ListOptions{
			LabelSelector: a.labelSelector,
		},
	)
	if err != nil {
		a.logger.DebugContext(ctx, "pod metrics unavailable, keeping previous usage", "reason", err)

		return
	}

	usage := make(map[string]podsync.ResourceUsage, len(metricsList.Items))
	for i := range metricsList.Items {
		item := &metricsList.Items[i]
		usage[podsync.PodID(item.Namespace, item.Name)] = toDomainUsage(item)
	}

	a.usageMu.Lock()
	a.usage = usage
	a.usageMu.Unlock()

	a.logger.DebugContext(ctx, "pod metrics refreshed", "count", len(usage))
}
