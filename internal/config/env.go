package config

import "time"

// Env key constants. All configuration env vars use the PODSTREAM_ prefix;
// duration values support explicit units (e.g. 5s, 1m, 2h).

// Deployment mode: production (in-cluster credentials, fail fast on auth)
// or development (kubeconfig credentials, retry forever).
const envKeyDeploymentMode = "PODSTREAM_DEPLOYMENT_MODE"

// Path to kubeconfig file (development only). If unset, KUBECONFIG is used as fallback.
const envKeyKubeConfig = "PODSTREAM_KUBECONFIG"

// Kubernetes API server URL override (development only). If unset, KUBERNETES_MASTER is used as fallback.
const envKeyKubeMaster = "PODSTREAM_KUBE_MASTER"

// Namespace to mirror; empty mirrors all namespaces.
const envKeyNamespace = "PODSTREAM_NAMESPACE"

// Label selector restricting mirrored pods (e.g. app=web).
const envKeyPodLabelSelector = "PODSTREAM_POD_LABEL_SELECTOR"

// Log level: debug, info, warn, error.
const envKeyLogLevel = "PODSTREAM_LOG_LEVEL"

// Log format: json or text.
const envKeyLogFormat = "PODSTREAM_LOG_FORMAT"

// Port for the pods API and health endpoints.
const envKeyHTTPPort = "PODSTREAM_HTTP_PORT"

// Port for Prometheus metrics (GET /metrics).
const envKeyMetricsPort = "PODSTREAM_METRICS_PORT"

// Pinger check interval.
const (
	envKeyPingerInterval = "PODSTREAM_PINGER_INTERVAL"
	envMinPingerInterval = time.Second
)

// Base delay before reconnecting a failed watch in production; doubles up to the max delay.
const (
	envKeyReconnectDelay = "PODSTREAM_RECONNECT_DELAY"
	envMinReconnectDelay = 100 * time.Millisecond
)

// Upper bound of the reconnect delay.
const (
	envKeyReconnectMaxDelay = "PODSTREAM_RECONNECT_MAX_DELAY"
	envMinReconnectMaxDelay = time.Second
)

// Base reconnect delay in development mode.
const (
	envKeyDevReconnectDelay = "PODSTREAM_DEV_RECONNECT_DELAY"
	envMinDevReconnectDelay = 100 * time.Millisecond
)

// Consecutive authentication failures tolerated in production before exiting.
const envKeyMaxAuthRetries = "PODSTREAM_MAX_AUTH_RETRIES"

// Per-subscriber queue length; an overflowing subscriber is disconnected.
const envKeySubscriberBuffer = "PODSTREAM_SUBSCRIBER_BUFFER"

// Cron expression for periodic relists (e.g. "*/30 * * * *"); empty disables.
const envKeyResyncSchedule = "PODSTREAM_RESYNC_SCHEDULE"

// Timezone of the resync schedule (IANA, e.g. Europe/Berlin). Defaults to UTC.
const envKeyResyncTZ = "PODSTREAM_RESYNC_TZ"

// Enrich pods with usage from metrics.k8s.io: true or false.
const envKeyMetricsEnrichment = "PODSTREAM_METRICS_ENRICHMENT"

// Standard k8s env keys used as fallback when PODSTREAM_* are unset.
const (
	envKeyKubeConfigFallback = "KUBECONFIG"
	envKeyKubeMasterFallback = "KUBERNETES_MASTER"
)
