package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/rest"
)

const apiPingTimeout = 3 * time.Second

// APIPinger probes the API server /readyz endpoint. A down control plane
// does not make this process unready or unhealthy: the pod mirror keeps
// serving the last state and the supervisor repairs it on reconnect.
type APIPinger struct {
	client rest.Interface
}

// NewAPIPinger creates a pinger over any REST client of the cluster,
// for example clientset.Discovery().RESTClient().
func NewAPIPinger(client rest.Interface) *APIPinger {
	return &APIPinger{client: client}
}

func (p *APIPinger) Name() string {
	return "kube-apiserver"
}

func (p *APIPinger) Ping(ctx context.Context) error {
	err := p.client.Get().AbsPath("/readyz").Do(ctx).Error()
	if err != nil {
		return fmt.Errorf("api server readyz: %w", classifyAPIError(err))
	}

	return nil
}

func (p *APIPinger) PingerReadyCritical() bool {
	return false
}

func (p *APIPinger) PingerCritical() bool {
	return false
}

func (p *APIPinger) PingerTimeout() time.Duration {
	return apiPingTimeout
}
