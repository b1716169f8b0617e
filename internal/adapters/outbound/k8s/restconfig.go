package k8s

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

// NewRestConfig selects credentials by deployment mode: the in-cluster
// service account in production, the operator kubeconfig otherwise.
func NewRestConfig(mode podsync.Mode, kubeMaster, kubeConfig string) (*rest.Config, error) {
	if mode == podsync.ModeProduction {
		cfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("load in-cluster config: %w", err)
		}

		return cfg, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeConfig != "" {
		rules.ExplicitPath = kubeConfig
	}

	overrides := &clientcmd.ConfigOverrides{}
	if kubeMaster != "" {
		overrides.ClusterInfo.Server = kubeMaster
	}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}

	return cfg, nil
}
