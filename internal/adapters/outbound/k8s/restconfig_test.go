package k8s_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/client-go/rest"

	"github.com/skillcoder/podstream/internal/adapters/outbound/k8s"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: local
  cluster:
    server: https://from-file:6443
contexts:
- name: local
  context:
    cluster: local
    user: dev
current-context: local
users:
- name: dev
  user:
    token: dev-token
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))

	return path
}

func TestNewRestConfig(t *testing.T) {
	kubeconfig := writeKubeconfig(t)

	// no in-cluster service account and no ambient kubeconfig
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	t.Setenv("KUBERNETES_SERVICE_PORT", "")
	t.Setenv("KUBECONFIG", "")

	tests := []struct {
		name           string
		giveMode       podsync.Mode
		giveMaster     string
		giveKubeconfig string
		wantErr        error
		wantHost       string
	}{
		{
			name:           "production ignores kubeconfig outside a cluster",
			giveMode:       podsync.ModeProduction,
			giveKubeconfig: kubeconfig,
			wantErr:        rest.ErrNotInCluster,
		},
		{
			name:           "development uses kubeconfig server",
			giveMode:       podsync.ModeDevelopment,
			giveKubeconfig: kubeconfig,
			wantHost:       "https://from-file:6443",
		},
		{
			name:           "development master overrides kubeconfig server",
			giveMode:       podsync.ModeDevelopment,
			giveMaster:     "https://override:1",
			giveKubeconfig: kubeconfig,
			wantHost:       "https://override:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := k8s.NewRestConfig(tt.giveMode, tt.giveMaster, tt.giveKubeconfig)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Contains(t, err.Error(), "load in-cluster config")
				require.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantHost, cfg.Host)
			require.Equal(t, "dev-token", cfg.BearerToken)
		})
	}
}
