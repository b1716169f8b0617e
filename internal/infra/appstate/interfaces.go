package appstate

import (
	"context"

	"github.com/skillcoder/podstream/internal/infra/pinger"
)

type pingerServer interface {
	Start(ctx context.Context) error
	Ready() <-chan struct{}
	Register(pinger pinger.Pinger) error
	GetAllStats() map[string]*pinger.Statistics
}
