package httpserver

import (
	"time"

	"github.com/skillcoder/podstream/internal/infra/appstate"
	"github.com/skillcoder/podstream/internal/infra/pinger"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

type appstater interface {
	GetState() appstate.State
	IsHealthy() bool
	IsReady() bool
	GetUptime() time.Duration
	GetStartTime() time.Time
	GetAllStats() map[string]*pinger.Statistics
}

type podService interface {
	Pods() []podsync.Pod
	Subscribe() ([]podsync.Pod, *podsync.Subscription, error)
	Unsubscribe(id string)
	RequestResync()
	State() podsync.State
	Subscribers() int
}
