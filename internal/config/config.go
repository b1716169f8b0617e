package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

var (
	ErrInvalidDeploymentMode = errors.New("invalid deployment mode")
	ErrValueTooSmall         = errors.New("value below minimum")
)

type Config struct {
	DeploymentMode    podsync.Mode
	KubeConfig        string
	KubeMaster        string
	Namespace         string
	PodLabelSelector  string
	LogLevel          string
	LogFormat         string
	HTTPPort          string
	MetricsPort       string
	PingerInterval    time.Duration
	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration
	DevReconnectDelay time.Duration
	MaxAuthRetries    int
	SubscriberBuffer  int
	ResyncSchedule    string
	ResyncTZ          string
	MetricsEnrichment bool
}

func Load() (*Config, error) {
	cfg := &Config{
		KubeConfig:       getEnvOrFallback(envKeyKubeConfig, envKeyKubeConfigFallback),
		KubeMaster:       getEnvOrFallback(envKeyKubeMaster, envKeyKubeMasterFallback),
		Namespace:        os.Getenv(envKeyNamespace),
		PodLabelSelector: os.Getenv(envKeyPodLabelSelector),
		LogLevel:         getEnvOrDefault(envKeyLogLevel, "info"),
		LogFormat:        getEnvOrDefault(envKeyLogFormat, "json"),
		HTTPPort:         getEnvOrDefault(envKeyHTTPPort, "8080"),
		MetricsPort:      getEnvOrDefault(envKeyMetricsPort, "9090"),
		ResyncSchedule:   os.Getenv(envKeyResyncSchedule),
		ResyncTZ:         os.Getenv(envKeyResyncTZ),
	}

	mode := podsync.Mode(getEnvOrDefault(envKeyDeploymentMode, string(podsync.ModeDevelopment)))
	if mode != podsync.ModeProduction && mode != podsync.ModeDevelopment {
		return nil, fmt.Errorf("parse %s: %w: %q", envKeyDeploymentMode, ErrInvalidDeploymentMode, mode)
	}

	cfg.DeploymentMode = mode

	var err error

	cfg.PingerInterval, err = parseDuration(envKeyPingerInterval, "10s", envMinPingerInterval)
	if err != nil {
		return nil, err
	}

	cfg.ReconnectDelay, err = parseDuration(
		envKeyReconnectDelay, podsync.DefaultReconnectDelay.String(), envMinReconnectDelay,
	)
	if err != nil {
		return nil, err
	}

	cfg.ReconnectMaxDelay, err = parseDuration(
		envKeyReconnectMaxDelay, podsync.DefaultReconnectMaxDelay.String(), envMinReconnectMaxDelay,
	)
	if err != nil {
		return nil, err
	}

	cfg.DevReconnectDelay, err = parseDuration(
		envKeyDevReconnectDelay, podsync.DefaultDevReconnectDelay.String(), envMinDevReconnectDelay,
	)
	if err != nil {
		return nil, err
	}

	cfg.MaxAuthRetries, err = parseInt(envKeyMaxAuthRetries, podsync.DefaultMaxAuthRetries, 0)
	if err != nil {
		return nil, err
	}

	cfg.SubscriberBuffer, err = parseInt(envKeySubscriberBuffer, podsync.DefaultSubscriberBuffer, 1)
	if err != nil {
		return nil, err
	}

	cfg.MetricsEnrichment, err = strconv.ParseBool(getEnvOrDefault(envKeyMetricsEnrichment, "true"))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", envKeyMetricsEnrichment, err)
	}

	return cfg, nil
}

func parseDuration(key, defaultValue string, minValue time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	if value < minValue {
		return 0, fmt.Errorf("parse %s: %w: %s < %s", key, ErrValueTooSmall, value, minValue)
	}

	return value, nil
}

func parseInt(key string, defaultValue, minValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	if value < minValue {
		return 0, fmt.Errorf("parse %s: %w: %d < %d", key, ErrValueTooSmall, value, minValue)
	}

	return value, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvOrFallback(key, fallbackKey string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return os.Getenv(fallbackKey)
}
