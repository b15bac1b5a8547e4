package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FlowPath string   // flow .hcl file or directory
	DataPath string   // YAML or JSON delta file
	Sets     []string // name=value delta items, applied after DataPath

	// StatePath persists the flow instance between invocations. Empty keeps
	// the instance in memory, shared only by Run calls on the same App.
	StatePath string

	EventsURL            string
	EventsNamespace      string
	EventsInsecure       bool
	EventsRequired       bool
	EventsConnectTimeout time.Duration

	LayerEarlyExit bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlowPath == "" {
		return nil, errors.New("FlowPath is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.EventsRequired && cfg.EventsURL == "" {
		return nil, errors.New("EventsRequired needs an EventsURL")
	}
	return &cfg, nil
}
