package logsink

import (
	"errors"
	"fmt"
	"sort"

	"armada/pkg/colors"
)

var (
	// ErrNoSuchLogComponent is returned when a component name is not in the registry.
	ErrNoSuchLogComponent = errors.New("no such log component")
	// ErrNoSuchLogLevel is returned for levels other than "event" and "debug".
	ErrNoSuchLogLevel = errors.New("no such log level")
)

// Component describes one entry in the fixed log component registry.
type Component struct {
	Color func(string) string // colour used when rendering lines of this component
	Help  string              // human description shown by tooling
	Tail  string              // hint for tailing the underlying stream
}

// Components is the closed registry of log components. Records may only be
// emitted under one of these names.
var Components = map[string]Component{
	"build": {
		Color: colors.BlueText,
		Help:  "CI build job output: itests, promotion, security checks, etc.",
		Tail:  "armadactl logs --component build",
	},
	"deploy": {
		Color: colors.CyanText,
		Help:  "Output from the armada deploy pipeline (bounces, task setup, etc.)",
		Tail:  "armadactl logs --component deploy",
	},
	"app_output": {
		Color: colors.Bold,
		Help:  "Stderr and stdout of the actual process spawned for the service",
		Tail:  "armadactl logs --component app_output",
	},
	"app_request": {
		Color: colors.Bold,
		Help:  "The request log for the service",
		Tail:  "armadactl logs --component app_request",
	},
	"app_errors": {
		Color: colors.RedText,
		Help:  "Application error log for the service",
		Tail:  "armadactl logs --component app_errors",
	},
	"lb_requests": {
		Color: colors.Bold,
		Help:  "All requests seen by the load balancer for the service",
		Tail:  "armadactl logs --component lb_requests",
	},
	"lb_errors": {
		Color: colors.RedText,
		Help:  "Load balancer log lines with 4xx/5xx status codes",
		Tail:  "armadactl logs --component lb_errors",
	},
	"monitoring": {
		Color: colors.GreenText,
		Help:  "Output from the monitoring checks run for the service",
		Tail:  "armadactl logs --component monitoring",
	},
}

// ValidateComponent checks that name is a registered log component.
func ValidateComponent(name string) error {
	if _, ok := Components[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchLogComponent, name)
	}
	return nil
}

// ValidateLevel checks that level is one of the two recognized log levels.
func ValidateLevel(level string) error {
	if level != LevelEvent && level != LevelDebug {
		return fmt.Errorf("%w: %q", ErrNoSuchLogLevel, level)
	}
	return nil
}

// ComponentNames returns the registry keys in sorted order.
func ComponentNames() []string {
	names := make([]string, 0, len(Components))
	for name := range Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
