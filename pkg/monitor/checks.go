package monitor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CheckDef is one entry in the monitor checks file. Commands run under the
// monitoring log component with their output forwarded to the service's
// log stream.
type CheckDef struct {
	Name           string `yaml:"name"`
	Service        string `yaml:"service"`
	Command        string `yaml:"command"`
	Schedule       string `yaml:"schedule"` // standard 5-field cron expression
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type checksFile struct {
	Checks []CheckDef `yaml:"checks"`
}

// LoadChecks parses the YAML checks file.
func LoadChecks(path string) ([]CheckDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checks file: %w", err)
	}

	var file checksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse checks file %s: %w", path, err)
	}

	for i, check := range file.Checks {
		if check.Name == "" {
			return nil, fmt.Errorf("check %d has no name", i)
		}
		if check.Command == "" {
			return nil, fmt.Errorf("check %q has no command", check.Name)
		}
		if check.Schedule == "" {
			return nil, fmt.Errorf("check %q has no schedule", check.Name)
		}
	}

	return file.Checks, nil
}
