package logsink

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

const (
	// LevelEvent is the default level: operator-facing progress lines.
	LevelEvent = "event"
	// LevelDebug marks verbose lines that are echoed to stderr instead.
	LevelDebug = "debug"

	// DefaultLevel is used when no level is specified.
	DefaultLevel = LevelEvent

	// AnyCluster and AnyInstance are the placeholders used when a record is
	// not tied to a particular cluster or instance.
	AnyCluster  = "N/A"
	AnyInstance = "N/A"
)

// timestampLayout matches microsecond-precision ISO-8601 UTC. Fixed-width
// fractional digits keep two records with identical logical content
// byte-identical in length, which log-stream diffing relies on.
const timestampLayout = "2006-01-02T15:04:05.000000"

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

// StripANSI removes terminal escape sequences (colour and erase-line codes)
// from line. Applying it twice is a no-op.
func StripANSI(line string) string {
	return ansiEscape.ReplaceAllString(line, "")
}

// Record is a single structured log record. Fields are declared in
// alphabetical order so encoding/json produces the canonical serialized form
// with a stable byte-for-byte field ordering.
type Record struct {
	Cluster   string `json:"cluster"`
	Component string `json:"component"`
	Instance  string `json:"instance"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// FormatLine builds the serialized record for one captured line. The
// component is validated against the registry and the line is stripped of
// ANSI escapes before serialization.
func FormatLine(level, cluster, instance, component, line string) (string, error) {
	if err := ValidateComponent(component); err != nil {
		return "", err
	}
	rec := Record{
		Cluster:   cluster,
		Component: component,
		Instance:  instance,
		Level:     level,
		Message:   StripANSI(line),
		Timestamp: time.Now().UTC().Format(timestampLayout),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to serialize log record: %w", err)
	}
	return string(b), nil
}

// StreamNameForService derives the log stream name for a service.
func StreamNameForService(service string) string {
	return "stream_armada_" + service
}
