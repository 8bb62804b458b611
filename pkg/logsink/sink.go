// Package logsink validates, sanitizes and forwards captured output lines to
// structured, append-only log streams.
package logsink

import (
	"context"
	"fmt"
	"io"
	"os"

	"armada/pkg/metrics"
)

// Options carries the per-line routing metadata. Zero values fall back to
// the event level and the N/A cluster/instance placeholders.
type Options struct {
	Level    string
	Cluster  string
	Instance string
}

// Sink forwards captured lines to a log stream transport. Lines at the
// event level are additionally echoed to stdout, debug lines to stderr.
type Sink struct {
	Transport Transport

	// Stdout and Stderr receive the raw echo of each line. Overridable for
	// tests; default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewSink returns a Sink writing echoes to the process stdout/stderr.
func NewSink(t Transport) *Sink {
	return &Sink{Transport: t, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Log echoes line and forwards the serialized record to the stream derived
// from service. The raw line is echoed as-is; only the forwarded record is
// ANSI-stripped.
func (s *Sink) Log(ctx context.Context, service, component, line string, opts Options) error {
	level := opts.Level
	if level == "" {
		level = DefaultLevel
	}
	cluster := opts.Cluster
	if cluster == "" {
		cluster = AnyCluster
	}
	instance := opts.Instance
	if instance == "" {
		instance = AnyInstance
	}

	switch level {
	case LevelEvent:
		fmt.Fprintln(s.Stdout, line)
	case LevelDebug:
		fmt.Fprintln(s.Stderr, line)
	default:
		return fmt.Errorf("%w: %q", ErrNoSuchLogLevel, level)
	}

	formatted, err := FormatLine(level, cluster, instance, component, line)
	if err != nil {
		return err
	}

	if err := s.Transport.LogLine(ctx, StreamNameForService(service), formatted); err != nil {
		return fmt.Errorf("failed to forward log line: %w", err)
	}
	metrics.LogLinesForwarded.WithLabelValues(component).Inc()
	return nil
}
