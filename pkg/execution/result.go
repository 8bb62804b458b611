package execution

// KillSentinel is the exit code observed when the watchdog delivered SIGKILL.
// A process can also exit with this code on its own; Result.TimedOut is the
// authoritative signal that the watchdog actually fired.
const KillSentinel = -9

// LogOptions enables per-line forwarding of captured output to a log stream.
// Component must be in the logsink registry and Level one of event/debug;
// both are validated before the process is spawned.
type LogOptions struct {
	ServiceName string
	Component   string
	Level       string // defaults to logsink.DefaultLevel
	Cluster     string // defaults to logsink.AnyCluster
	Instance    string // defaults to logsink.AnyInstance
}

// RunConfig describes a single command invocation.
type RunConfig struct {
	// Command is split with shell-word rules, so quoting is respected.
	Command string

	// Env replaces the child's environment. nil inherits the process env.
	Env map[string]string

	// TimeoutSeconds arms the watchdog when positive. Zero means unbounded.
	TimeoutSeconds int

	// Log, when set, forwards every captured line through the sink.
	Log *LogOptions
}

// Result captures the outcome of a command invocation. Spawn failures are
// encoded here too (ExitCode = OS errno, Output = error description) so
// callers always receive the same shape.
type Result struct {
	ExitCode int
	Output   string // captured lines, newline-joined, in stream order
	TimedOut bool   // true only when the watchdog fired and the kill landed
}
