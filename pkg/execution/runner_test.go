package execution_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"syscall"
	"testing"

	. "armada/pkg/execution"
	"armada/pkg/logsink"
)

// recordingTransport captures forwarded records per stream.
type recordingTransport struct {
	mu      sync.Mutex
	records map[string][]string
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{records: make(map[string][]string)}
}

func (t *recordingTransport) LogLine(ctx context.Context, stream, record string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[stream] = append(t.records[stream], record)
	return nil
}

func (t *recordingTransport) Close() error { return nil }

func testSink(transport logsink.Transport) (*logsink.Sink, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &logsink.Sink{Transport: transport, Stdout: stdout, Stderr: stderr}, stdout, stderr
}

func TestRun_Success(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{Command: "echo hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if result.Output != "hello" {
		t.Errorf("expected output 'hello', got %q", result.Output)
	}
	if result.TimedOut {
		t.Error("expected TimedOut to be false")
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{Command: "sh -c 'exit 3'"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestRun_MergesStreamsInOrder(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{
		Command: "sh -c 'echo one; echo two 1>&2; echo three'",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "one\ntwo\nthree"
	if result.Output != want {
		t.Errorf("expected output %q, got %q", want, result.Output)
	}
}

func TestRun_RespectsQuoting(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{Command: `echo "a b"  c`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "a b c" {
		t.Errorf("expected output 'a b c', got %q", result.Output)
	}
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{
		Command:        "sleep 10",
		TimeoutSeconds: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ExitCode != KillSentinel {
		t.Errorf("expected exit code %d, got %d", KillSentinel, result.ExitCode)
	}
	if !result.TimedOut {
		t.Error("expected TimedOut to be true")
	}

	trailer := "Command 'sleep 10' timed out (longer than 1s)"
	if !strings.HasSuffix(result.Output, trailer) {
		t.Errorf("expected output to end with %q, got %q", trailer, result.Output)
	}
}

func TestRun_FastCommandWithTimeoutIsNotKilled(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{
		Command:        "echo quick",
		TimeoutSeconds: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 || result.TimedOut {
		t.Errorf("expected clean exit, got code=%d timedOut=%v", result.ExitCode, result.TimedOut)
	}
	if strings.Contains(result.Output, "timed out") {
		t.Errorf("unexpected timeout trailer in output %q", result.Output)
	}
}

func TestRun_SpawnFailureMapsToErrno(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{Command: "definitely-not-a-real-binary-4x7"})
	if err != nil {
		t.Fatalf("expected spawn failure in result, got error: %v", err)
	}
	if result.ExitCode != int(syscall.ENOENT) {
		t.Errorf("expected exit code %d (ENOENT), got %d", int(syscall.ENOENT), result.ExitCode)
	}
	if result.Output == "" {
		t.Error("expected error description in output")
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	r := NewRunner(nil)

	if _, err := r.Run(context.Background(), RunConfig{Command: "   "}); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestRun_ChildEnvironmentReplaced(t *testing.T) {
	r := NewRunner(nil)

	result, err := r.Run(context.Background(), RunConfig{
		Command: `sh -c 'echo "$GREETING"'`,
		Env:     map[string]string{"GREETING": "bonjour"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "bonjour" {
		t.Errorf("expected output 'bonjour', got %q", result.Output)
	}
}

func TestRun_UnknownComponentFailsBeforeSpawn(t *testing.T) {
	sink, _, _ := testSink(newRecordingTransport())
	r := NewRunner(sink)

	_, err := r.Run(context.Background(), RunConfig{
		Command: "echo never-runs",
		Log:     &LogOptions{ServiceName: "svc", Component: "bogus"},
	})
	if !errors.Is(err, logsink.ErrNoSuchLogComponent) {
		t.Fatalf("expected ErrNoSuchLogComponent, got %v", err)
	}
}

func TestRun_UnknownLevelFailsBeforeSpawn(t *testing.T) {
	sink, _, _ := testSink(newRecordingTransport())
	r := NewRunner(sink)

	_, err := r.Run(context.Background(), RunConfig{
		Command: "echo never-runs",
		Log:     &LogOptions{ServiceName: "svc", Component: "build", Level: "loud"},
	})
	if !errors.Is(err, logsink.ErrNoSuchLogLevel) {
		t.Fatalf("expected ErrNoSuchLogLevel, got %v", err)
	}
}

func TestRun_LogForwardingWithoutSink(t *testing.T) {
	r := NewRunner(nil)

	_, err := r.Run(context.Background(), RunConfig{
		Command: "echo never-runs",
		Log:     &LogOptions{ServiceName: "svc", Component: "build"},
	})
	if err == nil {
		t.Fatal("expected error when log forwarding requested without a sink")
	}
}

func TestRun_ForwardsEachLine(t *testing.T) {
	transport := newRecordingTransport()
	sink, stdout, _ := testSink(transport)
	r := NewRunner(sink)

	result, err := r.Run(context.Background(), RunConfig{
		Command: "sh -c 'echo alpha; echo beta'",
		Log:     &LogOptions{ServiceName: "webapp", Component: "app_output"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "alpha\nbeta" {
		t.Errorf("unexpected output %q", result.Output)
	}

	records := transport.records["stream_armada_webapp"]
	if len(records) != 2 {
		t.Fatalf("expected 2 forwarded records, got %d", len(records))
	}
	if !strings.Contains(records[0], `"message":"alpha"`) {
		t.Errorf("first record missing message: %s", records[0])
	}

	// Event-level lines are echoed raw to stdout.
	if got := stdout.String(); got != "alpha\nbeta\n" {
		t.Errorf("unexpected stdout echo %q", got)
	}
}
