package logsink_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	. "armada/pkg/logsink"
)

type fakeTransport struct {
	mu      sync.Mutex
	streams map[string][]string
	err     error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{streams: make(map[string][]string)}
}

func (t *fakeTransport) LogLine(ctx context.Context, stream, record string) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streams[stream] = append(t.streams[stream], record)
	return nil
}

func (t *fakeTransport) Close() error { return nil }

func newTestSink(transport Transport) (*Sink, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Sink{Transport: transport, Stdout: stdout, Stderr: stderr}, stdout, stderr
}

func TestSink_EventEchoesToStdout(t *testing.T) {
	transport := newFakeTransport()
	sink, stdout, stderr := newTestSink(transport)

	err := sink.Log(context.Background(), "svc", "deploy", "rolled out", Options{Level: LevelEvent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "rolled out\n" {
		t.Errorf("expected stdout echo, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr output %q", stderr.String())
	}
	if len(transport.streams["stream_armada_svc"]) != 1 {
		t.Errorf("expected 1 forwarded record, got %d", len(transport.streams["stream_armada_svc"]))
	}
}

func TestSink_DebugEchoesToStderr(t *testing.T) {
	sink, stdout, stderr := newTestSink(newFakeTransport())

	err := sink.Log(context.Background(), "svc", "deploy", "verbose detail", Options{Level: LevelDebug})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stderr.String() != "verbose detail\n" {
		t.Errorf("expected stderr echo, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected stdout output %q", stdout.String())
	}
}

func TestSink_DefaultsToEventLevel(t *testing.T) {
	sink, stdout, _ := newTestSink(newFakeTransport())

	if err := sink.Log(context.Background(), "svc", "deploy", "line", Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "line\n" {
		t.Errorf("expected default level echo to stdout, got %q", stdout.String())
	}
}

func TestSink_RejectsUnknownLevel(t *testing.T) {
	sink, _, _ := newTestSink(newFakeTransport())

	err := sink.Log(context.Background(), "svc", "deploy", "line", Options{Level: "loud"})
	if !errors.Is(err, ErrNoSuchLogLevel) {
		t.Errorf("expected ErrNoSuchLogLevel, got %v", err)
	}
}

func TestSink_PropagatesTransportError(t *testing.T) {
	transport := newFakeTransport()
	transport.err = errors.New("broker down")
	sink, _, _ := newTestSink(transport)

	err := sink.Log(context.Background(), "svc", "deploy", "line", Options{})
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestValidateComponent(t *testing.T) {
	for name := range Components {
		if err := ValidateComponent(name); err != nil {
			t.Errorf("registered component %q rejected: %v", name, err)
		}
	}
	if err := ValidateComponent("fake_comp"); !errors.Is(err, ErrNoSuchLogComponent) {
		t.Errorf("expected ErrNoSuchLogComponent, got %v", err)
	}
}

func TestValidateLevel(t *testing.T) {
	for _, level := range []string{LevelEvent, LevelDebug} {
		if err := ValidateLevel(level); err != nil {
			t.Errorf("level %q rejected: %v", level, err)
		}
	}
	if err := ValidateLevel("info"); !errors.Is(err, ErrNoSuchLogLevel) {
		t.Errorf("expected ErrNoSuchLogLevel, got %v", err)
	}
}

func TestComponentNames_Sorted(t *testing.T) {
	names := ComponentNames()
	if len(names) != len(Components) {
		t.Fatalf("expected %d names, got %d", len(Components), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("component names not sorted: %v", names)
	}
}
