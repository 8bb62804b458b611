package monitor_test

import (
	"os"
	"path/filepath"
	"testing"

	. "armada/pkg/monitor"
)

func writeChecks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checks.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return path
}

func TestLoadChecks(t *testing.T) {
	path := writeChecks(t, `
checks:
  - name: disk-space
    service: infra
    command: "df -h /"
    schedule: "*/5 * * * *"
    timeout_seconds: 30
  - name: queue-probe
    command: "redis-cli ping"
    schedule: "* * * * *"
`)

	checks, err := LoadChecks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}

	first := checks[0]
	if first.Name != "disk-space" || first.Service != "infra" || first.TimeoutSeconds != 30 {
		t.Errorf("unexpected first check %+v", first)
	}
	if first.Schedule != "*/5 * * * *" {
		t.Errorf("unexpected schedule %q", first.Schedule)
	}
}

func TestLoadChecks_MissingName(t *testing.T) {
	path := writeChecks(t, `
checks:
  - command: "true"
    schedule: "* * * * *"
`)
	if _, err := LoadChecks(path); err == nil {
		t.Error("expected error for check without a name")
	}
}

func TestLoadChecks_MissingCommand(t *testing.T) {
	path := writeChecks(t, `
checks:
  - name: incomplete
    schedule: "* * * * *"
`)
	if _, err := LoadChecks(path); err == nil {
		t.Error("expected error for check without a command")
	}
}

func TestLoadChecks_MissingSchedule(t *testing.T) {
	path := writeChecks(t, `
checks:
  - name: incomplete
    command: "true"
`)
	if _, err := LoadChecks(path); err == nil {
		t.Error("expected error for check without a schedule")
	}
}

func TestLoadChecks_MissingFile(t *testing.T) {
	if _, err := LoadChecks(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
