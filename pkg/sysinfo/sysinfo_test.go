package sysinfo_test

import (
	"testing"
	"time"

	. "armada/pkg/sysinfo"
)

func TestCurrentUmask_RestoresMask(t *testing.T) {
	first := CurrentUmask()
	second := CurrentUmask()
	if first != second {
		t.Errorf("umask changed between reads: %o -> %o", first, second)
	}
}

func TestHostname(t *testing.T) {
	if Hostname() == "" {
		t.Error("expected non-empty hostname")
	}
}

func TestUsername(t *testing.T) {
	name, err := Username()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name == "" {
		t.Error("expected non-empty username")
	}
}

func TestLocalTimeFromUTC(t *testing.T) {
	utc := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	local := LocalTimeFromUTC(utc)
	if !local.Equal(utc) {
		t.Error("conversion must not change the instant")
	}
	if local.Location() != time.Local {
		t.Errorf("expected local zone, got %v", local.Location())
	}
}
